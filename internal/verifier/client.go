package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const validateSessionPath = "/corporate/relationship-management/marketing/v1/customer/validate-session"

// ErrUnavailable means the authority could not be reached or answered
// outside its contract. It is NOT a verdict that the session is invalid;
// callers must surface it as retryable.
var ErrUnavailable = errors.New("verifier unavailable")

// Client calls the external authority that originally authenticated the
// user to confirm its session token is still valid.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

type validateResponse struct {
	Status string `json:"status"`
	Data   struct {
		IsExpire     bool   `json:"isExpire"`
		UserID       string `json:"userId"`
		SessionToken string `json:"sessionToken"`
		ValidatedAt  string `json:"validatedAt"`
	} `json:"data"`
	Message string `json:"message"`
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Verify returns the authority's verdict on the session token. A
// definitive "expired" verdict comes back as (false, nil); every
// transport or protocol failure comes back as ErrUnavailable.
func (c *Client) Verify(ctx context.Context, sessionToken, userID, correlationID string) (bool, error) {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+validateSessionPath, bytes.NewReader([]byte("{}")))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-request-id", correlationID)
	req.Header.Set("x-session-token", sessionToken)
	req.Header.Set("x-user-id", userID)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if body.Status != "success" {
		return false, fmt.Errorf("%w: status %q", ErrUnavailable, body.Status)
	}

	return !body.Data.IsExpire, nil
}
