package verifymock

import (
	"log"
	"net/http"
	"strings"
	"time"

	"postlogin/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler mimics the external validate-session authority for local
// development. Session tokens prefixed "expired" come back expired,
// tokens prefixed "invalid" are rejected, everything else is valid.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	group := v1.Group("/corporate/relationship-management/marketing/v1")
	{
		group.POST("/customer/validate-session", h.ValidateSession)
	}
}

func (h *Handler) ValidateSession(c *gin.Context) {
	apiKey := c.GetHeader("Apikey")
	sessionToken := c.GetHeader("x-session-token")
	userID := c.GetHeader("x-user-id")

	log.Printf("mock_validate_session request_id=%s user_id=%s", c.GetHeader("x-request-id"), userID)

	if apiKey == "" {
		response.Error(c, http.StatusUnauthorized, "MISSING_API_KEY", "Missing Apikey header")
		return
	}
	if sessionToken == "" {
		response.Error(c, http.StatusBadRequest, "MISSING_SESSION_TOKEN", "Missing x-session-token header")
		return
	}
	if userID == "" {
		response.Error(c, http.StatusBadRequest, "MISSING_USER_ID", "Missing x-user-id header")
		return
	}

	if strings.HasPrefix(sessionToken, "invalid") {
		response.Error(c, http.StatusUnauthorized, "INVALID_SESSION_TOKEN", "Invalid session token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"isExpire":     strings.HasPrefix(sessionToken, "expired"),
			"userId":       userID,
			"sessionToken": sessionToken,
			"validatedAt":  time.Now().UTC().Format(time.RFC3339),
		},
		"message": "Session validation completed",
	})
}
