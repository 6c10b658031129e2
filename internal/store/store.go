package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound covers both a session that never existed and one whose
	// TTL has passed. Callers cannot tell the two apart.
	ErrNotFound = errors.New("session not found")

	// ErrRefreshTokenMismatch is returned by Swap when the stored
	// refresh-token id no longer matches the expected one.
	ErrRefreshTokenMismatch = errors.New("refresh token id mismatch")
)

// SessionRecord is the persisted unit of session state. Identity fields
// are written once at initiation; only RefreshTokenID and ExpiresAt
// change on renewal.
type SessionRecord struct {
	SessionID        string    `json:"sessionId"`
	ChatUsername     string    `json:"chatUsername"`
	CIF              string    `json:"cif"`
	CustomerName     string    `json:"customerName,omitempty"`
	CustomerType     string    `json:"customerType,omitempty"`
	BU               string    `json:"bu"`
	ExternalTokenKey string    `json:"tokenKey"`
	RequestIDHeader  string    `json:"requestIdHeader,omitempty"`
	RefreshTokenID   string    `json:"refreshTokenId"`
	CreatedAt        time.Time `json:"createdAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// Store is a TTL-bound key-value store of session records keyed by
// session id.
type Store interface {
	// Put upserts the record and resets its TTL.
	Put(ctx context.Context, rec *SessionRecord, ttl time.Duration) error
	// Get returns ErrNotFound for missing and expired records alike.
	Get(ctx context.Context, sessionID string) (*SessionRecord, error)
	// Delete removes the record; deleting a missing key is not an error.
	Delete(ctx context.Context, sessionID string) error
	// Swap overwrites the record only while the stored refresh-token id
	// still equals expectedRefreshTokenID.
	Swap(ctx context.Context, rec *SessionRecord, ttl time.Duration, expectedRefreshTokenID string) error
}
