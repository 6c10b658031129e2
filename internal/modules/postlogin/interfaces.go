package postlogin

import (
	"context"

	"postlogin/internal/domain"
)

// ChannelReader is the single channel lookup the session service needs.
type ChannelReader interface {
	GetByID(ctx context.Context, channelID string) (*domain.ChannelSetting, error)
}

// TokenVerifier re-checks an externally-issued token with the authority
// that minted it.
type TokenVerifier interface {
	Verify(ctx context.Context, sessionToken, userID, correlationID string) (bool, error)
}
