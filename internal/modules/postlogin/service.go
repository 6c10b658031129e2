package postlogin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"postlogin/internal/pkg/token"
	"postlogin/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tokenCodec interface {
	Mint(sub token.Subject, tokenType, nonce string) (string, error)
	Parse(tokenStr, expectedType string) (*token.Claims, error)
}

// Service owns the session lifecycle: initiation, renewal and
// invalidation. It is stateless; all session state lives in the store.
type Service struct {
	channels      ChannelReader
	sessions      store.Store
	verifier      TokenVerifier
	codec         tokenCodec
	sessionTTL    time.Duration
	strictRenewal bool
}

func NewService(
	channels ChannelReader,
	sessions store.Store,
	verifier TokenVerifier,
	codec tokenCodec,
	sessionTTL time.Duration,
	strictRenewal bool,
) *Service {
	return &Service{
		channels:      channels,
		sessions:      sessions,
		verifier:      verifier,
		codec:         codec,
		sessionTTL:    sessionTTL,
		strictRenewal: strictRenewal,
	}
}

// InitSession creates a session for a user already authenticated by the
// external system. The supplied token key is recorded for later
// re-verification, not checked here: the upstream gateway guarantees
// the caller was authenticated.
func (s *Service) InitSession(ctx context.Context, req InitSessionData, requestID string) (*TokenPair, error) {
	cif := strings.TrimSpace(req.CIF)
	tokenKey := strings.TrimSpace(req.TokenKey)
	channelID := strings.TrimSpace(req.Payload.ChannelID)
	if cif == "" || tokenKey == "" || channelID == "" {
		return nil, ErrValidation
	}

	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownChannel
		}
		return nil, err
	}
	if strings.TrimSpace(channel.PostLoginBU) == "" {
		return nil, ErrUnknownChannel
	}
	bu := strings.ToUpper(strings.TrimSpace(channel.PostLoginBU))

	handle, err := BuildHandle(bu, cif)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rec := &store.SessionRecord{
		SessionID:        uuid.NewString(),
		ChatUsername:     handle,
		CIF:              cif,
		CustomerName:     req.BasicCustomerInfo.CustomerName,
		CustomerType:     req.BasicCustomerInfo.CustomerType,
		BU:               bu,
		ExternalTokenKey: tokenKey,
		RequestIDHeader:  strings.TrimSpace(requestID),
		RefreshTokenID:   uuid.NewString(),
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.sessionTTL),
	}

	pair, err := s.mintPair(rec)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Put(ctx, rec, s.sessionTTL); err != nil {
		return nil, err
	}

	pair.Message = fmt.Sprintf("%s session initialized successfully", bu)
	return pair, nil
}

// RenewToken exchanges a valid refresh token for a new token pair after
// re-checking the session with the external authority. Only a
// verifier outage leaves the session renewable; every other failure is
// terminal and requires re-initiation.
func (s *Service) RenewToken(ctx context.Context, refreshToken, requestID string) (*TokenPair, error) {
	claims, err := s.codec.Parse(refreshToken, token.TypeRefresh)
	if err != nil {
		return nil, err
	}

	rec, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if claims.ID == "" || claims.ID != rec.RefreshTokenID {
		return nil, ErrStaleToken
	}

	if requestID == "" {
		requestID = rec.RequestIDHeader
	}
	valid, err := s.verifier.Verify(ctx, rec.ExternalTokenKey, rec.CIF, requestID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	if !valid {
		if err := s.sessions.Delete(ctx, rec.SessionID); err != nil {
			return nil, err
		}
		return nil, ErrExternalSessionExpired
	}

	previousRefreshTokenID := rec.RefreshTokenID
	rec.RefreshTokenID = uuid.NewString()
	rec.ExpiresAt = time.Now().Add(s.sessionTTL)

	pair, err := s.mintPair(rec)
	if err != nil {
		return nil, err
	}

	if s.strictRenewal {
		err = s.sessions.Swap(ctx, rec, s.sessionTTL, previousRefreshTokenID)
		switch {
		case errors.Is(err, store.ErrRefreshTokenMismatch):
			return nil, ErrStaleToken
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrSessionNotFound
		case err != nil:
			return nil, err
		}
	} else {
		// Last-writer-wins: two concurrent renewals may both pass the
		// refresh-id check and the later Put silently invalidates the
		// earlier caller's tokens.
		if err := s.sessions.Put(ctx, rec, s.sessionTTL); err != nil {
			return nil, err
		}
	}

	pair.Message = fmt.Sprintf("%s token renewed successfully", rec.BU)
	return pair, nil
}

// InvalidateSession removes the session record. Removing an unknown or
// already-expired session is a no-op.
func (s *Service) InvalidateSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

func (s *Service) mintPair(rec *store.SessionRecord) (*TokenPair, error) {
	sub := token.Subject{
		SessionID:    rec.SessionID,
		ChatUsername: rec.ChatUsername,
		BU:           rec.BU,
		CIF:          rec.CIF,
	}

	access, err := s.codec.Mint(sub, token.TypeAccess, uuid.NewString())
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.Mint(sub, token.TypeRefresh, rec.RefreshTokenID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{Token: access, RefreshToken: refresh}, nil
}
