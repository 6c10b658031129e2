package token

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Codec mints and parses signed session tokens. It holds no mutable
// state and is safe for concurrent use.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type Claims struct {
	SessionID    string `json:"sid"`
	ChatUsername string `json:"chatUsername"`
	BU           string `json:"bu"`
	CIF          string `json:"cif"`
	TokenType    string `json:"tokenType"`
	jwtlib.RegisteredClaims
}

func New(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Subject carries the identity fields embedded in every minted token.
type Subject struct {
	SessionID    string
	ChatUsername string
	BU           string
	CIF          string
}

// Mint signs a token of the given type. The nonce becomes the JWT ID;
// for refresh tokens it is the refresh-token id the store checks on
// renewal.
func (c *Codec) Mint(sub Subject, tokenType, nonce string) (string, error) {
	ttl := c.accessTTL
	if tokenType == TypeRefresh {
		ttl = c.refreshTTL
	}

	now := time.Now()
	claims := Claims{
		SessionID:    sub.SessionID,
		ChatUsername: sub.ChatUsername,
		BU:           sub.BU,
		CIF:          sub.CIF,
		TokenType:    tokenType,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        nonce,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}

	t := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Parse validates the signature and expiry and checks the token carries
// the expected type.
func (c *Codec) Parse(tokenStr, expectedType string) (*Claims, error) {
	t, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !t.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := t.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expectedType {
		return nil, ErrInvalidToken
	}
	if claims.SessionID == "" || claims.ChatUsername == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
