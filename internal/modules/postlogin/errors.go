package postlogin

import "errors"

var (
	// ErrValidation means the request shape is unusable (empty cif,
	// token key or channel payload).
	ErrValidation = errors.New("invalid request")

	// ErrUnknownChannel means the channel id maps to no business unit.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrInvalidIdentity means the handle inputs are empty or malformed.
	ErrInvalidIdentity = errors.New("invalid identity")

	// ErrSessionNotFound covers a session that never existed and one
	// whose TTL has passed; the caller must re-initiate either way.
	ErrSessionNotFound = errors.New("session not found")

	// ErrStaleToken means the presented refresh token was already
	// consumed (its refresh-token id no longer matches the record).
	ErrStaleToken = errors.New("stale refresh token")

	// ErrExternalSessionExpired means the external authority gave a
	// definitive "expired" verdict; the session has been removed.
	ErrExternalSessionExpired = errors.New("external session expired")

	// ErrVerificationUnavailable means the external authority could not
	// be reached. Retryable; the session stays untouched.
	ErrVerificationUnavailable = errors.New("verification unavailable")
)
