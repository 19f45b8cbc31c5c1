package domain

import "errors"

// Authentication errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidRole        = errors.New("invalid role")
)

// One-time code errors. Verify distinguishes the outcomes so callers can tell
// a user to retype the code, wait for re-issue, or request a fresh one.
var (
	ErrCodeNotFound    = errors.New("one-time code not found")
	ErrCodeInvalid     = errors.New("one-time code does not match")
	ErrCodeExpired     = errors.New("one-time code has expired")
	ErrCodeConsumed    = errors.New("one-time code already used")
	ErrCodeMaxAttempts = errors.New("maximum verification attempts exceeded")
	ErrResendThrottled = errors.New("resend window has not elapsed")
	ErrDeliveryFailed  = errors.New("one-time code delivery failed")
)

// Password reset errors
var (
	ErrResetGrantNotFound = errors.New("reset grant not found")
	ErrResetGrantExpired  = errors.New("reset grant has expired")
)

// Session errors. Resolution always fails closed: any of these means the
// request is unauthenticated, never a defaulted role.
var (
	ErrSessionInvalid  = errors.New("invalid session token")
	ErrSessionExpired  = errors.New("session has expired")
	ErrSessionNotFound = errors.New("session not found")
)

// Audit errors. Write failures are swallowed by the recorder and only logged;
// read failures propagate to the caller.
var ErrAuditQueryFailed = errors.New("audit query failed")
