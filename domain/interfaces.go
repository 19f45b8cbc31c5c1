package domain

import (
	"context"
	"time"
)

// AccountRepository defines account data access operations. Backed by a keyed
// store with a unique-username lookup and atomic single-row updates.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByID(ctx context.Context, id uint) (*Account, error)
	Update(ctx context.Context, account *Account) error
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
	Deactivate(ctx context.Context, id uint) error
}

// OTPLedger persists one-time codes keyed by identity. UpsertActive replaces
// any prior code for the key; TryConsume is an atomic compare-and-set so a
// raced valid code is consumed exactly once.
type OTPLedger interface {
	UpsertActive(ctx context.Context, code *OneTimeCode) error
	FindActive(ctx context.Context, key string) (*OneTimeCode, error)
	TryConsume(ctx context.Context, key, code string, now time.Time) (bool, error)
	IncrAttempts(ctx context.Context, key string) (int64, error)
	Invalidate(ctx context.Context, key string) error
	TryThrottle(ctx context.Context, key string, window time.Duration) (bool, error)
}

// ResetGrantStore persists the single-use capabilities minted after a
// successful reset-flow verification. Consume removes the grant atomically.
type ResetGrantStore interface {
	Save(ctx context.Context, grant *ResetGrant, ttl time.Duration) error
	Consume(ctx context.Context, grantID string) (*ResetGrant, error)
}

// AuditLedger is the append-only store behind the recorder and the query
// engine. There is no update or delete; Append assigns the record id.
type AuditLedger interface {
	Append(ctx context.Context, record *AuditRecord) error
	QueryPage(ctx context.Context, filter AuditFilter) ([]AuditRecord, int64, error)
	QueryAll(ctx context.Context, filter AuditFilter) ([]AuditRecord, error)
}

// SessionRepository defines server-side session rows backing revocation.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// AuthService defines primary authentication and account lifecycle logic.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*PendingLogin, error)
	CompleteLogin(ctx context.Context, principal *Principal) (*AuthResult, error)
	CompleteStepUp(ctx context.Context, username string) (*AuthResult, error)
	Register(ctx context.Context, account *Account, password string, actor *Principal) (*Account, error)
	UpdateAccount(ctx context.Context, account *Account, actor *Principal) error
	DeactivateAccount(ctx context.Context, id uint, actor *Principal) error
	ChangePassword(ctx context.Context, accountID uint, oldPassword, newPassword string) error
	Logout(ctx context.Context, sessionID string) error
	GetAccount(ctx context.Context, id uint) (*Account, error)
}

// OTPService drives the challenge state machine shared by step-up login and
// the password-reset flow.
type OTPService interface {
	Issue(ctx context.Context, key, destination string) (*OneTimeCode, error)
	Resend(ctx context.Context, key, destination string) (*OneTimeCode, error)
	Verify(ctx context.Context, key, submitted string) error
}

// ResetService drives the password-reset flow: request a code, trade it for a
// grant, spend the grant on a new password.
type ResetService interface {
	RequestReset(ctx context.Context, username string) error
	VerifyReset(ctx context.Context, username, code string) (string, error)
	CompleteReset(ctx context.Context, grantID, newPassword string) error
}

// AuditService is both sides of the trail: the best-effort recorder every
// mutation calls, and the read path administrators query.
type AuditService interface {
	Record(ctx context.Context, actorID *string, action, entityID, detail string) *AuditRecord
	Query(ctx context.Context, filter AuditFilter) (*AuditPage, error)
	ExportCSV(ctx context.Context, filter AuditFilter) ([]byte, error)
}

// PasswordService defines password hashing operations.
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService mints and resolves the signed session token. Resolve must fail
// closed on any signature or claim problem.
type TokenService interface {
	Issue(principal *Principal) (string, error)
	Resolve(token string) (*Principal, error)
	TTL() time.Duration
}

// NotificationService is the external delivery channel for one-time codes.
// The subsystem never implements transport itself.
type NotificationService interface {
	SendSMS(to, message string) error
	SendEmail(to, subject, body string) error
}
