package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// ResetServiceImpl implements domain.ResetService. The reset flow rides the
// same OTP state machine as step-up login; a verified code is traded for a
// short-lived, single-use grant that is the only way to set a new password
// without knowing the old one.
type ResetServiceImpl struct {
	accountRepo domain.AccountRepository
	otpSvc      domain.OTPService
	grants      domain.ResetGrantStore
	passwordSvc domain.PasswordService
	auditSvc    domain.AuditService
	grantTTL    time.Duration
}

// NewResetService creates a new password reset service
func NewResetService(
	accountRepo domain.AccountRepository,
	otpSvc domain.OTPService,
	grants domain.ResetGrantStore,
	passwordSvc domain.PasswordService,
	auditSvc domain.AuditService,
	grantTTL time.Duration,
) domain.ResetService {
	return &ResetServiceImpl{
		accountRepo: accountRepo,
		otpSvc:      otpSvc,
		grants:      grants,
		passwordSvc: passwordSvc,
		auditSvc:    auditSvc,
		grantTTL:    grantTTL,
	}
}

// RequestReset implements domain.ResetService. Succeeds whether or not the
// username exists: a code is only issued for real accounts, but the caller
// cannot tell the difference. The request itself is audited as a system
// action either way.
func (s *ResetServiceImpl) RequestReset(ctx context.Context, username string) error {
	s.auditSvc.Record(ctx, nil, domain.ActionResetRequested, "account:"+username, "reset requested for "+username)

	account, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil
	}

	if _, err := s.otpSvc.Issue(ctx, username, resetDestination(account)); err != nil {
		// Throttled or undeliverable; the requester still learns nothing
		// about account existence.
		return nil
	}
	return nil
}

// VerifyReset implements domain.ResetService. A correct, live code yields the
// grant id the client must present to CompleteReset.
func (s *ResetServiceImpl) VerifyReset(ctx context.Context, username, code string) (string, error) {
	if err := s.otpSvc.Verify(ctx, username, code); err != nil {
		return "", err
	}

	grant := &domain.ResetGrant{
		ID:        uuid.NewString(),
		Username:  username,
		ExpiresAt: time.Now().Add(s.grantTTL),
	}
	if err := s.grants.Save(ctx, grant, s.grantTTL); err != nil {
		return "", fmt.Errorf("failed to save reset grant: %w", err)
	}
	return grant.ID, nil
}

// CompleteReset implements domain.ResetService. The grant is consumed
// atomically, so a replayed completion fails even if it races the first one.
func (s *ResetServiceImpl) CompleteReset(ctx context.Context, grantID, newPassword string) error {
	grant, err := s.grants.Consume(ctx, grantID)
	if err != nil {
		return err
	}

	account, err := s.accountRepo.FindByUsername(ctx, grant.Username)
	if err != nil {
		return err
	}

	hashed, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// The hash lives on the account row and nowhere else.
	if err := s.accountRepo.UpdatePasswordHash(ctx, account.ID, hashed); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	actor := actorRef(account.ID)
	s.auditSvc.Record(ctx, &actor, domain.ActionResetCompleted, accountEntity(account.ID),
		account.Username+" completed password reset")
	return nil
}

func resetDestination(account *domain.Account) string {
	return account.Phone
}
