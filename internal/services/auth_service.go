package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	accountRepo domain.AccountRepository
	sessionRepo domain.SessionRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	auditSvc    domain.AuditService
}

// NewAuthService creates a new auth service
func NewAuthService(
	accountRepo domain.AccountRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	auditSvc domain.AuditService,
) domain.AuthService {
	return &AuthServiceImpl{
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		auditSvc:    auditSvc,
	}
}

// Authenticate implements domain.AuthService. Missing username and wrong
// password both burn one hash comparison and return the same sentinel, so
// neither the error nor the latency reveals whether the account exists.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, username, password string) (*domain.PendingLogin, error) {
	account, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		s.passwordSvc.Verify("", password)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.passwordSvc.Verify(account.PasswordHash, password) {
		s.auditSvc.Record(ctx, nil, domain.ActionLoginFailed, accountEntity(account.ID), "wrong password for "+account.Username)
		return nil, domain.ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, domain.ErrAccountInactive
	}

	principal := principalFor(account)
	return &domain.PendingLogin{
		Principal:      principal,
		LoginRef:       uuid.NewString(),
		StepUpRequired: account.Role.RequiresStepUp(),
		Contact:        account.Phone,
		Destination:    account.Role.Destination(),
	}, nil
}

// CompleteLogin implements domain.AuthService. Mints the session row and the
// signed token; callers invoke it directly for students and only after a
// verified step-up for every other role.
func (s *AuthServiceImpl) CompleteLogin(ctx context.Context, principal *domain.Principal) (*domain.AuthResult, error) {
	session := &domain.Session{
		ID:        "sess_" + uuid.NewString(),
		AccountID: principal.AccountID,
		ExpiresAt: time.Now().Add(s.tokenSvc.TTL()),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	principal.SessionID = session.ID
	accessToken, err := s.tokenSvc.Issue(principal)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	actor := actorRef(principal.AccountID)
	s.auditSvc.Record(ctx, &actor, domain.ActionLogin, accountEntity(principal.AccountID), principal.Username+" signed in")

	return &domain.AuthResult{
		Principal:   principal,
		AccessToken: accessToken,
		SessionID:   session.ID,
		ExpiresIn:   int64(s.tokenSvc.TTL().Seconds()),
		Destination: principal.Role.Destination(),
	}, nil
}

// CompleteStepUp implements domain.AuthService. Called after the OTP verifier
// has accepted the challenge for this username; possession of the code is the
// proof, so the account is re-read and the session minted from it.
func (s *AuthServiceImpl) CompleteStepUp(ctx context.Context, username string) (*domain.AuthResult, error) {
	account, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, domain.ErrAccountInactive
	}
	return s.CompleteLogin(ctx, principalFor(account))
}

// Register implements domain.AuthService
func (s *AuthServiceImpl) Register(ctx context.Context, account *domain.Account, password string, actor *domain.Principal) (*domain.Account, error) {
	if !account.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	existing, err := s.accountRepo.FindByUsername(ctx, account.Username)
	if err == nil && existing != nil {
		return nil, domain.ErrAccountExists
	}

	hashed, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account.PasswordHash = hashed
	account.IsActive = true

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.auditSvc.Record(ctx, principalActor(actor), domain.ActionCreateAccount, accountEntity(account.ID),
		"provisioned "+account.Username+" as "+string(account.Role))

	return account, nil
}

// UpdateAccount implements domain.AuthService. Credential material is not
// touched here; ChangePassword and the reset flow own the hash.
func (s *AuthServiceImpl) UpdateAccount(ctx context.Context, account *domain.Account, actor *domain.Principal) error {
	existing, err := s.accountRepo.FindByID(ctx, account.ID)
	if err != nil {
		return err
	}
	if account.Role != "" && !account.Role.Valid() {
		return domain.ErrInvalidRole
	}

	account.PasswordHash = existing.PasswordHash
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	s.auditSvc.Record(ctx, principalActor(actor), domain.ActionUpdateAccount, accountEntity(account.ID),
		"edited "+existing.Username)
	return nil
}

// DeactivateAccount implements domain.AuthService. Soft only: the row stays
// because audit records reference it weakly.
func (s *AuthServiceImpl) DeactivateAccount(ctx context.Context, id uint, actor *domain.Principal) error {
	existing, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.accountRepo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	s.auditSvc.Record(ctx, principalActor(actor), domain.ActionDeactivateAccount, accountEntity(id),
		"deactivated "+existing.Username)
	return nil
}

// ChangePassword implements domain.AuthService
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, accountID uint, oldPassword, newPassword string) error {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !s.passwordSvc.Verify(account.PasswordHash, oldPassword) {
		return domain.ErrInvalidCredentials
	}

	hashed, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accountRepo.UpdatePasswordHash(ctx, accountID, hashed); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	actor := actorRef(accountID)
	s.auditSvc.Record(ctx, &actor, domain.ActionChangePassword, accountEntity(accountID),
		account.Username+" changed password")
	return nil
}

// Logout implements domain.AuthService
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Delete(ctx, sessionID)
}

// GetAccount implements domain.AuthService
func (s *AuthServiceImpl) GetAccount(ctx context.Context, id uint) (*domain.Account, error) {
	return s.accountRepo.FindByID(ctx, id)
}

func principalFor(account *domain.Account) *domain.Principal {
	return &domain.Principal{
		AccountID:  account.ID,
		Username:   account.Username,
		Role:       account.Role,
		ProfileID:  account.ProfileID,
		GradeLevel: account.GradeLevel,
	}
}

func principalActor(actor *domain.Principal) *string {
	if actor == nil {
		return nil
	}
	ref := actorRef(actor.AccountID)
	return &ref
}

func actorRef(accountID uint) string {
	return fmt.Sprintf("%d", accountID)
}

func accountEntity(accountID uint) string {
	return fmt.Sprintf("account:%d", accountID)
}
