package mocks

import (
	"context"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	AuthenticateFunc      func(ctx context.Context, username, password string) (*domain.PendingLogin, error)
	CompleteLoginFunc     func(ctx context.Context, principal *domain.Principal) (*domain.AuthResult, error)
	CompleteStepUpFunc    func(ctx context.Context, username string) (*domain.AuthResult, error)
	RegisterFunc          func(ctx context.Context, account *domain.Account, password string, actor *domain.Principal) (*domain.Account, error)
	UpdateAccountFunc     func(ctx context.Context, account *domain.Account, actor *domain.Principal) error
	DeactivateAccountFunc func(ctx context.Context, id uint, actor *domain.Principal) error
	ChangePasswordFunc    func(ctx context.Context, accountID uint, oldPassword, newPassword string) error
	LogoutFunc            func(ctx context.Context, sessionID string) error
	GetAccountFunc        func(ctx context.Context, id uint) (*domain.Account, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// Authenticate verifies primary credentials
func (m *MockAuthService) Authenticate(ctx context.Context, username, password string) (*domain.PendingLogin, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, username, password)
	}
	// Default behavior: student login, no step-up
	return &domain.PendingLogin{
		Principal: &domain.Principal{
			AccountID: 1,
			Username:  username,
			Role:      domain.RoleStudentGrade1,
		},
		LoginRef:       "mock_login_ref",
		StepUpRequired: false,
		Destination:    domain.RoleStudentGrade1.Destination(),
	}, nil
}

// CompleteLogin mints a session for an authenticated principal
func (m *MockAuthService) CompleteLogin(ctx context.Context, principal *domain.Principal) (*domain.AuthResult, error) {
	if m.CompleteLoginFunc != nil {
		return m.CompleteLoginFunc(ctx, principal)
	}
	return &domain.AuthResult{
		Principal:   principal,
		AccessToken: "mock_access_token",
		SessionID:   "mock_session_id",
		ExpiresIn:   900,
		Destination: principal.Role.Destination(),
	}, nil
}

// CompleteStepUp mints a session after a verified challenge
func (m *MockAuthService) CompleteStepUp(ctx context.Context, username string) (*domain.AuthResult, error) {
	if m.CompleteStepUpFunc != nil {
		return m.CompleteStepUpFunc(ctx, username)
	}
	principal := &domain.Principal{
		AccountID: 1,
		Username:  username,
		Role:      domain.RoleRegistrar,
		SessionID: "mock_session_id",
	}
	return &domain.AuthResult{
		Principal:   principal,
		AccessToken: "mock_access_token",
		SessionID:   "mock_session_id",
		ExpiresIn:   900,
		Destination: principal.Role.Destination(),
	}, nil
}

// Register provisions a new account
func (m *MockAuthService) Register(ctx context.Context, account *domain.Account, password string, actor *domain.Principal) (*domain.Account, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, account, password, actor)
	}
	created := *account
	created.ID = 1
	created.IsActive = true
	return &created, nil
}

// UpdateAccount edits an existing account
func (m *MockAuthService) UpdateAccount(ctx context.Context, account *domain.Account, actor *domain.Principal) error {
	if m.UpdateAccountFunc != nil {
		return m.UpdateAccountFunc(ctx, account, actor)
	}
	return nil
}

// DeactivateAccount marks an account inactive
func (m *MockAuthService) DeactivateAccount(ctx context.Context, id uint, actor *domain.Principal) error {
	if m.DeactivateAccountFunc != nil {
		return m.DeactivateAccountFunc(ctx, id, actor)
	}
	return nil
}

// ChangePassword rotates an account credential
func (m *MockAuthService) ChangePassword(ctx context.Context, accountID uint, oldPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, accountID, oldPassword, newPassword)
	}
	return nil
}

// Logout terminates a session
func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	return nil
}

// GetAccount retrieves an account by id
func (m *MockAuthService) GetAccount(ctx context.Context, id uint) (*domain.Account, error) {
	if m.GetAccountFunc != nil {
		return m.GetAccountFunc(ctx, id)
	}
	return &domain.Account{
		ID:       id,
		Username: "mock-user",
		Role:     domain.RoleStudentGrade1,
		IsActive: true,
	}, nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
