package mocks

import (
	"fmt"
	"time"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	IssueFunc   func(principal *domain.Principal) (string, error)
	ResolveFunc func(token string) (*domain.Principal, error)
	TTLFunc     func() time.Duration
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// Issue mints a signed token for the principal
func (m *MockTokenService) Issue(principal *domain.Principal) (string, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(principal)
	}
	// Default behavior: return a mock token
	return fmt.Sprintf("token_account_%d_%s", principal.AccountID, principal.SessionID), nil
}

// Resolve validates a token and rebuilds the principal
func (m *MockTokenService) Resolve(token string) (*domain.Principal, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(token)
	}
	// Default behavior: reject empty, accept anything else
	if token == "" {
		return nil, domain.ErrSessionInvalid
	}
	return &domain.Principal{
		AccountID: 1,
		Username:  "mock-user",
		Role:      domain.RoleStudentGrade1,
		SessionID: "mock_session_id",
	}, nil
}

// TTL reports the configured token lifetime
func (m *MockTokenService) TTL() time.Duration {
	if m.TTLFunc != nil {
		return m.TTLFunc()
	}
	return 15 * time.Minute
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
