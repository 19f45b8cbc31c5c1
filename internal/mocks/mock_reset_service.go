package mocks

import (
	"context"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// MockResetService implements domain.ResetService interface for testing
type MockResetService struct {
	RequestResetFunc  func(ctx context.Context, username string) error
	VerifyResetFunc   func(ctx context.Context, username, code string) (string, error)
	CompleteResetFunc func(ctx context.Context, grantID, newPassword string) error
}

// NewMockResetService creates a new MockResetService with default behaviors
func NewMockResetService() *MockResetService {
	return &MockResetService{}
}

// RequestReset starts the reset flow for a username
func (m *MockResetService) RequestReset(ctx context.Context, username string) error {
	if m.RequestResetFunc != nil {
		return m.RequestResetFunc(ctx, username)
	}
	// Default behavior: success
	return nil
}

// VerifyReset trades a code for a grant id
func (m *MockResetService) VerifyReset(ctx context.Context, username, code string) (string, error) {
	if m.VerifyResetFunc != nil {
		return m.VerifyResetFunc(ctx, username, code)
	}
	// Default behavior: fixed grant id
	return "mock_grant_id", nil
}

// CompleteReset spends a grant on a new password
func (m *MockResetService) CompleteReset(ctx context.Context, grantID, newPassword string) error {
	if m.CompleteResetFunc != nil {
		return m.CompleteResetFunc(ctx, grantID, newPassword)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.ResetService = (*MockResetService)(nil)
