package mocks

import (
	"context"
	"time"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	IssueFunc  func(ctx context.Context, key, destination string) (*domain.OneTimeCode, error)
	ResendFunc func(ctx context.Context, key, destination string) (*domain.OneTimeCode, error)
	VerifyFunc func(ctx context.Context, key, submitted string) error
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Issue issues a fresh challenge for the key
func (m *MockOTPService) Issue(ctx context.Context, key, destination string) (*domain.OneTimeCode, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, key, destination)
	}
	// Default behavior: fixed code for testing
	return &domain.OneTimeCode{
		Key:       key,
		Code:      "123456",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}, nil
}

// Resend re-delivers or reissues the active challenge
func (m *MockOTPService) Resend(ctx context.Context, key, destination string) (*domain.OneTimeCode, error) {
	if m.ResendFunc != nil {
		return m.ResendFunc(ctx, key, destination)
	}
	return &domain.OneTimeCode{
		Key:       key,
		Code:      "123456",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}, nil
}

// Verify checks a submitted code against the active challenge
func (m *MockOTPService) Verify(ctx context.Context, key, submitted string) error {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, key, submitted)
	}
	// Default behavior: accept "123456"
	if submitted != "123456" {
		return domain.ErrCodeInvalid
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)
