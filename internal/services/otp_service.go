package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

// OTPServiceImpl implements domain.OTPService. One state machine per identity
// key: Idle, Issued, then Verified, Expired or Superseded. The same machine
// backs step-up login and the password-reset flow.
type OTPServiceImpl struct {
	ledger          domain.OTPLedger
	notificationSvc domain.NotificationService
	config          OTPConfig
	now             func() time.Time
}

type OTPConfig struct {
	Length       int
	TTL          time.Duration
	MaxAttempts  int
	ResendWindow time.Duration
}

// NewOTPService creates a new OTP service
func NewOTPService(ledger domain.OTPLedger, notificationSvc domain.NotificationService, config OTPConfig) domain.OTPService {
	return &OTPServiceImpl{
		ledger:          ledger,
		notificationSvc: notificationSvc,
		config:          config,
		now:             time.Now,
	}
}

// Issue implements domain.OTPService. Any prior active code for the key is
// superseded by the upsert; the new code is the only one that verifies from
// here on. The code is recorded before delivery is attempted, so a transport
// failure surfaces as ErrDeliveryFailed while the code stays valid for a
// resend.
func (s *OTPServiceImpl) Issue(ctx context.Context, key, destination string) (*domain.OneTimeCode, error) {
	if err := s.throttle(ctx, key); err != nil {
		return nil, err
	}
	return s.issue(ctx, key, destination)
}

// Resend implements domain.OTPService. Re-sends the stored active code when
// one exists; only a missing, consumed or expired code triggers a fresh
// issue.
func (s *OTPServiceImpl) Resend(ctx context.Context, key, destination string) (*domain.OneTimeCode, error) {
	if err := s.throttle(ctx, key); err != nil {
		return nil, err
	}

	record, err := s.ledger.FindActive(ctx, key)
	if err != nil || record.Consumed || s.now().After(record.ExpiresAt) {
		return s.issue(ctx, key, destination)
	}

	if err := s.deliver(record, destination); err != nil {
		return record, err
	}
	return record, nil
}

// Verify implements domain.OTPService. Returns nil exactly once per code:
// consumption is an atomic compare-and-set on the ledger, so of two racing
// calls with the same valid code one wins and the other sees
// ErrCodeConsumed. Expiry is checked here with the server clock regardless of
// what any client countdown claims.
func (s *OTPServiceImpl) Verify(ctx context.Context, key, submitted string) error {
	attempts, err := s.ledger.IncrAttempts(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to count attempt: %w", err)
	}
	if s.config.MaxAttempts > 0 && attempts > int64(s.config.MaxAttempts) {
		if err := s.ledger.Invalidate(ctx, key); err != nil {
			return fmt.Errorf("failed to invalidate code: %w", err)
		}
		return domain.ErrCodeMaxAttempts
	}

	record, err := s.ledger.FindActive(ctx, key)
	if err != nil {
		return err
	}

	now := s.now()
	if now.After(record.ExpiresAt) {
		return domain.ErrCodeExpired
	}
	if record.Consumed {
		return domain.ErrCodeConsumed
	}
	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(submitted)) != 1 {
		return domain.ErrCodeInvalid
	}

	consumed, err := s.ledger.TryConsume(ctx, key, submitted, now)
	if err != nil {
		return fmt.Errorf("failed to consume code: %w", err)
	}
	if !consumed {
		// Lost the race: someone else spent this code first.
		return domain.ErrCodeConsumed
	}
	return nil
}

func (s *OTPServiceImpl) throttle(ctx context.Context, key string) error {
	if s.config.ResendWindow <= 0 {
		return nil
	}
	ok, err := s.ledger.TryThrottle(ctx, key, s.config.ResendWindow)
	if err != nil {
		return fmt.Errorf("failed to check resend throttle: %w", err)
	}
	if !ok {
		return domain.ErrResendThrottled
	}
	return nil
}

func (s *OTPServiceImpl) issue(ctx context.Context, key, destination string) (*domain.OneTimeCode, error) {
	code, err := s.generateSecureCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	now := s.now()
	record := &domain.OneTimeCode{
		Key:       key,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.config.TTL),
	}

	if err := s.ledger.UpsertActive(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record code: %w", err)
	}

	if err := s.deliver(record, destination); err != nil {
		return record, err
	}
	return record, nil
}

func (s *OTPServiceImpl) deliver(record *domain.OneTimeCode, destination string) error {
	message := fmt.Sprintf("Your verification code is %s. It expires in %d seconds.",
		record.Code, int(s.config.TTL.Seconds()))
	if err := s.notificationSvc.SendSMS(destination, message); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	return nil
}

// generateSecureCode generates a uniformly random numeric code.
func (s *OTPServiceImpl) generateSecureCode() (string, error) {
	length := s.config.Length
	if length <= 0 {
		length = 6
	}
	digits := make([]byte, length)
	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}
	return string(digits), nil
}
