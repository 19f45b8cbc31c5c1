package repositories

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

const (
	otpCodePrefix     = "otp:code:"
	otpAttemptsPrefix = "otp:att:"
	otpResendPrefix   = "otp:res:"

	// Consumed and expired records linger past the code window so Verify can
	// answer AlreadyConsumed or Expired instead of NotFound.
	otpRecordRetention = time.Hour

	consumeRetries = 4
)

var errConsumePrecondition = errors.New("otp consume precondition failed")

// OTPRepositoryImpl implements domain.OTPLedger using Redis. One record per
// identity key; UpsertActive overwrites, which is what supersedes a prior
// active code.
type OTPRepositoryImpl struct {
	client *redis.Client
}

// NewOTPRepository creates a new Redis-backed OTP ledger
func NewOTPRepository(client *redis.Client) domain.OTPLedger {
	return &OTPRepositoryImpl{client: client}
}

func (r *OTPRepositoryImpl) codeKey(key string) string     { return otpCodePrefix + key }
func (r *OTPRepositoryImpl) attemptsKey(key string) string { return otpAttemptsPrefix + key }
func (r *OTPRepositoryImpl) resendKey(key string) string   { return otpResendPrefix + key }

// UpsertActive implements domain.OTPLedger
func (r *OTPRepositoryImpl) UpsertActive(ctx context.Context, code *domain.OneTimeCode) error {
	data, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("failed to marshal one-time code: %w", err)
	}

	ttl := time.Until(code.ExpiresAt) + otpRecordRetention
	if err := r.client.Set(ctx, r.codeKey(code.Key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store one-time code: %w", err)
	}
	// Fresh code, fresh attempt budget.
	if err := r.client.Set(ctx, r.attemptsKey(code.Key), 0, ttl).Err(); err != nil {
		return fmt.Errorf("failed to reset attempts counter: %w", err)
	}
	return nil
}

// FindActive implements domain.OTPLedger
func (r *OTPRepositoryImpl) FindActive(ctx context.Context, key string) (*domain.OneTimeCode, error) {
	data, err := r.client.Get(ctx, r.codeKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to read one-time code: %w", err)
	}

	var code domain.OneTimeCode
	if err := json.Unmarshal(data, &code); err != nil {
		return nil, fmt.Errorf("failed to unmarshal one-time code: %w", err)
	}
	return &code, nil
}

// TryConsume implements domain.OTPLedger. The read-check-write runs inside a
// WATCH transaction so two racing verifies of the same valid code observe
// exactly one success. Returns false without error when the precondition
// fails (already consumed, expired, mismatch, or lost race).
func (r *OTPRepositoryImpl) TryConsume(ctx context.Context, key, code string, now time.Time) (bool, error) {
	redisKey := r.codeKey(key)

	for i := 0; i < consumeRetries; i++ {
		var consumed bool

		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, redisKey).Bytes()
			if err != nil {
				return err
			}

			var record domain.OneTimeCode
			if err := json.Unmarshal(data, &record); err != nil {
				return err
			}

			if record.Consumed || now.After(record.ExpiresAt) {
				return errConsumePrecondition
			}
			if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
				return errConsumePrecondition
			}

			record.Consumed = true
			updated, err := json.Marshal(&record)
			if err != nil {
				return err
			}

			ttl, err := tx.TTL(ctx, redisKey).Result()
			if err != nil || ttl < 0 {
				ttl = otpRecordRetention
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, redisKey, updated, ttl)
				return nil
			})
			if err != nil {
				return err
			}

			consumed = true
			return nil
		}, redisKey)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, errConsumePrecondition) {
				return false, nil
			}
			return false, fmt.Errorf("failed to consume one-time code: %w", err)
		}
		return consumed, nil
	}

	// Retries exhausted under contention; the winner already consumed it.
	return false, nil
}

// IncrAttempts implements domain.OTPLedger
func (r *OTPRepositoryImpl) IncrAttempts(ctx context.Context, key string) (int64, error) {
	attempts, err := r.client.Incr(ctx, r.attemptsKey(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}
	return attempts, nil
}

// Invalidate implements domain.OTPLedger
func (r *OTPRepositoryImpl) Invalidate(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.codeKey(key), r.attemptsKey(key)).Err()
}

// TryThrottle implements domain.OTPLedger. SetNX gives exactly one winner per
// window.
func (r *OTPRepositoryImpl) TryThrottle(ctx context.Context, key string, window time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.resendKey(key), 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set resend throttle: %w", err)
	}
	return ok, nil
}
