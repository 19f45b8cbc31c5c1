package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/teamparagoncapstone/lms-authsvc/domain"
)

const resetGrantPrefix = "reset:grant:"

// ResetGrantRepositoryImpl implements domain.ResetGrantStore using Redis.
// Grants are single use: Consume deletes the row in the same transaction that
// reads it.
type ResetGrantRepositoryImpl struct {
	client *redis.Client
}

// NewResetGrantRepository creates a new Redis-backed reset grant store
func NewResetGrantRepository(client *redis.Client) domain.ResetGrantStore {
	return &ResetGrantRepositoryImpl{client: client}
}

func (r *ResetGrantRepositoryImpl) key(grantID string) string {
	return resetGrantPrefix + grantID
}

// Save implements domain.ResetGrantStore
func (r *ResetGrantRepositoryImpl) Save(ctx context.Context, grant *domain.ResetGrant, ttl time.Duration) error {
	data, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("failed to marshal reset grant: %w", err)
	}
	if err := r.client.Set(ctx, r.key(grant.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store reset grant: %w", err)
	}
	return nil
}

// Consume implements domain.ResetGrantStore. Read and delete run in a WATCH
// transaction, so two racing completions spend the grant exactly once.
func (r *ResetGrantRepositoryImpl) Consume(ctx context.Context, grantID string) (*domain.ResetGrant, error) {
	redisKey := r.key(grantID)

	for i := 0; i < consumeRetries; i++ {
		var grant *domain.ResetGrant

		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, redisKey).Bytes()
			if err != nil {
				return err
			}

			var decoded domain.ResetGrant
			if err := json.Unmarshal(data, &decoded); err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, redisKey)
				return nil
			})
			if err != nil {
				return err
			}

			grant = &decoded
			return nil
		}, redisKey)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, domain.ErrResetGrantNotFound
			}
			return nil, fmt.Errorf("failed to consume reset grant: %w", err)
		}

		if time.Now().After(grant.ExpiresAt) {
			return nil, domain.ErrResetGrantExpired
		}
		return grant, nil
	}

	return nil, domain.ErrResetGrantNotFound
}
