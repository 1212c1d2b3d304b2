package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// ResetTokenStore remembers outstanding password-reset tokens by jti so each
// one can be redeemed exactly once.
type ResetTokenStore struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewResetTokenStore(client *redisv9.Client, ttl time.Duration) *ResetTokenStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ResetTokenStore{client: client, ttl: ttl}
}

// Save records jti for email until the reset window closes.
func (s *ResetTokenStore) Save(ctx context.Context, jti, email string) error {
	if err := s.client.Set(ctx, s.key(jti), strings.ToLower(email), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis save reset token failed: %w", err)
	}
	return nil
}

// Consume atomically removes jti and returns the email it was issued for.
// ok is false when the token was never issued, already used or expired.
func (s *ResetTokenStore) Consume(ctx context.Context, jti string) (email string, ok bool, err error) {
	email, err = s.client.GetDel(ctx, s.key(jti)).Result()
	if errors.Is(err, redisv9.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis consume reset token failed: %w", err)
	}
	return email, true, nil
}

func (s *ResetTokenStore) key(jti string) string {
	return fmt.Sprintf("auth:reset:%s", jti)
}
