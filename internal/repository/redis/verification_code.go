package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"

	goredis "github.com/redis/go-redis/v9"
)

const (
	// DefaultCodeTTL is how long a password reset code stays valid.
	DefaultCodeTTL = 10 * time.Minute
	// MaxCodeAttempts wrong guesses discard the code.
	MaxCodeAttempts = 5
)

type verificationCodeStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewClient creates a Redis client from connection settings.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewVerificationCodeStore(client *goredis.Client, ttl time.Duration) repository.VerificationCodeStore {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &verificationCodeStore{client: client, ttl: ttl}
}

func codeKey(email string) string {
	return "verification_code:" + strings.ToLower(strings.TrimSpace(email))
}

func attemptsKey(email string) string {
	return "verification_attempts:" + strings.ToLower(strings.TrimSpace(email))
}

// Save stores code for email and resets its wrong-guess counter. Both keys
// share the same expiry.
func (s *verificationCodeStore) Save(ctx context.Context, email, code string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, codeKey(email), code, s.ttl)
		pipe.Set(ctx, attemptsKey(email), 0, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	return nil
}

// Consume takes the stored code with GETDEL, so at most one caller can
// match it. A wrong guess puts the code back for its remaining lifetime
// until MaxCodeAttempts wrong guesses have been made.
func (s *verificationCodeStore) Consume(ctx context.Context, email, code string) (bool, error) {
	key, counter := codeKey(email), attemptsKey(email)
	stored, err := s.client.GetDel(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read verification code: %w", err)
	}
	if stored == code {
		if err := s.client.Del(ctx, counter).Err(); err != nil {
			logger.Warn("Failed to clear verification attempts", "error", err)
		}
		return true, nil
	}

	attempts, err := s.client.Incr(ctx, counter).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count verification attempt: %w", err)
	}
	if attempts >= MaxCodeAttempts {
		logger.Warn("Verification code discarded after repeated wrong guesses", "attempts", attempts)
		return false, s.client.Del(ctx, counter).Err()
	}
	remaining, err := s.client.PTTL(ctx, counter).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read verification code expiry: %w", err)
	}
	if remaining <= 0 {
		return false, s.client.Del(ctx, counter).Err()
	}
	// NX keeps a code issued in the meantime.
	if err := s.client.SetNX(ctx, key, stored, remaining).Err(); err != nil {
		return false, fmt.Errorf("failed to restore verification code: %w", err)
	}
	return false, nil
}
