package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps bearer tokens in redis with a sliding expiry.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

// Issue creates a session for the user and returns its bearer token.
func (s *SessionStore) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("auth: generate token: %w", err)
	}
	token := hex.EncodeToString(raw)

	if err := s.client.Set(ctx, sessionKey(token), userID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("auth: store session: %w", err)
	}
	return token, nil
}

// Resolve maps a bearer token back to its user id and refreshes the expiry.
func (s *SessionStore) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrSessionNotFound
	}
	value, err := s.client.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrSessionNotFound
		}
		return uuid.Nil, fmt.Errorf("auth: resolve session: %w", err)
	}
	userID, err := uuid.Parse(value)
	if err != nil {
		// Corrupt payload. Drop the session rather than serving it.
		_ = s.client.Del(ctx, sessionKey(token)).Err()
		return uuid.Nil, ErrSessionNotFound
	}
	_ = s.client.Expire(ctx, sessionKey(token), s.ttl).Err()
	return userID, nil
}

// Revoke deletes a session. Unknown tokens are not an error.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.client.Del(ctx, sessionKey(token)).Err()
}
