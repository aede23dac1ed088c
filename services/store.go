package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"popularchoice/models"

	"github.com/redis/go-redis/v9"
)

// SessionStore is the document store for sessions, one document per game
// code. Last write wins; per-code serialization is the controller's job.
type SessionStore interface {
	FindByCode(ctx context.Context, code string) (*models.Session, error)
	Insert(ctx context.Context, session *models.Session) error
	Save(ctx context.Context, session *models.Session) error
}

type RedisSessionStore struct {
	redis *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{redis: client}
}

func sessionKey(code string) string {
	return "session:" + strings.ToUpper(code)
}

func (s *RedisSessionStore) FindByCode(ctx context.Context, code string) (*models.Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(code)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session %s: %w", code, err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", code, err)
	}

	return &session, nil
}

func (s *RedisSessionStore) Insert(ctx context.Context, session *models.Session) error {
	return s.write(ctx, session)
}

func (s *RedisSessionStore) Save(ctx context.Context, session *models.Session) error {
	return s.write(ctx, session)
}

func (s *RedisSessionStore) write(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Sessions are never deleted by the game itself, so no expiration
	if err := s.redis.Set(ctx, sessionKey(session.Code), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store session %s: %w", session.Code, err)
	}

	log.Printf("Stored session %s: phase=%s", session.Code, session.Phase)
	return nil
}
