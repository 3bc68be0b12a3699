package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/wasilonline/nova-checkout/pkg/errors"
)

// SessionStore persists checkout session state.
type SessionStore interface {
	Save(ctx context.Context, state *CheckoutState) error
	Load(ctx context.Context, sessionID string) (*CheckoutState, error)
	Delete(ctx context.Context, sessionID string) error
}

type sessionCommands interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionKey(sessionID string) string
}

type redisStore struct {
	client sessionCommands
	ttl    time.Duration
}

// NewRedisStore builds a session store writing JSON blobs with the configured TTL.
func NewRedisStore(client sessionCommands, ttl time.Duration) (SessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &redisStore{client: client, ttl: ttl}, nil
}

func (s *redisStore) Save(ctx context.Context, state *CheckoutState) error {
	if state == nil || state.SessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	state.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal checkout session")
	}
	if err := s.client.Set(ctx, s.client.SessionKey(state.SessionID), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store checkout session")
	}
	return nil
}

func (s *redisStore) Load(ctx context.Context, sessionID string) (*CheckoutState, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	raw, err := s.client.Get(ctx, s.client.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}
	var state CheckoutState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode checkout session")
	}
	return &state, nil
}

func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if err := s.client.Del(ctx, s.client.SessionKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete checkout session")
	}
	return nil
}
