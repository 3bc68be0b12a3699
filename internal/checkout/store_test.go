package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/wasilonline/nova-checkout/pkg/errors"
)

type stubSessionCommands struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newStubSessionCommands() *stubSessionCommands {
	return &stubSessionCommands{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubSessionCommands) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	switch v := value.(type) {
	case []byte:
		s.data[key] = string(v)
	case string:
		s.data[key] = v
	}
	s.ttls[key] = ttl
	return nil
}

func (s *stubSessionCommands) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.data[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *stubSessionCommands) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *stubSessionCommands) SessionKey(sessionID string) string {
	return "nova:checkout_session:" + sessionID
}

func TestRedisStoreRoundTrip(t *testing.T) {
	cmds := newStubSessionCommands()
	store, err := NewRedisStore(cmds, time.Hour)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	state := &CheckoutState{
		SessionID:         "sess-1",
		Step:              StepShipping,
		Cart:              twoVendorCart(),
		ShippingSelection: map[string]string{"v1": "express"},
	}
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := cmds.ttls[cmds.SessionKey("sess-1")]; ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h", ttl)
	}

	loaded, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Step != StepShipping || len(loaded.Cart) != 2 {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded.ShippingSelection["v1"] != "express" {
		t.Fatalf("selection = %v", loaded.ShippingSelection)
	}
}

func TestRedisStoreMissingSession(t *testing.T) {
	store, err := NewRedisStore(newStubSessionCommands(), time.Hour)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	_, err = store.Load(context.Background(), "ghost")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRedisStoreDelete(t *testing.T) {
	cmds := newStubSessionCommands()
	store, err := NewRedisStore(cmds, time.Hour)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	state := &CheckoutState{SessionID: "sess-2", Step: StepCart}
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "sess-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "sess-2"); err == nil {
		t.Fatal("expected session to be gone")
	}
}
