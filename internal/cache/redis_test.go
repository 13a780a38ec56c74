package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func stubRedisConnect(t *testing.T, pingErr error) *string {
	t.Helper()

	origNewClient := newRedisClient
	origPing := pingRedis
	t.Cleanup(func() {
		newRedisClient = origNewClient
		pingRedis = origPing
	})

	var capturedAddr string
	newRedisClient = func(opts *redis.Options) *redis.Client {
		capturedAddr = opts.Addr
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return pingErr
	}
	return &capturedAddr
}

func TestNewRedisClientWithCustomAddr(t *testing.T) {
	addr := stubRedisConnect(t, nil)

	client, err := NewRedisClient(context.Background(), "redis:9999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()
	if *addr != "redis:9999" {
		t.Fatalf("expected custom addr, got %s", *addr)
	}
}

func TestNewRedisClientDefaults(t *testing.T) {
	addr := stubRedisConnect(t, nil)

	client, err := NewRedisClient(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()
	if *addr != "localhost:6379" {
		t.Fatalf("expected default addr, got %s", *addr)
	}
}

func TestNewRedisClientParsesURL(t *testing.T) {
	addr := stubRedisConnect(t, nil)

	client, err := NewRedisClient(context.Background(), "redis://:secret@cache.internal:6380/2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()
	if *addr != "cache.internal:6380" {
		t.Fatalf("expected parsed addr, got %s", *addr)
	}
	if client.Options().DB != 2 || client.Options().Password != "secret" {
		t.Fatalf("unexpected parsed options: %+v", client.Options())
	}
}

func TestNewRedisClientPingFailure(t *testing.T) {
	stubRedisConnect(t, errors.New("connection refused"))

	_, err := NewRedisClient(context.Background(), "redis:9999")
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestNewRedisClientBadURL(t *testing.T) {
	stubRedisConnect(t, nil)

	if _, err := NewRedisClient(context.Background(), "redis://host:notaport/x/y"); err == nil {
		t.Fatal("expected parse error")
	}
}

type fakeRedis struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	store := NewRedisStore(fake)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "coinhub:trending"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "coinhub:trending", []byte(`{"coins":[]}`), 5*time.Minute); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	if fake.ttls["coinhub:trending"] != 5*time.Minute {
		t.Fatalf("ttl not forwarded: %v", fake.ttls["coinhub:trending"])
	}
	got, ok, err := store.Get(ctx, "coinhub:trending")
	if err != nil || !ok || string(got) != `{"coins":[]}` {
		t.Fatalf("unexpected get: %q ok=%v err=%v", got, ok, err)
	}
}

func TestRedisStoreErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.getErr = errors.New("read timeout")
	fake.setErr = errors.New("OOM command not allowed")
	store := NewRedisStore(fake)

	if _, ok, err := store.Get(context.Background(), "k"); ok || err == nil {
		t.Fatalf("expected backend error, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(context.Background(), "k", []byte("v"), time.Second); err == nil {
		t.Fatal("expected set error")
	}
}
