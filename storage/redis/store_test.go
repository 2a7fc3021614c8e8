package redis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/authlete/authlete-go-samples/instrumentation"
	"github.com/authlete/authlete-go-samples/storage"
)

func newTestStore(t *testing.T, cfg Config) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	s := NewWithClient(client, cfg)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestStore_SaveAndGetProfile(t *testing.T) {
	s, mr := newTestStore(t, Config{})
	ctx := context.Background()

	profile := &storage.Profile{
		Subject:   "alice",
		Claims:    map[string]any{"given_name": "Alice", "address": map[string]any{"formatted": "Oxford"}},
		UpdatedAt: time.Date(2014, time.May, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	if !mr.Exists(DefaultKeyPrefix + "alice") {
		t.Fatalf("key %q not written", DefaultKeyPrefix+"alice")
	}

	got, err := s.GetProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if diff := cmp.Diff(profile, got); diff != "" {
		t.Errorf("GetProfile() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_GetProfile_NotFound(t *testing.T) {
	s, _ := newTestStore(t, Config{})

	_, err := s.GetProfile(context.Background(), "nobody")
	if !errors.Is(err, storage.ErrProfileNotFound) {
		t.Errorf("GetProfile() error = %v, want ErrProfileNotFound", err)
	}
}

func TestStore_GetProfile_CorruptData(t *testing.T) {
	s, mr := newTestStore(t, Config{})
	if err := mr.Set(DefaultKeyPrefix+"alice", "{not json"); err != nil {
		t.Fatalf("miniredis Set() error = %v", err)
	}

	_, err := s.GetProfile(context.Background(), "alice")
	if err == nil || errors.Is(err, storage.ErrProfileNotFound) {
		t.Errorf("GetProfile() error = %v, want unmarshal error", err)
	}
}

func TestStore_KeyPrefixAndTTL(t *testing.T) {
	s, mr := newTestStore(t, Config{KeyPrefix: "test:", TTL: time.Hour})

	if err := s.SaveProfile(context.Background(), &storage.Profile{Subject: "bob"}); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	if got := mr.TTL("test:bob"); got != time.Hour {
		t.Errorf("TTL = %v, want 1h", got)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := s.GetProfile(context.Background(), "bob"); !errors.Is(err, storage.ErrProfileNotFound) {
		t.Errorf("GetProfile() after expiry error = %v", err)
	}
}

func TestStore_SaveProfile_Invalid(t *testing.T) {
	s, _ := newTestStore(t, Config{})
	ctx := context.Background()

	if err := s.SaveProfile(ctx, nil); err == nil {
		t.Error("SaveProfile(nil) should return error")
	}
	if err := s.SaveProfile(ctx, &storage.Profile{}); err == nil {
		t.Error("SaveProfile() with empty subject should return error")
	}

	huge := &storage.Profile{Subject: "alice", Claims: map[string]any{"name": strings.Repeat("x", MaxProfileDataSize)}}
	if err := s.SaveProfile(ctx, huge); !errors.Is(err, errProfileTooLarge) {
		t.Errorf("SaveProfile(huge) error = %v, want errProfileTooLarge", err)
	}
}

func TestStore_DeleteProfile(t *testing.T) {
	s, _ := newTestStore(t, Config{})
	ctx := context.Background()

	if err := s.Seed(ctx, []*storage.Profile{{Subject: "alice"}, {Subject: "bob"}}); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if err := s.DeleteProfile(ctx, "alice"); err != nil {
		t.Fatalf("DeleteProfile() error = %v", err)
	}
	if err := s.DeleteProfile(ctx, "alice"); !errors.Is(err, storage.ErrProfileNotFound) {
		t.Errorf("second DeleteProfile() error = %v, want ErrProfileNotFound", err)
	}
	if _, err := s.GetProfile(ctx, "bob"); err != nil {
		t.Errorf("GetProfile(bob) error = %v", err)
	}
}

func TestStore_Unavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error = %v", err)
	}
	s := NewWithClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1}), Config{})
	defer func() { _ = s.Close() }()
	mr.Close()

	_, err = s.GetProfile(context.Background(), "alice")
	if err == nil || errors.Is(err, storage.ErrProfileNotFound) {
		t.Errorf("GetProfile() error = %v, want connection error", err)
	}
	if err := s.Ping(context.Background()); err == nil {
		t.Error("Ping() should fail when redis is down")
	}
}

func TestNewFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewFromURL(context.Background(), "redis://"+mr.Addr()+"/0", Config{})
	if err != nil {
		t.Fatalf("NewFromURL() error = %v", err)
	}
	defer func() { _ = s.Close() }()

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	if _, err := NewFromURL(context.Background(), "", Config{}); err == nil {
		t.Error("NewFromURL(\"\") should return error")
	}
	if _, err := NewFromURL(context.Background(), "http://example.com", Config{}); err == nil {
		t.Error("NewFromURL(http) should return error")
	}
}

func TestStore_WithInstrumentation(t *testing.T) {
	inst, err := instrumentation.New(instrumentation.Config{Enabled: true})
	if err != nil {
		t.Fatalf("instrumentation.New() error = %v", err)
	}
	defer func() { _ = inst.Shutdown(context.Background()) }()

	s, _ := newTestStore(t, Config{})
	s.SetInstrumentation(inst)

	if err := s.SaveProfile(context.Background(), &storage.Profile{Subject: "alice"}); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	if _, err := s.GetProfile(context.Background(), "alice"); err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
}

func TestStore_StorageSpans(t *testing.T) {
	inst, err := instrumentation.New(instrumentation.Config{Enabled: true})
	if err != nil {
		t.Fatalf("instrumentation.New() error = %v", err)
	}
	t.Cleanup(func() { _ = inst.Shutdown(context.Background()) })

	recorder := tracetest.NewSpanRecorder()
	inst.TracerProvider().(*sdktrace.TracerProvider).RegisterSpanProcessor(recorder)

	store, _ := newTestStore(t, Config{})
	store.SetInstrumentation(inst)

	if _, err := store.GetProfile(context.Background(), "nobody"); !errors.Is(err, storage.ErrProfileNotFound) {
		t.Fatalf("GetProfile() error = %v, want ErrProfileNotFound", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if spans[0].Name() != "storage.get_profile" {
		t.Errorf("span name = %q, want storage.get_profile", spans[0].Name())
	}

	got := map[attribute.Key]string{}
	for _, kv := range spans[0].Attributes() {
		got[kv.Key] = kv.Value.Emit()
	}
	want := map[attribute.Key]string{
		instrumentation.AttrStorageOperation: "get_profile",
		instrumentation.AttrStorageType:      "redis",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("span attributes mismatch (-want +got):\n%s", diff)
	}
}
