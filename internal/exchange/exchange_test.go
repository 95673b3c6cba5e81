package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newRatesServer(t *testing.T, body string, status int) (*httptest.Server, *int32) {
	t.Helper()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestRate_FetchesAndCaches(t *testing.T) {
	srv, hits := newRatesServer(t, `{"result":"success","base_code":"USD","rates":{"USD":1,"UYU":40.25,"ARS":950}}`, http.StatusOK)
	client := NewClient(srv.URL, time.Hour, srv.Client(), nil)

	for i := 0; i < 3; i++ {
		rate, err := client.Rate(context.Background(), "uyu")
		if err != nil {
			t.Fatalf("Rate: %v", err)
		}
		if rate != 40.25 {
			t.Fatalf("rate = %v, want 40.25", rate)
		}
	}
	if got := atomic.LoadInt32(hits); got != 1 {
		t.Fatalf("expected 1 upstream request, got %d", got)
	}

	if _, err := client.Rate(context.Background(), "ARS"); err != nil {
		t.Fatalf("Rate(ARS): %v", err)
	}
	if got := atomic.LoadInt32(hits); got != 2 {
		t.Fatalf("expected 2 upstream requests, got %d", got)
	}
}

func TestRate_USDNeedsNoLookup(t *testing.T) {
	srv, hits := newRatesServer(t, `{}`, http.StatusOK)
	client := NewClient(srv.URL, 0, srv.Client(), nil)

	rate, err := client.Rate(context.Background(), "USD")
	if err != nil || rate != 1 {
		t.Fatalf("Rate(USD) = %v, %v", rate, err)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Fatalf("expected no upstream request for USD")
	}
}

func TestRate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"upstream failure", `{"result":"error"}`, http.StatusInternalServerError, "UYU"},
		{"result not success", `{"result":"error","rates":{"UYU":40}}`, http.StatusOK, "UYU"},
		{"missing currency", `{"result":"success","rates":{"ARS":950}}`, http.StatusOK, "UYU"},
		{"malformed body", `{"result":`, http.StatusOK, "UYU"},
		{"empty code", `{"result":"success","rates":{"ARS":950}}`, http.StatusOK, " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newRatesServer(t, tt.body, tt.status)
			client := NewClient(srv.URL, time.Hour, srv.Client(), nil)
			if _, err := client.Rate(context.Background(), tt.code); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestMemoryCache_Expires(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	ctx := context.Background()
	if err := cache.Set(ctx, "UYU", 39.9, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if rate, ok, _ := cache.Get(ctx, "UYU"); !ok || rate != 39.9 {
		t.Fatalf("Get before expiry = %v, %v", rate, ok)
	}

	now = now.Add(time.Minute)
	if _, ok, _ := cache.Get(ctx, "UYU"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestRedisCache_MissHitAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	cache, err := NewRedisCache(ctx, mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	if rate, ok, err := cache.Get(ctx, "UYU"); err != nil || ok {
		t.Fatalf("Get on empty cache = %v, %v, %v; want a miss", rate, ok, err)
	}

	if err := cache.Set(ctx, "UYU", 39.87, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	rate, ok, err := cache.Get(ctx, "UYU")
	if err != nil || !ok || rate != 39.87 {
		t.Fatalf("Get after Set = %v, %v, %v", rate, ok, err)
	}
	if ttl := mr.TTL(redisKey("UYU")); ttl != time.Minute {
		t.Fatalf("TTL = %v, want 1m", ttl)
	}

	mr.FastForward(time.Minute)
	if _, ok, err := cache.Get(ctx, "UYU"); err != nil || ok {
		t.Fatalf("expected entry to expire, got ok=%v err=%v", ok, err)
	}
}

func TestRedisCache_BadValueIsAnError(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	cache, err := NewRedisCache(ctx, mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	if err := mr.Set(redisKey("ARS"), "not-a-number"); err != nil {
		t.Fatalf("seed redis: %v", err)
	}
	if _, _, err := cache.Get(ctx, "ARS"); err == nil {
		t.Fatalf("expected parse error for a corrupt cached rate")
	}
}

func TestRate_UsesRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	cache, err := NewRedisCache(ctx, mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	srv, hits := newRatesServer(t, `{"result":"success","rates":{"UYU":40.25}}`, http.StatusOK)
	client := NewClient(srv.URL, time.Hour, srv.Client(), cache)

	for i := 0; i < 2; i++ {
		if rate, err := client.Rate(ctx, "UYU"); err != nil || rate != 40.25 {
			t.Fatalf("Rate = %v, %v", rate, err)
		}
	}
	if got := atomic.LoadInt32(hits); got != 1 {
		t.Fatalf("expected 1 upstream request, got %d", got)
	}
	if !mr.Exists(redisKey("UYU")) {
		t.Fatalf("expected the rate to be stored in redis")
	}
}

func TestRedisKey(t *testing.T) {
	if got := redisKey("UYU"); got != "cotiza3d:fx:UYU" {
		t.Fatalf("redisKey = %q", got)
	}
}
