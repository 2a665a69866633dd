package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDiskCache_SetGet(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	url := "https://example.gov/100q.txt"
	body := []byte("AMERICAN GOVERNMENT\n")

	if _, ok := cache.Get(url); ok {
		t.Fatal("Get on empty cache returned a hit")
	}

	if err := cache.Set(url, body); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := cache.Get(url)
	if !ok {
		t.Fatal("Get missed after Set")
	}
	if string(got) != string(body) {
		t.Errorf("cached body = %q, want %q", got, body)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir(), -time.Second)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	url := "https://example.gov/updates"
	if err := cache.Set(url, []byte("stale")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, ok := cache.Get(url); ok {
		t.Error("Get returned an expired entry")
	}
}

func TestDiskCache_SetWithTTLOverridesDefault(t *testing.T) {
	// The cache default would expire everything instantly; a per-entry
	// TTL keeps its entry alive regardless.
	cache, err := NewDiskCache(t.TempDir(), -time.Second)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	url := "https://example.gov/100q.txt"
	if err := cache.SetWithTTL(url, []byte("fresh"), time.Hour); err != nil {
		t.Fatalf("SetWithTTL failed: %v", err)
	}

	got, ok := cache.Get(url)
	if !ok {
		t.Fatal("Get missed an entry stored with its own TTL")
	}
	if string(got) != "fresh" {
		t.Errorf("cached body = %q, want %q", got, "fresh")
	}

	// A non-positive override falls back to the (expired) default.
	if err := cache.SetWithTTL(url, []byte("fresh"), 0); err != nil {
		t.Fatalf("SetWithTTL failed: %v", err)
	}
	if _, ok := cache.Get(url); ok {
		t.Error("zero TTL did not fall back to the cache default")
	}
}

func TestClient_GetWithTTL(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte("document body"))
	}))
	defer server.Close()

	client, err := NewClient(Config{RateLimit: time.Millisecond, CacheDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	// Cache the document with an already-elapsed TTL, so the second
	// request cannot be served from the cache.
	if _, err := client.GetWithTTL(context.Background(), server.URL, time.Nanosecond); err != nil {
		t.Fatalf("GetWithTTL failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := client.GetWithTTL(context.Background(), server.URL, time.Nanosecond); err != nil {
		t.Fatalf("GetWithTTL failed: %v", err)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("server saw %d requests, want 2", got)
	}
}

func TestClient_Get(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if got := r.Header.Get("User-Agent"); got != DefaultUserAgent {
			t.Errorf("User-Agent = %q, want %q", got, DefaultUserAgent)
		}
		w.Write([]byte("document body"))
	}))
	defer server.Close()

	client, err := NewClient(Config{RateLimit: time.Millisecond, CacheDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	body, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(body) != "document body" {
		t.Errorf("body = %q", body)
	}

	// Second call is served from the disk cache.
	if _, err := client.Get(context.Background(), server.URL); err != nil {
		t.Fatalf("cached Get failed: %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("eventually"))
	}))
	defer server.Close()

	client, err := NewClient(Config{RateLimit: time.Millisecond})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	body, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get failed after retries: %v", err)
	}
	if string(body) != "eventually" {
		t.Errorf("body = %q", body)
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(Config{RateLimit: time.Millisecond})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for HTTP 404")
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	client, err := NewClient(Config{RateLimit: time.Hour})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	// First request goes through immediately; prime the limiter.
	client.lastRequest = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := client.Get(ctx, "http://127.0.0.1:0/unreachable"); err == nil {
		t.Fatal("expected context error while rate-limited")
	}
}
