package presentation

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestRateLimiter_Allow(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(testStart)
	l := NewRateLimiter(1, 2, clk)

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if l.Allow("a") {
		t.Error("expected third request to be limited")
	}
	if !l.Allow("b") {
		t.Error("expected other clients to be unaffected")
	}

	clk.Add(time.Second)
	if !l.Allow("a") {
		t.Error("expected a token after one second")
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(testStart)
	l := NewRateLimiter(1, 1, clk)

	l.Allow("idle")
	clk.Add(DefaultLimiterIdleTTL / 2)
	l.Allow("active")
	clk.Add(DefaultLimiterIdleTTL/2 + time.Second)

	l.Sweep()

	if l.Len() != 1 {
		t.Fatalf("expected 1 tracked client, got %d", l.Len())
	}
	if _, ok := l.visitors.Load("active"); !ok {
		t.Error("expected active client to be kept")
	}
}

func TestRateLimiter_MiddlewareReturns429(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(testStart)
	env := newTestEnv(t, withLimiter(NewRateLimiter(1, 1, clk)))

	body := []byte(`{"url":"` + urlOne + `","bid":1}`)

	if rec := env.doFrom("203.0.113.9:4000", http.MethodPost, "/submit", body, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected first submit to pass, got %d", rec.Code)
	}
	rec := env.doFrom("203.0.113.9:4001", http.MethodPost, "/submit", body, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	// A different client address has its own bucket.
	if rec := env.doFrom("198.51.100.4:4000", http.MethodPost, "/submit", body, nil); rec.Code != http.StatusOK {
		t.Errorf("expected other client to pass, got %d", rec.Code)
	}
}

func TestRateLimiter_IgnoresForwardedForFromClients(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(testStart)
	limiter := NewRateLimiter(1, 1, clk)
	env := newTestEnv(t, withLimiter(limiter))

	body := []byte(`{"url":"` + urlOne + `","bid":1}`)

	allowed := 0
	for i := 0; i < 20; i++ {
		header := http.Header{"X-Forwarded-For": {fmt.Sprintf("8.8.%d.%d", i, i+1)}}
		if rec := env.doFrom("203.0.113.9:4000", http.MethodPost, "/submit", body, header); rec.Code == http.StatusOK {
			allowed++
		}
	}

	if allowed != 1 {
		t.Errorf("expected 1 allowed request, got %d", allowed)
	}
	if limiter.Len() != 1 {
		t.Errorf("expected 1 tracked client, got %d", limiter.Len())
	}
}
