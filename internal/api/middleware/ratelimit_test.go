package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestIPRateLimiter_Burst(t *testing.T) {
	l := NewIPRateLimiter(1, 2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if !l.Allow("10.0.0.1", now) || !l.Allow("10.0.0.1", now) {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.Allow("10.0.0.1", now) {
		t.Fatal("third request in the same instant should be limited")
	}
	if !l.Allow("10.0.0.2", now) {
		t.Fatal("other IPs have their own bucket")
	}
	if !l.Allow("10.0.0.1", now.Add(time.Second)) {
		t.Fatal("bucket should refill after a second")
	}
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	l := NewIPRateLimiter(1, 1, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	l.Allow("10.0.0.1", now)
	l.Allow("10.0.0.2", now.Add(50*time.Second))

	if n := l.Sweep(now.Add(90 * time.Second)); n != 1 {
		t.Fatalf("expected 1 idle bucket dropped, got %d", n)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	mw := RateLimit(NewIPRateLimiter(0.001, 1, time.Minute))
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := handler(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", codes[0])
	}
	if codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected second request 429, got %d", codes[1])
	}
}
