package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/idrissbado/taskhub/internal/http/middlewares"
)

func TestRateLimiterMemoryStore(t *testing.T) {
	limiter := middlewares.NewRateLimiter(middlewares.NewMemoryCounterStore(), 2, time.Minute)

	r := gin.New()
	r.POST("/login", limiter.Middleware(middlewares.KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	hit := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := hit(); code != http.StatusOK {
		t.Fatalf("first hit: got %d", code)
	}

	if code := hit(); code != http.StatusOK {
		t.Fatalf("second hit: got %d", code)
	}

	if code := hit(); code != http.StatusTooManyRequests {
		t.Fatalf("third hit should be limited, got %d", code)
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter := middlewares.NewRateLimiter(middlewares.NewMemoryCounterStore(), 1, time.Minute)

	r := gin.New()
	r.POST("/login", limiter.Middleware(middlewares.KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := hit("10.0.0.1:1"); code != http.StatusOK {
		t.Fatalf("got %d", code)
	}

	if code := hit("10.0.0.2:1"); code != http.StatusOK {
		t.Fatalf("a different client should not be limited, got %d", code)
	}

	if code := hit("10.0.0.1:1"); code != http.StatusTooManyRequests {
		t.Fatalf("repeat client should be limited, got %d", code)
	}
}
