package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("allows up to the limit then rejects", func(t *testing.T) {
		rl := NewRateLimiter(3, time.Minute)
		for i := 0; i < 3; i++ {
			require.True(t, rl.Allow("tenant-a:10.0.0.1"), "request %d", i)
		}
		assert.False(t, rl.Allow("tenant-a:10.0.0.1"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Minute)
		require.True(t, rl.Allow("tenant-a:10.0.0.1"))
		assert.False(t, rl.Allow("tenant-a:10.0.0.1"))
		assert.True(t, rl.Allow("tenant-b:10.0.0.1"))
	})

	t.Run("window expiry refills the bucket", func(t *testing.T) {
		rl := NewRateLimiter(1, 10*time.Millisecond)
		require.True(t, rl.Allow("k"))
		require.False(t, rl.Allow("k"))
		time.Sleep(20 * time.Millisecond)
		assert.True(t, rl.Allow("k"))
	})
}

func TestRateLimiter_Remaining(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)
	assert.Equal(t, 5, rl.Remaining("fresh"))

	rl.Allow("used")
	rl.Allow("used")
	assert.Equal(t, 3, rl.Remaining("used"))
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(limit int) *gin.Engine {
		router := gin.New()
		router.Use(RateLimit(NewRateLimiter(limit, time.Minute)))
		router.GET("/payments", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	t.Run("within the limit passes and advertises the budget", func(t *testing.T) {
		router := newRouter(2)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/payments", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("over the limit answers 429", func(t *testing.T) {
		router := newRouter(1)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/payments", nil))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/payments", nil))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")
	})

	t.Run("tenants are limited separately", func(t *testing.T) {
		router := newRouter(1)

		reqA := httptest.NewRequest("GET", "/payments", nil)
		reqA.Header.Set("X-Tenant-ID", "tenant-a")
		router.ServeHTTP(httptest.NewRecorder(), reqA)

		blockedA := httptest.NewRecorder()
		reqA2 := httptest.NewRequest("GET", "/payments", nil)
		reqA2.Header.Set("X-Tenant-ID", "tenant-a")
		router.ServeHTTP(blockedA, reqA2)
		assert.Equal(t, http.StatusTooManyRequests, blockedA.Code)

		reqB := httptest.NewRequest("GET", "/payments", nil)
		reqB.Header.Set("X-Tenant-ID", "tenant-b")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, reqB)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
