package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func newTestRouter(t *testing.T, client *redis.Client, calls *atomic.Int32, status int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CORSMiddleware())
	router.Use(IdempotencyMiddleware(client))
	router.POST("/v1/trips", func(c *gin.Context) {
		n := calls.Add(1)
		c.JSON(status, gin.H{"call": n})
	})
	return router
}

func post(router *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/trips", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ──── 1. IDEMPOTENCY ────

func TestIdempotency_ReplaysSuccessfulResponse(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	var calls atomic.Int32
	router := newTestRouter(t, client, &calls, http.StatusCreated)

	first := post(router, "save-1")
	second := post(router, "save-1")

	if calls.Load() != 1 {
		t.Fatalf("handler calls = %d, want 1", calls.Load())
	}
	if second.Code != http.StatusCreated {
		t.Errorf("replayed status = %d, want %d", second.Code, http.StatusCreated)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("replayed body = %s, want %s", second.Body.String(), first.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Error("replayed response missing Idempotent-Replayed header")
	}
}

func TestIdempotency_DoesNotReplayFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	var calls atomic.Int32
	router := newTestRouter(t, client, &calls, http.StatusConflict)

	post(router, "save-2")
	post(router, "save-2")

	if calls.Load() != 2 {
		t.Errorf("handler calls = %d, want 2", calls.Load())
	}
}

func TestIdempotency_NoKeyOrNoClient(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	router := newTestRouter(t, nil, &calls, http.StatusCreated)

	post(router, "")
	post(router, "ignored")
	post(router, "ignored")

	if calls.Load() != 3 {
		t.Errorf("handler calls = %d, want 3", calls.Load())
	}
}

// ──── 2. CORS ────

func TestCORS_PreflightShortCircuits(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	router := newTestRouter(t, nil, &calls, http.StatusCreated)

	req := httptest.NewRequest(http.MethodOptions, "/v1/trips", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), IdempotencyHeader) {
		t.Errorf("allow headers = %q, want %s included", w.Header().Get("Access-Control-Allow-Headers"), IdempotencyHeader)
	}
	if calls.Load() != 0 {
		t.Errorf("handler calls = %d, want 0", calls.Load())
	}
}
