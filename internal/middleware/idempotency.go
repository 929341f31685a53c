package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	// IdempotencyHeader carries the client-chosen key of a retried mutation.
	IdempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// cachedResponse stores the response for idempotent requests.
type cachedResponse struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
	Headers    http.Header     `json:"headers"`
}

// responseWriter wraps gin.ResponseWriter to capture the response.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response when a POST or PUT is
// retried with the same Idempotency-Key. A nil client disables replay.
func IdempotencyMiddleware(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil || (c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut) {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		// Keys are scoped to the route so one key cannot replay another endpoint.
		cacheKey := "idempotency:" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key

		cached, err := getCachedResponse(ctx, redisClient, cacheKey)
		if err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("idempotency lookup failed for %s: %v", cacheKey, err)
			c.Next()
			return
		}

		if cached != nil {
			for k, v := range cached.Headers {
				for _, val := range v {
					c.Header(k, val)
				}
			}
			c.Header("Idempotent-Replayed", "true")
			c.Data(cached.StatusCode, "application/json", cached.Body)
			c.Abort()
			return
		}

		w := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		c.Next()

		// Only successful mutations are replayed; failures may be retried.
		if status := c.Writer.Status(); status >= 200 && status < 300 {
			response := cachedResponse{
				StatusCode: status,
				Body:       w.body.Bytes(),
				Headers:    extractResponseHeaders(c),
			}
			if err := setCachedResponse(ctx, redisClient, cacheKey, &response, idempotencyTTL); err != nil {
				log.Printf("idempotency store failed for %s: %v", cacheKey, err)
			}
		}
	}
}

// getCachedResponse retrieves a cached response from Redis.
func getCachedResponse(ctx context.Context, client *redis.Client, key string) (*cachedResponse, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var cached cachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	return &cached, nil
}

// setCachedResponse stores a response in Redis.
func setCachedResponse(ctx context.Context, client *redis.Client, key string, response *cachedResponse, ttl time.Duration) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}

	return client.Set(ctx, key, data, ttl).Err()
}

// extractResponseHeaders extracts headers to cache.
func extractResponseHeaders(c *gin.Context) http.Header {
	headers := make(http.Header)
	if ct := c.Writer.Header().Get("Content-Type"); ct != "" {
		headers.Set("Content-Type", ct)
	}
	return headers
}
