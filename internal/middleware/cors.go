package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var corsHeaders = strings.Join([]string{
	"Content-Type",
	"Authorization",
	IdempotencyHeader,
}, ", ")

// CORSMiddleware allows browser map frontends on other origins to call the API.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", corsHeaders)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
