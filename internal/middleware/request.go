package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID keeps an inbound X-Request-ID or assigns a new one, echoes it
// back and stores it in the request context for service logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), services.RequestIDKey{}, id))
		c.Next()
	}
}

// DefaultAllowedOrigins is used when no origin is configured.
var DefaultAllowedOrigins = []string{"http://localhost:3000"}

// CORS allows the configured origins. Blank entries are ignored and an empty
// list falls back to DefaultAllowedOrigins. "*" allows any origin, without
// credentials.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	origins := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch origin {
		case "":
			continue
		case "*":
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cors.New(cfg)
		}
		origins = append(origins, origin)
	}
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}
	cfg.AllowOrigins = origins
	return cors.New(cfg)
}
