package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	applog "expensedash/internal/log"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
	ctxClientIP     = "client_ip"
)

// requestContext assigns a request id, resolves the client IP and attaches a
// request-scoped logger to the request context. An incoming X-Request-ID is
// kept when it is a valid UUID.
func (s *Server) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		clientIP := extractClientIP(c.Request)

		c.Set(ctxRequestID, requestID)
		c.Set(ctxClientIP, clientIP)
		c.Header(headerRequestID, requestID)

		logger := s.logger.With(applog.FieldRequestID, requestID, applog.FieldClientIP, clientIP)
		c.Request = c.Request.WithContext(applog.NewContext(c.Request.Context(), logger))
		c.Next()
	}
}

// requestLogger logs every completed request with its status and duration.
func (s *Server) requestLogger() gin.HandlerFunc {
	structured := applog.NewStructuredLogger(s.logger)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		structured.LogHTTPEnd(c.Request.Context(), applog.RequestInfo{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			Query:      c.Request.URL.RawQuery,
			UserAgent:  c.Request.UserAgent(),
			ClientIP:   c.GetString(ctxClientIP),
			RequestID:  c.GetString(ctxRequestID),
			StatusCode: c.Writer.Status(),
			DurationMs: time.Since(start).Milliseconds(),
		})
	}
}

// securityHeaders sets defensive response headers and logs probe-like requests.
func (s *Server) securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		if detectSuspiciousRequest(c.Request, s.metrics) {
			applog.FromContext(c.Request.Context()).WithComponent(applog.ComponentSecurity).
				WarnContext(c.Request.Context(), "Suspicious request",
					applog.FieldMethod, c.Request.Method,
					applog.FieldPath, c.Request.URL.Path,
					applog.FieldUserAgent, c.Request.UserAgent())
		}

		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}

// rateLimit throttles writes per client IP.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		clientIP := c.GetString(ctxClientIP)
		if !s.rateLimiter.allow(clientIP, s.metrics) {
			applog.FromContext(c.Request.Context()).WithComponent(applog.ComponentRateLimit).
				WarnContext(c.Request.Context(), "Rate limit exceeded",
					applog.FieldMethod, c.Request.Method,
					applog.FieldPath, c.Request.URL.Path)
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, try again later"})
			return
		}
		c.Next()
	}
}
