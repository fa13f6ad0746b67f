package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
)

// requestID makes sure every request carries an X-Request-ID, generating one when the client
// did not send it.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set(requestIDHeader, id)
		c.Next()
	}
}

// requestLogger stores a request scoped logger in the context and logs every request once it
// was served.
func requestLogger(logger log.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLogger := logger.WithFields(log.Fields{
			"requestID": c.GetString(requestIDHeader),
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
		})
		c.Set(loggerKey, reqLogger)

		c.Next()

		entry := reqLogger.WithFields(log.Fields{
			"status":   c.Writer.Status(),
			"elapsed":  time.Since(start),
			"clientIP": c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Debug("request served")
		}
	}
}

func loggerFrom(c *gin.Context) log.FieldLogger {
	if l, ok := c.Get(loggerKey); ok {
		return l.(log.FieldLogger)
	}
	return log.StandardLogger()
}

// rateLimit rejects requests once the limiter ran out of tokens.
func rateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
