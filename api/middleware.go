package api

import (
	"bytes"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/voteguard/voteguard-node/log"
)

// DisabledLogging is a global flag to disable logging middleware
var DisabledLogging = false

// jsonRegex matches common JSON starting patterns
var jsonRegex = regexp.MustCompile(`^\s*[\[{]`)

// LoggingConfig holds configuration for the logging middleware
type LoggingConfig struct {
	MaxBodyLog       int
	ExcludedPrefixes []string // URL path prefixes to exclude from logging
}

// DefaultLoggingConfig returns a LoggingConfig with sensible defaults
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		MaxBodyLog:       maxRequestBodyLog,
		ExcludedPrefixes: LogExcludedPrefixes,
	}
}

// shouldSkipLogging checks if the request should be skipped from logging
func (lc LoggingConfig) shouldSkipLogging(r *http.Request) bool {
	if log.Level() != log.LogLevelDebug {
		return true
	}
	if DisabledLogging {
		return true
	}
	path := r.URL.Path
	for _, prefix := range lc.ExcludedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.statusCode == 0 {
		rw.statusCode = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}

// loggingMiddleware provides request/response logging for debugging
func loggingMiddleware(maxBodyLog int) func(http.Handler) http.Handler {
	config := LoggingConfig{
		MaxBodyLog:       maxBodyLog,
		ExcludedPrefixes: DefaultLoggingConfig().ExcludedPrefixes,
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.shouldSkipLogging(r) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			var bodyStr string
			if r.Body != nil && r.ContentLength > 0 {
				bodyBytes, err := io.ReadAll(r.Body)
				if err != nil {
					log.Error(err)
					http.Error(w, "unable to read request body", http.StatusInternalServerError)
					return
				}

				// Restore body for handler
				r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

				// Only log bodies that look like JSON
				if jsonRegex.Match(bodyBytes) {
					bodyStr = string(bodyBytes)
					if len(bodyStr) > config.MaxBodyLog {
						bodyStr = bodyStr[:config.MaxBodyLog] + "..."
					}
					bodyStr = strings.ReplaceAll(bodyStr, "\"", "")
				}
			}

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     0,
			}

			log.Debugw("api request",
				"method", r.Method,
				"url", r.URL.String(),
				"body", bodyStr,
			)

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			log.Debugw("api response",
				"method", r.Method,
				"url", r.URL.String(),
				"status", wrapped.statusCode,
				"took", duration.String(),
			)
		})
	}
}
