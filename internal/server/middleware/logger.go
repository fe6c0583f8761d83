package middleware

import (
	"net/http"
	"time"

	"github.com/cozyai/kitchenette/backend/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/time/rate"
)

// RequestID tags every request with a nanoid in the X-Request-ID header.
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return gonanoid.Must(12)
		},
	})
}

// RequestLogger writes one access log line per request to the logger facade.
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			keyvals := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.Round(time.Millisecond),
				"id", v.RequestID,
			}
			if v.Error != nil {
				logger.Error("[HTTP] Request failed", append(keyvals, "err", v.Error)...)
				return nil
			}
			if v.Status >= 500 {
				logger.Warn("[HTTP] Request", keyvals...)
				return nil
			}
			logger.Info("[HTTP] Request", keyvals...)
			return nil
		},
	})
}

// RateLimit limits every client IP to perSecond requests with a burst of
// twice that. perSecond <= 0 disables limiting.
func RateLimit(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	burst := max(int(perSecond*2), 1)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logger.Warn("[HTTP] Rate limit exceeded", "client", identifier)
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
		},
	})
}
