package security

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		limit:  limit,
		window: window,
	}
}

// Rate limiting middleware for inbound event operations
func (r *RateLimiter) EventRateLimit() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: &redisStore{redis: r.redis, limit: r.limit, window: r.window},
		IdentifierExtractor: func(c echo.Context) (string, error) {
			// Rate limit by session when one is attached, by IP otherwise
			sessionID := c.Get("session_id")
			if sessionID != nil {
				return fmt.Sprintf("session:%s", sessionID), nil
			}
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(429, map[string]string{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// Anti-bot protection
func (r *RateLimiter) AntiBotMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Check for bot patterns
			userAgent := c.Request().Header.Get("User-Agent")
			if r.isSuspiciousUserAgent(userAgent) {
				return c.JSON(403, map[string]string{
					"error": "Access denied",
				})
			}

			// Check request frequency
			ip := c.RealIP()
			key := fmt.Sprintf("antibot:%s", ip)

			count, err := r.redis.Incr(context.Background(), key).Result()
			if err == nil {
				if count == 1 {
					r.redis.Expire(context.Background(), key, time.Minute)
				}
				if count > 30 { // Max 30 requests per minute
					return c.JSON(429, map[string]string{
						"error": "Too many requests",
					})
				}
			}

			return next(c)
		}
	}
}

func (r *RateLimiter) isSuspiciousUserAgent(ua string) bool {
	suspicious := []string{"bot", "crawler", "spider", "scraper"}
	for _, pattern := range suspicious {
		if strings.Contains(strings.ToLower(ua), pattern) {
			return true
		}
	}
	return false
}

// redisStore implements middleware.RateLimiterStore over a fixed
// INCR/EXPIRE window. Redis failures fail open: losing rate limiting
// briefly beats rejecting every event.
type redisStore struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

func (s *redisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	key := fmt.Sprintf("ratelimit:%s", identifier)
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return true, nil
	}
	if count == 1 {
		s.redis.Expire(ctx, key, s.window)
	}
	return count <= int64(s.limit), nil
}
