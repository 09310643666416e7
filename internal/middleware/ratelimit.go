package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/zaqqye/salon_backoffice/internal/logger"
)

// RateLimit throttles a route group per client IP. rate uses the limiter
// format, e.g. "10-M" for ten requests a minute.
func RateLimit(rate string, log logger.Logger) (gin.HandlerFunc, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	lim := limiter.New(memory.NewStore(), r)
	return mgin.NewMiddleware(lim,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			log.Warn("rate limit reached", "ip", c.ClientIP(), "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "too many attempts, try again later"})
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			log.Error("rate limiter failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}),
	), nil
}
