package middleware

import (
	"math"
	"strconv"

	"github.com/haierkeys/pin-notes-service/pkg/app"
	"github.com/haierkeys/pin-notes-service/pkg/code"
	"github.com/haierkeys/pin-notes-service/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// RateLimiter 按 limiter 的键取令牌，没有规则的请求不限流
// 桶空时返回 ErrorTooManyRequests，并通过 Retry-After 提示下一个令牌的等待秒数
func RateLimiter(l limiter.Face) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket, ok := l.GetBucket(l.Key(c))
		if !ok {
			c.Next()
			return
		}

		if bucket.TakeAvailable(1) == 0 {
			if rate := bucket.Rate(); rate > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(1/rate))))
			}
			app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}
