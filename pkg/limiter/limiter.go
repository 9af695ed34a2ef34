package limiter

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face 限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

// Limiter 令牌桶集合
type Limiter struct {
	limiterBuckets map[string]*ratelimit.Bucket
}

// BucketRule 令牌桶规则
type BucketRule struct {
	Key          string        // 限流键
	FillInterval time.Duration // 间隔多久放令牌
	Capacity     int64         // 令牌桶容量
	Quantum      int64         // 每次放入的令牌数量
}
