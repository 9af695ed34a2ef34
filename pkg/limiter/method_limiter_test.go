package limiter

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodLimiterKeyIgnoresQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/session?lang=zh_cn", nil)

	l := NewMethodLimiter()
	assert.Equal(t, "POST /api/session", l.Key(c))
}

func TestMethodLimiterBucket(t *testing.T) {
	l := NewMethodLimiter().AddBuckets(BucketRule{
		Key:          "POST /api/session",
		FillInterval: time.Hour,
		Capacity:     2,
		Quantum:      1,
	})

	bucket, ok := l.GetBucket("POST /api/session")
	require.True(t, ok)
	assert.Equal(t, int64(1), bucket.TakeAvailable(1))
	assert.Equal(t, int64(1), bucket.TakeAvailable(1))
	assert.Equal(t, int64(0), bucket.TakeAvailable(1))

	_, ok = l.GetBucket("GET /api/notes")
	assert.False(t, ok)
}
