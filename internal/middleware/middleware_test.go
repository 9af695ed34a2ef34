package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/haierkeys/pin-notes-service/internal/domain"
	"github.com/haierkeys/pin-notes-service/internal/dto"
	"github.com/haierkeys/pin-notes-service/pkg/code"
	"github.com/haierkeys/pin-notes-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSessions 只认识令牌 "good"
type stubSessions struct{}

func (stubSessions) SignIn(ctx context.Context, params *dto.SessionCreateRequest, clientIP string) (*domain.Session, error) {
	return nil, domain.ErrInvalidCredentials
}

func (stubSessions) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token != "good" {
		return domain.AnonymousSession(), domain.ErrInvalidSession
	}
	return &domain.Session{State: domain.Authenticated, Username: "alice", Token: token}, nil
}

func (stubSessions) SignOut(ctx context.Context, token string) (*domain.Session, error) {
	return domain.AnonymousSession(), nil
}

func responseCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var body struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Code
}

func TestTokenFromRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, "abc"},
		{"raw authorization", func(r *http.Request) { r.Header.Set("Authorization", "abc") }, "abc"},
		{"token header", func(r *http.Request) { r.Header.Set("Token", "abc") }, "abc"},
		{"query", func(r *http.Request) { r.URL.RawQuery = "token=abc" }, "abc"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "abc"}) }, "abc"},
		{"none", func(r *http.Request) {}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(c.Request)
			assert.Equal(t, tt.want, TokenFromRequest(c))
		})
	}
}

func TestSessionAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/who", SessionAuth(stubSessions{}), func(c *gin.Context) {
		c.String(http.StatusOK, GetSession(c).Username)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
	assert.Equal(t, code.ErrorNotUserAuthToken.Code(), responseCode(t, w))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who?token=bad", nil))
	assert.Equal(t, code.ErrorInvalidUserAuthToken.Code(), responseCode(t, w))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who?token=good", nil))
	assert.Equal(t, "alice", w.Body.String())
}

func TestSessionAuthRedirect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", SessionAuthRedirect(stubSessions{}, "/signin"), func(c *gin.Context) {
		c.String(http.StatusOK, "board")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "expired"})
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/signin", w.Header().Get("Location"))
	require.Len(t, w.Result().Cookies(), 1)
	assert.Equal(t, -1, w.Result().Cookies()[0].MaxAge)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good"})
	r.ServeHTTP(w, req)
	assert.Equal(t, "board", w.Body.String())
}

func TestGetSessionDefaultsToAnonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, GetSession(c).IsAuthenticated())
}

func TestRecoveryWithLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RecoveryWithLogger(nil))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, code.ErrorServerInternal.Code(), responseCode(t, w))
	assert.Contains(t, w.Body.String(), "boom")
}

func TestTraceMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	handler := func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	}

	r := gin.New()
	r.GET("/", TraceMiddlewareWithConfig(true, ""), handler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(DefaultTraceIDHeader))

	r = gin.New()
	r.GET("/", TraceMiddlewareWithConfig(false, "X-Request-ID"), handler)
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	r.ServeHTTP(w, req)
	assert.Empty(t, seen)
	assert.Empty(t, w.Header().Get("X-Request-ID"))
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := limiter.NewMethodLimiter().AddBuckets(limiter.BucketRule{
		Key: "POST /api/session", FillInterval: time.Hour, Capacity: 1, Quantum: 1,
	})
	r := gin.New()
	r.Use(RateLimiter(l))
	r.POST("/api/session", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/api/version", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/session", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/session?x=1", nil))
	assert.Equal(t, code.ErrorTooManyRequests.Code(), responseCode(t, w))
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))

	for i := 0; i < 3; i++ {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestLangWithTranslator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	defer code.SetGlobalDefaultLang("en")

	uni := ut.New(en.New(), en.New(), zh.New())
	r := gin.New()
	r.Use(LangWithTranslator(uni))
	r.GET("/", func(c *gin.Context) {
		trans := c.MustGet(TranslatorKey).(ut.Translator)
		c.String(http.StatusOK, trans.Locale()+" "+code.GetGlobalDefaultLang())
	})

	tests := []struct {
		name   string
		target string
		header map[string]string
		want   string
	}{
		{"default", "/", nil, "en en"},
		{"query", "/?lang=zh-CN", nil, "zh zh_cn"},
		{"header", "/", map[string]string{"lang": "zh"}, "zh zh_cn"},
		{"accept language", "/", map[string]string{"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8"}, "zh zh_cn"},
		{"unsupported", "/?lang=fr", nil, "en en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestNoFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.NoRoute(NoFound())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, code.ErrorNotFound.Code(), responseCode(t, w))
	assert.Contains(t, w.Body.String(), "GET /missing")
}
