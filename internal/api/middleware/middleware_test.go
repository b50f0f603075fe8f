package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/bookstore/internal/apperr"
	"github.com/d60-Lab/bookstore/pkg/jwt"
)

func init() { gin.SetMode(gin.TestMode) }

type stubAuth map[string]int64

func (s stubAuth) Authenticate(_ context.Context, token string) (*jwt.Claims, error) {
	id, ok := s[token]
	if !ok {
		return nil, apperr.Unauthorized("bad token")
	}
	return &jwt.Claims{UserID: id, Username: "u"}, nil
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := gin.New()
	r.GET("/me", Auth(stubAuth{"good": 7}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserID(c)})
	})

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"ok", "Bearer good", http.StatusOK},
		{"lower-case scheme", "bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := serve(r, req)
			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusOK {
				assert.JSONEq(t, `{"id":7}`, w.Body.String())
			}
		})
	}
}

func TestAPIKey(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	r := gin.New()
	r.POST("/admin", APIKey("s3cret"), ok)
	r.POST("/closed", APIKey(""), ok)

	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("X-API-KEY", "s3cret")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/closed", nil)
	req.Header.Set("X-API-KEY", "")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get(HeaderRequestID)
	require.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc")
	assert.Equal(t, "abc", serve(r, req).Header().Get(HeaderRequestID))
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(1, 2)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "limits are per client")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"))
}

func TestRateLimiterBoundsTrackedClients(t *testing.T) {
	l := NewRateLimiter(1, 1)
	l.max = 2
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	for _, ip := range []string{"a", "b", "c"} {
		assert.True(t, l.Allow(ip))
		now = now.Add(time.Millisecond)
	}
	assert.Len(t, l.limiters, 2)
	assert.NotContains(t, l.limiters, "a", "least recently seen is evicted")
	assert.Contains(t, l.limiters, "b")
	assert.Contains(t, l.limiters, "c")

	// 空闲客户端按时间间隔清理，不依赖容量
	now = now.Add(11 * time.Minute)
	assert.True(t, l.Allow("d"))
	assert.Len(t, l.limiters, 1)
	assert.Contains(t, l.limiters, "d")
}

func TestRateLimiterMiddlewareRejects(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(0, 1).Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}
