package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testCtx(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func TestRemainingQuotaFloorsAtZero(t *testing.T) {
	assert.Equal(t, 4, remainingQuota(5, 1))
	assert.Equal(t, 0, remainingQuota(5, 5))
	// requests past the limit keep bumping the counter; the header must
	// not go negative
	assert.Equal(t, 0, remainingQuota(5, 9))
}

func TestKeyBuilders(t *testing.T) {
	c, _ := testCtx("GET", "/posts/abc")
	c.Set("real_ip", "203.0.113.9")

	assert.Equal(t, "rl:ip:203.0.113.9", KeyByIP()(c))
	assert.Equal(t, "rl:path:/posts/abc:ip:203.0.113.9", KeyByIPAndPath()(c))
	assert.Equal(t, "rl:user:anon:ip:203.0.113.9", KeyByUserID()(c))

	c.Set("userID", "user-1")
	assert.Equal(t, "rl:user:user-1", KeyByUserID()(c))
}

func TestRealIPPrefersForwardingHeaders(t *testing.T) {
	c, _ := testCtx("GET", "/")
	c.Request.Header.Set("CF-Connecting-IP", "198.51.100.7")
	c.Request.Header.Set("X-Forwarded-For", "192.0.2.1, 10.0.0.1")
	assert.Equal(t, "198.51.100.7", resolveClientIP(c))

	c.Request.Header.Del("CF-Connecting-IP")
	assert.Equal(t, "192.0.2.1", resolveClientIP(c))
}

func TestRequestIDHonorsIncomingHeader(t *testing.T) {
	c, w := testCtx("GET", "/")
	c.Request.Header.Set("X-Request-ID", "req-42")
	RequestIDMiddleware()(c)
	assert.Equal(t, "req-42", c.GetString("request_id"))
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	c2, w2 := testCtx("GET", "/")
	RequestIDMiddleware()(c2)
	assert.NotEmpty(t, c2.GetString("request_id"))
	assert.Equal(t, c2.GetString("request_id"), w2.Header().Get("X-Request-ID"))
}
