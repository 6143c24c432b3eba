package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/vendora-app/vendora/pkg/metrics"
	"github.com/vendora-app/vendora/pkg/response"
)

// ipFromCtx returns the address resolved by RealIP, then gin's view, then "unknown".
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func routeOf(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc derives the counter key a request is charged against.
type KeyFunc func(c *gin.Context) string

// AllowFunc reports whether a request matches some predicate (private network, health probe...).
type AllowFunc func(*gin.Context) bool

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "rl:ip:" + ipFromCtx(c) }
}

func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string { return "rl:path:" + routeOf(c) + ":ip:" + ipFromCtx(c) }
}

// KeyByUserID charges authenticated callers per account and anonymous ones per address.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := UserID(c); uid != "" {
			return "rl:user:" + uid
		}
		return "rl:user:anon:ip:" + ipFromCtx(c)
	}
}

// Limit is one fixed-window allowance.
type Limit struct {
	Name   string
	Max    int
	Window time.Duration
	Key    KeyFunc
	Skip   AllowFunc
}

func (l Limit) usable() bool {
	return l.Max > 0 && l.Window > 0 && l.Key != nil
}

// returns {count, pttl}; the window starts on the first hit
var windowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// RateLimit enforces l against Redis and sets the X-RateLimit-* headers.
// Without Redis, or when Redis errors, requests pass through.
func RateLimit(rdb *redis.Client, l Limit) gin.HandlerFunc {
	if rdb == nil || !l.usable() {
		return func(c *gin.Context) { c.Next() }
	}
	if l.Name == "" {
		l.Name = "default"
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (l.Skip != nil && l.Skip(c)) {
			c.Next()
			return
		}

		count, ttl, err := hit(c, rdb, l)
		if err != nil {
			c.Next()
			return
		}

		resetSec := int((ttl + time.Second - 1) / time.Second)
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(l.Max-count, 0)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > l.Max {
			metrics.ObserveRateLimited(l.Name)
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Abort(c, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		c.Next()
	}
}

func hit(c *gin.Context, rdb *redis.Client, l Limit) (int, time.Duration, error) {
	res, err := windowScript.Run(c.Request.Context(), rdb, []string{l.Key(c)}, l.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}
	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl < 0 {
		ttl = 0
	}
	return int(res[0]), ttl, nil
}
