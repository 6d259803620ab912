package requestid

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

const (
	Header = "X-Request-ID"
	ctxKey = "request_id"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh ULID string. Monotonic entropy is not goroutine safe, hence the lock.
func New(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Middleware accepts a client supplied X-Request-ID or issues a ULID.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" || len(id) > 64 {
			id = New(time.Now())
		}
		c.Set(ctxKey, id)
		c.Header(Header, id)
		c.Next()
	}
}

func Get(c *gin.Context) string {
	return c.GetString(ctxKey)
}
