package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowHeaders  = "Authorization, Content-Type, X-Request-ID"
	allowMethods  = "GET, POST, OPTIONS"
	exposeHeaders = "Content-Disposition, X-Request-ID"
	preflightAge  = "600"
)

// Policy decides which browser origins may call the API. The zero value
// allows every origin, which is what local development expects.
type Policy struct {
	origins map[string]struct{}
}

// NewPolicy builds a policy from configured origins. Trailing slashes are
// ignored on both sides of the comparison.
func NewPolicy(origins []string) Policy {
	if len(origins) == 0 {
		return Policy{}
	}
	set := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		set[normalize(o)] = struct{}{}
	}
	return Policy{origins: set}
}

// Open reports whether every origin is allowed.
func (p Policy) Open() bool { return len(p.origins) == 0 }

// Allows reports whether origin may read responses.
func (p Policy) Allows(origin string) bool {
	if p.Open() {
		return true
	}
	_, ok := p.origins[normalize(origin)]
	return ok
}

// New returns the CORS middleware for the given origins. Preflight requests
// are answered directly with 204.
func New(allowedOrigins []string) gin.HandlerFunc {
	policy := NewPolicy(allowedOrigins)

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		if origin := c.GetHeader("Origin"); origin == "" {
			if policy.Open() {
				h.Set("Access-Control-Allow-Origin", "*")
			}
		} else if policy.Allows(origin) {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Expose-Headers", exposeHeaders)
		h.Set("Access-Control-Max-Age", preflightAge)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func normalize(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
