package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itskys/jszs/internal/response"
)

// AdminKeyHeader is the header carrying the shared admin secret.
const AdminKeyHeader = "X-Admin-Key"

// RequireAdminKey guards the results/monitor admin surface with the
// configured shared secret. Comparison is constant-time.
func RequireAdminKey(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(AdminKeyHeader)
		if key == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrAdminKeyRequired)
			return
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) != 1 {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrAdminKeyInvalid)
			return
		}
		c.Next()
	}
}
