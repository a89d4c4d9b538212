package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// sessionGate is the admin authentication gate: a request passes when its
// session cookie (or a bearer token fallback for API clients) matches the
// configured admin token. There is no user model behind this; the back-office
// assumes a single admin operator.
func sessionGate(cookieName, token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "admin session is not configured",
			})
			return
		}

		presented := ""
		if cookie, err := c.Cookie(cookieName); err == nil {
			presented = cookie
		} else if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			presented = strings.TrimPrefix(auth, "Bearer ")
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "unauthorized",
			})
			return
		}

		c.Next()
	}
}
