package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The authentication front door (reverse proxy) authenticates every request
// and forwards the caller's identity in these headers. This server only
// enforces the role boundary, not authentication itself.
const (
	HeaderUserID = "X-User-Id"
	HeaderRole   = "X-User-Role"

	RoleSystemAdmin = "system_admin"

	ctxUserID = "user_id"
	ctxRole   = "role"
)

// Identity rejects requests without a forwarded user id and stores the
// caller's identity on the request context.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				Resp{Code: http.StatusUnauthorized, Message: "missing identity"})
			return
		}
		c.Set(ctxUserID, userID)
		c.Set(ctxRole, c.GetHeader(HeaderRole))
		c.Next()
	}
}

// RequireSystemAdmin gates statistics, settings mutation, and cross-user
// session termination to the system-administrator role.
func RequireSystemAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRole) != RoleSystemAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden,
				Resp{Code: http.StatusForbidden, Message: "system administrator role required"})
			return
		}
		c.Next()
	}
}

func callerID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func isSystemAdmin(c *gin.Context) bool {
	return c.GetString(ctxRole) == RoleSystemAdmin
}
