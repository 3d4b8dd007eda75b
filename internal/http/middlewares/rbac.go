package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRoles admits the caller only when their role is in the route's
// capability set. It must run after RequireAuth.
func (m *AuthMiddleware) RequireRoles(allowed ...string) gin.HandlerFunc {
	set := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		set[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}
		if _, permitted := set[role]; !permitted {
			abortJSON(c, http.StatusForbidden, "forbidden", "Access denied")
			return
		}
		c.Next()
	}
}
