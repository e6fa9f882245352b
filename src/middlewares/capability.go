package middlewares

import (
	"net/http"
	"psm/src/types"

	"github.com/gin-gonic/gin"
)

// RequireCapability gates a route on the caller's role capability. Runs
// after AuthMiddleware has resolved the user.
func RequireCapability(cap types.Capability) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := types.Role(ctx.GetString("role"))
		if !types.RoleHasCapability(role, cap) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": types.ErrPermissionDenied.Error()})
			return
		}
	}
}

// RequireRole restricts a route to one or more roles.
func RequireRole(roles ...types.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := types.Role(ctx.GetString("role"))
		for _, r := range roles {
			if r == role {
				return
			}
		}
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": types.ErrPermissionDenied.Error()})
	}
}
