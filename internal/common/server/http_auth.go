package server

import (
	"net/http"
	"strings"

	"github.com/SwiftSoko/SwiftSoko/internal/common/auth"
	"github.com/SwiftSoko/SwiftSoko/internal/common/config"
	"github.com/gin-gonic/gin"
)

const actorContextKey = "swiftsoko-actor"

// AuthMiddleware 校验 Authorization: Bearer <jwt>，通过后把 Actor 写入请求上下文。
// cfg.Auth.Enabled == false 时放行所有请求（仅用于本地联调）。
func AuthMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		actor, err := auth.ParseAccessToken(cfg, strings.TrimPrefix(header, prefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// RequireRoles 限定仅给定角色可访问，必须挂在 AuthMiddleware 之后。
func RequireRoles(roles ...auth.Role) gin.HandlerFunc {
	allowed := make(map[auth.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		// ADMIN 全放行
		if actor.IsAdmin() {
			c.Next()
			return
		}
		if _, ok := allowed[actor.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

// ActorFrom 取出 AuthMiddleware 写入的调用者身份。
func ActorFrom(c *gin.Context) (auth.Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return auth.Actor{}, false
	}
	actor, ok := v.(auth.Actor)
	return actor, ok
}

// MustActor 与 ActorFrom 相同，取不到时直接写 401 并返回 false。
func MustActor(c *gin.Context) (auth.Actor, bool) {
	actor, ok := ActorFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
	return actor, ok
}
