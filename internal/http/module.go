// Package http provides HTTP server infrastructure including the Module interface
// that all domain modules must implement for route registration.
package http

import (
	"clinic_intake_backend/platform/config"
	"clinic_intake_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module represents a bounded context that can register its HTTP routes.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	// RegisterRoutes mounts the module's routes on the provided router groups.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides shared dependencies for module route registration.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is the /api/v1 route group.
	V1 *gin.RouterGroup
	// Public is /api/v1/public: unauthenticated and rate limited per IP.
	Public *gin.RouterGroup
	// Protected requires a staff access token.
	Protected *gin.RouterGroup
	// Admin is /api/v1/admin and additionally requires the admin role.
	Admin          *gin.RouterGroup
	Config         config.JWTConfig
	AuthMiddleware gin.HandlerFunc
	// PublicRateLimiter backs the Public group; modules may reuse it on single routes.
	PublicRateLimiter *httpkit.IPRateLimiter
}
