package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/backoffice/backend/internal/infrastructure/config"
	"github.com/backoffice/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar is implemented by handlers that register their own routes
type RouteRegistrar interface {
	RegisterRoutes(r gin.IRouter)
}

// Router assembles the gin engine with middleware and handler routes
type Router struct {
	engine     *gin.Engine
	registrars []RouteRegistrar
}

// New creates a Router with the standard middleware chain. Routes are mounted
// at the root; there is no version prefix.
func New(cfg *config.Config, logger *zap.Logger, registrars ...RouteRegistrar) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			logger.Warn("Invalid trusted proxy configuration, keeping gin defaults",
				zap.Strings("trusted_proxies", cfg.HTTP.TrustedProxies),
				zap.Error(err))
		}
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.AccessLog(logger),
		middleware.Secure(),
		middleware.CORS(&cfg.HTTP),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	return &Router{
		engine:     engine,
		registrars: registrars,
	}
}

// Setup registers all handler routes and returns the engine
func (r *Router) Setup() *gin.Engine {
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(r.engine)
	}
	return r.engine
}
