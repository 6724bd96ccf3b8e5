package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"coverletter-backend/internal/config"
	"coverletter-backend/internal/jobs"
	"coverletter-backend/internal/letters"
	"coverletter-backend/internal/services/health"
	"coverletter-backend/internal/shared/server/middleware"
)

// Handlers groups everything the router needs.
type Handlers struct {
	Letters *letters.Handler
	Jobs    *jobs.Handler
	Health  *health.Service
}

// NewEngine builds the gin engine with the middleware chain and routes.
func NewEngine(cfg config.Config, h Handlers) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(rateLimits()),
	)

	registerRoutes(engine, h)
	return engine
}

// Addr returns a normalized listen address for the given port.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
