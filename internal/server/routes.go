package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coverletter-backend/internal/shared/metrics"
	"coverletter-backend/internal/shared/server/middleware"
)

const (
	rateGroupGenerate = "GENERATE"
	rateGroupPreview  = "PREVIEW"
)

func registerRoutes(r *gin.Engine, h Handlers) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, h.Health.Status())
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/v1")
	api.POST("/generate", h.Letters.Generate)
	api.POST("/job/preview", h.Jobs.Preview)
}

// rateLimits keeps generation requests rare (each one costs an LLM call)
// while previews only hit the scraper.
func rateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			rateGroupGenerate: {Rate: 0.2, Burst: 3},
			rateGroupPreview:  {Rate: 1, Burst: 5},
		},
		GroupFor: func(c *gin.Context) string {
			switch c.FullPath() {
			case "/v1/generate":
				return rateGroupGenerate
			case "/v1/job/preview":
				return rateGroupPreview
			default:
				return ""
			}
		},
	}
}
