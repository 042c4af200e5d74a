package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/filedrop/filedrop/internal/auth"
	"github.com/filedrop/filedrop/internal/config"
	"github.com/filedrop/filedrop/internal/file"
	"github.com/filedrop/filedrop/internal/metrics"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config      config.Config
	FileService *file.Service
	Log         *zap.Logger
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(cors.New(corsConfig(deps.Config.CORS)))

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/api/v1")
	file.RegisterRoutes(api, deps.FileService, auth.Middleware(deps.Config.Auth.Token), deps.Log)

	return router
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE"}
	corsCfg.AllowHeaders = []string{"Authorization", "Content-Type", "Range"}
	corsCfg.ExposeHeaders = []string{"Content-Range", "Accept-Ranges", "Content-Disposition"}

	for _, origin := range cfg.Origins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	corsCfg.AllowOrigins = cfg.Origins
	return corsCfg
}
