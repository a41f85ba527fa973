package api

import (
	"github.com/gin-gonic/gin"

	"imageserver/internal/api/handler"
	"imageserver/internal/api/middleware"
	"imageserver/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(svc *service.CatalogService, mode string, cors middleware.CORSConfig) *gin.Engine {
	// Set Gin mode
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cors))

	// Create handlers
	imageHandler := handler.NewImageHandler(svc)
	healthHandler := handler.NewHealthHandler(svc)

	r.GET("/", imageHandler.Welcome)
	r.GET("/health", healthHandler.Health)
	r.GET("/random", imageHandler.Random)
	r.GET("/sequential", imageHandler.Sequential)

	return r
}
