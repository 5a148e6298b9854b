package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"albayan/internal/handler"
	"albayan/internal/middleware"
	"albayan/internal/service"
)

// OutputRoute is where exported report files are served from.
const OutputRoute = "/output"

// Setup configures the Gin engine with all routes and middleware. authSvc
// may be nil to leave the API unauthenticated; outputDir may be empty to
// skip serving exported files.
func Setup(
	log *zap.Logger,
	authSvc service.AuthService,
	allowedOrigins []string,
	outputDir string,
	definitionH *handler.ReportDefinitionHandler,
	requestH *handler.ReportRequestHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	if outputDir != "" {
		r.Static(OutputRoute, outputDir)
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(authSvc))

	reports := v1.Group("/reports")
	reports.POST("", definitionH.Create)
	reports.GET("", definitionH.List)
	reports.GET("/:definitionId", definitionH.GetByID)
	reports.PATCH("/:definitionId", definitionH.Update)
	reports.DELETE("/:definitionId", definitionH.Delete)

	issue := reports.Group("/:definitionId/issue")
	issue.POST("", requestH.Issue)
	issue.GET("", requestH.List)
	issue.GET("/export", requestH.ExportCSV)
	issue.GET("/:requestId", requestH.GetByID)
	issue.DELETE("/:requestId", requestH.Delete)

	return r
}
