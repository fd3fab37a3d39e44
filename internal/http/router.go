package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/studytree-backend/internal/http/handlers"
	httpMW "github.com/yungbote/studytree-backend/internal/http/middleware"
	"github.com/yungbote/studytree-backend/internal/observability"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log       *logger.Logger
	Metrics   *observability.Metrics
	UploadDir string

	LectureHandler *httpH.LectureHandler
	FrameHandler   *httpH.FrameHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("studytree-api"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	// Media
	if cfg.UploadDir != "" {
		r.Static("/uploads", cfg.UploadDir)
	}
	if cfg.FrameHandler != nil {
		r.NoRoute(cfg.FrameHandler.ServeOrNotFound)
	}

	api := r.Group("/api")
	{
		// Lectures
		if cfg.LectureHandler != nil {
			api.POST("/upload", cfg.LectureHandler.Upload)
			api.POST("/upload-url", cfg.LectureHandler.UploadURL)
			api.POST("/upload-youtube", cfg.LectureHandler.UploadURL)
			api.GET("/lectures", cfg.LectureHandler.ListLectures)
			api.GET("/lectures/:id", cfg.LectureHandler.GetLecture)
			api.GET("/status/:id", cfg.LectureHandler.GetStatus)
			api.POST("/chat/:id", cfg.LectureHandler.Chat)
		}
	}

	return r
}
