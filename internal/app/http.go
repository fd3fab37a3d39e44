package app

import (
	"context"

	"github.com/yungbote/studytree-backend/internal/http"
	httpH "github.com/yungbote/studytree-backend/internal/http/handlers"
	"github.com/yungbote/studytree-backend/internal/observability"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Lecture *httpH.LectureHandler
	Frames  *httpH.FrameHandler
}

func wireHandlers(log *logger.Logger, cfg Config, serviceset Services, ping func(ctx context.Context) error) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(ping),
		Lecture: httpH.NewLectureHandler(serviceset.Lectures, cfg.UploadDir),
		Frames:  httpH.NewFrameHandler(cfg.UploadDir),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		UploadDir:      cfg.UploadDir,
		HealthHandler:  handlers.Health,
		LectureHandler: handlers.Lecture,
		FrameHandler:   handlers.Frames,
	})
}
