package app

import (
	"fmt"

	"github.com/yungbote/studytree-backend/internal/data/repos"
	"github.com/yungbote/studytree-backend/internal/jobs/pipeline/lecture_process"
	"github.com/yungbote/studytree-backend/internal/jobs/runtime"
	"github.com/yungbote/studytree-backend/internal/jobs/worker"
	"github.com/yungbote/studytree-backend/internal/modules/lecture"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
	"github.com/yungbote/studytree-backend/internal/platform/markdown"
	"github.com/yungbote/studytree-backend/internal/services"
)

type Services struct {
	Notifier services.LectureNotifier
	Lectures services.LectureService
	Worker   *worker.Worker
}

func wireServices(log *logger.Logger, cfg Config, reposet repos.Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	notifier := services.NewLectureNotifier(log, clients.Bus)

	limits := lecture_process.Limits(log)
	var frameStore lecture.FrameStore
	if clients.Bucket != nil {
		frameStore = lecture.NewBucketFrameStore(clients.Bucket)
	}
	pipeline := lecture_process.New(
		log,
		clients.Media,
		clients.STT,
		clients.Fetcher,
		lecture.NewFormatter(log, clients.OpenAI, limits),
		lecture.NewSummarizer(log, clients.OpenAI, limits),
		lecture.NewQuizGenerator(log, clients.OpenAI, limits),
		lecture.NewSlideDetector(log, clients.OpenAI, limits),
		lecture.NewFrameExtractor(log, clients.Media, cfg.UploadDir, limits, frameStore),
		markdown.New(),
		cfg.UploadDir,
	)

	registry := runtime.NewRegistry()
	if err := registry.Register(pipeline); err != nil {
		return Services{}, fmt.Errorf("register %s: %w", pipeline.Type(), err)
	}
	w := worker.NewWorker(log, reposet.Lectures, registry, notifier)

	return Services{
		Notifier: notifier,
		Lectures: services.NewLectureService(log, reposet.Lectures, w, clients.OpenAI, notifier),
		Worker:   w,
	}, nil
}
