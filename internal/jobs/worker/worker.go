package worker

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/studytree-backend/internal/data/repos"
	types "github.com/yungbote/studytree-backend/internal/domain"
	"github.com/yungbote/studytree-backend/internal/jobs/runtime"
	"github.com/yungbote/studytree-backend/internal/observability"
	"github.com/yungbote/studytree-backend/internal/platform/dbctx"
	"github.com/yungbote/studytree-backend/internal/platform/envutil"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
	"github.com/yungbote/studytree-backend/internal/services"
)

type Task struct {
	JobType   string
	LectureID uuid.UUID
}

// Worker runs lecture pipelines on a fixed number of goroutines. Submit never
// blocks; tasks wait in an unbounded in-memory queue.
type Worker struct {
	log         *logger.Logger
	repo        repos.LectureRepo
	registry    *runtime.Registry
	notify      services.LectureNotifier
	concurrency int

	mu    sync.Mutex
	queue []Task
	wake  chan struct{}
	wg    sync.WaitGroup
}

func NewWorker(baseLog *logger.Logger, repo repos.LectureRepo, registry *runtime.Registry, notify services.LectureNotifier) *Worker {
	concurrency := envutil.Int("WORKER_CONCURRENCY", 2)
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		log:         baseLog.With("component", "LectureWorker"),
		repo:        repo,
		registry:    registry,
		notify:      notify,
		concurrency: concurrency,
		wake:        make(chan struct{}, concurrency),
	}
}

// Start re-queues lectures whose pipeline never began and launches the pool.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("Starting lecture worker pool", "concurrency", w.concurrency, "job_types", w.registry.Types())

	pending, err := w.repo.ListByStage(dbctx.Context{Ctx: ctx}, []types.Stage{types.StageUploaded})
	if err != nil {
		w.log.Warn("Could not load pending lectures", "error", err)
	}
	for _, l := range pending {
		w.Submit(types.JobLectureProcess, l.ID)
	}
	if len(pending) > 0 {
		w.log.Info("Re-queued pending lectures", "count", len(pending))
	}

	for i := 0; i < w.concurrency; i++ {
		workerID := i + 1
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.runLoop(ctx, workerID)
		}()
	}
}

// Wait blocks until every loop has returned after ctx is canceled.
func (w *Worker) Wait() { w.wg.Wait() }

func (w *Worker) Submit(jobType string, lectureID uuid.UUID) {
	w.mu.Lock()
	w.queue = append(w.queue, Task{JobType: jobType, LectureID: lectureID})
	observability.Current().SetQueueDepth(len(w.queue))
	w.mu.Unlock()
	w.signal()
}

func (w *Worker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

func (w *Worker) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) next() (Task, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return Task{}, false
	}
	t := w.queue[0]
	w.queue[0] = Task{}
	w.queue = w.queue[1:]
	observability.Current().SetQueueDepth(len(w.queue))
	if len(w.queue) > 0 {
		w.signal()
	}
	return t, true
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	for {
		if ctx.Err() != nil {
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		}
		task, ok := w.next()
		if !ok {
			select {
			case <-ctx.Done():
				w.log.Info("Worker loop stopped", "worker_id", workerID)
				return
			case <-w.wake:
			}
			continue
		}
		w.run(ctx, workerID, task)
	}
}

func (w *Worker) run(ctx context.Context, workerID int, task Task) {
	lecture, err := w.repo.GetByID(dbctx.Context{Ctx: ctx}, task.LectureID)
	if err != nil {
		w.log.Warn("Load lecture failed", "worker_id", workerID, "lecture_id", task.LectureID, "error", err)
		return
	}
	if lecture == nil {
		w.log.Warn("Lecture not found", "worker_id", workerID, "lecture_id", task.LectureID)
		return
	}

	h, ok := w.registry.Get(task.JobType)
	jc := runtime.NewContext(ctx, lecture, w.repo, w.notify, w.log)
	if !ok {
		w.log.Warn("No handler registered for job_type",
			"worker_id", workerID,
			"job_type", task.JobType,
			"lecture_id", lecture.ID,
		)
		jc.Fail(&missingHandlerError{JobType: task.JobType})
		return
	}

	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Job handler panic",
				"worker_id", workerID,
				"lecture_id", lecture.ID,
				"job_type", task.JobType,
				"panic", r,
			)
			observability.Current().IncWorkerPanic()
			jc.Fail(errFromRecover(r))
		}
		observability.Current().IncLectureResult(string(jc.Lecture.Stage))
	}()

	if runErr := h.Run(jc); runErr != nil {
		// Pipelines record their own failures; this catches anything they return instead.
		jc.Fail(runErr)
	}
}

type missingHandlerError struct{ JobType string }

func (e *missingHandlerError) Error() string { return "no handler registered for job_type=" + e.JobType }

func errFromRecover(v any) error { return &panicError{Val: v} }

type panicError struct{ Val any }

func (e *panicError) Error() string { return "panic: unexpected error" }
