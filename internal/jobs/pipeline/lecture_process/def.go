package lecture_process

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	types "github.com/yungbote/studytree-backend/internal/domain"
	"github.com/yungbote/studytree-backend/internal/modules/lecture"
	"github.com/yungbote/studytree-backend/internal/platform/localmedia"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
	"github.com/yungbote/studytree-backend/internal/platform/markdown"
)

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type MediaFetcher interface {
	Fetch(ctx context.Context, rawURL string, destPath string) (string, error)
}

type Pipeline struct {
	log        *logger.Logger
	tools      localmedia.Tools
	stt        Transcriber
	fetcher    MediaFetcher
	formatter  *lecture.Formatter
	summarizer *lecture.Summarizer
	quiz       *lecture.QuizGenerator
	slides     *lecture.SlideDetector
	frames     *lecture.FrameExtractor
	md         markdown.Renderer
	uploadDir  string
	tracer     trace.Tracer
}

func New(
	baseLog *logger.Logger,
	tools localmedia.Tools,
	stt Transcriber,
	fetcher MediaFetcher,
	formatter *lecture.Formatter,
	summarizer *lecture.Summarizer,
	quiz *lecture.QuizGenerator,
	slides *lecture.SlideDetector,
	frames *lecture.FrameExtractor,
	md markdown.Renderer,
	uploadDir string,
) *Pipeline {
	return &Pipeline{
		log:        baseLog.With("job", types.JobLectureProcess),
		tools:      tools,
		stt:        stt,
		fetcher:    fetcher,
		formatter:  formatter,
		summarizer: summarizer,
		quiz:       quiz,
		slides:     slides,
		frames:     frames,
		md:         md,
		uploadDir:  uploadDir,
		tracer:     otel.Tracer("studytree/lecture_process"),
	}
}

func (p *Pipeline) Type() string { return types.JobLectureProcess }
