package lecture_process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/yungbote/studytree-backend/internal/data/repos/lectures"
	"github.com/yungbote/studytree-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studytree-backend/internal/domain"
	jobrt "github.com/yungbote/studytree-backend/internal/jobs/runtime"
	"github.com/yungbote/studytree-backend/internal/modules/lecture"
	"github.com/yungbote/studytree-backend/internal/platform/dbctx"
	"github.com/yungbote/studytree-backend/internal/platform/localmedia"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
	"github.com/yungbote/studytree-backend/internal/platform/markdown"
	"github.com/yungbote/studytree-backend/internal/platform/openai"
)

const transcriptText = "Welcome to the course. Now we study cells. Cells divide. Next we study DNA. Finally we review."

// routedClient answers by prompt prefix so stage order does not matter.
type routedClient struct {
	down bool
}

func (c *routedClient) Complete(_ context.Context, messages []openai.Message, _ int) (string, error) {
	if c.down {
		return "", &openai.ServiceError{StatusCode: 503, Body: "unavailable"}
	}
	prompt := messages[len(messages)-1].Content
	switch {
	case strings.HasPrefix(prompt, "Format this raw transcript"):
		return "Welcome to the course.\n\nNow we study cells. Cells divide.\n\nNext we study DNA. Finally we review.", nil
	case strings.HasPrefix(prompt, "Create a comprehensive summary"):
		return "## Overview\n\n- Cells divide by mitosis\n- DNA carries genetic information", nil
	case strings.HasPrefix(prompt, "Based on this transcript"):
		items := make([]string, 0, 5)
		for i := 0; i < 5; i++ {
			items = append(items, fmt.Sprintf(`{"question":"Q%d","options":["a","b","c","d"],"correctAnswer":1,"explanation":"e"}`, i))
		}
		return "[" + strings.Join(items, ",") + "]", nil
	case strings.HasPrefix(prompt, "Analyze this lecture transcript"):
		return "[0, 20, 45, 70, 90]", nil
	}
	return "", errors.New("unexpected prompt")
}

type fakeMedia struct {
	mu       sync.Mutex
	duration float64
	captures int
}

func (m *fakeMedia) AssertReady(context.Context) error { return nil }

func (m *fakeMedia) ExtractAudio(_ context.Context, videoPath string) (string, error) {
	out := localmedia.AudioPathFor(videoPath)
	return out, os.WriteFile(out, []byte("wav"), 0o644)
}

func (m *fakeMedia) ProbeDuration(context.Context, string) (float64, error) { return m.duration, nil }

func (m *fakeMedia) CaptureFrame(_ context.Context, _ string, _ float64, outPath string, _ localmedia.FrameOptions) error {
	m.mu.Lock()
	m.captures++
	m.mu.Unlock()
	return os.WriteFile(outPath, []byte("png"), 0o644)
}

type fakeSTT struct {
	text string
	err  error
}

func (s *fakeSTT) Transcribe(context.Context, string) (string, error) { return s.text, s.err }

type fakeFetcher struct{}

func (fakeFetcher) Fetch(_ context.Context, _ string, dest string) (string, error) {
	return dest, os.WriteFile(dest, []byte("mp4"), 0o644)
}

type stageRecorder struct {
	mu     sync.Mutex
	stages []types.Stage
}

func (r *stageRecorder) StageChanged(_ context.Context, l *types.Lecture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, l.Stage)
}

type harness struct {
	repo     lectures.LectureRepo
	pipeline *Pipeline
	media    *fakeMedia
	notify   *stageRecorder
	dir      string
}

func newHarness(t *testing.T, ai openai.Client, stt Transcriber) *harness {
	t.Helper()
	log := logger.NewNop()
	dir := t.TempDir()
	limits := lecture.DefaultLimits()
	media := &fakeMedia{duration: 300}
	p := New(
		log,
		media,
		stt,
		fakeFetcher{},
		lecture.NewFormatter(log, ai, limits),
		lecture.NewSummarizer(log, ai, limits),
		lecture.NewQuizGenerator(log, ai, limits),
		lecture.NewSlideDetector(log, ai, limits),
		lecture.NewFrameExtractor(log, media, dir, limits, nil),
		markdown.New(),
		dir,
	)
	return &harness{
		repo:     lectures.NewLectureRepo(testutil.DB(t), log),
		pipeline: p,
		media:    media,
		notify:   &stageRecorder{},
		dir:      dir,
	}
}

func (h *harness) run(t *testing.T, l *types.Lecture) *types.Lecture {
	t.Helper()
	ctx := context.Background()
	if _, err := h.repo.Create(dbctx.Context{Ctx: ctx}, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	jc := jobrt.NewContext(ctx, l, h.repo, h.notify, logger.NewNop())
	if err := h.pipeline.Run(jc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, err := h.repo.GetByID(dbctx.Context{Ctx: ctx}, l.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v", err)
	}
	return got
}

func (h *harness) localVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(h.dir, "1700000000000-lecture.mp4")
	if err := os.WriteFile(path, []byte("mp4"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	return path
}

func assertStages(t *testing.T, got []types.Stage, want ...types.Stage) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("stages: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stage %d: got=%s want=%s", i, got[i], want[i])
		}
	}
}

func TestRunCompletesLocalLecture(t *testing.T) {
	h := newHarness(t, &routedClient{}, &fakeSTT{text: transcriptText})
	video := h.localVideo(t)

	got := h.run(t, &types.Lecture{Title: "Biology", SourceKind: types.SourceLocalFile, VideoPath: video})

	if got.Stage != types.StageComplete || got.Error != "" {
		t.Fatalf("final: stage=%s error=%q", got.Stage, got.Error)
	}
	assertStages(t, h.notify.stages,
		types.StageExtractingAudio, types.StageTranscribing, types.StageSummarizing, types.StageExtractingSlides, types.StageComplete)

	if got.RawTranscript != transcriptText {
		t.Fatalf("raw transcript: got=%q", got.RawTranscript)
	}
	if !strings.Contains(got.TranscriptMD, "\n\nNow we study cells.") || !strings.Contains(got.TranscriptHTML, "<p>") {
		t.Fatalf("formatted transcript: md=%q html=%q", got.TranscriptMD, got.TranscriptHTML)
	}
	if !strings.Contains(got.SummaryHTML, "<h2>Overview</h2>") {
		t.Fatalf("summary html: got=%q", got.SummaryHTML)
	}
	quiz := got.QuizItems()
	if len(quiz) != 5 {
		t.Fatalf("quiz: got=%d want=5", len(quiz))
	}
	for _, q := range quiz {
		if q.Options[q.CorrectAnswer] != "b" {
			t.Fatalf("quiz correct option: got=%q want=b", q.Options[q.CorrectAnswer])
		}
	}
	if got.Duration == nil || *got.Duration != 300 {
		t.Fatalf("duration: got=%v", got.Duration)
	}

	slides := got.SlideList()
	want := []int{0, 60, 135, 210, 270}
	if len(slides) != len(want) {
		t.Fatalf("slides: got=%d want=%d", len(slides), len(want))
	}
	for i, s := range slides {
		if s.Timestamp != want[i] {
			t.Fatalf("slide %d: got=%d want=%d", i, s.Timestamp, want[i])
		}
	}

	if _, err := os.Stat(video); !os.IsNotExist(err) {
		t.Fatalf("video should be deleted after success: err=%v", err)
	}
	if _, err := os.Stat(localmedia.AudioPathFor(video)); !os.IsNotExist(err) {
		t.Fatalf("audio should be deleted after success: err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(h.dir, lecture.FramesDirName(got.ID), "slide_001.png")); err != nil {
		t.Fatalf("frames must be kept: %v", err)
	}
}

func TestRunDegradesWhenCompletionServiceIsDown(t *testing.T) {
	h := newHarness(t, &routedClient{down: true}, &fakeSTT{text: transcriptText})
	h.media.duration = 400

	got := h.run(t, &types.Lecture{Title: "Offline", VideoPath: h.localVideo(t)})

	if got.Stage != types.StageComplete {
		t.Fatalf("stage: got=%s error=%q", got.Stage, got.Error)
	}
	if got.TranscriptMD != transcriptText {
		t.Fatalf("transcript should fall back to raw: got=%q", got.TranscriptMD)
	}
	if !strings.Contains(got.SummaryMD, "Welcome to the course.") {
		t.Fatalf("extractive summary: got=%q", got.SummaryMD)
	}
	if len(got.QuizItems()) != 0 || string(got.Quiz) != "[]" {
		t.Fatalf("quiz should be empty: got=%s", got.Quiz)
	}
	if n := len(got.SlideList()); n < 4 {
		t.Fatalf("slides: got=%d want>=4", n)
	}
}

func TestRunRecordsExternalProcessFailure(t *testing.T) {
	sttErr := &localmedia.ExternalProcessError{Tool: "whisper", ExitCode: 2, Output: "model not found"}
	h := newHarness(t, &routedClient{}, &fakeSTT{err: sttErr})
	video := h.localVideo(t)

	got := h.run(t, &types.Lecture{Title: "Broken", VideoPath: video})

	if got.Stage != types.StageFailed {
		t.Fatalf("stage: got=%s want=%s", got.Stage, types.StageFailed)
	}
	if got.Error != sttErr.Error() {
		t.Fatalf("error: got=%q want=%q", got.Error, sttErr.Error())
	}
	assertStages(t, h.notify.stages, types.StageExtractingAudio, types.StageTranscribing, types.StageFailed)
	if got.TranscriptMD != "" || got.SummaryMD != "" {
		t.Fatalf("no later results expected: transcript=%q summary=%q", got.TranscriptMD, got.SummaryMD)
	}
	if _, err := os.Stat(video); err != nil {
		t.Fatalf("video must be kept on failure: %v", err)
	}
	if _, err := os.Stat(localmedia.AudioPathFor(video)); err != nil {
		t.Fatalf("audio must be kept on failure: %v", err)
	}
}

func TestRunDownloadsRemoteLecture(t *testing.T) {
	h := newHarness(t, &routedClient{}, &fakeSTT{text: transcriptText})

	got := h.run(t, &types.Lecture{Title: "Remote", SourceKind: types.SourceRemoteURL, SourceURL: "https://example.com/watch?v=1"})

	if got.Stage != types.StageComplete {
		t.Fatalf("stage: got=%s error=%q", got.Stage, got.Error)
	}
	want := filepath.Join(h.dir, got.ID.String()+"-remote.mp4")
	if got.VideoPath != want {
		t.Fatalf("video path: got=%s want=%s", got.VideoPath, want)
	}
	assertStages(t, h.notify.stages,
		types.StageDownloading, types.StageExtractingAudio, types.StageTranscribing, types.StageSummarizing, types.StageExtractingSlides, types.StageComplete)
}
