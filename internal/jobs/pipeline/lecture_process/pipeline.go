package lecture_process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	types "github.com/yungbote/studytree-backend/internal/domain"
	jobrt "github.com/yungbote/studytree-backend/internal/jobs/runtime"
	"github.com/yungbote/studytree-backend/internal/modules/lecture"
	"github.com/yungbote/studytree-backend/internal/observability"
)

/*
Run drives one lecture through
	[downloading] -> extracting_audio -> transcribing -> summarizing -> extracting_slides -> complete.
Each stage is persisted before its work starts and its results are saved as
soon as they exist. Any error marks the lecture failed and stops the run.
Intermediate media is removed only after a successful run.
*/
func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Lecture == nil {
		return nil
	}
	if err := p.run(jc); err != nil {
		jc.Fail(err)
	}
	return nil
}

func (p *Pipeline) run(jc *jobrt.Context) error {
	l := jc.Lecture
	videoPath := l.VideoPath

	if l.SourceKind == types.SourceRemoteURL && videoPath == "" {
		err := p.stage(jc, types.StageDownloading, func(ctx context.Context) error {
			if p.fetcher == nil {
				return errors.New("media fetcher not configured")
			}
			dest := filepath.Join(p.uploadDir, l.ID.String()+"-remote.mp4")
			path, err := p.fetcher.Fetch(ctx, l.SourceURL, dest)
			if err != nil {
				return err
			}
			videoPath = path
			l.VideoPath = path
			return jc.Save(map[string]interface{}{"video_path": path})
		})
		if err != nil {
			return err
		}
	}
	if videoPath == "" {
		return errors.New("lecture has no video")
	}

	var audioPath string
	if err := p.stage(jc, types.StageExtractingAudio, func(ctx context.Context) error {
		out, err := p.tools.ExtractAudio(ctx, videoPath)
		audioPath = out
		return err
	}); err != nil {
		return err
	}

	var rawTranscript, transcript string
	if err := p.stage(jc, types.StageTranscribing, func(ctx context.Context) error {
		raw, err := p.stt.Transcribe(ctx, audioPath)
		if err != nil {
			return err
		}
		rawTranscript = raw
		if err := jc.Save(map[string]interface{}{"raw_transcript": raw}); err != nil {
			return err
		}

		transcript = p.formatter.Format(ctx, raw)
		html, err := p.md.ToHTML(transcript)
		if err != nil {
			return fmt.Errorf("render transcript: %w", err)
		}
		return jc.Save(map[string]interface{}{
			"transcript_md":   transcript,
			"transcript_html": html,
		})
	}); err != nil {
		return err
	}

	var duration float64
	if err := p.stage(jc, types.StageSummarizing, func(ctx context.Context) error {
		summary := p.summarizer.Summarize(ctx, transcript)
		html, err := p.md.ToHTML(summary)
		if err != nil {
			return fmt.Errorf("render summary: %w", err)
		}
		if err := jc.Save(map[string]interface{}{
			"summary_md":   summary,
			"summary_html": html,
		}); err != nil {
			return err
		}

		quiz := p.quiz.Generate(ctx, transcript)
		if err := jc.Save(map[string]interface{}{"quiz": types.EncodeJSON(quiz)}); err != nil {
			return err
		}

		d, err := p.tools.ProbeDuration(ctx, videoPath)
		if err != nil {
			return err
		}
		duration = d
		return jc.Save(map[string]interface{}{"duration": d})
	}); err != nil {
		return err
	}

	var slides []types.Slide
	if err := p.stage(jc, types.StageExtractingSlides, func(ctx context.Context) error {
		res := p.slides.Detect(ctx, lecture.DetectInput{
			RawTranscript: rawTranscript,
			Transcript:    transcript,
			Duration:      duration,
		})
		jc.Log.Info("Slide timestamps chosen", "strategy", res.Strategy, "count", len(res.Timestamps))

		out, err := p.frames.Extract(ctx, l.ID, videoPath, res.Timestamps)
		if err != nil {
			return err
		}
		slides = out
		return nil
	}); err != nil {
		return err
	}

	if err := jc.Complete(map[string]interface{}{"slides": types.EncodeJSON(slides)}); err != nil {
		return err
	}
	jc.Log.Info("Lecture processing complete", "slides", len(slides))

	p.cleanup(jc, audioPath, videoPath)
	return nil
}

// stage persists the stage, then runs fn inside a lecture_process.<stage> span.
func (p *Pipeline) stage(jc *jobrt.Context, stage types.Stage, fn func(ctx context.Context) error) error {
	if err := jc.SetStage(stage); err != nil {
		return err
	}
	ctx, span := p.tracer.Start(jc.Ctx, "lecture_process."+string(stage))
	span.SetAttributes(
		attribute.String("lecture.id", jc.Lecture.ID.String()),
		attribute.String("lecture.stage", string(stage)),
	)
	defer span.End()

	start := time.Now()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.Current().ObserveLectureStage(string(stage), "failed", time.Since(start))
		return err
	}
	observability.Current().ObserveLectureStage(string(stage), "ok", time.Since(start))
	return nil
}

func (p *Pipeline) cleanup(jc *jobrt.Context, paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			jc.Log.Warn("Cleanup failed", "path", path, "error", err)
		}
	}
}
