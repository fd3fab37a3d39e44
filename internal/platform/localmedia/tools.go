package localmedia

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yungbote/studytree-backend/internal/platform/ctxutil"
	"github.com/yungbote/studytree-backend/internal/platform/envutil"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

// Tools is the transcoder: glue around ffmpeg and ffprobe.
//
// REQUIRED BINARIES: ffmpeg, ffprobe.
type Tools interface {
	AssertReady(ctx context.Context) error

	// ExtractAudio writes a mono 16 kHz PCM wav next to the video and returns its path.
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
	ProbeDuration(ctx context.Context, videoPath string) (float64, error)
	CaptureFrame(ctx context.Context, videoPath string, timestampSec float64, outPath string, opts FrameOptions) error
}

type FrameOptions struct {
	Width   int
	Height  int
	Quality int
}

type AudioExtractOptions struct {
	SampleRateHz int
	Channels     int
	Codec        string
}

type tools struct {
	log         *logger.Logger
	runner      Runner
	ffmpegPath  string
	ffprobePath string
	audio       AudioExtractOptions
}

func New(log *logger.Logger) Tools {
	return NewWithRunner(log, ExecRunner{})
}

func NewWithRunner(log *logger.Logger, runner Runner) Tools {
	return &tools{
		log:         log.With("service", "MediaTools"),
		runner:      runner,
		ffmpegPath:  envutil.String("FFMPEG_PATH", "ffmpeg"),
		ffprobePath: envutil.String("FFPROBE_PATH", "ffprobe"),
		audio: AudioExtractOptions{
			SampleRateHz: 16000,
			Channels:     1,
			Codec:        "pcm_s16le",
		},
	}
}

func (m *tools) AssertReady(ctx context.Context) error {
	for _, bin := range []string{m.ffmpegPath, m.ffprobePath} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("missing required binary %q in PATH: %w", bin, err)
		}
	}
	return nil
}

// AudioPathFor maps a video path to its sibling wav path.
func AudioPathFor(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".wav"
}

func (m *tools) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	ctx = ctxutil.Default(ctx)
	if videoPath == "" {
		return "", fmt.Errorf("videoPath required")
	}
	outPath := AudioPathFor(videoPath)
	if outPath == videoPath {
		outPath = videoPath + ".wav"
	}

	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", m.audio.Codec,
		"-ac", strconv.Itoa(m.audio.Channels),
		"-ar", strconv.Itoa(m.audio.SampleRateHz),
		"-f", "wav",
		outPath,
	}
	if _, err := RunTool(ctx, m.runner, m.ffmpegPath, args...); err != nil {
		return "", err
	}
	if _, err := os.Stat(outPath); err != nil {
		return "", MissingOutput(m.ffmpegPath, outPath)
	}
	m.log.Debug("Extracted audio", "video_path", videoPath, "audio_path", outPath)
	return outPath, nil
}

type ffprobeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (m *tools) ProbeDuration(ctx context.Context, videoPath string) (float64, error) {
	ctx = ctxutil.Default(ctx)
	if videoPath == "" {
		return 0, fmt.Errorf("videoPath required")
	}
	res, err := RunTool(ctx, m.runner, m.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		videoPath,
	)
	if err != nil {
		return 0, err
	}
	var parsed ffprobeFormat
	if err := json.Unmarshal([]byte(res.Stdout), &parsed); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(parsed.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", parsed.Format.Duration, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %v", d)
	}
	return d, nil
}

func (m *tools) CaptureFrame(ctx context.Context, videoPath string, timestampSec float64, outPath string, opts FrameOptions) error {
	ctx = ctxutil.Default(ctx)
	if videoPath == "" || outPath == "" {
		return fmt.Errorf("videoPath and outPath required")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	if opts.Quality <= 0 {
		opts.Quality = 2
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("mkdir frame dir: %w", err)
	}

	args := []string{
		"-y",
		"-ss", strconv.FormatFloat(timestampSec, 'f', 3, 64),
		"-i", videoPath,
		"-frames:v", "1",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-q:v", strconv.Itoa(opts.Quality),
		outPath,
	}
	if _, err := RunTool(ctx, m.runner, m.ffmpegPath, args...); err != nil {
		return err
	}
	if _, err := os.Stat(outPath); err != nil {
		return MissingOutput(m.ffmpegPath, outPath)
	}
	return nil
}
