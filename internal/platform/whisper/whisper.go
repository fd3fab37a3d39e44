package whisper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/studytree-backend/internal/platform/ctxutil"
	"github.com/yungbote/studytree-backend/internal/platform/envutil"
	"github.com/yungbote/studytree-backend/internal/platform/localmedia"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

// Engine runs the openai-whisper CLI against a local audio file.
type Engine struct {
	log      *logger.Logger
	runner   localmedia.Runner
	bin      string
	model    string
	language string
}

type Config struct {
	Bin      string
	Model    string
	Language string
}

func ConfigFromEnv() Config {
	return Config{
		Bin:      envutil.String("WHISPER_PATH", "whisper"),
		Model:    envutil.String("WHISPER_MODEL", "base"),
		Language: envutil.String("TRANSCRIBE_LANGUAGE", "en"),
	}
}

func New(log *logger.Logger, runner localmedia.Runner, cfg Config) *Engine {
	if runner == nil {
		runner = localmedia.ExecRunner{}
	}
	if cfg.Bin == "" {
		cfg.Bin = "whisper"
	}
	if cfg.Model == "" {
		cfg.Model = "base"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &Engine{
		log:      log.With("service", "WhisperSTT"),
		runner:   runner,
		bin:      cfg.Bin,
		model:    cfg.Model,
		language: cfg.Language,
	}
}

// Transcribe writes <audio-basename>.txt next to the audio, reads it back and removes it.
func (e *Engine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(audioPath) == "" {
		return "", fmt.Errorf("audioPath required")
	}
	outDir := filepath.Dir(audioPath)
	_, err := localmedia.RunTool(ctx, e.runner, e.bin,
		audioPath,
		"--model", e.model,
		"--output_format", "txt",
		"--output_dir", outDir,
		"--language", e.language,
	)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	txtPath := filepath.Join(outDir, base+".txt")
	raw, err := os.ReadFile(txtPath)
	if err != nil {
		return "", localmedia.MissingOutput(e.bin, txtPath)
	}
	if rmErr := os.Remove(txtPath); rmErr != nil {
		e.log.Warn("Could not remove whisper output", "path", txtPath, "error", rmErr)
	}
	text := strings.TrimSpace(string(raw))
	e.log.Info("Transcription finished", "audio_path", audioPath, "chars", len(text))
	return text, nil
}
