package lecture_process

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/studytree-backend/internal/modules/lecture"
	"github.com/yungbote/studytree-backend/internal/platform/envutil"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

const lectureProcessConfigEnv = "LECTURE_PROCESS_YAML"

//go:embed lecture_process.yaml
var lectureProcessConfigFS embed.FS

type yamlConfig struct {
	Pipeline  string `yaml:"pipeline"`
	Version   int    `yaml:"version"`
	Formatter struct {
		MaxChars  int `yaml:"max_chars"`
		MaxTokens int `yaml:"max_tokens"`
	} `yaml:"formatter"`
	Summary struct {
		MaxChars  int `yaml:"max_chars"`
		MaxTokens int `yaml:"max_tokens"`
	} `yaml:"summary"`
	Quiz struct {
		MaxChars  int `yaml:"max_chars"`
		MaxTokens int `yaml:"max_tokens"`
		Attempts  int `yaml:"attempts"`
		MaxItems  int `yaml:"max_items"`
	} `yaml:"quiz"`
	Slides struct {
		MinCount int `yaml:"min_count"`
		AI       struct {
			MaxChars      int `yaml:"max_chars"`
			MaxTokens     int `yaml:"max_tokens"`
			MinGapSeconds int `yaml:"min_gap_seconds"`
		} `yaml:"ai"`
		Cues struct {
			MinGapSeconds int `yaml:"min_gap_seconds"`
			MinFound      int `yaml:"min_found"`
		} `yaml:"cues"`
		Periodic struct {
			MinCount        int `yaml:"min_count"`
			MaxCount        int `yaml:"max_count"`
			SecondsPerSlide int `yaml:"seconds_per_slide"`
		} `yaml:"periodic"`
	} `yaml:"slides"`
	Frames struct {
		Width       int `yaml:"width"`
		Height      int `yaml:"height"`
		Quality     int `yaml:"quality"`
		Concurrency int `yaml:"concurrency"`
	} `yaml:"frames"`
}

var limitsOnce sync.Once
var limitsCache lecture.Limits
var limitsErr error

// Limits returns the tuning for lecture components. FRAME_CAPTURE_CONCURRENCY
// overrides the file's frame concurrency.
func Limits(log *logger.Logger) lecture.Limits {
	limitsOnce.Do(func() {
		limitsCache, limitsErr = loadLimits()
	})
	out := limitsCache
	if limitsErr != nil {
		if log != nil {
			log.Warn("lecture_process: config load failed; using defaults", "error", limitsErr)
		}
		out = lecture.DefaultLimits()
	}
	if n := envutil.Int("FRAME_CAPTURE_CONCURRENCY", 0); n > 0 {
		out.FrameConcurrency = n
	}
	return out
}

func loadLimits() (lecture.Limits, error) {
	data, err := readConfig()
	if err != nil {
		return lecture.Limits{}, err
	}
	return parseLimits(data)
}

func readConfig() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(lectureProcessConfigEnv)); path != "" {
		return os.ReadFile(path)
	}
	return lectureProcessConfigFS.ReadFile("lecture_process.yaml")
}

func parseLimits(data []byte) (lecture.Limits, error) {
	var cfg yamlConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return lecture.Limits{}, err
	}
	if err := validateConfig(&cfg); err != nil {
		return lecture.Limits{}, err
	}
	return lecture.Limits{
		FormatMaxChars:   cfg.Formatter.MaxChars,
		FormatMaxTokens:  cfg.Formatter.MaxTokens,
		SummaryMaxChars:  cfg.Summary.MaxChars,
		SummaryMaxTokens: cfg.Summary.MaxTokens,
		QuizMaxChars:     cfg.Quiz.MaxChars,
		QuizMaxTokens:    cfg.Quiz.MaxTokens,
		QuizAttempts:     cfg.Quiz.Attempts,
		QuizMaxItems:     cfg.Quiz.MaxItems,
		SlideAIMaxChars:  cfg.Slides.AI.MaxChars,
		SlideAIMaxTokens: cfg.Slides.AI.MaxTokens,
		SlideAIMinGap:    cfg.Slides.AI.MinGapSeconds,
		SlideCueMinGap:   cfg.Slides.Cues.MinGapSeconds,
		SlideCueMinFound: cfg.Slides.Cues.MinFound,
		SlideMinCount:    cfg.Slides.MinCount,
		PeriodicMin:      cfg.Slides.Periodic.MinCount,
		PeriodicMax:      cfg.Slides.Periodic.MaxCount,
		PeriodicSpacing:  cfg.Slides.Periodic.SecondsPerSlide,
		FrameWidth:       cfg.Frames.Width,
		FrameHeight:      cfg.Frames.Height,
		FrameQuality:     cfg.Frames.Quality,
		FrameConcurrency: cfg.Frames.Concurrency,
	}, nil
}

func validateConfig(cfg *yamlConfig) error {
	if cfg == nil {
		return errors.New("missing config")
	}
	if strings.TrimSpace(cfg.Pipeline) != "lecture_process" {
		return fmt.Errorf("unexpected pipeline: %s", cfg.Pipeline)
	}
	if cfg.Quiz.Attempts < 0 || cfg.Quiz.Attempts > 10 {
		return fmt.Errorf("quiz.attempts out of range: %d", cfg.Quiz.Attempts)
	}
	if cfg.Slides.MinCount < 0 {
		return fmt.Errorf("slides.min_count must not be negative")
	}
	p := cfg.Slides.Periodic
	if p.MinCount > 0 && p.MaxCount > 0 && p.MaxCount < p.MinCount {
		return fmt.Errorf("slides.periodic.max_count %d below min_count %d", p.MaxCount, p.MinCount)
	}
	if p.MinCount == 1 {
		return errors.New("slides.periodic.min_count must be at least 2")
	}
	return nil
}
