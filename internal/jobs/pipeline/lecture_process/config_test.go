package lecture_process

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/studytree-backend/internal/modules/lecture"
)

func TestEmbeddedConfigMatchesDefaults(t *testing.T) {
	data, err := lectureProcessConfigFS.ReadFile("lecture_process.yaml")
	if err != nil {
		t.Fatalf("read embedded: %v", err)
	}
	got, err := parseLimits(data)
	if err != nil {
		t.Fatalf("parseLimits: %v", err)
	}
	if got != lecture.DefaultLimits() {
		t.Fatalf("embedded limits: got=%+v want=%+v", got, lecture.DefaultLimits())
	}
}

func TestParseLimitsRejectsWrongPipeline(t *testing.T) {
	if _, err := parseLimits([]byte("pipeline: other\n")); err == nil {
		t.Fatalf("expected error for wrong pipeline name")
	}
}

func TestParseLimitsRejectsInvertedPeriodicBounds(t *testing.T) {
	doc := "pipeline: lecture_process\nslides:\n  periodic:\n    min_count: 8\n    max_count: 6\n"
	if _, err := parseLimits([]byte(doc)); err == nil {
		t.Fatalf("expected error for max_count < min_count")
	}
}

func TestReadConfigHonorsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("pipeline: lecture_process\nquiz:\n  attempts: 2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(lectureProcessConfigEnv, path)

	data, err := readConfig()
	if err != nil {
		t.Fatalf("readConfig: %v", err)
	}
	got, err := parseLimits(data)
	if err != nil {
		t.Fatalf("parseLimits: %v", err)
	}
	if got.QuizAttempts != 2 || got.FormatMaxChars != 0 {
		t.Fatalf("override: attempts=%d format=%d", got.QuizAttempts, got.FormatMaxChars)
	}
}
