package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/studytree-backend/internal/platform/localmedia"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

type fakeRunner struct {
	run func(ctx context.Context, name string, args ...string) (localmedia.CommandResult, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (localmedia.CommandResult, error) {
	return f.run(ctx, name, args...)
}

func TestFetchWritesDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "abc-remote.mp4")
	f := New(logger.NewNop(), &fakeRunner{run: func(ctx context.Context, name string, args ...string) (localmedia.CommandResult, error) {
		if args[len(args)-1] != "https://example.com/watch?v=1" {
			t.Fatalf("url should be last arg: %v", args)
		}
		return localmedia.CommandResult{}, os.WriteFile(dest, []byte("mp4"), 0o644)
	}})
	got, err := f.Fetch(context.Background(), "https://example.com/watch?v=1", dest)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != dest {
		t.Fatalf("path: got=%s want=%s", got, dest)
	}
}

func TestFetchNonzeroExit(t *testing.T) {
	f := New(logger.NewNop(), &fakeRunner{run: func(ctx context.Context, name string, args ...string) (localmedia.CommandResult, error) {
		return localmedia.CommandResult{ExitCode: 1}, errors.New("exit status 1")
	}})
	_, err := f.Fetch(context.Background(), "https://example.com/v", filepath.Join(t.TempDir(), "v.mp4"))
	var procErr *localmedia.ExternalProcessError
	if !errors.As(err, &procErr) || procErr.ExitCode != 1 {
		t.Fatalf("expected ExternalProcessError code 1, got=%v", err)
	}
}

func TestValidateURL(t *testing.T) {
	for _, bad := range []string{"", "ftp://x/y", "file:///etc/passwd", "https://"} {
		if err := ValidateURL(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
	if err := ValidateURL("https://youtu.be/abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
