package ytdlp

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/studytree-backend/internal/platform/ctxutil"
	"github.com/yungbote/studytree-backend/internal/platform/envutil"
	"github.com/yungbote/studytree-backend/internal/platform/localmedia"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

const defaultFormat = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/mp4/best"

// Fetcher resolves a remote video URL to a local mp4 via yt-dlp.
type Fetcher struct {
	log    *logger.Logger
	runner localmedia.Runner
	bin    string
	format string
}

func New(log *logger.Logger, runner localmedia.Runner) *Fetcher {
	if runner == nil {
		runner = localmedia.ExecRunner{}
	}
	return &Fetcher{
		log:    log.With("service", "MediaFetcher"),
		runner: runner,
		bin:    envutil.String("YTDLP_PATH", "yt-dlp"),
		format: envutil.String("YTDLP_FORMAT", defaultFormat),
	}
}

// Fetch downloads rawURL to destPath and returns destPath.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, destPath string) (string, error) {
	ctx = ctxutil.Default(ctx)
	if err := ValidateURL(rawURL); err != nil {
		return "", err
	}
	if destPath == "" {
		return "", fmt.Errorf("destPath required")
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", fmt.Errorf("mkdir dest dir: %w", err)
	}

	f.log.Info("Downloading remote video", "source_url", rawURL, "dest", destPath)
	if _, err := localmedia.RunTool(ctx, f.runner, f.bin, "-f", f.format, "-o", destPath, rawURL); err != nil {
		return "", err
	}
	if _, err := os.Stat(destPath); err != nil {
		return "", localmedia.MissingOutput(f.bin, destPath)
	}
	return destPath, nil
}

func ValidateURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url host required")
	}
	return nil
}
