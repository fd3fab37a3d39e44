package lecture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/studytree-backend/internal/domain"
	"github.com/yungbote/studytree-backend/internal/platform/dbctx"
	"github.com/yungbote/studytree-backend/internal/platform/gcp"
	"github.com/yungbote/studytree-backend/internal/platform/localmedia"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

// FrameStore publishes a captured frame and returns the reference stored on
// the slide.
type FrameStore interface {
	Publish(ctx context.Context, localPath, key string) (string, error)
}

type FrameExtractor struct {
	log         *logger.Logger
	tools       localmedia.Tools
	uploadDir   string
	opts        localmedia.FrameOptions
	concurrency int
	store       FrameStore
}

// NewFrameExtractor writes frames under uploadDir/frames_<lecture id>. A nil
// store leaves frames local and references them by web path.
func NewFrameExtractor(baseLog *logger.Logger, tools localmedia.Tools, uploadDir string, limits Limits, store FrameStore) *FrameExtractor {
	limits = limits.withDefaults()
	return &FrameExtractor{
		log:       baseLog.With("component", "FrameExtractor"),
		tools:     tools,
		uploadDir: uploadDir,
		opts: localmedia.FrameOptions{
			Width:   limits.FrameWidth,
			Height:  limits.FrameHeight,
			Quality: limits.FrameQuality,
		},
		concurrency: limits.FrameConcurrency,
		store:       store,
	}
}

func FramesDirName(lectureID uuid.UUID) string {
	return "frames_" + lectureID.String()
}

// Extract captures one frame per timestamp. Failed captures are logged and
// left out; the rest come back sorted by timestamp.
func (e *FrameExtractor) Extract(ctx context.Context, lectureID uuid.UUID, videoPath string, timestamps []int) ([]types.Slide, error) {
	dirName := FramesDirName(lectureID)
	dir := filepath.Join(e.uploadDir, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frames dir: %w", err)
	}

	captured := make([]*types.Slide, len(timestamps))
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, ts := range timestamps {
		i, ts := i, ts
		g.Go(func() error {
			filename := fmt.Sprintf("slide_%03d.png", i+1)
			outPath := filepath.Join(dir, filename)
			if err := e.tools.CaptureFrame(ctx, videoPath, float64(ts), outPath, e.opts); err != nil {
				e.log.Warn("Frame capture failed", "timestamp", ts, "error", err)
				return nil
			}
			image := "/" + dirName + "/" + filename
			if e.store != nil {
				ref, err := e.store.Publish(ctx, outPath, dirName+"/"+filename)
				if err != nil {
					e.log.Warn("Frame publish failed, keeping local copy", "timestamp", ts, "error", err)
				} else {
					image = ref
				}
			}
			captured[i] = &types.Slide{Timestamp: ts, Image: image}
			return nil
		})
	}
	_ = g.Wait()

	slides := make([]types.Slide, 0, len(timestamps))
	for _, s := range captured {
		if s != nil {
			slides = append(slides, *s)
		}
	}
	sort.SliceStable(slides, func(i, j int) bool { return slides[i].Timestamp < slides[j].Timestamp })
	e.log.Info("Frames extracted", "requested", len(timestamps), "captured", len(slides))
	return slides, nil
}

type bucketFrameStore struct {
	bucket gcp.BucketService
}

func NewBucketFrameStore(bucket gcp.BucketService) FrameStore {
	return &bucketFrameStore{bucket: bucket}
}

func (s *bucketFrameStore) Publish(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := s.bucket.UploadFile(dbctx.Context{Ctx: ctx}, key, f); err != nil {
		return "", err
	}
	return s.bucket.GetPublicURL(key), nil
}
