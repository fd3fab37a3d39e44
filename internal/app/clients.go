package app

import (
	"context"
	"fmt"

	"github.com/yungbote/studytree-backend/internal/jobs/pipeline/lecture_process"
	"github.com/yungbote/studytree-backend/internal/platform/envutil"
	"github.com/yungbote/studytree-backend/internal/platform/gcp"
	"github.com/yungbote/studytree-backend/internal/platform/localmedia"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
	"github.com/yungbote/studytree-backend/internal/platform/openai"
	"github.com/yungbote/studytree-backend/internal/platform/whisper"
	"github.com/yungbote/studytree-backend/internal/platform/ytdlp"
	"github.com/yungbote/studytree-backend/internal/realtime/bus"
)

type Clients struct {
	OpenAI  openai.Client
	Media   localmedia.Tools
	STT     lecture_process.Transcriber
	Fetcher *ytdlp.Fetcher

	// Optional; nil when not configured.
	Bucket gcp.BucketService
	Speech gcp.Speech
	Bus    bus.Bus
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Completion client; a missing credential is fatal.
	ai, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init completion client: %w", err)
	}

	// Transcoder
	media := localmedia.New(log)
	if err := media.AssertReady(ctx); err != nil {
		return Clients{}, fmt.Errorf("media tools: %w", err)
	}

	out := Clients{
		OpenAI:  ai,
		Media:   media,
		Fetcher: ytdlp.New(log, localmedia.ExecRunner{}),
	}

	// Gcs
	if gcp.BucketConfigured() {
		bucket, err := gcp.NewBucketService(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init bucket client: %w", err)
		}
		out.Bucket = bucket
	}

	// Speech-to-text
	switch cfg.STTProvider {
	case STTGCP:
		speech, err := gcp.NewSpeech(log, out.Bucket)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init speech client: %w", err)
		}
		out.Speech = speech
		out.STT = speech
	default:
		out.STT = whisper.New(log, localmedia.ExecRunner{}, whisper.ConfigFromEnv())
	}

	// Redis
	if envutil.String("REDIS_ADDR", "") != "" {
		b, err := bus.NewRedisBus(log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init redis bus: %w", err)
		}
		out.Bus = b
	}

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Speech != nil {
		_ = c.Speech.Close()
	}
	if c.Bucket != nil {
		_ = c.Bucket.Close()
	}
}
