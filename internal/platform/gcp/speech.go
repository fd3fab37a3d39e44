package gcp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/yungbote/studytree-backend/internal/platform/ctxutil"
	"github.com/yungbote/studytree-backend/internal/platform/dbctx"
	"github.com/yungbote/studytree-backend/internal/platform/envutil"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

// Speech transcribes the pipeline's mono 16 kHz wav with Cloud Speech LongRunningRecognize.
type Speech interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	Close() error
}

type SpeechConfig struct {
	LanguageCode    string
	Model           string
	SampleRateHertz int
}

type speechService struct {
	log    *logger.Logger
	client *speech.Client
	bucket BucketService
	cfg    SpeechConfig
}

// NewSpeech builds the client. bucket is optional; with it, audio goes through gs:// instead of inline bytes.
func NewSpeech(log *logger.Logger, bucket BucketService) (Speech, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	c, err := speech.NewClient(context.Background(), ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &speechService{
		log:    log.With("service", "gcp.Speech"),
		client: c,
		bucket: bucket,
		cfg: SpeechConfig{
			LanguageCode:    languageCode(envutil.String("TRANSCRIBE_LANGUAGE", "en")),
			Model:           envutil.String("GCP_SPEECH_MODEL", ""),
			SampleRateHertz: 16000,
		},
	}, nil
}

func (s *speechService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *speechService) Transcribe(ctx context.Context, audioPath string) (string, error) {
	ctx = ctxutil.Default(ctx)
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}

	audio := &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: data}}
	if s.bucket != nil {
		key := "audio/" + filepath.Base(audioPath)
		if err := s.bucket.UploadFile(dbctx.Context{Ctx: ctx}, key, bytes.NewReader(data)); err != nil {
			return "", fmt.Errorf("stage audio in bucket: %w", err)
		}
		defer func() {
			if err := s.bucket.DeleteFile(dbctx.Context{Ctx: context.Background()}, key); err != nil {
				s.log.Warn("Could not delete staged audio", "key", key, "error", err)
			}
		}()
		audio = &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Uri{Uri: s.bucket.GSURI(key)}}
	}

	req := &speechpb.LongRunningRecognizeRequest{
		Config: buildRecognitionConfig(s.cfg),
		Audio:  audio,
	}
	op, err := s.client.LongRunningRecognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("speech longrunningrecognize: %w", err)
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("speech longrunningrecognize wait: %w", err)
	}
	text := joinTranscript(resp)
	s.log.Info("Transcription finished", "audio_path", audioPath, "chars", len(text))
	return text, nil
}

func buildRecognitionConfig(cfg SpeechConfig) *speechpb.RecognitionConfig {
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	if cfg.SampleRateHertz <= 0 {
		cfg.SampleRateHertz = 16000
	}
	return &speechpb.RecognitionConfig{
		Encoding:                   speechpb.RecognitionConfig_LINEAR16,
		SampleRateHertz:            int32(cfg.SampleRateHertz),
		AudioChannelCount:          1,
		LanguageCode:               cfg.LanguageCode,
		Model:                      cfg.Model,
		EnableAutomaticPunctuation: true,
	}
}

func joinTranscript(resp *speechpb.LongRunningRecognizeResponse) string {
	if resp == nil {
		return ""
	}
	parts := make([]string, 0, len(resp.GetResults()))
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// languageCode maps the CLI-style language ("en") to a BCP-47 code.
func languageCode(lang string) string {
	lang = strings.TrimSpace(lang)
	switch strings.ToLower(lang) {
	case "", "en":
		return "en-US"
	}
	return lang
}
