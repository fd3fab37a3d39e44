package app

import (
	"os"
	"strings"

	"github.com/yungbote/studytree-backend/internal/platform/envutil"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

const (
	STTWhisper = "whisper"
	STTGCP     = "gcp"
)

type Config struct {
	Port        string
	UploadDir   string
	STTProvider string
	MetricsAddr string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "5000"),
		UploadDir:   envutil.String("UPLOAD_DIR", "uploads"),
		STTProvider: strings.ToLower(envutil.String("STT_PROVIDER", STTWhisper)),
		MetricsAddr: envutil.String("METRICS_ADDR", ""),
	}
	if cfg.STTProvider != STTWhisper && cfg.STTProvider != STTGCP {
		log.Warn("Unknown STT_PROVIDER, using whisper", "stt_provider", cfg.STTProvider)
		cfg.STTProvider = STTWhisper
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Warn("Could not create upload dir", "upload_dir", cfg.UploadDir, "error", err)
	}
	log.Info("Config loaded",
		"port", cfg.Port,
		"upload_dir", cfg.UploadDir,
		"stt_provider", cfg.STTProvider,
	)
	return cfg
}
