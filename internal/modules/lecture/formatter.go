package lecture

import (
	"context"

	"github.com/yungbote/studytree-backend/internal/platform/logger"
	"github.com/yungbote/studytree-backend/internal/platform/openai"
)

const formatPrompt = "Format this raw transcript by adding paragraph breaks for readability. Do not change any words:\n\n"

type Formatter struct {
	log    *logger.Logger
	ai     openai.Client
	limits Limits
}

func NewFormatter(baseLog *logger.Logger, ai openai.Client, limits Limits) *Formatter {
	return &Formatter{
		log:    baseLog.With("component", "TranscriptFormatter"),
		ai:     ai,
		limits: limits.withDefaults(),
	}
}

// Format adds paragraph breaks to a raw transcript. Any failure or unusable
// output returns raw unchanged.
func (f *Formatter) Format(ctx context.Context, raw string) string {
	input := truncateRunes(raw, f.limits.FormatMaxChars, truncatedMarker)
	if len(input) != len(raw) {
		f.log.Warn("Transcript truncated for formatting", "chars", len([]rune(raw)), "limit", f.limits.FormatMaxChars)
	}

	out, err := f.ai.Complete(ctx, []openai.Message{openai.UserMessage(formatPrompt + input)}, f.limits.FormatMaxTokens)
	if err != nil {
		f.log.Warn("Transcript formatting failed, using raw transcript", "error", err)
		return raw
	}
	if !usableCompletion(out) {
		f.log.Warn("Formatted transcript rejected, using raw transcript", "chars", len(out))
		return raw
	}
	return out
}
