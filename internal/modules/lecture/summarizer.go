package lecture

import (
	"context"
	"strings"

	"github.com/yungbote/studytree-backend/internal/platform/logger"
	"github.com/yungbote/studytree-backend/internal/platform/openai"
)

const (
	summaryPrompt         = "Create a comprehensive summary of this transcript. Use markdown headings (##) and bullet points (-):\n\n"
	extractiveSentences   = 5
	extractiveExcerptMax  = 500
	extractiveSummaryHead = "## Summary\n\nThis lecture covers the following topics:\n\n"
	extractiveSummaryNote = "\n\n*Note: Full AI summary unavailable. Please refer to the transcript for complete details.*"
)

type Summarizer struct {
	log    *logger.Logger
	ai     openai.Client
	limits Limits
}

func NewSummarizer(baseLog *logger.Logger, ai openai.Client, limits Limits) *Summarizer {
	return &Summarizer{
		log:    baseLog.With("component", "Summarizer"),
		ai:     ai,
		limits: limits.withDefaults(),
	}
}

// Summarize returns a markdown summary. It never fails: rejected or missing
// model output falls back to ExtractiveSummary over the same excerpt.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) string {
	input := truncateRunes(transcript, s.limits.SummaryMaxChars, continuesMarker)

	out, err := s.ai.Complete(ctx, []openai.Message{openai.UserMessage(summaryPrompt + input)}, s.limits.SummaryMaxTokens)
	if err != nil {
		s.log.Warn("Summary generation failed, using extractive summary", "error", err)
		return ExtractiveSummary(input)
	}
	if !usableCompletion(out) {
		s.log.Warn("Summary rejected, using extractive summary", "chars", len(out))
		return ExtractiveSummary(input)
	}
	return out
}

// ExtractiveSummary wraps the first five sentences of text in a fixed
// markdown template. Text without sentence punctuation contributes a leading
// excerpt instead.
func ExtractiveSummary(text string) string {
	sentences := SplitSentences(text)
	if len(sentences) > extractiveSentences {
		sentences = sentences[:extractiveSentences]
	}
	parts := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		if t := strings.TrimSpace(sentence); t != "" {
			parts = append(parts, t)
		}
	}
	body := strings.Join(parts, " ")
	if body == "" {
		body = strings.TrimSpace(headRunes(strings.TrimSpace(text), extractiveExcerptMax))
	}
	return extractiveSummaryHead + body + extractiveSummaryNote
}
