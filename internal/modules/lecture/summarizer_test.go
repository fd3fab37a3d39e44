package lecture

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

func TestSummarizerUsesModelOutput(t *testing.T) {
	summary := "## Topics\n\n- " + strings.Repeat("covered point ", 6)
	ai := &scriptedClient{replies: []scriptedReply{reply(summary)}}
	s := NewSummarizer(logger.NewNop(), ai, DefaultLimits())

	if got := s.Summarize(context.Background(), "A transcript."); got != summary {
		t.Fatalf("Summarize: got=%q want=%q", got, summary)
	}
	if ai.tokens[0] != 1500 {
		t.Fatalf("token budget: got=%d want=1500", ai.tokens[0])
	}
}

func TestSummarizerFallbackContainsInputSentence(t *testing.T) {
	transcript := "Cells divide by mitosis. DNA replicates first! Why does it matter? Growth. Repair. Sixth sentence."
	for _, r := range []scriptedReply{failure(errors.New("down")), reply("tiny")} {
		ai := &scriptedClient{replies: []scriptedReply{r}}
		s := NewSummarizer(logger.NewNop(), ai, DefaultLimits())

		got := s.Summarize(context.Background(), transcript)
		if !strings.HasPrefix(got, "## Summary") {
			t.Fatalf("fallback heading: got=%q", got)
		}
		if !strings.Contains(got, "Cells divide by mitosis.") {
			t.Fatalf("fallback should quote the input: got=%q", got)
		}
		if strings.Contains(got, "Sixth sentence.") {
			t.Fatalf("fallback should keep five sentences: got=%q", got)
		}
		if !strings.Contains(got, "Full AI summary unavailable") {
			t.Fatalf("fallback note missing: got=%q", got)
		}
	}
}

func TestExtractiveSummaryWithoutPunctuation(t *testing.T) {
	got := ExtractiveSummary("no terminal punctuation here")
	if !strings.Contains(got, "no terminal punctuation here") {
		t.Fatalf("excerpt missing: got=%q", got)
	}
}

func TestSummarizerTruncatesWithContinuationMarker(t *testing.T) {
	ai := &scriptedClient{replies: []scriptedReply{failure(errors.New("down"))}}
	s := NewSummarizer(logger.NewNop(), ai, DefaultLimits())
	_ = s.Summarize(context.Background(), strings.Repeat("y", 7000))
	if !strings.HasSuffix(ai.prompts[0], continuesMarker) {
		t.Fatalf("summary prompt should carry continuation marker")
	}
}
