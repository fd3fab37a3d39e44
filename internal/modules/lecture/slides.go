package lecture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/yungbote/studytree-backend/internal/platform/logger"
	"github.com/yungbote/studytree-backend/internal/platform/openai"
)

const (
	StrategyAI       = "ai"
	StrategyCues     = "cues"
	StrategyPeriodic = "periodic"
)

const slidePromptTemplate = `Analyze this lecture transcript and identify 8-12 key moments where a new slide or topic begins.

For each transition point, estimate its position as a percentage (0-100) of the lecture.

Return ONLY a JSON array of percentages (numbers between 0 and 100).

Example: [0, 15, 28, 42, 58, 67, 81, 95]

Transcript:
%s`

var (
	errNoArray     = errors.New("no JSON array found")
	errNoSentences = errors.New("no sentences in transcript")

	transitionCues = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^now\b`),
		regexp.MustCompile(`(?i)^next\b`),
		regexp.MustCompile(`(?i)^so\b`),
		regexp.MustCompile(`(?i)^let'?s\b`),
		regexp.MustCompile(`(?i)^first\b`),
		regexp.MustCompile(`(?i)^second\b`),
		regexp.MustCompile(`(?i)^however\b`),
		regexp.MustCompile(`(?i)^but\b`),
		regexp.MustCompile(`(?i)^finally\b`),
		regexp.MustCompile(`(?i)^in conclusion\b`),
		regexp.MustCompile(`(?i)what is\b`),
		regexp.MustCompile(`(?i)how does\b`),
		regexp.MustCompile(`(?i)why\b`),
		regexp.MustCompile(`(?i)the main\b`),
	}
)

type DetectInput struct {
	// RawTranscript feeds the AI strategy, Transcript the cue strategy.
	RawTranscript string
	Transcript    string
	Duration      float64
}

type DetectResult struct {
	Strategy   string
	Timestamps []int
}

type timestampStrategy interface {
	Name() string
	Timestamps(ctx context.Context, in DetectInput) ([]int, error)
}

// SlideDetector tries each strategy in order and keeps the first result with
// at least SlideMinCount timestamps. The periodic fallback always answers.
type SlideDetector struct {
	log        *logger.Logger
	limits     Limits
	strategies []timestampStrategy
}

func NewSlideDetector(baseLog *logger.Logger, ai openai.Client, limits Limits) *SlideDetector {
	limits = limits.withDefaults()
	return &SlideDetector{
		log:    baseLog.With("component", "SlideDetector"),
		limits: limits,
		strategies: []timestampStrategy{
			&aiStrategy{ai: ai, limits: limits},
			&cueStrategy{limits: limits},
		},
	}
}

func (d *SlideDetector) Detect(ctx context.Context, in DetectInput) DetectResult {
	for _, s := range d.strategies {
		ts, err := s.Timestamps(ctx, in)
		if err != nil {
			d.log.Warn("Slide strategy failed", "strategy", s.Name(), "error", err)
			continue
		}
		if len(ts) < d.limits.SlideMinCount {
			d.log.Warn("Slide strategy returned too few timestamps", "strategy", s.Name(), "count", len(ts), "min", d.limits.SlideMinCount)
			continue
		}
		d.log.Info("Slide timestamps selected", "strategy", s.Name(), "count", len(ts))
		return DetectResult{Strategy: s.Name(), Timestamps: ts}
	}
	ts := PeriodicTimestamps(in.Duration, d.limits)
	d.log.Info("Slide timestamps selected", "strategy", StrategyPeriodic, "count", len(ts))
	return DetectResult{Strategy: StrategyPeriodic, Timestamps: ts}
}

type aiStrategy struct {
	ai     openai.Client
	limits Limits
}

func (s *aiStrategy) Name() string { return StrategyAI }

func (s *aiStrategy) Timestamps(ctx context.Context, in DetectInput) ([]int, error) {
	if s.ai == nil {
		return nil, errors.New("completion client not configured")
	}
	prompt := fmt.Sprintf(slidePromptTemplate, headRunes(in.RawTranscript, s.limits.SlideAIMaxChars))
	resp, err := s.ai.Complete(ctx, []openai.Message{openai.UserMessage(prompt)}, s.limits.SlideAIMaxTokens)
	if err != nil {
		return nil, err
	}
	percentages, err := parsePercentages(resp)
	if err != nil {
		return nil, err
	}
	return percentTimestamps(percentages, in.Duration, s.limits.SlideAIMinGap), nil
}

// parsePercentages reads the span between the first '[' and the last ']' as a
// JSON array. Numeric strings count; other non-numbers are skipped.
func parsePercentages(resp string) ([]float64, error) {
	start := strings.Index(resp, "[")
	end := strings.LastIndex(resp, "]")
	if start == -1 || end == -1 || end < start {
		return nil, errNoArray
	}
	var raw []any
	if err := json.Unmarshal([]byte(resp[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("parse percentages: %w", err)
	}
	out := make([]float64, 0, len(raw))
	for _, v := range raw {
		switch t := v.(type) {
		case float64:
			out = append(out, t)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

// percentTimestamps maps percentages onto [0, duration], anchors the list at
// 0 and keeps only points at least minGap seconds after the last kept one.
func percentTimestamps(percentages []float64, duration float64, minGap int) []int {
	ts := make([]int, 0, len(percentages)+1)
	for _, p := range percentages {
		t := math.Floor(p / 100 * duration)
		if math.IsNaN(t) || t < 0 || t > duration {
			continue
		}
		ts = append(ts, int(t))
	}
	sort.Ints(ts)
	if len(ts) == 0 || ts[0] != 0 {
		ts = append([]int{0}, ts...)
	}
	kept := []int{ts[0]}
	for _, t := range ts[1:] {
		if t-kept[len(kept)-1] >= minGap {
			kept = append(kept, t)
		}
	}
	return kept
}

type cueStrategy struct {
	limits Limits
}

func (s *cueStrategy) Name() string { return StrategyCues }

// Timestamps places each sentence by linear interpolation over the duration
// and marks cue sentences at least SlideCueMinGap seconds after the last mark.
// Sparse results are topped up with six evenly spaced points.
func (s *cueStrategy) Timestamps(_ context.Context, in DetectInput) ([]int, error) {
	sentences := SplitSentences(in.Transcript)
	if len(sentences) == 0 {
		return nil, errNoSentences
	}

	ts := []int{0}
	last := 0.0
	n := float64(len(sentences))
	for i, sentence := range sentences {
		pos := float64(i) / n * in.Duration
		if pos-last < float64(s.limits.SlideCueMinGap) {
			continue
		}
		if hasTransitionCue(strings.TrimSpace(sentence)) {
			ts = append(ts, int(math.Floor(pos)))
			last = pos
		}
	}

	if len(ts) < s.limits.SlideCueMinFound {
		interval := in.Duration / 7
		for i := 1; i < 7; i++ {
			t := int(math.Floor(interval * float64(i)))
			if !slices.Contains(ts, t) {
				ts = append(ts, t)
			}
		}
		sort.Ints(ts)
	}
	return ts, nil
}

func hasTransitionCue(sentence string) bool {
	for _, re := range transitionCues {
		if re.MatchString(sentence) {
			return true
		}
	}
	return false
}

// PeriodicTimestamps spreads between PeriodicMin and PeriodicMax points evenly
// over [0, duration], one per PeriodicSpacing seconds.
func PeriodicTimestamps(duration float64, limits Limits) []int {
	limits = limits.withDefaults()
	count := int(math.Floor(duration / float64(limits.PeriodicSpacing)))
	count = max(limits.PeriodicMin, min(limits.PeriodicMax, count))
	if count < 2 {
		count = 2
	}
	out := make([]int, count)
	for i := range out {
		out[i] = int(math.Floor(duration * float64(i) / float64(count-1)))
	}
	return out
}
