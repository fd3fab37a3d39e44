package lecture

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/yungbote/studytree-backend/internal/platform/logger"
)

func assertAscendingFromZero(t *testing.T, ts []int, duration float64) {
	t.Helper()
	if len(ts) == 0 || ts[0] != 0 {
		t.Fatalf("timestamps must start at 0: got=%v", ts)
	}
	for i, v := range ts {
		if v < 0 || float64(v) > duration {
			t.Fatalf("timestamp out of range: got=%d duration=%v", v, duration)
		}
		if i > 0 && v <= ts[i-1] {
			t.Fatalf("timestamps not strictly ascending: %v", ts)
		}
	}
}

func TestDetectAcceptsAIResult(t *testing.T) {
	ai := &scriptedClient{replies: []scriptedReply{reply("Here: [0, 20, 45, 70, 90]")}}
	d := NewSlideDetector(logger.NewNop(), ai, DefaultLimits())

	got := d.Detect(context.Background(), DetectInput{RawTranscript: "raw", Transcript: "formatted.", Duration: 300})
	if got.Strategy != StrategyAI {
		t.Fatalf("strategy: got=%s want=%s", got.Strategy, StrategyAI)
	}
	want := []int{0, 60, 135, 210, 270}
	if !reflect.DeepEqual(got.Timestamps, want) {
		t.Fatalf("timestamps: got=%v want=%v", got.Timestamps, want)
	}
	if ai.tokens[0] != 500 {
		t.Fatalf("token budget: got=%d want=500", ai.tokens[0])
	}
}

func TestPercentTimestampsMergesAndAnchors(t *testing.T) {
	got := percentTimestamps([]float64{50, 10, 12, 120, -5, 30}, 100, 15)
	want := []int{0, 30, 50}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("percentTimestamps: got=%v want=%v", got, want)
	}
}

func TestParsePercentagesSkipsNonNumbers(t *testing.T) {
	got, err := parsePercentages(`["10", 20, null, "x", 30.5]`)
	if err != nil {
		t.Fatalf("parsePercentages: %v", err)
	}
	if !reflect.DeepEqual(got, []float64{10, 20, 30.5}) {
		t.Fatalf("parsePercentages: got=%v", got)
	}
	if _, err := parsePercentages("no array"); err == nil {
		t.Fatalf("expected error without brackets")
	}
}

func TestDetectEscalatesToCues(t *testing.T) {
	ai := &scriptedClient{replies: []scriptedReply{reply("[0, 1, 2]")}}
	d := NewSlideDetector(logger.NewNop(), ai, DefaultLimits())

	var b strings.Builder
	for i := 0; i < 20; i++ {
		if i%4 == 0 {
			b.WriteString("Now we move on. ")
		} else {
			b.WriteString("Plain filler sentence. ")
		}
	}
	got := d.Detect(context.Background(), DetectInput{RawTranscript: "raw", Transcript: b.String(), Duration: 200})
	if got.Strategy != StrategyCues {
		t.Fatalf("strategy: got=%s want=%s", got.Strategy, StrategyCues)
	}
	assertAscendingFromZero(t, got.Timestamps, 200)
	if len(got.Timestamps) < 4 {
		t.Fatalf("count: got=%d", len(got.Timestamps))
	}
}

func TestCueStrategyDetectsTransitions(t *testing.T) {
	sentences := []string{
		"Welcome everyone.", "Filler one.", "Filler two.", "Filler three.",
		"Next we cover cells.", "Filler.", "Filler.", "Filler.",
		"However there is more.", "Filler.", "Filler.", "Filler.",
		"What is a ribosome?", "Filler.", "Filler.", "Filler.",
		"Finally we wrap up.", "Filler.", "Filler.", "Filler.",
	}
	s := &cueStrategy{limits: DefaultLimits()}
	got, err := s.Timestamps(context.Background(), DetectInput{Transcript: strings.Join(sentences, " "), Duration: 200})
	if err != nil {
		t.Fatalf("Timestamps: %v", err)
	}
	want := []int{0, 40, 80, 120, 160}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("cue timestamps: got=%v want=%v", got, want)
	}
}

func TestCueStrategyBackfillsPeriodic(t *testing.T) {
	s := &cueStrategy{limits: DefaultLimits()}
	got, err := s.Timestamps(context.Background(), DetectInput{Transcript: "Only filler. More filler.", Duration: 70})
	if err != nil {
		t.Fatalf("Timestamps: %v", err)
	}
	want := []int{0, 10, 20, 30, 40, 50, 60}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("backfill: got=%v want=%v", got, want)
	}
}

func TestCueStrategyNoSentences(t *testing.T) {
	s := &cueStrategy{limits: DefaultLimits()}
	if _, err := s.Timestamps(context.Background(), DetectInput{Transcript: "no punctuation", Duration: 100}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDetectFallsBackToPeriodic(t *testing.T) {
	ai := &scriptedClient{replies: []scriptedReply{failure(errors.New("down"))}}
	d := NewSlideDetector(logger.NewNop(), ai, DefaultLimits())

	got := d.Detect(context.Background(), DetectInput{Transcript: "", Duration: 400})
	if got.Strategy != StrategyPeriodic {
		t.Fatalf("strategy: got=%s want=%s", got.Strategy, StrategyPeriodic)
	}
	want := []int{0, 44, 88, 133, 177, 222, 266, 311, 355, 400}
	if !reflect.DeepEqual(got.Timestamps, want) {
		t.Fatalf("periodic: got=%v want=%v", got.Timestamps, want)
	}
}

func TestPeriodicTimestampsBounds(t *testing.T) {
	cases := []struct {
		duration float64
		count    int
	}{
		{60, 6},
		{240, 6},
		{320, 8},
		{4000, 10},
	}
	for _, tc := range cases {
		got := PeriodicTimestamps(tc.duration, DefaultLimits())
		if len(got) != tc.count {
			t.Fatalf("duration=%v: count got=%d want=%d", tc.duration, len(got), tc.count)
		}
		assertAscendingFromZero(t, got, tc.duration)
		if float64(got[len(got)-1]) != tc.duration {
			t.Fatalf("duration=%v: last got=%d", tc.duration, got[len(got)-1])
		}
	}
}
