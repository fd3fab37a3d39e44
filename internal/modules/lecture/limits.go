package lecture

// Limits holds the truncation ceilings, token budgets and thresholds used by
// the lecture components. Zero fields fall back to DefaultLimits.
type Limits struct {
	FormatMaxChars  int
	FormatMaxTokens int

	SummaryMaxChars  int
	SummaryMaxTokens int

	QuizMaxChars  int
	QuizMaxTokens int
	QuizAttempts  int
	QuizMaxItems  int

	SlideAIMaxChars  int
	SlideAIMaxTokens int
	SlideAIMinGap    int
	SlideCueMinGap   int
	SlideCueMinFound int
	SlideMinCount    int
	PeriodicMin      int
	PeriodicMax      int
	PeriodicSpacing  int

	FrameWidth       int
	FrameHeight      int
	FrameQuality     int
	FrameConcurrency int
}

func DefaultLimits() Limits {
	return Limits{
		FormatMaxChars:  8000,
		FormatMaxTokens: 3000,

		SummaryMaxChars:  6000,
		SummaryMaxTokens: 1500,

		QuizMaxChars:  4000,
		QuizMaxTokens: 1500,
		QuizAttempts:  3,
		QuizMaxItems:  5,

		SlideAIMaxChars:  5000,
		SlideAIMaxTokens: 500,
		SlideAIMinGap:    15,
		SlideCueMinGap:   20,
		SlideCueMinFound: 5,
		SlideMinCount:    4,
		PeriodicMin:      6,
		PeriodicMax:      10,
		PeriodicSpacing:  40,

		FrameWidth:       1280,
		FrameHeight:      720,
		FrameQuality:     2,
		FrameConcurrency: 4,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	fill := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&l.FormatMaxChars, d.FormatMaxChars)
	fill(&l.FormatMaxTokens, d.FormatMaxTokens)
	fill(&l.SummaryMaxChars, d.SummaryMaxChars)
	fill(&l.SummaryMaxTokens, d.SummaryMaxTokens)
	fill(&l.QuizMaxChars, d.QuizMaxChars)
	fill(&l.QuizMaxTokens, d.QuizMaxTokens)
	fill(&l.QuizAttempts, d.QuizAttempts)
	fill(&l.QuizMaxItems, d.QuizMaxItems)
	fill(&l.SlideAIMaxChars, d.SlideAIMaxChars)
	fill(&l.SlideAIMaxTokens, d.SlideAIMaxTokens)
	fill(&l.SlideAIMinGap, d.SlideAIMinGap)
	fill(&l.SlideCueMinGap, d.SlideCueMinGap)
	fill(&l.SlideCueMinFound, d.SlideCueMinFound)
	fill(&l.SlideMinCount, d.SlideMinCount)
	fill(&l.PeriodicMin, d.PeriodicMin)
	fill(&l.PeriodicMax, d.PeriodicMax)
	fill(&l.PeriodicSpacing, d.PeriodicSpacing)
	fill(&l.FrameWidth, d.FrameWidth)
	fill(&l.FrameHeight, d.FrameHeight)
	fill(&l.FrameQuality, d.FrameQuality)
	fill(&l.FrameConcurrency, d.FrameConcurrency)
	if l.PeriodicMax < l.PeriodicMin {
		l.PeriodicMax = l.PeriodicMin
	}
	return l
}
