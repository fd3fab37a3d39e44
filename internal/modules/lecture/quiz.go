package lecture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	types "github.com/yungbote/studytree-backend/internal/domain"
	"github.com/yungbote/studytree-backend/internal/platform/logger"
	"github.com/yungbote/studytree-backend/internal/platform/openai"
)

const (
	quizOptionCount        = 4
	defaultQuizExplanation = "Refer to the lecture for details."
	quizRepairPrompt       = "Fix this JSON and return ONLY the corrected array:\n\n"
)

const quizPromptTemplate = `Based on this transcript, create 5 multiple-choice questions to test understanding.

**RULES:**
1. Focus on key concepts and main ideas
2. Each question must have exactly 4 options
3. correctAnswer must be a number (0, 1, 2, or 3)
4. Provide a brief explanation

Return ONLY a valid JSON array:
[{"question": "...", "options": ["A", "B", "C", "D"], "correctAnswer": 0, "explanation": "..."}]

Transcript: %s`

var (
	errNoQuizJSON     = errors.New("no JSON object found")
	errNoValidQuizzes = errors.New("no valid quiz items")
)

// ShuffleFunc permutes n elements through swap, with the signature of rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

type QuizGenerator struct {
	log     *logger.Logger
	ai      openai.Client
	limits  Limits
	shuffle ShuffleFunc
}

func NewQuizGenerator(baseLog *logger.Logger, ai openai.Client, limits Limits) *QuizGenerator {
	return &QuizGenerator{
		log:     baseLog.With("component", "QuizGenerator"),
		ai:      ai,
		limits:  limits.withDefaults(),
		shuffle: rand.Shuffle,
	}
}

// Generate asks for a quiz and repairs the model's own output on parse
// failure. After the last failed attempt it returns an empty quiz.
func (g *QuizGenerator) Generate(ctx context.Context, transcript string) []types.QuizItem {
	input := truncateRunes(transcript, g.limits.QuizMaxChars, continuesMarker)
	prompt := fmt.Sprintf(quizPromptTemplate, input)

	lastResponse := ""
	for attempt := 0; attempt < g.limits.QuizAttempts; attempt++ {
		content := prompt
		if attempt > 0 {
			content = quizRepairPrompt + lastResponse
		}
		resp, err := g.ai.Complete(ctx, []openai.Message{openai.UserMessage(content)}, g.limits.QuizMaxTokens)
		if err != nil {
			g.log.Warn("Quiz attempt failed", "attempt", attempt+1, "error", err)
			continue
		}
		lastResponse = resp

		items, err := ParseQuiz(resp, g.limits.QuizMaxItems)
		if err != nil {
			g.log.Warn("Quiz attempt rejected", "attempt", attempt+1, "error", err)
			continue
		}
		for i := range items {
			items[i] = ShuffleOptions(items[i], g.shuffle)
		}
		g.log.Info("Quiz generated", "items", len(items), "attempts", attempt+1)
		return items
	}

	g.log.Warn("All quiz attempts failed", "attempts", g.limits.QuizAttempts)
	return []types.QuizItem{}
}

// ParseQuiz extracts quiz items from a model response. The span from the
// first '{' to the last '}' is parsed as the body of a JSON array. Items
// without a question or without exactly four options are dropped; an
// out-of-range correct answer becomes 0. At most maxItems are kept.
func ParseQuiz(response string, maxItems int) ([]types.QuizItem, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, errNoQuizJSON
	}
	span := "[" + response[start:end+1] + "]"

	var raw []any
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return nil, fmt.Errorf("parse quiz json: %w", err)
	}

	out := make([]types.QuizItem, 0, len(raw))
	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		question, _ := obj["question"].(string)
		if question == "" {
			continue
		}
		rawOptions, ok := obj["options"].([]any)
		if !ok || len(rawOptions) != quizOptionCount {
			continue
		}
		options := make([]string, 0, quizOptionCount)
		for _, o := range rawOptions {
			options = append(options, optionText(o))
		}
		explanation, _ := obj["explanation"].(string)
		if explanation == "" {
			explanation = defaultQuizExplanation
		}
		out = append(out, types.QuizItem{
			Question:      question,
			Options:       options,
			CorrectAnswer: coerceCorrectAnswer(obj["correctAnswer"]),
			Explanation:   explanation,
		})
		if maxItems > 0 && len(out) >= maxItems {
			break
		}
	}
	if len(out) == 0 {
		return nil, errNoValidQuizzes
	}
	return out, nil
}

// ShuffleOptions permutes the options and relocates CorrectAnswer by the
// correct option's text.
func ShuffleOptions(item types.QuizItem, shuffle ShuffleFunc) types.QuizItem {
	if len(item.Options) == 0 || item.CorrectAnswer < 0 || item.CorrectAnswer >= len(item.Options) {
		return item
	}
	correct := item.Options[item.CorrectAnswer]
	options := append([]string(nil), item.Options...)
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	item.Options = options
	for i, o := range options {
		if o == correct {
			item.CorrectAnswer = i
			break
		}
	}
	return item
}

func optionText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func coerceCorrectAnswer(v any) int {
	idx := -1
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) {
			idx = int(t)
		}
	case string:
		if n, ok := parseLeadingInt(t); ok {
			idx = n
		}
	}
	if idx < 0 || idx >= quizOptionCount {
		return 0
	}
	return idx
}

// parseLeadingInt reads an optionally signed base-10 integer prefix, ignoring
// leading whitespace and any trailing text ("2)" reads as 2).
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	sign := 1
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		if n > math.MaxInt32 {
			return 0, false
		}
		n = n*10 + int(s[digits]-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	return sign * n, true
}
