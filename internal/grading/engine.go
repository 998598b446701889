package grading

import (
	"github.com/quizdesk/quizdesk/internal/quiz"
)

// Result is the outcome of grading a single question response.
type Result struct {
	Correct bool
	// NeedsReview is set for free-text responses with no answer key;
	// they stay at zero until an instructor looks at them.
	NeedsReview bool
}

// Strategy grades a single question.
type Strategy interface {
	Grade(q quiz.Question, response any) Result
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(q quiz.Question, response any) Result
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(q quiz.Question, response any) Result {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{NeedsReview: true}
	}
	return s.Grade(q, response)
}

type Option func(*config)

type config struct {
	NormalizeText bool // casefold + strip punctuation for text types
}

func WithTextNormalization(b bool) Option { return func(c *config) { c.NormalizeText = b } }

// NewDefaultGrader installs built-in strategies.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := &config{NormalizeText: true}
	for _, o := range opts {
		o(cfg)
	}
	exact := exactMatchStrategy{}
	text := textStrategy{normalize: cfg.NormalizeText}
	return &defaultGrader{
		strategies: map[string]Strategy{
			quiz.TypeSingleChoice: exact,
			quiz.TypeTrueFalse:    exact,
			quiz.TypeDropdown:     exact,
			quiz.TypeMultiChoice:  multiChoiceStrategy{},
			quiz.TypeShortText:    text,
			quiz.TypeLongText:     text,
		},
	}
}

// exactMatchStrategy compares the response against the first answer key
// entry with plain string equality.
type exactMatchStrategy struct{}

func (exactMatchStrategy) Grade(q quiz.Question, response any) Result {
	resp, ok := response.(string)
	if !ok || len(q.AnswerKey) == 0 {
		return Result{}
	}
	return Result{Correct: resp == q.AnswerKey[0]}
}

// multiChoiceStrategy requires the response and key to match as sets,
// order-insensitive, with no partial credit.
type multiChoiceStrategy struct{}

func (multiChoiceStrategy) Grade(q quiz.Question, response any) Result {
	resp, ok := toStringSlice(response)
	if !ok || len(q.AnswerKey) == 0 {
		return Result{}
	}
	return Result{Correct: equalStringSets(resp, q.AnswerKey)}
}

type textStrategy struct{ normalize bool }

func (s textStrategy) Grade(q quiz.Question, response any) Result {
	resp, ok := response.(string)
	if !ok {
		return Result{}
	}
	if len(q.AnswerKey) == 0 {
		return Result{NeedsReview: true}
	}
	for _, k := range q.AnswerKey {
		if s.normalize {
			if normalize(resp) == normalize(k) {
				return Result{Correct: true}
			}
		} else if resp == k {
			return Result{Correct: true}
		}
	}
	return Result{}
}

// toStringSlice accepts []string directly and []any as produced by JSON
// decoding.
func toStringSlice(v any) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return x, true
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func equalStringSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := map[string]int{}
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		seen[s]--
	}
	for _, v := range seen {
		if v != 0 {
			return false
		}
	}
	return true
}
