// Package attempt is the state container for one active quiz attempt:
// timer, answers, violation count, and the single transition from
// in_progress to submitted. It is injected into callers rather than living
// as ambient shared state.
package attempt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quizdesk/quizdesk/internal/grading"
	"github.com/quizdesk/quizdesk/internal/quiz"
)

const (
	StateInProgress = "in_progress"
	StateSubmitted  = "submitted"
)

// DefaultMaxViolations is how many focus-loss events force a submit.
const DefaultMaxViolations = 3

// ErrSubmitted is returned by mutating actions after the attempt ended.
var ErrSubmitted = errors.New("attempt already submitted")

// Sink receives the finished submission record. Satisfied by *queue.Queue.
type Sink interface {
	SaveSubmission(ctx context.Context, sub quiz.Submission) (string, error)
}

type Student struct {
	ID    string
	Email string
	Name  string
}

type Attempt struct {
	mu sync.Mutex

	id      string
	quiz    quiz.Quiz
	student Student

	answers    map[string]any
	timeLeft   int // seconds
	violations int
	state      string
	localKey   string // queue key once submitted

	maxViolations int
	sink          Sink
	grader        grading.Grader
	now           func() time.Time
}

type Option func(*Attempt)

func WithClock(now func() time.Time) Option { return func(a *Attempt) { a.now = now } }
func WithMaxViolations(n int) Option        { return func(a *Attempt) { a.maxViolations = n } }
func WithGrader(g grading.Grader) Option    { return func(a *Attempt) { a.grader = g } }

// New starts an attempt for q with the given time limit. An empty quiz id
// falls back to the sentinel so the submission is still attributable.
func New(q quiz.Quiz, student Student, timeLimitSec int, sink Sink, opts ...Option) *Attempt {
	if q.ID == "" {
		q.ID = quiz.SentinelQuizID
	}
	a := &Attempt{
		id:            uuid.NewString(),
		quiz:          q,
		student:       student,
		answers:       map[string]any{},
		timeLeft:      timeLimitSec,
		state:         StateInProgress,
		maxViolations: DefaultMaxViolations,
		sink:          sink,
		grader:        grading.NewDefaultGrader(),
		now:           time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Attempt) ID() string { return a.id }

func (a *Attempt) State() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Attempt) TimeLeft() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timeLeft
}

func (a *Attempt) Violations() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.violations
}

// LocalKey returns the queue key of the persisted submission, once submitted.
func (a *Attempt) LocalKey() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.localKey
}

// Answers returns a copy of the recorded answers.
func (a *Attempt) Answers() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]any, len(a.answers))
	for k, v := range a.answers {
		out[k] = v
	}
	return out
}

// RecordAnswer stores or replaces the answer for one question.
func (a *Attempt) RecordAnswer(questionID string, value any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateInProgress {
		return ErrSubmitted
	}
	a.answers[questionID] = value
	return nil
}

// Tick decrements the timer by one second, clamping at zero. Reaching (or
// being at) zero triggers the same submit path as a manual submit.
func (a *Attempt) Tick(ctx context.Context) error {
	a.mu.Lock()
	if a.state != StateInProgress {
		a.mu.Unlock()
		return nil
	}
	if a.timeLeft > 0 {
		a.timeLeft--
	}
	timeUp := a.timeLeft == 0
	a.mu.Unlock()

	if timeUp {
		_, err := a.Submit(ctx)
		return err
	}
	return nil
}

// AddViolation counts one focus-loss event. Reaching the configured maximum
// forces a submit. Returns the new count.
func (a *Attempt) AddViolation(ctx context.Context) (int, error) {
	a.mu.Lock()
	if a.state != StateInProgress {
		n := a.violations
		a.mu.Unlock()
		return n, nil
	}
	a.violations++
	n := a.violations
	forced := n >= a.maxViolations
	a.mu.Unlock()

	if forced {
		if _, err := a.Submit(ctx); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Submit grades the answers, builds the submission record and hands it to
// the sink. If persisting fails the attempt stays in_progress so the caller
// can retry: local durability is a harder requirement than remote delivery.
// Calling Submit on a submitted attempt returns the existing key.
func (a *Attempt) Submit(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateSubmitted {
		return a.localKey, nil
	}

	score := 0
	for _, q := range a.quiz.Questions {
		resp, ok := a.answers[q.ID]
		if !ok {
			continue
		}
		if a.grader.Grade(q, resp).Correct {
			score++
		}
	}

	sub := quiz.Submission{
		StudentID:      a.student.ID,
		StudentEmail:   a.student.Email,
		StudentName:    a.student.Name,
		QuizID:         a.quiz.ID,
		Score:          score,
		TotalQuestions: len(a.quiz.Questions),
		Violations:     a.violations,
		TimeRemaining:  a.timeLeft,
		SubmittedAt:    a.now().UTC().Format(time.RFC3339),
		Answers:        make(map[string]any, len(a.answers)),
		Questions:      make([]quiz.Question, len(a.quiz.Questions)),
	}
	for k, v := range a.answers {
		sub.Answers[k] = v
	}
	copy(sub.Questions, a.quiz.Questions)

	key, err := a.sink.SaveSubmission(ctx, sub)
	if err != nil {
		return "", fmt.Errorf("persist submission: %w", err)
	}
	a.state = StateSubmitted
	a.localKey = key
	return key, nil
}
