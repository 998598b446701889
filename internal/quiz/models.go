package quiz

// Question types supported by the grading engine.
const (
	TypeSingleChoice = "single_choice"
	TypeMultiChoice  = "multi_choice"
	TypeTrueFalse    = "true_false"
	TypeShortText    = "short_text"
	TypeLongText     = "long_text"
	TypeDropdown     = "dropdown"
)

// Submission queue states. Only the sync coordinator moves a record out of
// StatusPending.
const (
	StatusPending = "pending"
	StatusSynced  = "synced"
	StatusFailed  = "failed"
)

// SentinelQuizID is recorded when an attempt was started without an active
// quiz context.
const SentinelQuizID = "unknown-quiz"

type Question struct {
	ID     string `json:"id" yaml:"id"`
	Type   string `json:"type" yaml:"type"`
	Prompt string `json:"prompt" yaml:"prompt"`
	// Options is empty for free-text types.
	Options []string `json:"options,omitempty" yaml:"options"`
	// AnswerKey holds the option value(s) or expected text. Single-valued
	// types use element 0; multi_choice treats it as a set.
	AnswerKey []string `json:"answer_key,omitempty" yaml:"answer_key"`
}

type Quiz struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Published bool       `json:"published" yaml:"published"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Submission is the record produced when an attempt ends. Field names match
// the wire format consumed by the backend's submit endpoint.
type Submission struct {
	LocalID        string         `json:"localId,omitempty"`
	StudentID      string         `json:"student_id,omitempty"`
	StudentEmail   string         `json:"studentEmail,omitempty"`
	StudentName    string         `json:"studentName,omitempty"`
	QuizID         string         `json:"quiz_id"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"total_questions"`
	Violations     int            `json:"violations"`
	TimeRemaining  int            `json:"time_remaining"`
	SubmittedAt    string         `json:"submitted_at"`
	Answers        map[string]any `json:"answers"`
	// Questions is a denormalized snapshot so later quiz edits don't change
	// what was graded.
	Questions []Question `json:"questions"`
	Status    string     `json:"status,omitempty"`
	CreatedAt int64      `json:"createdAt,omitempty"`
}

// StripAnswerKeys returns a copy of q safe to serve to students.
func (q Quiz) StripAnswerKeys() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	copy(out.Questions, q.Questions)
	for i := range out.Questions {
		out.Questions[i].AnswerKey = nil
	}
	return out
}
