// Package export writes graded submissions out as CSV for instructor
// review.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/quizdesk/quizdesk/internal/quiz"
)

// WriteCSV renders one row per submission.
func WriteCSV(w io.Writer, subs []quiz.Submission) error {
	cw := csv.NewWriter(w)
	header := []string{
		"localId", "student_email", "student_name", "quiz_id",
		"score", "total_questions", "violations", "time_remaining",
		"submitted_at", "status",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range subs {
		row := []string{
			s.LocalID, s.StudentEmail, s.StudentName, s.QuizID,
			strconv.Itoa(s.Score), strconv.Itoa(s.TotalQuestions),
			strconv.Itoa(s.Violations), strconv.Itoa(s.TimeRemaining),
			s.SubmittedAt, s.Status,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Dir is a base directory export artifacts land in.
type Dir struct{ base string }

func NewDir(base string) (*Dir, error) {
	if base == "" {
		base = "./exports"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &Dir{base: base}, nil
}

// Save writes the CSV under a sanitized file name and returns the full path.
func (d *Dir) Save(name string, subs []quiz.Submission) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", errors.New("invalid export name")
	}
	path := filepath.Join(d.base, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := WriteCSV(f, subs); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
