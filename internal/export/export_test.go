package export_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/quizdesk/quizdesk/internal/export"
	"github.com/quizdesk/quizdesk/internal/quiz"
)

func sample() []quiz.Submission {
	return []quiz.Submission{
		{
			LocalID: "1", StudentEmail: "a@x", StudentName: "A",
			QuizID: "quiz-1", Score: 2, TotalQuestions: 3,
			Violations: 1, TimeRemaining: 40,
			SubmittedAt: "2025-06-01T12:00:00Z", Status: quiz.StatusSynced,
		},
		{
			LocalID: "2", StudentEmail: "b@x", QuizID: "quiz-1",
			Status: quiz.StatusFailed,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, sample()); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "localId" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][4] != "2" || rows[1][9] != quiz.StatusSynced {
		t.Fatalf("row = %v", rows[1])
	}
}

func TestDirSave(t *testing.T) {
	base := t.TempDir()
	dir, err := export.NewDir(base)
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}
	// path traversal in the name is flattened to the base name
	path, err := dir.Save("../escape.csv", sample())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Dir(path) != base {
		t.Fatalf("file escaped base dir: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("empty export")
	}
}
