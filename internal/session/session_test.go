package session_test

import (
	"context"
	"testing"

	"github.com/quizdesk/quizdesk/internal/kv"
	"github.com/quizdesk/quizdesk/internal/session"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	return session.New(kv.NewMemStore(kv.Schema))
}

func TestTokenRoundtrip(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	if got := s.Token(ctx); got != "" {
		t.Fatalf("fresh store returned token %q", got)
	}
	if err := s.SetToken(ctx, "tok-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := s.Token(ctx); got != "tok-1" {
		t.Fatalf("token = %q", got)
	}
	// last write wins
	if err := s.SetToken(ctx, "tok-2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := s.Token(ctx); got != "tok-2" {
		t.Fatalf("token = %q", got)
	}
}

func TestCurrentUserAndClear(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	if _, ok := s.CurrentUser(ctx); ok {
		t.Fatalf("fresh store has a user")
	}
	u := session.User{Email: "student@x", Name: "Student", Role: "student"}
	if err := s.SetCurrentUser(ctx, u); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok := s.CurrentUser(ctx)
	if !ok || got != u {
		t.Fatalf("user = %+v ok=%v", got, ok)
	}

	_ = s.SetToken(ctx, "tok")
	s.Clear(ctx)
	if _, ok := s.CurrentUser(ctx); ok {
		t.Fatalf("user survived clear")
	}
	if s.Token(ctx) != "" {
		t.Fatalf("token survived clear")
	}
}

func TestCheckpoint(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	if _, ok := s.LoadCheckpoint(ctx, "student@x"); ok {
		t.Fatalf("fresh store has a checkpoint")
	}
	cp := session.Checkpoint{
		QuizID:        "quiz-1",
		Answers:       map[string]any{"q1": "A"},
		TimeRemaining: 120,
		Violations:    1,
	}
	if err := s.SaveCheckpoint(ctx, "student@x", cp); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok := s.LoadCheckpoint(ctx, "student@x")
	if !ok || got.QuizID != "quiz-1" || got.TimeRemaining != 120 {
		t.Fatalf("checkpoint = %+v ok=%v", got, ok)
	}
	// checkpoints are per user
	if _, ok := s.LoadCheckpoint(ctx, "other@x"); ok {
		t.Fatalf("checkpoint leaked across users")
	}
	s.ClearCheckpoint(ctx, "student@x")
	if _, ok := s.LoadCheckpoint(ctx, "student@x"); ok {
		t.Fatalf("checkpoint survived clear")
	}
}

func TestDarkModeAndNotifications(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	if s.DarkMode(ctx) {
		t.Fatalf("dark mode defaults on")
	}
	if err := s.SetDarkMode(ctx, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !s.DarkMode(ctx) {
		t.Fatalf("dark mode not stored")
	}

	if got := s.Notifications(ctx); len(got) != 0 {
		t.Fatalf("fresh store has notifications: %v", got)
	}
	list := []session.Notification{{ID: "n1", Message: "hello"}}
	if err := s.SetNotifications(ctx, list); err != nil {
		t.Fatalf("set: %v", err)
	}
	got := s.Notifications(ctx)
	if len(got) != 1 || got[0].Message != "hello" {
		t.Fatalf("notifications = %+v", got)
	}
}
