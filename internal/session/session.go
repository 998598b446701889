// Package session holds typed accessors over the meta collection: auth
// token, current user, per-user progress checkpoint, UI prefs and the local
// notification list. Meta records are last-write-wins; missing keys degrade
// to zero values so callers never have to special-case a fresh store.
package session

import (
	"context"
	"encoding/json"

	"github.com/quizdesk/quizdesk/internal/kv"
)

const collection = "meta"

const (
	keyAuthToken     = "authToken"
	keyCurrentUser   = "currentUser"
	keyDarkMode      = "darkMode"
	keyNotifications = "notifications"
	checkpointPrefix = "progress:"
)

type User struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"` // "student" or "instructor"
}

// Checkpoint marks how far a student got through an attempt, so a reloaded
// page can offer to resume.
type Checkpoint struct {
	QuizID        string         `json:"quizId"`
	Answers       map[string]any `json:"answers"`
	TimeRemaining int            `json:"timeRemaining"`
	Violations    int            `json:"violations"`
}

type Notification struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Read    bool   `json:"read"`
}

type Session struct {
	store kv.Store
}

func New(store kv.Store) *Session { return &Session{store: store} }

func (s *Session) SetToken(ctx context.Context, token string) error {
	return s.set(ctx, keyAuthToken, token)
}

// Token returns the stored auth token, or "" when none is stored or the
// store is unavailable.
func (s *Session) Token(ctx context.Context) string {
	var token string
	if !s.get(ctx, keyAuthToken, &token) {
		return ""
	}
	return token
}

func (s *Session) SetCurrentUser(ctx context.Context, u User) error {
	return s.set(ctx, keyCurrentUser, u)
}

func (s *Session) CurrentUser(ctx context.Context) (User, bool) {
	var u User
	ok := s.get(ctx, keyCurrentUser, &u)
	return u, ok && u.Email != ""
}

// Clear drops the token and current user on logout. Best effort.
func (s *Session) Clear(ctx context.Context) {
	_ = s.store.Delete(ctx, collection, keyAuthToken)
	_ = s.store.Delete(ctx, collection, keyCurrentUser)
}

func (s *Session) SetDarkMode(ctx context.Context, on bool) error {
	return s.set(ctx, keyDarkMode, on)
}

func (s *Session) DarkMode(ctx context.Context) bool {
	var on bool
	s.get(ctx, keyDarkMode, &on)
	return on
}

func (s *Session) SaveCheckpoint(ctx context.Context, userEmail string, cp Checkpoint) error {
	return s.set(ctx, checkpointPrefix+userEmail, cp)
}

func (s *Session) LoadCheckpoint(ctx context.Context, userEmail string) (Checkpoint, bool) {
	var cp Checkpoint
	ok := s.get(ctx, checkpointPrefix+userEmail, &cp)
	return cp, ok && cp.QuizID != ""
}

func (s *Session) ClearCheckpoint(ctx context.Context, userEmail string) {
	_ = s.store.Delete(ctx, collection, checkpointPrefix+userEmail)
}

func (s *Session) SetNotifications(ctx context.Context, list []Notification) error {
	return s.set(ctx, keyNotifications, list)
}

func (s *Session) Notifications(ctx context.Context) []Notification {
	var list []Notification
	s.get(ctx, keyNotifications, &list)
	return list
}

func (s *Session) set(ctx context.Context, key string, value any) error {
	_, err := s.store.Put(ctx, collection, kv.Record{"key": key, "value": value})
	return err
}

// get reports whether the key existed; storage failures read as absent.
func (s *Session) get(ctx context.Context, key string, out any) bool {
	rec, err := s.store.Get(ctx, collection, key)
	if err != nil {
		// missing key and storage failure both read as "not set"
		return false
	}
	buf, err := json.Marshal(rec["value"])
	if err != nil {
		return false
	}
	return json.Unmarshal(buf, out) == nil
}
