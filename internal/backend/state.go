// Package backend is the simulated remote: an in-process HTTP server whose
// contract the sync coordinator and submission path depend on. Its business
// rules are deliberately thin.
package backend

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/quizdesk/quizdesk/internal/quiz"
	"github.com/quizdesk/quizdesk/internal/session"
)

var errInvalidCredentials = errors.New("invalid credentials")

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"` // "student" or "instructor"
	PasswordHash string `json:"-"`
}

// State is the backend's own storage, separate from the local-first store.
type State struct {
	mu              sync.RWMutex
	users           map[string]User // by email
	quizzes         map[string]quiz.Quiz
	submissions     []quiz.Submission
	notifications   []session.Notification
	resultsReleased bool
}

func NewState() *State {
	return &State{
		users:   map[string]User{},
		quizzes: map[string]quiz.Quiz{},
	}
}

// AddUser registers a user with a bcrypt-hashed password.
func (s *State) AddUser(email, name, role, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
	}
	return nil
}

// Authenticate checks credentials and the expected role.
func (s *State) Authenticate(email, password, role string) (User, error) {
	s.mu.RLock()
	u, ok := s.users[email]
	s.mu.RUnlock()
	if !ok || u.Role != role {
		return User{}, errInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, errInvalidCredentials
	}
	return u, nil
}

func (s *State) PutQuiz(q quiz.Quiz) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[q.ID] = q
}

// PublishedQuizzes returns published quizzes with answer keys stripped.
func (s *State) PublishedQuizzes() []quiz.Quiz {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]quiz.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		if q.Published {
			out = append(out, q.StripAnswerKeys())
		}
	}
	return out
}

func (s *State) AcceptSubmission(sub quiz.Submission) {
	// status is queue-local; the backend stores what was graded
	sub.Status = ""
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, sub)
}

func (s *State) Submissions() []quiz.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]quiz.Submission, len(s.submissions))
	copy(out, s.submissions)
	return out
}

func (s *State) ReleaseResults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resultsReleased = true
}

func (s *State) ResultsReleased() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resultsReleased
}

func (s *State) AddNotification(n session.Notification) session.Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return n
}

func (s *State) Notifications() []session.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]session.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}
