package backend

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/quizdesk/quizdesk/internal/quiz"
	"github.com/quizdesk/quizdesk/internal/session"
)

// NewRouter builds the simulated backend's HTTP surface.
func NewRouter(state *State, auth *AuthService, corsOrigins []string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(requestLogger(log))

	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]bool{"ok": true})
	})

	r.Post("/login/student", loginHandler(state, auth, "student"))
	r.Post("/login/instructor", loginHandler(state, auth, "instructor"))

	r.Get("/quizzes/available", availableQuizzesHandler(state))
	r.Post("/quiz/submit", submitQuizHandler(state))

	// Protected API (JWT, instructor-only where noted)
	r.Group(func(pr chi.Router) {
		pr.Use(JWTMiddleware(auth))

		pr.Get("/notifications", listNotificationsHandler(state))

		pr.With(RequireRole("instructor")).Post("/notifications", addNotificationHandler(state))
		pr.With(RequireRole("instructor")).Get("/submissions", listSubmissionsHandler(state))
		pr.With(RequireRole("instructor")).Post("/release-results", releaseResultsHandler(state))
	})

	return r
}

func loginHandler(state *State, auth *AuthService, role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		u, err := state.Authenticate(req.Email, req.Password, role)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
			return
		}
		tok, err := auth.IssueJWT(u.Email, u.Name, u.Role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{
			"success": true,
			"token":   tok,
			"user":    u,
		})
	}
}

func availableQuizzesHandler(state *State) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, state.PublishedQuizzes())
	}
}

func submitQuizHandler(state *State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub quiz.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		state.AcceptSubmission(sub)
		writeJSON(w, map[string]bool{"success": true})
	}
}

func listSubmissionsHandler(state *State) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, state.Submissions())
	}
}

func releaseResultsHandler(state *State) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		state.ReleaseResults()
		writeJSON(w, map[string]bool{"success": true})
	}
}

func listNotificationsHandler(state *State) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, state.Notifications())
	}
}

func addNotificationHandler(state *State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var n session.Notification
		if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		writeJSON(w, state.AddNotification(n))
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}
