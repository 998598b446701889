package backend_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/quizdesk/quizdesk/internal/backend"
	"github.com/quizdesk/quizdesk/internal/quiz"
)

func newTestServer(t *testing.T) (*httptest.Server, *backend.State) {
	t.Helper()
	state := backend.NewState()
	if err := state.AddUser("teacher@x", "Teacher", "instructor", "pw1"); err != nil {
		t.Fatalf("add user: %v", err)
	}
	if err := state.AddUser("student@x", "Student", "student", "pw2"); err != nil {
		t.Fatalf("add user: %v", err)
	}
	auth := backend.NewAuthService("test-secret")
	server := httptest.NewServer(backend.NewRouter(state, auth, nil, zap.NewNop()))
	t.Cleanup(server.Close)
	return server, state
}

func postJSON(t *testing.T, url string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()
	buf, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	t.Cleanup(func() { res.Body.Close() })
	var decoded map[string]any
	_ = json.NewDecoder(res.Body).Decode(&decoded)
	return res, decoded
}

func login(t *testing.T, server *httptest.Server, variant, email, password string) string {
	t.Helper()
	res, body := postJSON(t, server.URL+"/login/"+variant,
		map[string]string{"email": email, "password": password}, "")
	if res.StatusCode != 200 || body["success"] != true {
		t.Fatalf("login failed: %d %v", res.StatusCode, body)
	}
	tok, _ := body["token"].(string)
	if tok == "" {
		t.Fatalf("no token in %v", body)
	}
	return tok
}

func TestLogin(t *testing.T) {
	server, _ := newTestServer(t)

	login(t, server, "instructor", "teacher@x", "pw1")

	res, body := postJSON(t, server.URL+"/login/instructor",
		map[string]string{"email": "teacher@x", "password": "wrong"}, "")
	if res.StatusCode != http.StatusUnauthorized || body["success"] != false {
		t.Fatalf("bad password accepted: %d %v", res.StatusCode, body)
	}

	// role variants don't cross
	res, _ = postJSON(t, server.URL+"/login/student",
		map[string]string{"email": "teacher@x", "password": "pw1"}, "")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("instructor logged in via student endpoint: %d", res.StatusCode)
	}
}

func TestAvailableQuizzesStripAnswerKeys(t *testing.T) {
	server, state := newTestServer(t)
	state.PutQuiz(quiz.Quiz{
		ID: "quiz-1", Title: "Basics", Published: true,
		Questions: []quiz.Question{
			{ID: "q1", Type: quiz.TypeSingleChoice, AnswerKey: []string{"A"}},
		},
	})
	state.PutQuiz(quiz.Quiz{ID: "quiz-2", Title: "Draft", Published: false})

	res, err := http.Get(server.URL + "/quizzes/available")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res.Body.Close()
	var got []quiz.Quiz
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "quiz-1" {
		t.Fatalf("expected only the published quiz, got %+v", got)
	}
	if len(got[0].Questions[0].AnswerKey) != 0 {
		t.Fatalf("answer key leaked to students")
	}
}

func TestSubmitAndInstructorReview(t *testing.T) {
	server, _ := newTestServer(t)

	res, body := postJSON(t, server.URL+"/quiz/submit", quiz.Submission{
		QuizID: "quiz-1", Score: 1, TotalQuestions: 2, Violations: 3,
	}, "")
	if res.StatusCode != 200 || body["success"] != true {
		t.Fatalf("submit rejected: %d %v", res.StatusCode, body)
	}

	// listing requires an instructor token
	req, _ := http.NewRequest(http.MethodGet, server.URL+"/submissions", nil)
	res2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	res2.Body.Close()
	if res2.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: %d", res2.StatusCode)
	}

	studentTok := login(t, server, "student", "student@x", "pw2")
	req.Header.Set("Authorization", "Bearer "+studentTok)
	res3, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	res3.Body.Close()
	if res3.StatusCode != http.StatusForbidden {
		t.Fatalf("student listed submissions: %d", res3.StatusCode)
	}

	teacherTok := login(t, server, "instructor", "teacher@x", "pw1")
	req.Header.Set("Authorization", "Bearer "+teacherTok)
	res4, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res4.Body.Close()
	var subs []quiz.Submission
	if err := json.NewDecoder(res4.Body).Decode(&subs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(subs) != 1 || subs[0].Violations != 3 {
		t.Fatalf("unexpected submissions: %+v", subs)
	}
}

func TestReleaseResults(t *testing.T) {
	server, state := newTestServer(t)
	tok := login(t, server, "instructor", "teacher@x", "pw1")

	res, body := postJSON(t, server.URL+"/release-results", nil, tok)
	if res.StatusCode != 200 || body["success"] != true {
		t.Fatalf("release failed: %d %v", res.StatusCode, body)
	}
	if !state.ResultsReleased() {
		t.Fatalf("release flag not set")
	}
}

func TestNotifications(t *testing.T) {
	server, _ := newTestServer(t)
	teacherTok := login(t, server, "instructor", "teacher@x", "pw1")

	res, body := postJSON(t, server.URL+"/notifications",
		map[string]string{"message": "results are up"}, teacherTok)
	id, _ := body["id"].(string)
	if res.StatusCode != 200 || id == "" {
		t.Fatalf("add notification: %d %v", res.StatusCode, body)
	}

	studentTok := login(t, server, "student", "student@x", "pw2")
	req, _ := http.NewRequest(http.MethodGet, server.URL+"/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+studentTok)
	res2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res2.Body.Close()
	var list []map[string]any
	if err := json.NewDecoder(res2.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0]["message"] != "results are up" {
		t.Fatalf("unexpected notifications: %+v", list)
	}
}
