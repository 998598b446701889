package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quizdesk/quizdesk/internal/gateway"
)

func TestSendParsesJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("backend got bad json: %v", err)
		}
		if body["quiz_id"] != "quiz-1" {
			t.Errorf("unexpected body: %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}))
	defer server.Close()

	gw := gateway.NewHTTPGateway(server.URL, time.Second)
	res, err := gw.Send(context.Background(), "/quiz/submit", gateway.Request{
		Method: http.MethodPost,
		Body:   map[string]string{"quiz_id": "quiz-1"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !res.OK || res.Status != 200 {
		t.Fatalf("res = %+v", res)
	}
	data, ok := res.Data.(map[string]any)
	if !ok || data["success"] != true {
		t.Fatalf("data not parsed as JSON: %#v", res.Data)
	}
}

func TestSendRejectionIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	gw := gateway.NewHTTPGateway(server.URL, time.Second)
	res, err := gw.Send(context.Background(), "/anything", gateway.Request{Method: http.MethodGet})
	if err != nil {
		t.Fatalf("4xx must not be a transport error: %v", err)
	}
	if res.OK || res.Status != http.StatusForbidden {
		t.Fatalf("res = %+v", res)
	}
	if _, ok := res.Data.(string); !ok {
		t.Fatalf("non-JSON body should pass through as text, got %#v", res.Data)
	}
}

func TestSendTransportFailureIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	server.Close() // nothing listening anymore

	gw := gateway.NewHTTPGateway(server.URL, time.Second)
	if _, err := gw.Send(context.Background(), "/quiz/submit", gateway.Request{Method: http.MethodPost}); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestSendAttachesBearerToken(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer server.Close()

	gw := gateway.NewHTTPGateway(server.URL, time.Second)
	gw.Token = func(context.Context) string { return "tok-123" }
	if _, err := gw.Send(context.Background(), "/notifications", gateway.Request{Method: http.MethodGet}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got != "Bearer tok-123" {
		t.Fatalf("authorization = %q", got)
	}
}
