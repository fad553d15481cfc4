package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGotifyPush(t *testing.T) {
	var got map[string]any
	var token string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/message" {
			t.Errorf("path = %s, want /message", r.URL.Path)
		}
		token = r.Header.Get("X-Gotify-Key")
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{"id": 1})
	}))
	defer srv.Close()

	g := NewGotify(srv.URL, "app-token")
	err := g.Push(context.Background(), "New Email from alice", "Subject: hi", 10)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	if token != "app-token" {
		t.Errorf("token = %q", token)
	}
	if got["title"] != "New Email from alice" {
		t.Errorf("title = %v", got["title"])
	}
	if got["message"] != "Subject: hi" {
		t.Errorf("message = %v", got["message"])
	}
	if got["priority"].(float64) != 10 {
		t.Errorf("priority = %v", got["priority"])
	}
}

func TestGotifyPushServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewGotify(srv.URL, "wrong")
	err := g.Push(context.Background(), "t", "b", 5)
	if err == nil {
		t.Fatal("expected error on 401")
	}
}
