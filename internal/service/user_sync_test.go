package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stockify/stockify-server/internal/model"
)

func TestPostUserSyncNoURL(t *testing.T) {
	s := NewSyncClient("", "secret")
	if s.PostUserSync(context.Background(), UserSyncPayload{EventType: "user.created", UserID: "user_1"}) {
		t.Error("expected false when no mirror is configured")
	}
}

func TestPostUserSyncServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewSyncClient(srv.URL, "")
	if s.PostUserSync(context.Background(), UserSyncPayload{EventType: "user.deleted", UserID: "user_1"}) {
		t.Error("expected false on 500 response")
	}
}

func TestPostUserSyncDeliversPayload(t *testing.T) {
	var (
		gotSecret string
		gotBody   map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("x-sync-secret")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u := &model.User{
		UserID:    "user_1",
		Email:     "ada@example.com",
		Role:      model.RoleStaff,
		CreatedAt: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
	}
	s := NewSyncClient(srv.URL, "shhh")
	ok := s.PostUserSync(context.Background(), UserSyncPayload{EventType: "user.updated", UserID: "user_1", User: u})
	if !ok {
		t.Fatal("expected delivery to succeed")
	}
	if gotSecret != "shhh" {
		t.Errorf("x-sync-secret = %q", gotSecret)
	}
	if gotBody["eventType"] != "user.updated" {
		t.Errorf("eventType = %v", gotBody["eventType"])
	}
	user, ok := gotBody["user"].(map[string]any)
	if !ok {
		t.Fatalf("user field missing: %v", gotBody)
	}
	if user["userId"] != "user_1" {
		t.Errorf("userId = %v", user["userId"])
	}
	if user["email"] != "ada@example.com" {
		t.Errorf("email = %v", user["email"])
	}
	if user["createdAt"] != "2026-01-15T09:00:00Z" {
		t.Errorf("createdAt = %v", user["createdAt"])
	}
}

func TestPostUserSyncDeleteSendsOnlyID(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSyncClient(srv.URL, "")
	if !s.PostUserSync(context.Background(), UserSyncPayload{EventType: "user.deleted", UserID: "user_9"}) {
		t.Fatal("expected delivery to succeed")
	}
	user, ok := gotBody["user"].(map[string]any)
	if !ok {
		t.Fatalf("user field missing: %v", gotBody)
	}
	if user["userId"] != "user_9" {
		t.Errorf("userId = %v", user["userId"])
	}
	if _, present := user["email"]; present {
		t.Error("delete payload should carry only the user id")
	}
}
