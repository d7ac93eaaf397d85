package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/stockify/stockify-server/internal/model"
)

// SyncClient mirrors user state to an external system with a single
// best-effort POST per event. Failures are logged and swallowed: the
// mirror must never fail the request that triggered the notification.
type SyncClient struct {
	URL    string
	Secret string
	http   *http.Client
}

func NewSyncClient(url, secret string) *SyncClient {
	return &SyncClient{
		URL:    url,
		Secret: secret,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// UserSyncPayload is one outbound notification. User is nil for delete
// events, where only the subject id is relayed.
type UserSyncPayload struct {
	EventType string
	UserID    string
	User      *model.User
}

// PostUserSync sends the payload to the configured mirror. It returns
// false when no mirror is configured (a no-op, not an error) and when
// the delivery fails; callers may log the result but must not
// propagate it as their own failure.
func (s *SyncClient) PostUserSync(ctx context.Context, p UserSyncPayload) bool {
	if s.URL == "" {
		return false
	}

	user := map[string]any{"userId": p.UserID}
	if p.User != nil {
		user["userId"] = p.User.UserID
		user["email"] = p.User.Email
		user["firstName"] = p.User.FirstName
		user["lastName"] = p.User.LastName
		user["name"] = p.User.Name
		user["imageUrl"] = p.User.ImageURL
		user["role"] = p.User.Role
		user["lastSignInAt"] = p.User.LastSignInAt
		user["createdAt"] = p.User.CreatedAt.UTC().Format(time.RFC3339)
	}
	body, err := json.Marshal(map[string]any{"eventType": p.EventType, "user": user})
	if err != nil {
		log.Printf("user sync: marshal payload failed: %v", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		log.Printf("user sync: build request failed: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Secret != "" {
		req.Header.Set("x-sync-secret", s.Secret)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		log.Printf("user sync: post failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("user sync: mirror responded %d for %s %s", resp.StatusCode, p.EventType, p.UserID)
		return false
	}
	return true
}
