package handler

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/stockify/stockify-server/internal/clerk"
	"github.com/stockify/stockify-server/internal/model"
	"github.com/stockify/stockify-server/internal/queue"
	"github.com/stockify/stockify-server/internal/repository"
	"github.com/stockify/stockify-server/internal/service"
)

// WebhookVerifier checks the signature of an inbound webhook delivery.
// Satisfied by *svix.Webhook.
type WebhookVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

// WebhookHandler receives signed user lifecycle deliveries from the
// identity provider and applies them to the local user store. Nothing
// is written before the signature verifies.
type WebhookHandler struct {
	Users       *repository.UserRepo
	Sync        *service.SyncClient
	AdminUserID string

	// Verifier is nil when no signing secret is configured; the
	// handler then refuses all deliveries with a 500.
	Verifier WebhookVerifier

	Publish func(ctx context.Context, ev queue.UserEvent) error
}

func NewWebhookHandler(signingSecret string, users *repository.UserRepo, sync *service.SyncClient, adminUserID string) *WebhookHandler {
	h := &WebhookHandler{
		Users:       users,
		Sync:        sync,
		AdminUserID: adminUserID,
		Publish:     queue.PublishUserEvent,
	}
	if signingSecret != "" {
		wh, err := svix.NewWebhook(signingSecret)
		if err != nil {
			log.Printf("webhook: invalid signing secret: %v", err)
		} else {
			h.Verifier = wh
		}
	}
	return h
}

// webhookEvent is the envelope of a provider delivery.
type webhookEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Handle implements POST /webhooks/clerk.
func (h *WebhookHandler) Handle(c echo.Context) error {
	if h.Verifier == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Missing CLERK_WEBHOOK_SECRET"})
	}

	headers := c.Request().Header
	if headers.Get("svix-id") == "" || headers.Get("svix-timestamp") == "" || headers.Get("svix-signature") == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing Svix headers"})
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid webhook payload"})
	}
	if err := h.Verifier.Verify(body, headers); err != nil {
		log.Printf("webhook: signature verification failed: %v", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid webhook signature"})
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid webhook payload"})
	}
	userID, _ := event.Data["id"].(string)
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch event.Type {
	case "user.deleted":
		// Tolerant of zero matches: the record may never have existed
		// locally or a previous delivery already removed it.
		if _, err := h.Users.DeleteByUserID(ctx, userID); err != nil {
			log.Printf("webhook: delete %s failed: %v", userID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Webhook handler failed"})
		}
		// Detached from the handler deadline; the sync client applies
		// its own timeout.
		h.Sync.PostUserSync(context.WithoutCancel(ctx), service.UserSyncPayload{EventType: event.Type, UserID: userID})
		h.publish(ctx, event.Type, model.User{UserID: userID})
		return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})

	case "user.created", "user.updated":
		mapped := clerk.MapProviderUser(event.Data)
		if mapped.Email == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing email address"})
		}

		record := model.User{
			UserID:       userID,
			Email:        mapped.Email,
			FirstName:    mapped.FirstName,
			LastName:     mapped.LastName,
			Name:         mapped.Name,
			ImageURL:     mapped.ImageURL,
			Role:         clerk.DefaultRole(userID, h.AdminUserID),
			LastSignInAt: mapped.LastSignInAt,
		}
		if mapped.CreatedAt != nil {
			record.CreatedAt = *mapped.CreatedAt
		}
		if err := h.Users.Upsert(ctx, record); err != nil {
			log.Printf("webhook: upsert %s failed: %v", userID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Webhook handler failed"})
		}
		stored, err := h.Users.GetByUserID(ctx, userID)
		if err != nil {
			log.Printf("webhook: readback %s failed: %v", userID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Webhook handler failed"})
		}

		h.Sync.PostUserSync(context.WithoutCancel(ctx), service.UserSyncPayload{
			EventType: event.Type,
			UserID:    stored.UserID,
			User:      &stored,
		})
		h.publish(ctx, event.Type, stored)
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}

	// Unknown event types are acknowledged without side effects.
	return c.JSON(http.StatusOK, echo.Map{"status": "ignored"})
}

func (h *WebhookHandler) publish(ctx context.Context, eventType string, u model.User) {
	if h.Publish == nil {
		return
	}
	ev := queue.UserEvent{
		EventType:  eventType,
		UserID:     u.UserID,
		Email:      u.Email,
		Role:       string(u.Role),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if u.Name != nil {
		ev.Name = *u.Name
	}
	_ = h.Publish(ctx, ev)
}
