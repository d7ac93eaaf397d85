package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stockify/stockify-server/internal/clerk"
	"github.com/stockify/stockify-server/internal/model"
	"github.com/stockify/stockify-server/internal/queue"
	"github.com/stockify/stockify-server/internal/repository"
	"github.com/stockify/stockify-server/internal/service"
)

// UserHandler bundles dependencies for the user endpoints.
type UserHandler struct {
	Users       *repository.UserRepo
	Sync        *service.SyncClient
	AdminUserID string

	// Publish emits a user lifecycle event to the broker. Overridable
	// in tests; the error is intentionally ignored at call sites, the
	// publisher logs its own failures.
	Publish func(ctx context.Context, ev queue.UserEvent) error
}

func NewUserHandler(users *repository.UserRepo, sync *service.SyncClient, adminUserID string) *UserHandler {
	return &UserHandler{
		Users:       users,
		Sync:        sync,
		AdminUserID: adminUserID,
		Publish:     queue.PublishUserEvent,
	}
}

// defaultRole prefers an explicitly supplied role, falling back to the
// computed default for the subject.
func defaultRole(explicit *model.Role, subjectID, adminUserID string) model.Role {
	if explicit != nil {
		return *explicit
	}
	return clerk.DefaultRole(subjectID, adminUserID)
}

func (h *UserHandler) publish(ctx context.Context, eventType string, u model.User) {
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

// GetUsers returns all user records, newest first. ADMIN only.
func (h *UserHandler) GetUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		log.Printf("list users failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error retrieving users"})
	}
	return c.JSON(http.StatusOK, users)
}

// GetCurrentUser returns the record of the authenticated subject.
func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		log.Printf("get current user %s failed: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error retrieving user"})
	}
	return c.JSON(http.StatusOK, u)
}

type updateRoleReq struct {
	Role string `json:"role"`
}

// UpdateUserRole sets a user's role. ADMIN only. The role value is
// case-insensitive and must be one of the three enum values.
func (h *UserHandler) UpdateUserRole(c echo.Context) error {
	userID := c.Param("userId")
	var req updateRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if userID == "" || req.Role == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing userId or role"})
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Users.UpdateRole(ctx, userID, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		log.Printf("update role for %s failed: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error updating user role"})
	}

	// Mirror and audit; neither may fail the request. The mirror call
	// runs detached from the handler deadline so the sync client's own
	// timeout governs delivery.
	h.Sync.PostUserSync(context.WithoutCancel(ctx), service.UserSyncPayload{
		EventType: "user.updated",
		UserID:    updated.UserID,
		User:      &updated,
	})
	h.publish(ctx, "user.role_updated", updated)

	return c.JSON(http.StatusOK, updated)
}

// DeleteUser removes a user record. ADMIN only. 404 when nothing
// matched: unlike webhook-driven deletes, an admin deleting a missing
// user deserves to know.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	userID := c.Param("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing userId"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Users.DeleteByUserID(ctx, userID)
	if err != nil {
		log.Printf("delete user %s failed: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error deleting user"})
	}
	if n == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	}

	h.publish(ctx, "user.deleted", model.User{UserID: userID})
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})
}

// syncUserBody is the partial user shape accepted by the sync
// endpoint. Optional wrappers distinguish omitted keys (leave the
// column unchanged) from explicit nulls (clear it).
type syncUserBody struct {
	UserID       string               `json:"userId"`
	ID           string               `json:"id"`
	Deleted      bool                 `json:"deleted"`
	Email        model.OptionalString `json:"email"`
	FirstName    model.OptionalString `json:"firstName"`
	LastName     model.OptionalString `json:"lastName"`
	Name         model.OptionalString `json:"name"`
	ImageURL     model.OptionalString `json:"imageUrl"`
	Role         model.OptionalString `json:"role"`
	LastSignInAt model.OptionalTime   `json:"lastSignInAt"`
	CreatedAt    model.OptionalTime   `json:"createdAt"`
}

type syncUserReq struct {
	EventType string        `json:"eventType"`
	User      *syncUserBody `json:"user"`
	Data      *syncUserBody `json:"data"`
}

// SyncUser is the server-to-server mirror endpoint (POST /users),
// gated by the x-sync-secret header. It applies create, partial
// update and delete events with upsert semantics so repeated delivery
// converges to the same state.
func (h *UserHandler) SyncUser(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var req syncUserReq
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
	}
	payload := req.User
	if payload == nil {
		payload = req.Data
	}
	if payload == nil {
		// Callers may also send the user fields at the top level.
		payload = &syncUserBody{}
		if len(body) > 0 {
			if err := json.Unmarshal(body, payload); err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
			}
		}
	}

	userID := payload.UserID
	if userID == "" {
		userID = payload.ID
	}
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing userId"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch strings.ToLower(req.EventType) {
	case "user.deleted", "delete", "deleted":
		payload.Deleted = true
	}
	if payload.Deleted {
		if _, err := h.Users.DeleteByUserID(ctx, userID); err != nil {
			log.Printf("sync delete %s failed: %v", userID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error syncing user"})
		}
		h.publish(ctx, "user.deleted", model.User{UserID: userID})
		return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})
	}

	// Email may be omitted (unchanged) but never explicitly null: a
	// record without an email cannot exist.
	if payload.Email.Set && payload.Email.Value == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid email"})
	}

	var role *model.Role
	if payload.Role.Set && payload.Role.Value != nil {
		r, ok := model.ParseRole(*payload.Role.Value)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid role"})
		}
		role = &r
	}

	// Derive a display name when the caller sent name parts but no name.
	name := payload.Name
	if !name.Set && (payload.FirstName.Set || payload.LastName.Set) {
		name.Set = true
		name.Value = model.DisplayName(payload.FirstName.Value, payload.LastName.Value)
	}

	existing, err := h.Users.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		patch := repository.UserPatch{
			Email:        payload.Email,
			FirstName:    payload.FirstName,
			LastName:     payload.LastName,
			Name:         name,
			ImageURL:     payload.ImageURL,
			Role:         role,
			LastSignInAt: payload.LastSignInAt,
		}
		updated, err := h.Users.ApplyPatch(ctx, existing.UserID, patch)
		if err != nil {
			log.Printf("sync update %s failed: %v", userID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error syncing user"})
		}
		h.publish(ctx, "user.updated", updated)
		return c.JSON(http.StatusOK, updated)

	case errors.Is(err, repository.ErrNotFound):
		if payload.Email.Value == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email is required for new users"})
		}
		record := model.User{
			UserID:       userID,
			Email:        *payload.Email.Value,
			FirstName:    payload.FirstName.Value,
			LastName:     payload.LastName.Value,
			Name:         name.Value,
			ImageURL:     payload.ImageURL.Value,
			Role:         defaultRole(role, userID, h.AdminUserID),
			LastSignInAt: payload.LastSignInAt.Value,
		}
		if payload.CreatedAt.Value != nil {
			record.CreatedAt = *payload.CreatedAt.Value
		}
		if err := h.Users.Create(ctx, record); err != nil {
			if errors.Is(err, repository.ErrEmailExists) {
				return c.JSON(http.StatusConflict, echo.Map{"error": "Email already exists"})
			}
			log.Printf("sync create %s failed: %v", userID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error syncing user"})
		}
		created, err := h.Users.GetByUserID(ctx, userID)
		if err != nil {
			log.Printf("sync readback %s failed: %v", userID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error syncing user"})
		}
		h.publish(ctx, "user.created", created)
		return c.JSON(http.StatusOK, created)

	default:
		log.Printf("sync lookup %s failed: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error syncing user"})
	}
}
