package clerk

import (
	"reflect"
	"testing"

	"github.com/stockify/stockify-server/internal/model"
)

func snakeProfile() map[string]any {
	return map[string]any{
		"id":                       "user_1",
		"first_name":               "Ada",
		"last_name":                "Lovelace",
		"image_url":                "https://img.example/a.png",
		"primary_email_address_id": "em_2",
		"email_addresses": []any{
			map[string]any{"id": "em_1", "email_address": "old@example.com"},
			map[string]any{"id": "em_2", "email_address": "ada@example.com"},
		},
		"created_at":      float64(1700000000000),
		"last_sign_in_at": float64(1700000500000),
	}
}

func camelProfile() map[string]any {
	return map[string]any{
		"id":                    "user_1",
		"firstName":             "Ada",
		"lastName":              "Lovelace",
		"imageUrl":              "https://img.example/a.png",
		"primaryEmailAddressId": "em_2",
		"emailAddresses": []any{
			map[string]any{"id": "em_1", "emailAddress": "old@example.com"},
			map[string]any{"id": "em_2", "emailAddress": "ada@example.com"},
		},
		"createdAt":    float64(1700000000000),
		"lastSignInAt": float64(1700000500000),
	}
}

func TestMapProviderUserNormalizesBothCasings(t *testing.T) {
	fromSnake := MapProviderUser(snakeProfile())
	fromCamel := MapProviderUser(camelProfile())

	if !reflect.DeepEqual(fromSnake, fromCamel) {
		t.Errorf("snake and camel payloads diverge:\n snake: %+v\n camel: %+v", fromSnake, fromCamel)
	}
	if fromSnake.Email != "ada@example.com" {
		t.Errorf("primary email = %q, want ada@example.com", fromSnake.Email)
	}
	if fromSnake.Name == nil || *fromSnake.Name != "Ada Lovelace" {
		t.Errorf("derived name = %v, want Ada Lovelace", fromSnake.Name)
	}
	if fromSnake.CreatedAt == nil || fromSnake.CreatedAt.UnixMilli() != 1700000000000 {
		t.Errorf("created at not parsed from millis: %v", fromSnake.CreatedAt)
	}
}

func TestMapProviderUserFallsBackToFirstAddress(t *testing.T) {
	raw := map[string]any{
		"email_addresses": []any{
			map[string]any{"id": "em_9", "email_address": "only@example.com"},
		},
	}
	mapped := MapProviderUser(raw)
	if mapped.Email != "only@example.com" {
		t.Errorf("email = %q, want only@example.com", mapped.Email)
	}
	if mapped.Name != nil {
		t.Errorf("name should be nil with no name parts, got %q", *mapped.Name)
	}
}

func TestMapProviderUserNoAddresses(t *testing.T) {
	mapped := MapProviderUser(map[string]any{"first_name": "X"})
	if mapped.Email != "" {
		t.Errorf("email = %q, want empty", mapped.Email)
	}
}

func TestMapProviderUserPrefersFullName(t *testing.T) {
	raw := map[string]any{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"full_name":  "Countess Ada",
	}
	mapped := MapProviderUser(raw)
	if mapped.Name == nil || *mapped.Name != "Countess Ada" {
		t.Errorf("name = %v, want full_name to win", mapped.Name)
	}
}

func TestIsConfiguredAdmin(t *testing.T) {
	if !IsConfiguredAdmin("user_admin", "user_admin") {
		t.Error("matching subject should be admin")
	}
	if IsConfiguredAdmin("user_other", "user_admin") {
		t.Error("non-matching subject must not be admin")
	}
	if IsConfiguredAdmin("", "") {
		t.Error("empty configuration must never grant admin")
	}
}

func TestDefaultRole(t *testing.T) {
	if got := DefaultRole("user_admin", "user_admin"); got != model.RoleAdmin {
		t.Errorf("DefaultRole(admin) = %q, want ADMIN", got)
	}
	if got := DefaultRole("user_other", "user_admin"); got != model.RoleStaff {
		t.Errorf("DefaultRole(other) = %q, want STAFF", got)
	}
}
