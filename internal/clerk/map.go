// Package clerk integrates with the external identity provider: it
// verifies session tokens against the provider's published signing
// keys, fetches canonical profiles over the backend API, and
// normalizes the provider's payloads into a fixed internal shape.
package clerk

import (
	"encoding/json"
	"time"

	"github.com/stockify/stockify-server/internal/model"
)

// ProviderUser is the normalized profile extracted from a provider
// payload. Provider payloads arrive in snake_case on webhook
// deliveries and camelCase on API responses; MapProviderUser is the
// single place where that difference is absorbed.
type ProviderUser struct {
	Email        string
	FirstName    *string
	LastName     *string
	Name         *string
	ImageURL     *string
	LastSignInAt *time.Time
	CreatedAt    *time.Time
}

// MapProviderUser normalizes a raw provider user object. The email is
// the account's primary address, the display name falls back to
// "First Last" when the provider sends no full name, and timestamps
// accept both epoch milliseconds and RFC 3339 strings.
func MapProviderUser(raw map[string]any) ProviderUser {
	first := pickString(raw, "first_name", "firstName")
	last := pickString(raw, "last_name", "lastName")

	name := pickString(raw, "full_name", "fullName")
	if name == nil {
		name = model.DisplayName(first, last)
	}

	return ProviderUser{
		Email:        primaryEmail(raw),
		FirstName:    first,
		LastName:     last,
		Name:         name,
		ImageURL:     pickString(raw, "image_url", "imageUrl"),
		LastSignInAt: pickTime(raw, "last_sign_in_at", "lastSignInAt"),
		CreatedAt:    pickTime(raw, "created_at", "createdAt"),
	}
}

// primaryEmail selects the address referenced by the primary email id,
// falling back to the first listed address. Returns "" when the
// payload carries no usable address.
func primaryEmail(raw map[string]any) string {
	primaryID, _ := pick(raw, "primary_email_address_id", "primaryEmailAddressId").(string)

	addressesAny := pick(raw, "email_addresses", "emailAddresses")
	addresses, _ := addressesAny.([]any)
	if len(addresses) == 0 {
		return ""
	}

	var chosen map[string]any
	for _, a := range addresses {
		entry, ok := a.(map[string]any)
		if !ok {
			continue
		}
		if chosen == nil {
			chosen = entry
		}
		if id, _ := entry["id"].(string); primaryID != "" && id == primaryID {
			chosen = entry
			break
		}
	}
	if chosen == nil {
		return ""
	}
	if s, _ := pick(chosen, "email_address", "emailAddress").(string); s != "" {
		return s
	}
	return ""
}

// pick returns the first present key's value.
func pick(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func pickString(raw map[string]any, keys ...string) *string {
	if s, ok := pick(raw, keys...).(string); ok && s != "" {
		return &s
	}
	return nil
}

func pickTime(raw map[string]any, keys ...string) *time.Time {
	v := pick(raw, keys...)
	if v == nil {
		return nil
	}
	// Route through JSON so numbers and strings share one parser.
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if t, ok := model.ParseTimestamp(b); ok {
		return &t
	}
	return nil
}

// IsConfiguredAdmin reports whether the subject id is the one
// out-of-band configured account that is always granted ADMIN. It is
// pure and evaluated on every request so a changed configuration takes
// effect without restarts of anything but this process.
func IsConfiguredAdmin(subjectID, adminUserID string) bool {
	return adminUserID != "" && subjectID == adminUserID
}

// DefaultRole computes the role for a record created without an
// explicit role: ADMIN for the configured admin subject, STAFF for
// everyone else.
func DefaultRole(subjectID, adminUserID string) model.Role {
	if IsConfiguredAdmin(subjectID, adminUserID) {
		return model.RoleAdmin
	}
	return model.RoleStaff
}
