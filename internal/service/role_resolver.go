// Package service holds the pieces between HTTP and the repositories:
// role resolution for authenticated subjects and the outbound user
// sync transport.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/stockify/stockify-server/internal/clerk"
	"github.com/stockify/stockify-server/internal/model"
	"github.com/stockify/stockify-server/internal/repository"
)

// ErrNoEmail is returned when a provider profile carries no usable
// email address; a local identity cannot be provisioned safely without
// one. Handlers translate this into a 403.
var ErrNoEmail = errors.New("user record missing email")

// ProviderClient fetches canonical profiles from the identity
// provider. Satisfied by *clerk.Client.
type ProviderClient interface {
	GetUser(ctx context.Context, userID string) (map[string]any, error)
}

// RoleResolver returns the authoritative local record for a verified
// subject id, provisioning or reconciling the record on first sight.
type RoleResolver struct {
	Users       *repository.UserRepo
	Provider    ProviderClient
	AdminUserID string
}

func NewRoleResolver(users *repository.UserRepo, provider ProviderClient, adminUserID string) *RoleResolver {
	return &RoleResolver{Users: users, Provider: provider, AdminUserID: adminUserID}
}

// Resolve looks up the subject's record, creating it from the provider
// profile when absent. The admin override is re-applied on every call
// so a stored role can never shadow the configured admin.
func (s *RoleResolver) Resolve(ctx context.Context, subjectID string) (model.User, error) {
	u, err := s.Users.GetByUserID(ctx, subjectID)
	switch {
	case err == nil:
		// known subject, fall through to the admin check
	case errors.Is(err, repository.ErrNotFound):
		u, err = s.provision(ctx, subjectID)
		if err != nil {
			return model.User{}, err
		}
	default:
		return model.User{}, err
	}

	if clerk.IsConfiguredAdmin(subjectID, s.AdminUserID) && u.Role != model.RoleAdmin {
		u, err = s.Users.UpdateRole(ctx, subjectID, model.RoleAdmin)
		if err != nil {
			return model.User{}, err
		}
	}
	return u, nil
}

// provision fetches the canonical profile and writes the record in one
// atomic upsert keyed on the unique email. When the email was seeded
// by administrative means before the first login, the upsert attaches
// the subject id to the existing row instead of creating a second one.
func (s *RoleResolver) provision(ctx context.Context, subjectID string) (model.User, error) {
	raw, err := s.Provider.GetUser(ctx, subjectID)
	if err != nil {
		return model.User{}, fmt.Errorf("fetch provider profile: %w", err)
	}
	mapped := clerk.MapProviderUser(raw)
	if mapped.Email == "" {
		return model.User{}, ErrNoEmail
	}

	record := model.User{
		UserID:       subjectID,
		Email:        mapped.Email,
		FirstName:    mapped.FirstName,
		LastName:     mapped.LastName,
		Name:         mapped.Name,
		ImageURL:     mapped.ImageURL,
		Role:         clerk.DefaultRole(subjectID, s.AdminUserID),
		LastSignInAt: mapped.LastSignInAt,
	}
	if mapped.CreatedAt != nil {
		record.CreatedAt = *mapped.CreatedAt
	}

	u, err := s.Users.ProvisionByEmail(ctx, record)
	if err != nil {
		return model.User{}, err
	}
	log.Printf("provisioned user %s (%s) with role %s", u.UserID, u.Email, u.Role)
	return u, nil
}
