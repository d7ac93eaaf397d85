package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/stockify/stockify-server/internal/model"
	"github.com/stockify/stockify-server/internal/repository"
)

type stubProvider struct {
	profile map[string]any
	err     error
}

func (s stubProvider) GetUser(_ context.Context, _ string) (map[string]any, error) {
	return s.profile, s.err
}

func newMockUsers(t *testing.T) (*repository.UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return repository.NewUserRepo(db), mock
}

const selectUserByID = "SELECT user_id,email,first_name,last_name,name,image_url,role,last_sign_in_at,created_at FROM users WHERE user_id=? LIMIT 1"

func userRow(userID, email, role string, created time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"user_id", "email", "first_name", "last_name", "name", "image_url", "role", "last_sign_in_at", "created_at",
	}).AddRow(userID, email, nil, nil, nil, nil, role, nil, created)
}

func TestResolveKnownUser(t *testing.T) {
	users, mock := newMockUsers(t)
	created := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(selectUserByID).WithArgs("user_1").
		WillReturnRows(userRow("user_1", "ada@example.com", "MANAGER", created))

	r := NewRoleResolver(users, stubProvider{}, "")
	u, err := r.Resolve(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != model.RoleManager {
		t.Errorf("role = %s, want MANAGER", u.Role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestResolvePromotesConfiguredAdmin(t *testing.T) {
	users, mock := newMockUsers(t)
	created := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(selectUserByID).WithArgs("user_boss").
		WillReturnRows(userRow("user_boss", "boss@example.com", "STAFF", created))
	mock.ExpectExec("UPDATE users SET role=? WHERE user_id=?").
		WithArgs("ADMIN", "user_boss").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectUserByID).WithArgs("user_boss").
		WillReturnRows(userRow("user_boss", "boss@example.com", "ADMIN", created))

	r := NewRoleResolver(users, stubProvider{}, "user_boss")
	u, err := r.Resolve(context.Background(), "user_boss")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != model.RoleAdmin {
		t.Errorf("role = %s, want ADMIN", u.Role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestResolveProvisionsUnknownUser(t *testing.T) {
	users, mock := newMockUsers(t)
	created := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(selectUserByID).WithArgs("user_new").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO users (user_id,email,first_name,last_name,name,image_url,role,last_sign_in_at,created_at) VALUES (?,?,?,?,?,?,?,?,?) ON DUPLICATE KEY UPDATE user_id=VALUES(user_id), first_name=VALUES(first_name), last_name=VALUES(last_name), name=VALUES(name), image_url=VALUES(image_url), last_sign_in_at=VALUES(last_sign_in_at)").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectUserByID).WithArgs("user_new").
		WillReturnRows(userRow("user_new", "new@example.com", "STAFF", created))

	provider := stubProvider{profile: map[string]any{
		"id": "user_new",
		"email_addresses": []any{
			map[string]any{"id": "em_1", "email_address": "new@example.com"},
		},
		"primary_email_address_id": "em_1",
		"first_name":               "New",
	}}
	r := NewRoleResolver(users, provider, "")
	u, err := r.Resolve(context.Background(), "user_new")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "new@example.com" {
		t.Errorf("email = %s", u.Email)
	}
	if u.Role != model.RoleStaff {
		t.Errorf("role = %s, want STAFF", u.Role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestResolveAttachesSubjectToSeededEmail(t *testing.T) {
	users, mock := newMockUsers(t)
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(selectUserByID).WithArgs("user_first_login").
		WillReturnError(sql.ErrNoRows)
	// RowsAffected 2 is MySQL's signal that the insert hit the unique
	// email and updated the seeded row instead of creating one.
	mock.ExpectExec("INSERT INTO users (user_id,email,first_name,last_name,name,image_url,role,last_sign_in_at,created_at) VALUES (?,?,?,?,?,?,?,?,?) ON DUPLICATE KEY UPDATE user_id=VALUES(user_id), first_name=VALUES(first_name), last_name=VALUES(last_name), name=VALUES(name), image_url=VALUES(image_url), last_sign_in_at=VALUES(last_sign_in_at)").
		WillReturnResult(sqlmock.NewResult(0, 2))
	// Readback: the new subject id is attached and the seeded role and
	// created_at survive untouched.
	mock.ExpectQuery(selectUserByID).WithArgs("user_first_login").
		WillReturnRows(userRow("user_first_login", "seeded@example.com", "MANAGER", created))

	provider := stubProvider{profile: map[string]any{
		"id": "user_first_login",
		"email_addresses": []any{
			map[string]any{"id": "em_1", "email_address": "seeded@example.com"},
		},
		"primary_email_address_id": "em_1",
	}}
	r := NewRoleResolver(users, provider, "")
	u, err := r.Resolve(context.Background(), "user_first_login")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.UserID != "user_first_login" {
		t.Errorf("userID = %s, want user_first_login", u.UserID)
	}
	if u.Role != model.RoleManager {
		t.Errorf("role = %s, want the seeded MANAGER", u.Role)
	}
	if !u.CreatedAt.Equal(created) {
		t.Errorf("createdAt = %v, want %v", u.CreatedAt, created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestResolveRejectsProfileWithoutEmail(t *testing.T) {
	users, mock := newMockUsers(t)
	mock.ExpectQuery(selectUserByID).WithArgs("user_mail_less").
		WillReturnError(sql.ErrNoRows)

	provider := stubProvider{profile: map[string]any{"id": "user_mail_less", "first_name": "Ghost"}}
	r := NewRoleResolver(users, provider, "")
	_, err := r.Resolve(context.Background(), "user_mail_less")
	if !errors.Is(err, ErrNoEmail) {
		t.Fatalf("err = %v, want ErrNoEmail", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestResolveProviderFailure(t *testing.T) {
	users, mock := newMockUsers(t)
	mock.ExpectQuery(selectUserByID).WithArgs("user_x").
		WillReturnError(sql.ErrNoRows)

	r := NewRoleResolver(users, stubProvider{err: errors.New("provider down")}, "")
	if _, err := r.Resolve(context.Background(), "user_x"); err == nil {
		t.Fatal("expected error when the provider is unreachable")
	}
}
