package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/stockify/stockify-server/internal/model"
)

// UserRepo persists the local mirror of identity-provider accounts.
// All statements address rows by the provider subject id (user_id) or
// the unique email.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "user_id,email,first_name,last_name,name,image_url,role,last_sign_in_at,created_at"

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(dest ...any) error }

func scanUser(s rowScanner) (model.User, error) {
	var (
		u          model.User
		first      sql.NullString
		last       sql.NullString
		name       sql.NullString
		image      sql.NullString
		role       string
		lastSignIn sql.NullTime
	)
	err := s.Scan(&u.UserID, &u.Email, &first, &last, &name, &image, &role, &lastSignIn, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.NormalizeRole(role)
	if first.Valid {
		u.FirstName = &first.String
	}
	if last.Valid {
		u.LastName = &last.String
	}
	if name.Valid {
		u.Name = &name.String
	}
	if image.Valid {
		u.ImageURL = &image.String
	}
	if lastSignIn.Valid {
		t := lastSignIn.Time.UTC()
		u.LastSignInAt = &t
	}
	return u, nil
}

// GetByUserID fetches a user by subject id.
func (r *UserRepo) GetByUserID(ctx context.Context, userID string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE user_id=? LIMIT 1", userID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// List returns all users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Count returns the number of user records.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// Create inserts a new user record.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?,?,?)",
		u.UserID, u.Email, u.FirstName, u.LastName, u.Name, u.ImageURL,
		string(u.Role), u.LastSignInAt, createdAt)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// Upsert creates or refreshes a record keyed by subject id. Profile
// fields are overwritten on conflict; role and created_at keep their
// stored values so repeated deliveries of the same event converge.
func (r *UserRepo) Upsert(ctx context.Context, u model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?,?,?) "+
			"ON DUPLICATE KEY UPDATE email=VALUES(email), first_name=VALUES(first_name), "+
			"last_name=VALUES(last_name), name=VALUES(name), image_url=VALUES(image_url), "+
			"last_sign_in_at=VALUES(last_sign_in_at)",
		u.UserID, u.Email, u.FirstName, u.LastName, u.Name, u.ImageURL,
		string(u.Role), u.LastSignInAt, createdAt)
	return err
}

// ProvisionByEmail is the first-login path. One atomic statement either
// creates the record or, when the unique email already exists (a row
// seeded by administrative means), attaches the subject id to it and
// refreshes the profile. The store's conflict resolution replaces the
// old lookup-then-create sequence, so concurrent first logins of the
// same account cannot race into duplicate rows.
func (r *UserRepo) ProvisionByEmail(ctx context.Context, u model.User) (model.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?,?,?) "+
			"ON DUPLICATE KEY UPDATE user_id=VALUES(user_id), first_name=VALUES(first_name), "+
			"last_name=VALUES(last_name), name=VALUES(name), image_url=VALUES(image_url), "+
			"last_sign_in_at=VALUES(last_sign_in_at)",
		u.UserID, u.Email, u.FirstName, u.LastName, u.Name, u.ImageURL,
		string(u.Role), u.LastSignInAt, createdAt)
	if err != nil {
		return model.User{}, err
	}
	return r.GetByUserID(ctx, u.UserID)
}

// UserPatch captures a partial update. Unset fields leave the column
// unchanged; a set field with a nil value clears a nullable column.
type UserPatch struct {
	Email        model.OptionalString
	FirstName    model.OptionalString
	LastName     model.OptionalString
	Name         model.OptionalString
	ImageURL     model.OptionalString
	Role         *model.Role
	LastSignInAt model.OptionalTime
}

// ApplyPatch updates only the columns named by the patch and returns
// the resulting row. With an empty patch it degenerates to a lookup.
func (r *UserRepo) ApplyPatch(ctx context.Context, userID string, p UserPatch) (model.User, error) {
	sets := []string{}
	args := []any{}
	if p.Email.Set && p.Email.Value != nil {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(*p.Email.Value))
	}
	if p.FirstName.Set {
		sets = append(sets, "first_name=?")
		args = append(args, p.FirstName.Value)
	}
	if p.LastName.Set {
		sets = append(sets, "last_name=?")
		args = append(args, p.LastName.Value)
	}
	if p.Name.Set {
		sets = append(sets, "name=?")
		args = append(args, p.Name.Value)
	}
	if p.ImageURL.Set {
		sets = append(sets, "image_url=?")
		args = append(args, p.ImageURL.Value)
	}
	if p.Role != nil {
		sets = append(sets, "role=?")
		args = append(args, string(*p.Role))
	}
	if p.LastSignInAt.Set {
		sets = append(sets, "last_sign_in_at=?")
		args = append(args, p.LastSignInAt.Value)
	}
	if len(sets) == 0 {
		return r.GetByUserID(ctx, userID)
	}

	args = append(args, userID)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE user_id=?", args...)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.GetByUserID(ctx, userID)
}

// UpdateRole sets the role of an existing user and returns the row.
func (r *UserRepo) UpdateRole(ctx context.Context, userID string, role model.Role) (model.User, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=? WHERE user_id=?", string(role), userID)
	if err != nil {
		return model.User{}, err
	}
	// RowsAffected is 0 both for a missing user and for an unchanged
	// role, so the follow-up lookup settles which case this was.
	return r.GetByUserID(ctx, userID)
}

// DeleteByUserID removes the matching record and reports how many rows
// were deleted. Zero matches is not an error; callers decide whether a
// missing record matters.
func (r *UserRepo) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE user_id=?", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
