// ABOUTME: Operator accounts with bcrypt password hashes, plus the role catalogue
// ABOUTME: Hashes stay inside the store; callers only see model.User

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/2389/antecedentes/internal/model"
)

const userSelect = `
	SELECT u.id, u.names, u.lastname, u.username, u.role_id, r.name, u.password_hash
	FROM users u JOIN roles r ON r.id = u.role_id
`

func scanUser(row rowScanner) (*model.User, string, error) {
	var u model.User
	var hash string
	if err := row.Scan(&u.ID, &u.Names, &u.Lastname, &u.Username, &u.RoleID, &u.RoleName, &hash); err != nil {
		return nil, "", err
	}
	u.Role = &model.Role{ID: u.RoleID, Name: u.RoleName}
	return &u, hash, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CreateUser inserts an account. Returns ErrDuplicate when the username is taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, in model.UserInput) (*model.User, error) {
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := nowString()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (names, lastname, username, password_hash, role_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(in.Names), strings.TrimSpace(in.Lastname), strings.TrimSpace(in.Username), hash, in.RoleID, now, now)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("username %s: %w", in.Username, ErrDuplicate)
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading user id: %w", err)
	}
	s.logger.Debug("created user", "id", id, "username", in.Username, "role_id", in.RoleID)
	return s.GetUser(ctx, id)
}

// GetUser retrieves an account by ID.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	u, _, err := scanUser(s.db.QueryRowContext(ctx, userSelect+` WHERE u.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// ListUsers returns every account ordered by username.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, userSelect+` ORDER BY u.username`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, _, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return out, nil
}

// UpdateUser replaces an account's fields. An empty password keeps the current hash.
func (s *SQLiteStore) UpdateUser(ctx context.Context, id int64, in model.UserInput) (*model.User, error) {
	query := `UPDATE users SET names = ?, lastname = ?, username = ?, role_id = ?, updated_at = ?`
	args := []any{strings.TrimSpace(in.Names), strings.TrimSpace(in.Lastname), strings.TrimSpace(in.Username), in.RoleID, nowString()}
	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		query += `, password_hash = ?`
		args = append(args, hash)
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("username %s: %w", in.Username, ErrDuplicate)
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes an account.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Authenticate checks a username and password pair.
// Returns ErrInvalidCredentials on any mismatch.
func (s *SQLiteStore) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, hash, err := scanUser(s.db.QueryRowContext(ctx, userSelect+` WHERE u.username = ?`, strings.TrimSpace(username)))
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("checking password: %w", err)
	}
	return u, nil
}

// EnsureAdmin creates an ADMIN account when no user with that username
// exists. It reports whether an account was created.
func (s *SQLiteStore) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username = ?`, username).Scan(&one)
	if err == nil {
		return false, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("checking admin user: %w", err)
	}

	_, err = s.CreateUser(ctx, model.UserInput{
		Names:    "Administrator",
		Lastname: "-",
		Username: username,
		Password: password,
		RoleID:   model.RoleIDAdmin,
	})
	if err != nil {
		return false, err
	}
	s.logger.Info("created bootstrap admin", "username", username)
	return true, nil
}

// ListRoles returns the role catalogue ordered by id.
func (s *SQLiteStore) ListRoles(ctx context.Context) ([]model.Role, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying roles: %w", err)
	}
	defer rows.Close()

	out := []model.Role{}
	for rows.Next() {
		var r model.Role
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("scanning role: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating roles: %w", err)
	}
	return out, nil
}
