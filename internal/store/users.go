package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// DefaultDisplayName is shown for users who never set one.
const DefaultDisplayName = "Anonymous"

// ErrUserNotFound is returned when a profile row does not exist.
var ErrUserNotFound = errors.New("store: user not found")

// User is the leaderboard-facing mirror of a profile.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Handle      *string
}

// EnsureUser inserts the user row once; later calls leave the existing row untouched.
func (s *DB) EnsureUser(ctx context.Context, u User) error {
	name := u.DisplayName
	if name == "" {
		name = DefaultDisplayName
	}
	query, args, err := s.builder.Insert("users").
		Columns("user_id", "email", "username", "x_handle").
		Values(u.ID, u.Email, name, u.Handle).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}
	if _, err := s.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser loads a profile row.
func (s *DB) GetUser(ctx context.Context, id string) (User, error) {
	query, args, err := s.builder.
		Select("user_id", "email", "username", "x_handle").
		From("users").
		Where(sq.Eq{"user_id": id}).
		ToSql()
	if err != nil {
		return User{}, fmt.Errorf("build select user sql: %w", err)
	}
	var (
		u      User
		handle sql.NullString
	)
	err = s.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Email, &u.DisplayName, &handle)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("select user: %w", err)
	}
	if handle.Valid {
		u.Handle = &handle.String
	}
	return u, nil
}

// SetDisplayName updates the username column. An empty name resets it to the default.
func (s *DB) SetDisplayName(ctx context.Context, id, name string) error {
	if name == "" {
		name = DefaultDisplayName
	}
	return s.updateUser(ctx, id, "username", name)
}

// SetHandle updates the x_handle column; nil clears it.
func (s *DB) SetHandle(ctx context.Context, id string, handle *string) error {
	return s.updateUser(ctx, id, "x_handle", handle)
}

func (s *DB) updateUser(ctx context.Context, id, column string, value any) error {
	query, args, err := s.builder.Update("users").
		Set(column, value).
		Where(sq.Eq{"user_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}
	res, err := s.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user %s: %w", column, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}
