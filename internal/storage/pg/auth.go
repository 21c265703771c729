package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/authline/authline/internal/domain"
	internal_errors "github.com/authline/authline/internal/errors"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const userColumns = "id, name, email, password_hash, reset_token_hash, (reset_token_expires at time zone 'utc')"

// =========================================================================
// Public Methods (satisfy the service.AuthStorage interface)
// =========================================================================

// SaveUser creates a new user record. A duplicate email surfaces as a
// conflict so the caller can distinguish it from generic failures.
func (s *Storage) SaveUser(user domain.User) (domain.UserId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.UserId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveUser(tx, user)
		return err
	})
	return id, err
}

// UserByEmail fetches a user by email, including the password hash.
func (s *Storage) UserByEmail(email domain.Email) (domain.User, error) {
	return s.scanUser(s.db.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

// UserById fetches a user by primary key.
func (s *Storage) UserById(id domain.UserId) (domain.User, error) {
	return s.scanUser(s.db.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

// UserByResetTokenHash fetches the user holding an unexpired reset token with
// the given lookup hash. Expired and unknown hashes are both a miss.
func (s *Storage) UserByResetTokenHash(hash string, now time.Time) (domain.User, error) {
	return s.scanUser(s.db.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE reset_token_hash = $1 AND reset_token_expires > $2",
		hash, now))
}

// SetResetToken stores a reset token hash and expiry, overwriting any prior
// outstanding token so at most one stays live per user.
func (s *Storage) SetResetToken(id domain.UserId, hash string, expires time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.setResetToken(tx, id, hash, expires)
	})
}

// UpdatePassword replaces the password hash and clears the reset token fields
// in a single statement.
func (s *Storage) UpdatePassword(id domain.UserId, newPassHash string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.updatePassword(tx, id, newPassHash)
	})
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

func (s *Storage) saveUser(q Querier, user domain.User) (domain.UserId, error) {
	var id domain.UserId
	err := q.QueryRow("INSERT INTO users(name, email, password_hash) VALUES($1, $2, $3) RETURNING id",
		user.Name, user.Email, user.PassHash).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return -1, &internal_errors.ErrorWithStatusCode{
				Message:    "Account already exists with the provided email",
				StatusCode: http.StatusConflict,
			}
		}
		return -1, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (s *Storage) scanUser(row *sql.Row) (domain.User, error) {
	var user domain.User
	var resetHash sql.NullString
	var resetExpires sql.NullTime
	err := row.Scan(&user.Id, &user.Name, &user.Email, &user.PassHash, &resetHash, &resetExpires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	if resetHash.Valid {
		user.ResetTokenHash = &resetHash.String
	}
	if resetExpires.Valid {
		expires := resetExpires.Time
		user.ResetTokenExp = &expires
	}
	return user, nil
}

func (s *Storage) setResetToken(q Querier, id domain.UserId, hash string, expires time.Time) error {
	result, err := q.Exec("UPDATE users SET reset_token_hash = $1, reset_token_expires = $2 WHERE id = $3",
		hash, expires, id)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for reset token update: %w", err)
	}
	if rowsAffected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

func (s *Storage) updatePassword(q Querier, id domain.UserId, newPassHash string) error {
	result, err := q.Exec(`
        UPDATE users
        SET password_hash = $1, reset_token_hash = NULL, reset_token_expires = NULL
        WHERE id = $2`,
		newPassHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for password update: %w", err)
	}
	if rowsAffected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "User not found for password update", StatusCode: http.StatusNotFound}
	}
	return nil
}
