package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"domus-server/src/models"
)

const userColumns = `id, username, email, first_name, last_name, full_name, avatar_url, password_hash, super_admin, locked, last_login, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.FullName,
		&u.AvatarURL,
		&u.PasswordHash,
		&u.SuperAdmin,
		&u.Locked,
		&u.LastLogin,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func GetUserByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(pool.QueryRow(ctx, query, id))
}

// GetUserByLogin matches either the username or the email, case-insensitively
// for the email.
func GetUserByLogin(ctx context.Context, pool *pgxpool.Pool, login string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1 OR lower(email) = lower($1)
		LIMIT 1
	`
	return scanUser(pool.QueryRow(ctx, query, strings.TrimSpace(login)))
}

// CreateUser inserts the user together with a personal household that the
// user owns.
func CreateUser(ctx context.Context, pool *pgxpool.Pool, req models.RegisterRequest, hashedPassword []byte) (*models.RegisterResponse, error) {
	resp := models.RegisterResponse{
		ID:          uuid.New(),
		Email:       req.Email,
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		HouseholdID: uuid.New(),
	}
	fullName := strings.TrimSpace(req.FirstName + " " + req.LastName)

	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, first_name, last_name, full_name, username, email, password_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, resp.ID, req.FirstName, req.LastName, fullName, req.Username, req.Email, hashedPassword)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("insert user: %w", err)
		}

		_, err = tx.Exec(ctx, `INSERT INTO households (id, name) VALUES ($1, $2)`,
			resp.HouseholdID, DefaultHouseholdName(req.FirstName))
		if err != nil {
			return fmt.Errorf("insert household: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO household_members (household_id, user_id, role)
			VALUES ($1, $2, $3)
		`, resp.HouseholdID, resp.ID, models.RoleOwner)
		if err != nil {
			return fmt.Errorf("insert owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func DefaultHouseholdName(firstName string) string {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return "Minha Casa"
	}
	return "Casa de " + firstName
}

func UpdateLastLogin(ctx context.Context, pool *pgxpool.Pool, userID uuid.UUID) error {
	_, err := pool.Exec(ctx, `UPDATE users SET last_login = now() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func UpdateUserFullName(ctx context.Context, pool *pgxpool.Pool, userID uuid.UUID, fullName string) (*models.User, error) {
	query := `UPDATE users SET full_name = $2 WHERE id = $1 RETURNING ` + userColumns
	return scanUser(pool.QueryRow(ctx, query, userID, fullName))
}

func UpdateUserEmail(ctx context.Context, pool *pgxpool.Pool, userID uuid.UUID, email string) (*models.User, error) {
	query := `UPDATE users SET email = $2 WHERE id = $1 RETURNING ` + userColumns
	u, err := scanUser(pool.QueryRow(ctx, query, userID, email))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return u, nil
}

func UpdateUserPassword(ctx context.Context, pool *pgxpool.Pool, userID uuid.UUID, hashedPassword []byte) error {
	tag, err := pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, hashedPassword)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return mustAffect(tag)
}

func UpdateUserAvatar(ctx context.Context, pool *pgxpool.Pool, userID uuid.UUID, avatarURL string) (*models.User, error) {
	query := `UPDATE users SET avatar_url = $2 WHERE id = $1 RETURNING ` + userColumns
	return scanUser(pool.QueryRow(ctx, query, userID, avatarURL))
}

// DeleteUser removes the user and settles the household they leave behind.
func DeleteUser(ctx context.Context, pool *pgxpool.Pool, userID uuid.UUID) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var householdID *uuid.UUID
		err := tx.QueryRow(ctx, `SELECT household_id FROM household_members WHERE user_id = $1`, userID).Scan(&householdID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("lookup household: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		if err := mustAffect(tag); err != nil {
			return err
		}

		if householdID != nil {
			return settleHousehold(ctx, tx, *householdID)
		}
		return nil
	})
}

func GetAllUsers(ctx context.Context, pool *pgxpool.Pool) ([]models.User, error) {
	rows, err := pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func SetUserLocked(ctx context.Context, pool *pgxpool.Pool, userID uuid.UUID, locked bool) error {
	tag, err := pool.Exec(ctx, `UPDATE users SET locked = $2 WHERE id = $1`, userID, locked)
	if err != nil {
		return fmt.Errorf("failed to set lock state: %w", err)
	}
	return mustAffect(tag)
}
