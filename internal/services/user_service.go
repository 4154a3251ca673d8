package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mindhaven/mindhaven-backend/internal/database"
	"github.com/mindhaven/mindhaven-backend/internal/models"
)

const userColumns = `id, username, email, password_hash, role, is_approved,
	bio, phone_number, address, profile_picture_url,
	specialization, location, qualifications, experience_years, hourly_rate,
	is_accepting_clients, created_at, updated_at, is_active`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsApproved,
		&u.Bio, &u.PhoneNumber, &u.Address, &u.ProfilePictureURL,
		&u.Specialization, &u.Location, &u.Qualifications, &u.ExperienceYears, &u.HourlyRate,
		&u.IsAcceptingClients, &u.CreatedAt, &u.UpdatedAt, &u.IsActive)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID loads a user row. Returns (nil, nil) when no such user exists.
func GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := database.PostgresDB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetUserByUsername loads a user by normalized username.
// Returns (nil, nil) when no such user exists.
func GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := database.PostgresDB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// ListUsersByRole returns active users with the given role, optionally only
// approved ones (meaningful for therapists).
func ListUsersByRole(ctx context.Context, role string, approvedOnly bool) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 AND is_active = TRUE`
	if approvedOnly {
		query += ` AND is_approved = TRUE`
	}
	query += ` ORDER BY username`

	rows, err := database.PostgresDB.QueryContext(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// GetUsernameByID retrieves username by user ID. Returns "" when the user is
// missing or inactive.
func GetUsernameByID(ctx context.Context, userID uuid.UUID) (string, error) {
	var username string
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT username FROM users WHERE id = $1 AND is_active = TRUE
	`, userID).Scan(&username)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return username, nil
}
