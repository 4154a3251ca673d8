package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleAdmin     = "ADMIN"
	RoleTherapist = "THERAPIST"
	RoleClient    = "CLIENT"
)

// ValidRole reports whether role is one of the known role constants.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleTherapist || role == RoleClient
}

// User is a platform account. All three roles share the table; therapist-only
// profile columns are NULL for clients and admins.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsApproved   bool      `json:"is_approved"`

	Bio               sql.NullString  `json:"-"`
	PhoneNumber       sql.NullString  `json:"-"`
	Address           sql.NullString  `json:"-"`
	ProfilePictureURL sql.NullString  `json:"-"`
	Specialization    sql.NullString  `json:"-"`
	Location          sql.NullString  `json:"-"`
	Qualifications    sql.NullString  `json:"-"`
	ExperienceYears   sql.NullInt64   `json:"-"`
	HourlyRate        sql.NullFloat64 `json:"-"`

	IsAcceptingClients bool      `json:"is_accepting_clients"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	IsActive           bool      `json:"is_active"`
}

// IsBookableTherapist reports whether this user can accept bookings.
// A therapist must be admin-approved and active before appearing anywhere.
func (u *User) IsBookableTherapist() bool {
	return u.Role == RoleTherapist && u.IsApproved && u.IsActive
}

// PublicProfile returns the JSON-safe view of a user.
func (u *User) PublicProfile() map[string]interface{} {
	profile := map[string]interface{}{
		"id":         u.ID.String(),
		"username":   u.Username,
		"email":      u.Email,
		"role":       u.Role,
		"created_at": u.CreatedAt,
	}
	if u.Bio.Valid {
		profile["bio"] = u.Bio.String
	}
	if u.PhoneNumber.Valid {
		profile["phone_number"] = u.PhoneNumber.String
	}
	if u.Address.Valid {
		profile["address"] = u.Address.String
	}
	if u.ProfilePictureURL.Valid {
		profile["profile_picture_url"] = u.ProfilePictureURL.String
	}
	if u.Role == RoleTherapist {
		profile["is_approved"] = u.IsApproved
		profile["is_accepting_clients"] = u.IsAcceptingClients
		if u.Specialization.Valid {
			profile["specialization"] = u.Specialization.String
		}
		if u.Location.Valid {
			profile["location"] = u.Location.String
		}
		if u.Qualifications.Valid {
			profile["qualifications"] = u.Qualifications.String
		}
		if u.ExperienceYears.Valid {
			profile["experience_years"] = u.ExperienceYears.Int64
		}
		if u.HourlyRate.Valid {
			profile["hourly_rate"] = u.HourlyRate.Float64
		}
	}
	return profile
}
