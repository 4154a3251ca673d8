package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mindhaven/mindhaven-backend/internal/database"
	"github.com/mindhaven/mindhaven-backend/internal/middleware"
	"github.com/mindhaven/mindhaven-backend/internal/models"
	"github.com/mindhaven/mindhaven-backend/internal/services"
)

// ListPendingTherapists returns therapist accounts awaiting approval.
func ListPendingTherapists(w http.ResponseWriter, r *http.Request) {
	rows, err := database.PostgresDB.QueryContext(r.Context(), `
		SELECT id, username, email, specialization, qualifications, created_at
		FROM users
		WHERE role = $1 AND is_approved = FALSE AND is_active = TRUE
		ORDER BY created_at ASC
	`, models.RoleTherapist)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load pending therapists")
		return
	}
	defer rows.Close()

	pending := []map[string]interface{}{}
	for rows.Next() {
		var t models.User
		if err := rows.Scan(&t.ID, &t.Username, &t.Email, &t.Specialization, &t.Qualifications, &t.CreatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load pending therapists")
			return
		}
		entry := map[string]interface{}{
			"id":         t.ID.String(),
			"username":   t.Username,
			"email":      t.Email,
			"created_at": t.CreatedAt,
		}
		if t.Specialization.Valid {
			entry["specialization"] = t.Specialization.String
		}
		if t.Qualifications.Valid {
			entry["qualifications"] = t.Qualifications.String
		}
		pending = append(pending, entry)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"therapists": pending,
	})
}

// SetTherapistApproval approves or revokes a therapist account.
func SetTherapistApproval(approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "therapistID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid therapist id")
			return
		}

		therapist, err := services.GetUserByID(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if therapist == nil || therapist.Role != models.RoleTherapist {
			writeError(w, http.StatusNotFound, "Therapist not found")
			return
		}

		_, err = database.PostgresDB.ExecContext(r.Context(), `
			UPDATE users SET is_approved = $1, updated_at = NOW() WHERE id = $2
		`, approve, id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update approval")
			return
		}

		if !approve {
			// Revoked therapists lose their sessions immediately.
			if err := services.InvalidateUserSessions(r.Context(), id); err != nil {
				log.Printf("Failed to invalidate sessions for %s: %v", therapist.Username, err)
			}
		}

		message := "Therapist approved"
		if !approve {
			message = "Therapist approval revoked"
		}
		writeMessage(w, http.StatusOK, message)
	}
}

// ListUsers returns all accounts, optionally filtered by role.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role != "" && !models.ValidRole(role) {
		writeError(w, http.StatusBadRequest, "Unknown role filter")
		return
	}

	query := `
		SELECT id, username, email, role, is_approved, is_active, created_at
		FROM users`
	args := []interface{}{}
	if role != "" {
		query += " WHERE role = $1"
		args = append(args, role)
	}
	query += " ORDER BY created_at DESC"

	rows, err := database.PostgresDB.QueryContext(r.Context(), query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load users")
		return
	}
	defer rows.Close()

	users := []map[string]interface{}{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.IsApproved, &u.IsActive, &u.CreatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load users")
			return
		}
		users = append(users, map[string]interface{}{
			"id":          u.ID.String(),
			"username":    u.Username,
			"email":       u.Email,
			"role":        u.Role,
			"is_approved": u.IsApproved,
			"is_active":   u.IsActive,
			"created_at":  u.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   users,
	})
}

// DeactivateUser soft-deletes an account. Rows stay for appointment and
// assessment history; the account just cannot sign in anymore.
func DeactivateUser(w http.ResponseWriter, r *http.Request) {
	admin := middleware.CurrentUser(r)

	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if id == admin.ID {
		writeError(w, http.StatusBadRequest, "You cannot deactivate your own account")
		return
	}

	result, err := database.PostgresDB.ExecContext(r.Context(), `
		UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to deactivate user")
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if err := services.InvalidateUserSessions(r.Context(), id); err != nil {
		log.Printf("Failed to invalidate sessions for %s: %v", id, err)
	}

	writeMessage(w, http.StatusOK, "User deactivated")
}

// DeleteUser removes an account permanently. Foreign keys cascade: owned
// appointments, availability, and submissions go with it; uploaded resources
// survive with uploaded_by nulled.
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	admin := middleware.CurrentUser(r)

	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if id == admin.ID {
		writeError(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	if err := services.InvalidateUserSessions(r.Context(), id); err != nil {
		log.Printf("Failed to invalidate sessions for %s: %v", id, err)
	}

	result, err := database.PostgresDB.ExecContext(r.Context(), `
		DELETE FROM users WHERE id = $1
	`, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeMessage(w, http.StatusOK, "User deleted")
}
