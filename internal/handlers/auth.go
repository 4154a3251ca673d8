package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mindhaven/mindhaven-backend/internal/database"
	"github.com/mindhaven/mindhaven-backend/internal/middleware"
	"github.com/mindhaven/mindhaven-backend/internal/models"
	"github.com/mindhaven/mindhaven-backend/internal/services"
	"github.com/mindhaven/mindhaven-backend/pkg/utils"
)

// Register Request
type RegisterRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	Specialization string `json:"specialization,omitempty"`
	Qualifications string `json:"qualifications,omitempty"`
	Bio            string `json:"bio,omitempty"`
}

// Login Request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Auth Response
type AuthResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	User    map[string]interface{} `json:"user,omitempty"`
	Token   string                 `json:"token,omitempty"`
}

// Register handles account creation for clients and therapists. Clients are
// usable immediately; therapists stay unapproved until an admin reviews them.
func Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username, email, and password are required")
		return
	}

	req.Username = utils.NormalizeUsername(req.Username)
	req.Email = utils.NormalizeEmail(req.Email)

	if err := utils.ValidateUsername(req.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	// Self-service registration never creates admins.
	if req.Role == "" {
		req.Role = models.RoleClient
	}
	if req.Role != models.RoleClient && req.Role != models.RoleTherapist {
		writeError(w, http.StatusBadRequest, "Role must be CLIENT or THERAPIST")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	userID := uuid.New()
	now := time.Now()
	isApproved := req.Role == models.RoleClient

	_, err = database.PostgresDB.ExecContext(r.Context(), `
		INSERT INTO users (id, username, email, password_hash, role, is_approved,
			specialization, qualifications, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $10)
	`, userID, req.Username, req.Email, hashedPassword, req.Role, isApproved,
		req.Specialization, req.Qualifications, req.Bio, now)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			writeError(w, http.StatusConflict, "Username or email is already taken")
			return
		}
		log.Printf("Failed to create user: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	message := "Account created successfully"
	if req.Role == models.RoleTherapist {
		message = "Account created. Your therapist profile is pending admin approval."
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: message,
		User: map[string]interface{}{
			"id":          userID.String(),
			"username":    req.Username,
			"email":       req.Email,
			"role":        req.Role,
			"is_approved": isApproved,
			"created_at":  now,
		},
	})
}

// Login authenticates by username and issues a Redis-backed session token.
// Unapproved therapists are rejected until an admin approves them.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := services.GetUserByUsername(r.Context(), utils.NormalizeUsername(req.Username))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	valid, err := utils.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !valid {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if !user.IsActive {
		writeError(w, http.StatusForbidden, "This account has been deactivated")
		return
	}
	if user.Role == models.RoleTherapist && !user.IsApproved {
		writeError(w, http.StatusForbidden, "Your therapist profile is pending admin approval")
		return
	}

	token, err := services.CreateSession(r.Context(), user.ID)
	if err != nil {
		log.Printf("Failed to create session for %s: %v", user.Username, err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Login successful",
		User:    user.PublicProfile(),
		Token:   token,
	})
}

// Logout invalidates the current session token.
func Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.RequestToken(r)
	if token != "" {
		if err := services.InvalidateSession(r.Context(), token); err != nil {
			log.Printf("Failed to invalidate session: %v", err)
		}
	}
	writeMessage(w, http.StatusOK, "Logged out")
}

// Me returns the authenticated user's profile.
func Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user.PublicProfile(),
	})
}
