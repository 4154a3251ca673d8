package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mindhaven/mindhaven-backend/internal/database"
	"github.com/mindhaven/mindhaven-backend/internal/middleware"
	"github.com/mindhaven/mindhaven-backend/internal/models"
	"github.com/mindhaven/mindhaven-backend/internal/services"
)

// cloudinaryService is configured at startup; nil means uploads are disabled.
var cloudinaryService *services.CloudinaryService

// InitCloudinaryService wires the shared upload client for handlers.
func InitCloudinaryService(svc *services.CloudinaryService) {
	cloudinaryService = svc
}

// UpdateProfileRequest carries the editable profile fields. Pointer fields
// distinguish "not sent" from "clear this value".
type UpdateProfileRequest struct {
	Bio                *string  `json:"bio,omitempty"`
	PhoneNumber        *string  `json:"phone_number,omitempty"`
	Address            *string  `json:"address,omitempty"`
	Specialization     *string  `json:"specialization,omitempty"`
	Location           *string  `json:"location,omitempty"`
	Qualifications     *string  `json:"qualifications,omitempty"`
	ExperienceYears    *int     `json:"experience_years,omitempty"`
	HourlyRate         *float64 `json:"hourly_rate,omitempty"`
	IsAcceptingClients *bool    `json:"is_accepting_clients,omitempty"`
}

// UpdateProfile updates the authenticated user's own profile fields.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Therapist-only fields are ignored for other roles rather than rejected.
	if user.Role != models.RoleTherapist {
		req.Specialization = nil
		req.Qualifications = nil
		req.ExperienceYears = nil
		req.HourlyRate = nil
		req.IsAcceptingClients = nil
	}

	setClause := "updated_at = NOW()"
	args := []interface{}{user.ID}
	addText := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		setClause += ", " + column + " = NULLIF($" + strconv.Itoa(len(args)) + ", '')"
	}

	addText("bio", req.Bio)
	addText("phone_number", req.PhoneNumber)
	addText("address", req.Address)
	addText("specialization", req.Specialization)
	addText("location", req.Location)
	addText("qualifications", req.Qualifications)
	if req.ExperienceYears != nil {
		args = append(args, *req.ExperienceYears)
		setClause += ", experience_years = $" + strconv.Itoa(len(args))
	}
	if req.HourlyRate != nil {
		args = append(args, *req.HourlyRate)
		setClause += ", hourly_rate = $" + strconv.Itoa(len(args))
	}
	if req.IsAcceptingClients != nil {
		args = append(args, *req.IsAcceptingClients)
		setClause += ", is_accepting_clients = $" + strconv.Itoa(len(args))
	}

	_, err := database.PostgresDB.ExecContext(r.Context(),
		"UPDATE users SET "+setClause+" WHERE id = $1", args...)
	if err != nil {
		log.Printf("Failed to update profile for %s: %v", user.Username, err)
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	updated, err := services.GetUserByID(r.Context(), user.ID)
	if err != nil || updated == nil {
		writeError(w, http.StatusInternalServerError, "Failed to load updated profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Profile updated",
		"user":    updated.PublicProfile(),
	})
}

// UploadProfilePicture accepts a multipart image, stores it in Cloudinary,
// and records the URL on the user row.
func UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	if cloudinaryService == nil {
		writeError(w, http.StatusServiceUnavailable, "File uploads are not configured")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	_, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "A file field is required")
		return
	}

	url, err := cloudinaryService.UploadFileFromHeader(r.Context(), header, services.FolderProfilePictures)
	if err != nil {
		log.Printf("Failed to upload profile picture for %s: %v", user.Username, err)
		writeError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	_, err = database.PostgresDB.ExecContext(r.Context(), `
		UPDATE users SET profile_picture_url = $1, updated_at = NOW() WHERE id = $2
	`, url, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save profile picture")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":             true,
		"message":             "Profile picture updated",
		"profile_picture_url": url,
	})
}

// ListTherapists returns the public directory of approved, active therapists.
func ListTherapists(w http.ResponseWriter, r *http.Request) {
	therapists, err := services.ListUsersByRole(r.Context(), models.RoleTherapist, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load therapists")
		return
	}

	out := make([]map[string]interface{}, 0, len(therapists))
	for i := range therapists {
		out = append(out, therapists[i].PublicProfile())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"therapists": out,
	})
}

// GetTherapist returns one approved therapist's public profile.
func GetTherapist(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "therapistID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid therapist id")
		return
	}

	therapist, err := services.GetUserByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load therapist")
		return
	}
	if therapist == nil || !therapist.IsBookableTherapist() {
		writeError(w, http.StatusNotFound, "Therapist not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"therapist": therapist.PublicProfile(),
	})
}
