package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mindhaven/mindhaven-backend/internal/middleware"
	"github.com/mindhaven/mindhaven-backend/internal/models"
	"github.com/mindhaven/mindhaven-backend/internal/services"
)

// AddAvailabilityRequest declares one weekly recurring slot.
// Days use ISO numbering: 0 is Monday, 6 is Sunday.
type AddAvailabilityRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func slotJSON(s models.AvailabilitySlot) map[string]interface{} {
	return map[string]interface{}{
		"id":          s.ID.String(),
		"day_of_week": s.DayOfWeek,
		"day_name":    models.WeekdayName(s.DayOfWeek),
		"start_time":  s.Start.String(),
		"end_time":    s.End.String(),
	}
}

// AddAvailability creates a weekly slot for the authenticated therapist.
// Re-adding an identical slot is a no-op, not an error.
func AddAvailability(w http.ResponseWriter, r *http.Request) {
	therapist := middleware.CurrentUser(r)

	var req AddAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		writeError(w, http.StatusBadRequest, "day_of_week must be between 0 (Monday) and 6 (Sunday)")
		return
	}
	start, err := models.ParseTimeOfDay(req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_time must be in HH:MM format")
		return
	}
	end, err := models.ParseTimeOfDay(req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_time must be in HH:MM format")
		return
	}
	if end <= start {
		writeError(w, http.StatusBadRequest, "end_time must be after start_time")
		return
	}

	slot, created, err := services.AddAvailability(r.Context(), therapist.ID, req.DayOfWeek, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save availability")
		return
	}

	if !created {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "This slot already exists",
			"slot":    slotJSON(*slot),
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Availability added",
		"slot":    slotJSON(*slot),
	})
}

// ListMyAvailability returns the authenticated therapist's weekly slots.
func ListMyAvailability(w http.ResponseWriter, r *http.Request) {
	therapist := middleware.CurrentUser(r)
	listAvailabilityFor(w, r, therapist.ID)
}

// ListTherapistAvailability returns a therapist's weekly slots for booking.
func ListTherapistAvailability(w http.ResponseWriter, r *http.Request) {
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
	if therapist == nil || !therapist.IsBookableTherapist() {
		writeError(w, http.StatusNotFound, "Therapist not found")
		return
	}

	listAvailabilityFor(w, r, id)
}

func listAvailabilityFor(w http.ResponseWriter, r *http.Request, therapistID uuid.UUID) {
	slots, err := services.LoadAllAvailability(r.Context(), therapistID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load availability")
		return
	}

	out := make([]map[string]interface{}, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotJSON(s))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"availability": out,
	})
}

// DeleteAvailability removes one of the authenticated therapist's slots.
// Existing appointments are untouched; the slot only stops future bookings.
func DeleteAvailability(w http.ResponseWriter, r *http.Request) {
	therapist := middleware.CurrentUser(r)

	slotID, err := uuid.Parse(chi.URLParam(r, "slotID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid slot id")
		return
	}

	deleted, err := services.DeleteAvailability(r.Context(), therapist.ID, slotID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete availability")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Slot not found")
		return
	}

	writeMessage(w, http.StatusOK, "Availability removed")
}
