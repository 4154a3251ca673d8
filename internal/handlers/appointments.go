package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mindhaven/mindhaven-backend/internal/middleware"
	"github.com/mindhaven/mindhaven-backend/internal/models"
	"github.com/mindhaven/mindhaven-backend/internal/services"
)

// BookAppointmentRequest books a 30-minute session.
type BookAppointmentRequest struct {
	TherapistID string `json:"therapist_id"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	Notes       string `json:"notes,omitempty"`
}

// UpdateAppointmentStatusRequest moves an appointment to a new status.
type UpdateAppointmentStatusRequest struct {
	Status string `json:"status"`
}

func appointmentJSON(a models.Appointment) map[string]interface{} {
	return map[string]interface{}{
		"id":           a.ID.String(),
		"client_id":    a.ClientID.String(),
		"therapist_id": a.TherapistID.String(),
		"date":         a.Date.Format("2006-01-02"),
		"start_time":   a.Start.String(),
		"end_time":     a.End.String(),
		"status":       a.Status,
		"notes":        a.Notes,
	}
}

// slotErrorStatus maps a booking rejection to an HTTP status.
func slotErrorStatus(se *services.SlotError) int {
	switch se.Reason {
	case services.ReasonConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// BookAppointment books a session with a therapist for the authenticated client.
func BookAppointment(w http.ResponseWriter, r *http.Request) {
	client := middleware.CurrentUser(r)

	var req BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	therapistID, err := uuid.Parse(req.TherapistID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid therapist id")
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}
	start, err := models.ParseTimeOfDay(req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_time must be in HH:MM format")
		return
	}

	appt, err := services.BookAppointment(r.Context(), client, services.BookingRequest{
		TherapistID: therapistID,
		Date:        date,
		Start:       start,
		Duration:    services.DefaultAppointmentDuration,
	}, req.Notes)
	if err != nil {
		if se, ok := services.AsSlotError(err); ok {
			writeJSON(w, slotErrorStatus(se), map[string]interface{}{
				"success": false,
				"message": se.Message,
				"reason":  string(se.Reason),
			})
			return
		}
		log.Printf("Failed to book appointment: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to book appointment")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"message":     "Appointment requested",
		"appointment": appointmentJSON(*appt),
	})
}

// ListMyAppointments returns the authenticated user's appointments, as client
// or as therapist depending on their role.
func ListMyAppointments(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	column := "client_id"
	if user.Role == models.RoleTherapist {
		column = "therapist_id"
	}

	appts, err := services.ListAppointments(r.Context(), user.ID, column)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load appointments")
		return
	}

	out := make([]map[string]interface{}, 0, len(appts))
	for _, a := range appts {
		entry := appointmentJSON(a)
		// Attach the counterparty's username for display.
		otherID := a.TherapistID
		if user.Role == models.RoleTherapist {
			otherID = a.ClientID
		}
		if username, err := services.GetUsernameByID(r.Context(), otherID); err == nil {
			entry["with"] = username
		}
		out = append(out, entry)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"appointments": out,
	})
}

// UpdateAppointmentStatus transitions an appointment (confirm, cancel,
// complete). Only the two participants and admins may touch it.
func UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid appointment id")
		return
	}

	var req UpdateAppointmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Unknown appointment status")
		return
	}

	appt, err := services.GetAppointmentByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if appt == nil {
		writeError(w, http.StatusNotFound, "Appointment not found")
		return
	}

	isParticipant := appt.ClientID == user.ID || appt.TherapistID == user.ID
	if !isParticipant && user.Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "You are not part of this appointment")
		return
	}

	if err := services.UpdateAppointmentStatus(r.Context(), user, appt, req.Status); err != nil {
		if se, ok := services.AsSlotError(err); ok {
			writeError(w, http.StatusConflict, se.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update appointment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Appointment updated",
		"appointment": appointmentJSON(*appt),
	})
}

// CancelAppointment is a convenience route for clients cancelling a booking.
func CancelAppointment(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid appointment id")
		return
	}

	appt, err := services.GetAppointmentByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if appt == nil {
		writeError(w, http.StatusNotFound, "Appointment not found")
		return
	}

	isParticipant := appt.ClientID == user.ID || appt.TherapistID == user.ID
	if !isParticipant && user.Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "You are not part of this appointment")
		return
	}

	if err := services.UpdateAppointmentStatus(r.Context(), user, appt, models.StatusCancelled); err != nil {
		if se, ok := services.AsSlotError(err); ok {
			writeError(w, http.StatusConflict, se.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to cancel appointment")
		return
	}

	writeMessage(w, http.StatusOK, "Appointment cancelled")
}
