package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mindhaven/mindhaven-backend/internal/database"
	"github.com/mindhaven/mindhaven-backend/internal/models"
)

// DefaultAppointmentDuration is the fixed session length used by the client
// booking path. The validator itself takes duration as a parameter.
const DefaultAppointmentDuration = 30 * time.Minute

// RejectReason identifies why a booking request was refused.
type RejectReason string

const (
	ReasonPastDate            RejectReason = "date_in_past"
	ReasonOutsideAvailability RejectReason = "outside_availability"
	ReasonConflict            RejectReason = "conflicting_appointment"
)

// SlotError is a booking rejection carrying a machine-readable reason so the
// caller can present a precise message.
type SlotError struct {
	Reason  RejectReason
	Message string
}

func (e *SlotError) Error() string { return e.Message }

// AsSlotError unwraps err into a *SlotError if it is one.
func AsSlotError(err error) (*SlotError, bool) {
	var se *SlotError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// BookingRequest is a request to reserve [Start, Start+Duration) with a
// therapist on a calendar date.
type BookingRequest struct {
	TherapistID uuid.UUID
	Date        time.Time
	Start       models.TimeOfDay
	Duration    time.Duration
}

// ValidateBooking decides admit/reject for a booking request and computes the
// derived end time. It is pure: availability and existing appointments are
// passed in, the current date is an explicit parameter, and nothing is read
// from ambient state.
//
// A slot admits the request only when it fully contains the window (boundary
// touches included). An existing PENDING or CONFIRMED appointment rejects it
// on half-open overlap, so back-to-back bookings are allowed. When validating
// an update, excludeID removes that appointment's own row from the scan.
func ValidateBooking(
	req BookingRequest,
	today time.Time,
	slots []models.AvailabilitySlot,
	existing []models.Appointment,
	excludeID uuid.UUID,
) (models.TimeOfDay, error) {
	if req.Duration <= 0 {
		req.Duration = DefaultAppointmentDuration
	}

	if dateOnly(req.Date).Before(dateOnly(today)) {
		return 0, &SlotError{Reason: ReasonPastDate, Message: "Appointment date cannot be in the past."}
	}

	end := req.Start.Add(req.Duration)
	weekday := models.ISOWeekday(req.Date)

	// Full containment in at least one declared slot; the first match is
	// sufficient, duplicates need no ranking.
	contained := false
	for _, slot := range slots {
		if slot.DayOfWeek != weekday {
			continue
		}
		if slot.Start <= req.Start && slot.End >= end {
			contained = true
			break
		}
	}
	if !contained {
		return 0, &SlotError{
			Reason:  ReasonOutsideAvailability,
			Message: "The therapist is not available at this time slot on " + models.WeekdayName(weekday) + ".",
		}
	}

	for _, appt := range existing {
		if appt.ID == excludeID {
			continue
		}
		if !appt.Blocks() {
			continue
		}
		if !dateOnly(appt.Date).Equal(dateOnly(req.Date)) {
			continue
		}
		if appt.Start < end && appt.End > req.Start {
			return 0, &SlotError{Reason: ReasonConflict, Message: "This time slot is already booked for the therapist."}
		}
	}

	return end, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BookAppointment runs the validator against the therapist's stored availability
// and bookings, then persists the appointment as PENDING. The acting client is
// an explicit parameter. Two racing requests for the same slot are resolved by
// the storage layer, not here.
func BookAppointment(ctx context.Context, client *models.User, req BookingRequest, notes string) (*models.Appointment, error) {
	therapist, err := GetUserByID(ctx, req.TherapistID)
	if err != nil {
		return nil, err
	}
	if therapist == nil || !therapist.IsBookableTherapist() {
		return nil, &SlotError{Reason: ReasonOutsideAvailability, Message: "Therapist not found or not approved."}
	}

	slots, err := LoadAvailability(ctx, req.TherapistID, models.ISOWeekday(req.Date))
	if err != nil {
		return nil, err
	}
	existing, err := LoadDayAppointments(ctx, req.TherapistID, req.Date)
	if err != nil {
		return nil, err
	}

	end, err := ValidateBooking(req, time.Now().UTC(), slots, existing, uuid.Nil)
	if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		ID:          uuid.New(),
		ClientID:    client.ID,
		TherapistID: req.TherapistID,
		Date:        dateOnly(req.Date),
		Start:       req.Start,
		End:         end,
		Status:      models.StatusPending,
		Notes:       notes,
	}

	_, err = database.PostgresDB.ExecContext(ctx, `
		INSERT INTO appointments (id, client_id, therapist_id, date, start_time, end_time, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`, appt.ID, appt.ClientID, appt.TherapistID, appt.Date, appt.Start.String(), appt.End.String(), appt.Status, appt.Notes)
	if err != nil {
		return nil, err
	}

	NotifyAppointmentCreated(appt, client, therapist)

	return appt, nil
}

// CanTransition reports whether role may move an appointment from one status
// to another. Clients may only cancel pending/confirmed bookings; therapists
// move them forward; CANCELLED and COMPLETED are terminal except for admins.
func CanTransition(current, next, role string) bool {
	if !models.ValidStatus(next) || current == next {
		return false
	}
	if role == models.RoleAdmin {
		return true
	}
	if current == models.StatusCancelled || current == models.StatusCompleted {
		return false
	}
	switch role {
	case models.RoleClient:
		return next == models.StatusCancelled
	case models.RoleTherapist:
		switch current {
		case models.StatusPending:
			return next == models.StatusConfirmed || next == models.StatusCancelled || next == models.StatusCompleted
		case models.StatusConfirmed:
			return next == models.StatusCancelled || next == models.StatusCompleted
		}
	}
	return false
}

// UpdateAppointmentStatus applies a transition on behalf of actor and fires
// cancellation emails when the appointment moves to CANCELLED.
func UpdateAppointmentStatus(ctx context.Context, actor *models.User, appt *models.Appointment, next string) error {
	if !CanTransition(appt.Status, next, actor.Role) {
		return &SlotError{Reason: ReasonConflict, Message: "This appointment cannot be moved to " + next + "."}
	}

	_, err := database.PostgresDB.ExecContext(ctx, `
		UPDATE appointments SET status = $1, updated_at = NOW() WHERE id = $2
	`, next, appt.ID)
	if err != nil {
		return err
	}
	appt.Status = next

	if next == models.StatusCancelled {
		client, cerr := GetUserByID(ctx, appt.ClientID)
		therapist, terr := GetUserByID(ctx, appt.TherapistID)
		if cerr == nil && terr == nil && client != nil && therapist != nil {
			NotifyAppointmentCancelled(appt, client, therapist)
		}
	}
	return nil
}

// LoadAvailability returns a therapist's declared slots for one ISO weekday.
func LoadAvailability(ctx context.Context, therapistID uuid.UUID, weekday int) ([]models.AvailabilitySlot, error) {
	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT id, therapist_id, day_of_week, start_time, end_time, created_at
		FROM availability_slots
		WHERE therapist_id = $1 AND day_of_week = $2
		ORDER BY start_time
	`, therapistID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAvailabilityRows(rows)
}

// LoadAllAvailability returns every slot a therapist has declared.
func LoadAllAvailability(ctx context.Context, therapistID uuid.UUID) ([]models.AvailabilitySlot, error) {
	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT id, therapist_id, day_of_week, start_time, end_time, created_at
		FROM availability_slots
		WHERE therapist_id = $1
		ORDER BY day_of_week, start_time
	`, therapistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAvailabilityRows(rows)
}

func scanAvailabilityRows(rows *sql.Rows) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	for rows.Next() {
		var slot models.AvailabilitySlot
		var startStr, endStr string
		if err := rows.Scan(&slot.ID, &slot.TherapistID, &slot.DayOfWeek, &startStr, &endStr, &slot.CreatedAt); err != nil {
			return nil, err
		}
		var err error
		if slot.Start, err = models.ParseTimeOfDay(startStr); err != nil {
			return nil, err
		}
		if slot.End, err = models.ParseTimeOfDay(endStr); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// AddAvailability inserts a weekly slot. Re-adding an identical slot is a
// no-op; the boolean is false when the row already existed.
func AddAvailability(ctx context.Context, therapistID uuid.UUID, day int, start, end models.TimeOfDay) (*models.AvailabilitySlot, bool, error) {
	var existingID uuid.UUID
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT id FROM availability_slots
		WHERE therapist_id = $1 AND day_of_week = $2 AND start_time = $3 AND end_time = $4
	`, therapistID, day, start.String(), end.String()).Scan(&existingID)
	if err == nil {
		return &models.AvailabilitySlot{
			ID: existingID, TherapistID: therapistID, DayOfWeek: day, Start: start, End: end,
		}, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, err
	}

	slot := &models.AvailabilitySlot{
		ID:          uuid.New(),
		TherapistID: therapistID,
		DayOfWeek:   day,
		Start:       start,
		End:         end,
	}
	_, err = database.PostgresDB.ExecContext(ctx, `
		INSERT INTO availability_slots (id, therapist_id, day_of_week, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (therapist_id, day_of_week, start_time, end_time) DO NOTHING
	`, slot.ID, therapistID, day, start.String(), end.String())
	if err != nil {
		return nil, false, err
	}
	return slot, true, nil
}

// DeleteAvailability removes one of the therapist's own slots.
func DeleteAvailability(ctx context.Context, therapistID, slotID uuid.UUID) (bool, error) {
	res, err := database.PostgresDB.ExecContext(ctx, `
		DELETE FROM availability_slots WHERE id = $1 AND therapist_id = $2
	`, slotID, therapistID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// LoadDayAppointments returns a therapist's appointments on one date,
// regardless of status; the validator filters blocking ones.
func LoadDayAppointments(ctx context.Context, therapistID uuid.UUID, date time.Time) ([]models.Appointment, error) {
	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT id, client_id, therapist_id, date, start_time, end_time, status, COALESCE(notes, ''), created_at, updated_at
		FROM appointments
		WHERE therapist_id = $1 AND date = $2
		ORDER BY start_time
	`, therapistID, dateOnly(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAppointmentRows(rows)
}

// ListAppointments returns all appointments where the user participates in the
// given column ("client_id" or "therapist_id"), newest date first.
func ListAppointments(ctx context.Context, userID uuid.UUID, column string) ([]models.Appointment, error) {
	if column != "client_id" && column != "therapist_id" {
		return nil, errors.New("invalid participant column")
	}
	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT id, client_id, therapist_id, date, start_time, end_time, status, COALESCE(notes, ''), created_at, updated_at
		FROM appointments
		WHERE `+column+` = $1
		ORDER BY date DESC, start_time DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAppointmentRows(rows)
}

// GetAppointmentByID loads a single appointment.
func GetAppointmentByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	row := database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, client_id, therapist_id, date, start_time, end_time, status, COALESCE(notes, ''), created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)

	appt, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return appt, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*models.Appointment, error) {
	var appt models.Appointment
	var startStr, endStr string
	err := row.Scan(&appt.ID, &appt.ClientID, &appt.TherapistID, &appt.Date,
		&startStr, &endStr, &appt.Status, &appt.Notes, &appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if appt.Start, err = models.ParseTimeOfDay(startStr); err != nil {
		return nil, err
	}
	if appt.End, err = models.ParseTimeOfDay(endStr); err != nil {
		return nil, err
	}
	return &appt, nil
}

func scanAppointmentRows(rows *sql.Rows) ([]models.Appointment, error) {
	var appts []models.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *appt)
	}
	return appts, rows.Err()
}
