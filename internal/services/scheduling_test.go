package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mindhaven/mindhaven-backend/internal/models"
)

func mustTimeOfDay(t *testing.T, s string) models.TimeOfDay {
	t.Helper()
	tod, err := models.ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q): %v", s, err)
	}
	return tod
}

// monday is a fixed Monday used across booking tests.
var monday = time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)

func mondaySlot(t *testing.T, therapistID uuid.UUID, start, end string) models.AvailabilitySlot {
	t.Helper()
	return models.AvailabilitySlot{
		ID:          uuid.New(),
		TherapistID: therapistID,
		DayOfWeek:   0,
		Start:       mustTimeOfDay(t, start),
		End:         mustTimeOfDay(t, end),
	}
}

func bookingAt(t *testing.T, therapistID uuid.UUID, start string) BookingRequest {
	t.Helper()
	return BookingRequest{
		TherapistID: therapistID,
		Date:        monday,
		Start:       mustTimeOfDay(t, start),
		Duration:    DefaultAppointmentDuration,
	}
}

func existingAppointment(t *testing.T, therapistID uuid.UUID, start, end, status string) models.Appointment {
	t.Helper()
	return models.Appointment{
		ID:          uuid.New(),
		ClientID:    uuid.New(),
		TherapistID: therapistID,
		Date:        monday,
		Start:       mustTimeOfDay(t, start),
		End:         mustTimeOfDay(t, end),
		Status:      status,
	}
}

func expectReason(t *testing.T, err error, want RejectReason) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected rejection %q, got nil error", want)
	}
	se, ok := AsSlotError(err)
	if !ok {
		t.Fatalf("expected SlotError, got %T: %v", err, err)
	}
	if se.Reason != want {
		t.Fatalf("expected reason %q, got %q", want, se.Reason)
	}
}

func TestValidateBookingInsideSlot(t *testing.T) {
	therapistID := uuid.New()
	slots := []models.AvailabilitySlot{mondaySlot(t, therapistID, "09:00", "12:00")}

	end, err := ValidateBooking(bookingAt(t, therapistID, "10:00"), monday, slots, nil, uuid.Nil)
	if err != nil {
		t.Fatalf("expected booking to be accepted, got %v", err)
	}
	if end.String() != "10:30" {
		t.Fatalf("expected end time 10:30, got %s", end)
	}
}

func TestValidateBookingBoundaryTouchAccepted(t *testing.T) {
	therapistID := uuid.New()
	// Request fills the slot exactly: start at slot start, end at slot end.
	slots := []models.AvailabilitySlot{mondaySlot(t, therapistID, "09:30", "10:00")}

	end, err := ValidateBooking(bookingAt(t, therapistID, "09:30"), monday, slots, nil, uuid.Nil)
	if err != nil {
		t.Fatalf("expected boundary-touching booking to be accepted, got %v", err)
	}
	if end.String() != "10:00" {
		t.Fatalf("expected end time 10:00, got %s", end)
	}
}

func TestValidateBookingOutsideAvailability(t *testing.T) {
	therapistID := uuid.New()
	slots := []models.AvailabilitySlot{mondaySlot(t, therapistID, "09:00", "10:00")}

	// Ends one minute past the slot.
	_, err := ValidateBooking(bookingAt(t, therapistID, "09:31"), monday, slots, nil, uuid.Nil)
	expectReason(t, err, ReasonOutsideAvailability)
}

func TestValidateBookingWrongWeekday(t *testing.T) {
	therapistID := uuid.New()
	slots := []models.AvailabilitySlot{mondaySlot(t, therapistID, "09:00", "17:00")}

	tuesday := monday.AddDate(0, 0, 1)
	req := bookingAt(t, therapistID, "10:00")
	req.Date = tuesday

	_, err := ValidateBooking(req, monday, slots, nil, uuid.Nil)
	expectReason(t, err, ReasonOutsideAvailability)
}

func TestValidateBookingPastDate(t *testing.T) {
	therapistID := uuid.New()
	slots := []models.AvailabilitySlot{mondaySlot(t, therapistID, "09:00", "17:00")}

	req := bookingAt(t, therapistID, "10:00")
	req.Date = monday.AddDate(0, 0, -7)

	_, err := ValidateBooking(req, monday, slots, nil, uuid.Nil)
	expectReason(t, err, ReasonPastDate)
}

func TestValidateBookingSameDayAccepted(t *testing.T) {
	therapistID := uuid.New()
	slots := []models.AvailabilitySlot{mondaySlot(t, therapistID, "09:00", "17:00")}

	// Booking for today is allowed; only strictly earlier dates are past.
	if _, err := ValidateBooking(bookingAt(t, therapistID, "10:00"), monday, slots, nil, uuid.Nil); err != nil {
		t.Fatalf("expected same-day booking to be accepted, got %v", err)
	}
}

func TestValidateBookingConflict(t *testing.T) {
	therapistID := uuid.New()
	slots := []models.AvailabilitySlot{mondaySlot(t, therapistID, "09:00", "17:00")}
	existing := []models.Appointment{
		existingAppointment(t, therapistID, "10:00", "10:30", models.StatusPending),
	}

	// Overlaps the existing booking by 15 minutes.
	_, err := ValidateBooking(bookingAt(t, therapistID, "10:15"), monday, slots, existing, uuid.Nil)
	expectReason(t, err, ReasonConflict)
}

func TestValidateBookingCancelledDoesNotBlock(t *testing.T) {
	therapistID := uuid.New()
	slots := []models.AvailabilitySlot{mondaySlot(t, therapistID, "09:00", "17:00")}
	existing := []models.Appointment{
		existingAppointment(t, therapistID, "10:00", "10:30", models.StatusCancelled),
		existingAppointment(t, therapistID, "10:00", "10:30", models.StatusCompleted),
	}

	if _, err := ValidateBooking(bookingAt(t, therapistID, "10:00"), monday, slots, existing, uuid.Nil); err != nil {
		t.Fatalf("expected slot freed by cancellation to be bookable, got %v", err)
	}
}

func TestValidateBookingBackToBackAccepted(t *testing.T) {
	therapistID := uuid.New()
	slots := []models.AvailabilitySlot{mondaySlot(t, therapistID, "09:00", "17:00")}
	existing := []models.Appointment{
		existingAppointment(t, therapistID, "09:30", "10:00", models.StatusConfirmed),
		existingAppointment(t, therapistID, "10:30", "11:00", models.StatusConfirmed),
	}

	// Half-open overlap: a booking touching both neighbours is fine.
	if _, err := ValidateBooking(bookingAt(t, therapistID, "10:00"), monday, slots, existing, uuid.Nil); err != nil {
		t.Fatalf("expected back-to-back booking to be accepted, got %v", err)
	}
}

func TestValidateBookingExcludesOwnRowOnUpdate(t *testing.T) {
	therapistID := uuid.New()
	slots := []models.AvailabilitySlot{mondaySlot(t, therapistID, "09:00", "17:00")}
	own := existingAppointment(t, therapistID, "10:00", "10:30", models.StatusConfirmed)

	// Revalidating the same appointment must not collide with itself.
	if _, err := ValidateBooking(bookingAt(t, therapistID, "10:00"), monday, slots, []models.Appointment{own}, own.ID); err != nil {
		t.Fatalf("expected update revalidation to pass, got %v", err)
	}
}

func TestValidateBookingDefaultsDuration(t *testing.T) {
	therapistID := uuid.New()
	slots := []models.AvailabilitySlot{mondaySlot(t, therapistID, "09:00", "17:00")}

	req := bookingAt(t, therapistID, "10:00")
	req.Duration = 0

	end, err := ValidateBooking(req, monday, slots, nil, uuid.Nil)
	if err != nil {
		t.Fatalf("expected booking with zero duration to use the default, got %v", err)
	}
	if end.String() != "10:30" {
		t.Fatalf("expected default 30-minute duration, got end %s", end)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name    string
		current string
		next    string
		role    string
		want    bool
	}{
		{"client cancels pending", models.StatusPending, models.StatusCancelled, models.RoleClient, true},
		{"client cancels confirmed", models.StatusConfirmed, models.StatusCancelled, models.RoleClient, true},
		{"client cannot confirm", models.StatusPending, models.StatusConfirmed, models.RoleClient, false},
		{"therapist confirms pending", models.StatusPending, models.StatusConfirmed, models.RoleTherapist, true},
		{"therapist completes confirmed", models.StatusConfirmed, models.StatusCompleted, models.RoleTherapist, true},
		{"therapist cannot revive cancelled", models.StatusCancelled, models.StatusConfirmed, models.RoleTherapist, false},
		{"completed is terminal for client", models.StatusCompleted, models.StatusCancelled, models.RoleClient, false},
		{"admin may revive cancelled", models.StatusCancelled, models.StatusConfirmed, models.RoleAdmin, true},
		{"no self transition", models.StatusPending, models.StatusPending, models.RoleAdmin, false},
		{"unknown status rejected", models.StatusPending, "ARCHIVED", models.RoleAdmin, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.current, tc.next, tc.role); got != tc.want {
				t.Fatalf("CanTransition(%s, %s, %s) = %v, want %v", tc.current, tc.next, tc.role, got, tc.want)
			}
		})
	}
}
