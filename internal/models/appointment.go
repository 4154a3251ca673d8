package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Appointment statuses
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// ValidStatus reports whether s is one of the known appointment statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// TimeOfDay is a clock time as minutes since midnight. Postgres TIME columns
// round-trip through its "HH:MM[:SS]" text form.
type TimeOfDay int

// ParseTimeOfDay parses "15:04" or "15:04:05" into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, fmt.Errorf("invalid time %q", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// String renders the time as "HH:MM", which Postgres accepts for TIME columns.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Add returns the time shifted by d. The booking path never crosses midnight;
// results beyond 24:00 are clamped to 23:59 so malformed input cannot wrap.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	out := int(t) + int(d.Minutes())
	if out > 24*60-1 {
		out = 24*60 - 1
	}
	return TimeOfDay(out)
}

// ISOWeekday maps a calendar date to the 0=Monday..6=Sunday convention used by
// availability_slots.day_of_week.
func ISOWeekday(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// WeekdayName returns the display name for an ISO weekday index.
func WeekdayName(day int) string {
	names := [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if day < 0 || day > 6 {
		return "Unknown"
	}
	return names[day]
}

// AvailabilitySlot is a therapist's recurring open interval on a weekday.
type AvailabilitySlot struct {
	ID          uuid.UUID `json:"id"`
	TherapistID uuid.UUID `json:"therapist_id"`
	DayOfWeek   int       `json:"day_of_week"`
	Start       TimeOfDay `json:"start_time"`
	End         TimeOfDay `json:"end_time"`
	CreatedAt   time.Time `json:"created_at"`
}

// Appointment is a booked session between a client and a therapist.
type Appointment struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	TherapistID uuid.UUID `json:"therapist_id"`
	Date        time.Time `json:"date"`
	Start       TimeOfDay `json:"start_time"`
	End         TimeOfDay `json:"end_time"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Blocks reports whether this appointment occupies its time window for
// conflict purposes. Cancelled and completed appointments do not block.
func (a *Appointment) Blocks() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}
