package models

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"09:00", "09:00", false},
		{"9:5", "09:05", false},
		{"23:59", "23:59", false},
		{"14:30:00", "14:30", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseTimeOfDay(%q): expected error, got %s", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseTimeOfDay(%q): %v", tc.in, err)
		}
		if got.String() != tc.want {
			t.Fatalf("ParseTimeOfDay(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestTimeOfDayAddClampsAtMidnight(t *testing.T) {
	late, _ := ParseTimeOfDay("23:45")
	if got := late.Add(30 * time.Minute); got.String() != "23:59" {
		t.Fatalf("expected clamp to 23:59, got %s", got)
	}
}

func TestISOWeekday(t *testing.T) {
	// 2026-09-07 is a Monday, 2026-09-13 a Sunday.
	for offset, want := range []int{0, 1, 2, 3, 4, 5, 6} {
		date := time.Date(2026, time.September, 7+offset, 0, 0, 0, 0, time.UTC)
		if got := ISOWeekday(date); got != want {
			t.Fatalf("ISOWeekday(%s) = %d, want %d", date.Format("2006-01-02"), got, want)
		}
	}
}

func TestBlocks(t *testing.T) {
	for status, want := range map[string]bool{
		StatusPending:   true,
		StatusConfirmed: true,
		StatusCancelled: false,
		StatusCompleted: false,
	} {
		a := Appointment{Status: status}
		if got := a.Blocks(); got != want {
			t.Fatalf("Blocks() for %s = %v, want %v", status, got, want)
		}
	}
}
