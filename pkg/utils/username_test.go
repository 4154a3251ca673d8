package utils

import "testing"

func TestValidateUsername(t *testing.T) {
	valid := []string{"alice", "bob_smith", "Therapist42", "abc"}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Fatalf("expected %q to be valid: %v", u, err)
		}
	}

	invalid := []string{"", "ab", "_leading", "has space", "dot.name", "waytoolongusernameover20chars"}
	for _, u := range invalid {
		if err := ValidateUsername(u); err == nil {
			t.Fatalf("expected %q to be rejected", u)
		}
	}
}

func TestNormalizeUsername(t *testing.T) {
	if got := NormalizeUsername("  Alice_B  "); got != "alice_b" {
		t.Fatalf("expected alice_b, got %q", got)
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("user@example.com"); err != nil {
		t.Fatalf("expected valid email: %v", err)
	}
	for _, bad := range []string{"", "not-an-email", "missing@domain@double.com"} {
		if err := ValidateEmail(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}
