package models

import (
	"database/sql"
	"testing"
)

func TestParseFeedback(t *testing.T) {
	valid := sql.NullString{
		String: `{"summary":"Mild symptoms","insights":"Scores trended down","recommendations":"Keep journaling"}`,
		Valid:  true,
	}
	fb, ok := ParseFeedback(valid)
	if !ok {
		t.Fatal("expected valid feedback to parse")
	}
	if fb.Summary != "Mild symptoms" || fb.Recommendations != "Keep journaling" {
		t.Fatalf("unexpected feedback: %+v", fb)
	}
}

func TestParseFeedbackDegradesToPlaceholder(t *testing.T) {
	cases := map[string]sql.NullString{
		"absent":       {Valid: false},
		"empty string": {String: "", Valid: true},
		"malformed":    {String: "{not json", Valid: true},
		"wrong shape":  {String: `"just a string"`, Valid: true},
		"empty fields": {String: `{"summary":"","insights":"","recommendations":""}`, Valid: true},
	}

	for name, raw := range cases {
		fb, ok := ParseFeedback(raw)
		if ok {
			t.Fatalf("%s: expected parse to fail", name)
		}
		if fb != NoFeedback {
			t.Fatalf("%s: expected NoFeedback placeholder, got %+v", name, fb)
		}
	}
}
