package models

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Assessment is an admin-authored questionnaire definition.
type Assessment struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Question struct {
	ID           uuid.UUID `json:"id"`
	AssessmentID uuid.UUID `json:"assessment_id"`
	Text         string    `json:"text"`
	Choices      []Choice  `json:"choices,omitempty"`
}

type Choice struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"text"`
	Score      int       `json:"score"`
}

// UserAssessment is a completed submission with its computed score.
type UserAssessment struct {
	ID           uuid.UUID      `json:"id"`
	UserID       uuid.UUID      `json:"user_id"`
	AssessmentID uuid.UUID      `json:"assessment_id"`
	Score        int            `json:"score"`
	Feedback     sql.NullString `json:"-"`
	SubmittedAt  time.Time      `json:"submitted_at"`
}

// Feedback is the structured form of the stored feedback blob.
type Feedback struct {
	Summary         string `json:"summary"`
	Insights        string `json:"insights"`
	Recommendations string `json:"recommendations"`
}

// NoFeedback is returned for submissions whose blob is absent or unreadable,
// so the result page degrades to a placeholder instead of failing.
var NoFeedback = Feedback{
	Summary:         "No feedback is available for this assessment.",
	Insights:        "",
	Recommendations: "Please contact support if you believe this is an error.",
}

// ParseFeedback decodes the stored feedback blob. The boolean is false when
// the blob is absent or malformed; callers then get the NoFeedback placeholder.
func ParseFeedback(raw sql.NullString) (Feedback, bool) {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return NoFeedback, false
	}
	var fb Feedback
	if err := json.Unmarshal([]byte(raw.String), &fb); err != nil {
		return NoFeedback, false
	}
	if fb.Summary == "" && fb.Insights == "" && fb.Recommendations == "" {
		return NoFeedback, false
	}
	return fb, true
}
