package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mindhaven/mindhaven-backend/internal/database"
	"github.com/mindhaven/mindhaven-backend/internal/middleware"
	"github.com/mindhaven/mindhaven-backend/internal/models"
	"github.com/mindhaven/mindhaven-backend/internal/services"
)

// SubmitAssessmentRequest is a completed questionnaire. Feedback is an opaque
// blob supplied by the caller and stored as-is.
type SubmitAssessmentRequest struct {
	Answers  []services.AnswerInput `json:"answers"`
	Feedback *models.Feedback       `json:"feedback,omitempty"`
}

// CreateAssessmentRequest defines a new questionnaire.
type CreateAssessmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AddQuestionRequest appends a question with its choices in one call.
type AddQuestionRequest struct {
	Text    string `json:"text"`
	Choices []struct {
		Text  string `json:"text"`
		Score int    `json:"score"`
	} `json:"choices"`
}

// ListAssessments returns all available questionnaires.
func ListAssessments(w http.ResponseWriter, r *http.Request) {
	rows, err := database.PostgresDB.QueryContext(r.Context(), `
		SELECT id, name, description, created_at FROM assessments ORDER BY name
	`)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load assessments")
		return
	}
	defer rows.Close()

	assessments := []models.Assessment{}
	for rows.Next() {
		var a models.Assessment
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.CreatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load assessments")
			return
		}
		assessments = append(assessments, a)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"assessments": assessments,
	})
}

// GetAssessment returns one questionnaire with its full question tree.
func GetAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "assessmentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assessment id")
		return
	}

	var a models.Assessment
	err = database.PostgresDB.QueryRowContext(r.Context(), `
		SELECT id, name, description, created_at FROM assessments WHERE id = $1
	`, id).Scan(&a.ID, &a.Name, &a.Description, &a.CreatedAt)
	if err != nil {
		writeError(w, http.StatusNotFound, "Assessment not found")
		return
	}

	questions, err := services.LoadAssessmentQuestions(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load questions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"assessment": a,
		"questions":  questions,
	})
}

// SubmitAssessment scores a completed questionnaire and stores the submission.
func SubmitAssessment(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	assessmentID, err := uuid.Parse(chi.URLParam(r, "assessmentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assessment id")
		return
	}

	var req SubmitAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Answers) == 0 {
		writeError(w, http.StatusBadRequest, "At least one answer is required")
		return
	}

	feedbackJSON := ""
	if req.Feedback != nil {
		raw, err := json.Marshal(req.Feedback)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid feedback payload")
			return
		}
		feedbackJSON = string(raw)
	}

	submission, err := services.SubmitAssessment(r.Context(), user, assessmentID, req.Answers, feedbackJSON)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnansweredQuestion),
			errors.Is(err, services.ErrUnknownQuestion),
			errors.Is(err, services.ErrChoiceMismatch):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrDuplicateAnswer):
			writeError(w, http.StatusConflict, err.Error())
		default:
			log.Printf("Failed to submit assessment: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to submit assessment")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Assessment submitted",
		"result":  submissionJSON(submission),
	})
}

// submissionJSON renders a submission with its decoded feedback. Absent or
// unreadable feedback degrades to the placeholder instead of failing.
func submissionJSON(ua *models.UserAssessment) map[string]interface{} {
	feedback, ok := models.ParseFeedback(ua.Feedback)
	if !ok {
		feedback = models.NoFeedback
	}
	return map[string]interface{}{
		"id":            ua.ID.String(),
		"assessment_id": ua.AssessmentID.String(),
		"score":         ua.Score,
		"feedback":      feedback,
		"has_feedback":  ok,
		"submitted_at":  ua.SubmittedAt,
	}
}

// GetAssessmentResult returns one submission. Clients may only read their own.
func GetAssessmentResult(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	id, err := uuid.Parse(chi.URLParam(r, "resultID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid result id")
		return
	}

	ua, err := services.GetUserAssessment(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if ua == nil {
		writeError(w, http.StatusNotFound, "Result not found")
		return
	}
	if ua.UserID != user.ID && user.Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "You may only view your own results")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  submissionJSON(ua),
	})
}

// ListMyResults returns the authenticated user's submission history.
func ListMyResults(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	results, err := services.ListUserAssessments(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load results")
		return
	}

	out := make([]map[string]interface{}, 0, len(results))
	for i := range results {
		out = append(out, submissionJSON(&results[i]))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": out,
	})
}

// CreateAssessment defines a new questionnaire (admin only).
func CreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	id := uuid.New()
	_, err := database.PostgresDB.ExecContext(r.Context(), `
		INSERT INTO assessments (id, name, description, created_at)
		VALUES ($1, $2, $3, NOW())
	`, id, req.Name, req.Description)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create assessment")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Assessment created",
		"id":      id.String(),
	})
}

// AddQuestion appends a question and its choices to an assessment (admin only).
func AddQuestion(w http.ResponseWriter, r *http.Request) {
	assessmentID, err := uuid.Parse(chi.URLParam(r, "assessmentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assessment id")
		return
	}

	var req AddQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" || len(req.Choices) < 2 {
		writeError(w, http.StatusBadRequest, "A question needs text and at least two choices")
		return
	}

	tx, err := database.PostgresDB.BeginTx(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	questionID := uuid.New()
	_, err = tx.ExecContext(r.Context(), `
		INSERT INTO questions (id, assessment_id, text) VALUES ($1, $2, $3)
	`, questionID, assessmentID, req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add question")
		return
	}

	for _, c := range req.Choices {
		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO choices (id, question_id, text, score) VALUES ($1, $2, $3, $4)
		`, uuid.New(), questionID, c.Text, c.Score)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to add choices")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add question")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Question added",
		"id":      questionID.String(),
	})
}

// DeleteAssessment removes a questionnaire and, via cascade, its questions,
// choices, and submissions (admin only).
func DeleteAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "assessmentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assessment id")
		return
	}

	result, err := database.PostgresDB.ExecContext(r.Context(), `
		DELETE FROM assessments WHERE id = $1
	`, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete assessment")
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "Assessment not found")
		return
	}

	writeMessage(w, http.StatusOK, "Assessment deleted")
}
