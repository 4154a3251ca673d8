package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mindhaven/mindhaven-backend/internal/database"
	"github.com/mindhaven/mindhaven-backend/internal/models"
)

var (
	ErrUnansweredQuestion = errors.New("every question must be answered")
	ErrUnknownQuestion    = errors.New("answer references a question outside this assessment")
	ErrChoiceMismatch     = errors.New("selected choice does not belong to its question")
	ErrDuplicateAnswer    = errors.New("a question was answered more than once")
)

// AnswerInput is one (question, selected choice) pair from a submission.
type AnswerInput struct {
	QuestionID uuid.UUID `json:"question_id"`
	ChoiceID   uuid.UUID `json:"choice_id"`
}

// ScoreAnswers validates a submission against the assessment's question tree
// and computes the total score as the sum of selected choice scores. It is
// pure; questions arrive with their choices preloaded.
func ScoreAnswers(questions []models.Question, answers []AnswerInput) (int, error) {
	byQuestion := make(map[uuid.UUID]models.Question, len(questions))
	for _, q := range questions {
		byQuestion[q.ID] = q
	}

	seen := make(map[uuid.UUID]bool, len(answers))
	total := 0
	for _, ans := range answers {
		q, ok := byQuestion[ans.QuestionID]
		if !ok {
			return 0, ErrUnknownQuestion
		}
		if seen[ans.QuestionID] {
			return 0, ErrDuplicateAnswer
		}
		seen[ans.QuestionID] = true

		matched := false
		for _, c := range q.Choices {
			if c.ID == ans.ChoiceID {
				total += c.Score
				matched = true
				break
			}
		}
		if !matched {
			return 0, ErrChoiceMismatch
		}
	}

	if len(seen) != len(questions) {
		return 0, ErrUnansweredQuestion
	}

	return total, nil
}

// LoadAssessmentQuestions returns the question tree (questions with choices)
// for one assessment.
func LoadAssessmentQuestions(ctx context.Context, assessmentID uuid.UUID) ([]models.Question, error) {
	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT id, assessment_id, text FROM questions WHERE assessment_id = $1 ORDER BY id
	`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.AssessmentID, &q.Text); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range questions {
		crows, err := database.PostgresDB.QueryContext(ctx, `
			SELECT id, question_id, text, score FROM choices WHERE question_id = $1 ORDER BY score, id
		`, questions[i].ID)
		if err != nil {
			return nil, err
		}
		for crows.Next() {
			var c models.Choice
			if err := crows.Scan(&c.ID, &c.QuestionID, &c.Text, &c.Score); err != nil {
				crows.Close()
				return nil, err
			}
			questions[i].Choices = append(questions[i].Choices, c)
		}
		if err := crows.Err(); err != nil {
			crows.Close()
			return nil, err
		}
		crows.Close()
	}

	return questions, nil
}

// SubmitAssessment persists a completed submission: one Answer row per
// question, then the score recomputed by a full pass over the stored answers.
// The acting user is an explicit parameter. The answers table's uniqueness
// constraint backs the one-answer-per-question contract; a duplicate insert
// fails the whole submission rather than overwriting.
func SubmitAssessment(ctx context.Context, user *models.User, assessmentID uuid.UUID, answers []AnswerInput, feedbackJSON string) (*models.UserAssessment, error) {
	questions, err := LoadAssessmentQuestions(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("assessment has no questions")
	}

	if _, err := ScoreAnswers(questions, answers); err != nil {
		return nil, err
	}

	tx, err := database.PostgresDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	submissionID := uuid.New()
	var feedback sql.NullString
	if feedbackJSON != "" {
		feedback = sql.NullString{String: feedbackJSON, Valid: true}
	}

	// Score starts at 0 and is written after the answers land.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_assessments (id, user_id, assessment_id, score, feedback, submitted_at)
		VALUES ($1, $2, $3, 0, $4, NOW())
	`, submissionID, user.ID, assessmentID, feedback)
	if err != nil {
		return nil, err
	}

	for _, ans := range answers {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO answers (id, user_assessment_id, question_id, choice_id)
			VALUES ($1, $2, $3, $4)
		`, uuid.New(), submissionID, ans.QuestionID, ans.ChoiceID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return nil, ErrDuplicateAnswer
			}
			return nil, err
		}
	}

	// Full pass over the persisted answers, not an incremental tally.
	var total int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(c.score), 0)
		FROM answers a
		JOIN choices c ON c.id = a.choice_id
		WHERE a.user_assessment_id = $1
	`, submissionID).Scan(&total)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE user_assessments SET score = $1 WHERE id = $2
	`, total, submissionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return GetUserAssessment(ctx, submissionID)
}

// GetUserAssessment loads one submission. Returns (nil, nil) when missing.
func GetUserAssessment(ctx context.Context, id uuid.UUID) (*models.UserAssessment, error) {
	var ua models.UserAssessment
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, user_id, assessment_id, score, feedback, submitted_at
		FROM user_assessments WHERE id = $1
	`, id).Scan(&ua.ID, &ua.UserID, &ua.AssessmentID, &ua.Score, &ua.Feedback, &ua.SubmittedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ua, nil
}

// ListUserAssessments returns a user's submissions, newest first.
func ListUserAssessments(ctx context.Context, userID uuid.UUID) ([]models.UserAssessment, error) {
	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT id, user_id, assessment_id, score, feedback, submitted_at
		FROM user_assessments WHERE user_id = $1
		ORDER BY submitted_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UserAssessment
	for rows.Next() {
		var ua models.UserAssessment
		if err := rows.Scan(&ua.ID, &ua.UserID, &ua.AssessmentID, &ua.Score, &ua.Feedback, &ua.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, ua)
	}
	return out, rows.Err()
}
