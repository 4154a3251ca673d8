package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/mindhaven/mindhaven-backend/internal/models"
)

// buildQuestions creates a question tree where question i has choices scoring
// 0..3, so expected totals are easy to compute.
func buildQuestions(n int) []models.Question {
	questions := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		q := models.Question{ID: uuid.New(), AssessmentID: uuid.New()}
		for score := 0; score <= 3; score++ {
			q.Choices = append(q.Choices, models.Choice{
				ID:         uuid.New(),
				QuestionID: q.ID,
				Score:      score,
			})
		}
		questions = append(questions, q)
	}
	return questions
}

func TestScoreAnswersSumsChoiceScores(t *testing.T) {
	questions := buildQuestions(3)
	answers := []AnswerInput{
		{QuestionID: questions[0].ID, ChoiceID: questions[0].Choices[1].ID}, // 1
		{QuestionID: questions[1].ID, ChoiceID: questions[1].Choices[3].ID}, // 3
		{QuestionID: questions[2].ID, ChoiceID: questions[2].Choices[0].ID}, // 0
	}

	total, err := ScoreAnswers(questions, answers)
	if err != nil {
		t.Fatalf("ScoreAnswers: %v", err)
	}
	if total != 4 {
		t.Fatalf("expected total 4, got %d", total)
	}
}

func TestScoreAnswersUnansweredQuestion(t *testing.T) {
	questions := buildQuestions(2)
	answers := []AnswerInput{
		{QuestionID: questions[0].ID, ChoiceID: questions[0].Choices[0].ID},
	}

	if _, err := ScoreAnswers(questions, answers); err != ErrUnansweredQuestion {
		t.Fatalf("expected ErrUnansweredQuestion, got %v", err)
	}
}

func TestScoreAnswersUnknownQuestion(t *testing.T) {
	questions := buildQuestions(1)
	answers := []AnswerInput{
		{QuestionID: uuid.New(), ChoiceID: questions[0].Choices[0].ID},
	}

	if _, err := ScoreAnswers(questions, answers); err != ErrUnknownQuestion {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
}

func TestScoreAnswersDuplicateAnswer(t *testing.T) {
	questions := buildQuestions(1)
	answers := []AnswerInput{
		{QuestionID: questions[0].ID, ChoiceID: questions[0].Choices[0].ID},
		{QuestionID: questions[0].ID, ChoiceID: questions[0].Choices[1].ID},
	}

	if _, err := ScoreAnswers(questions, answers); err != ErrDuplicateAnswer {
		t.Fatalf("expected ErrDuplicateAnswer, got %v", err)
	}
}

func TestScoreAnswersChoiceFromOtherQuestion(t *testing.T) {
	questions := buildQuestions(2)
	answers := []AnswerInput{
		{QuestionID: questions[0].ID, ChoiceID: questions[1].Choices[0].ID},
		{QuestionID: questions[1].ID, ChoiceID: questions[1].Choices[1].ID},
	}

	if _, err := ScoreAnswers(questions, answers); err != ErrChoiceMismatch {
		t.Fatalf("expected ErrChoiceMismatch, got %v", err)
	}
}
