package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"readyset/internal/models"
)

func (c *Client) ListQuizzes(ctx context.Context, creds Credentials) ([]models.Quiz, error) {
	raw, err := c.do(ctx, creds, http.MethodGet, "/quizzes", nil)
	if err != nil {
		return nil, err
	}
	return normalizeQuizzes(raw), nil
}

func (c *Client) GetQuiz(ctx context.Context, creds Credentials, id string) (*models.Quiz, error) {
	raw, err := c.do(ctx, creds, http.MethodGet, "/quizzes/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	quiz, ok := normalizeQuiz(raw)
	if !ok {
		return nil, fmt.Errorf("unexpected quiz response for %s", id)
	}
	return &quiz, nil
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	ChoiceID   string `json:"choiceId"`
}

// SubmitQuiz sends answers in question order and returns the score
func (c *Client) SubmitQuiz(ctx context.Context, creds Credentials, quiz models.Quiz, answers models.Answers) (models.QuizResult, error) {
	payload := struct {
		Answers []answerPayload `json:"answers"`
	}{Answers: make([]answerPayload, 0, len(answers))}
	for _, q := range quiz.Questions {
		if choice, ok := answers[q.ID]; ok {
			payload.Answers = append(payload.Answers, answerPayload{QuestionID: q.ID, ChoiceID: choice})
		}
	}

	raw, err := c.do(ctx, creds, http.MethodPost, "/quizzes/"+url.PathEscape(quiz.ID)+"/submit", payload)
	if err != nil {
		return models.QuizResult{}, err
	}
	return normalizeResult(raw, len(quiz.Questions)), nil
}

func (c *Client) Leaderboard(ctx context.Context, creds Credentials) ([]models.LeaderboardEntry, error) {
	raw, err := c.do(ctx, creds, http.MethodGet, "/leaderboard", nil)
	if err != nil {
		return nil, err
	}
	return normalizeLeaderboard(raw), nil
}
