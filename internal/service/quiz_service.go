package service

import (
	"context"
	"net/url"
	"time"

	"readyset/internal/api"
	"readyset/internal/models"
)

// QuizService submits answers and keeps the session's score fields current
type QuizService struct {
	client *api.Client
	now    func() time.Time
}

// NewQuizService creates a new quiz service
func NewQuizService(client *api.Client) *QuizService {
	return &QuizService{client: client, now: time.Now}
}

// List fetches the available quizzes
func (s *QuizService) List(ctx context.Context, sess Session) ([]models.Quiz, error) {
	return s.client.ListQuizzes(ctx, sess)
}

// Get fetches one quiz with its questions
func (s *QuizService) Get(ctx context.Context, sess Session, id string) (*models.Quiz, error) {
	return s.client.GetQuiz(ctx, sess, id)
}

// AnswersFromForm reads one choice per question from form fields named answer_<questionID>.
// It returns the ids of questions left unanswered or answered with an unknown choice.
func AnswersFromForm(quiz models.Quiz, form url.Values) (models.Answers, []string) {
	answers := models.Answers{}
	var missing []string
	for _, q := range quiz.Questions {
		choice := form.Get("answer_" + q.ID)
		if !hasChoice(q, choice) {
			missing = append(missing, q.ID)
			continue
		}
		answers[q.ID] = choice
	}
	return answers, missing
}

func hasChoice(q models.Question, id string) bool {
	for _, c := range q.Choices {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Submit sends the answers and merges the outcome into the session user
func (s *QuizService) Submit(ctx context.Context, sess Session, quiz models.Quiz, answers models.Answers) (models.QuizResult, error) {
	result, err := s.client.SubmitQuiz(ctx, sess, quiz, answers)
	if err != nil {
		return result, err
	}

	var patch models.UserPatch
	if result.User != nil {
		patch = *result.User
	}
	// score fields the backend left out are computed locally
	if patch.Score == nil && patch.CompletedQuizzes == nil {
		if user := sess.User(); user != nil {
			local := ScorePatch(user, quiz, result, s.now())
			patch.Score = local.Score
			patch.CompletedQuizzes = local.CompletedQuizzes
			patch.AverageScore = local.AverageScore
			if patch.QuizHistory == nil {
				patch.QuizHistory = local.QuizHistory
			}
		}
	}

	if err := sess.UpdateUser(ctx, patch); err != nil {
		return result, err
	}
	return result, nil
}

// ScorePatch computes the user fields a finished quiz changes
func ScorePatch(u *models.User, quiz models.Quiz, result models.QuizResult, at time.Time) models.UserPatch {
	completed := u.CompletedQuizzes + 1
	score := u.Score + result.Score
	average := (u.AverageScore*float64(u.CompletedQuizzes) + result.Percent()) / float64(completed)

	history := append(append([]models.QuizAttempt(nil), u.QuizHistory...), models.QuizAttempt{
		QuizID:      quiz.ID,
		QuizTitle:   quiz.Title,
		Score:       result.Score,
		Total:       result.Total,
		CompletedAt: at,
	})

	return models.UserPatch{
		Score:            &score,
		CompletedQuizzes: &completed,
		AverageScore:     &average,
		QuizHistory:      history,
	}
}

// Leaderboard returns the ranked users
func (s *QuizService) Leaderboard(ctx context.Context, sess Session) ([]models.LeaderboardEntry, error) {
	return s.client.Leaderboard(ctx, sess)
}
