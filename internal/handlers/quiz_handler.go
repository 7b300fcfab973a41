package handlers

import (
	"html/template"
	"net/http"

	"readyset/internal/service"
)

// QuizHandler handles quizzes and the leaderboard
type QuizHandler struct {
	views
	quizService *service.QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizService *service.QuizService, templates *template.Template, middleware *Middleware) *QuizHandler {
	return &QuizHandler{views: newViews(templates, middleware), quizService: quizService}
}

// List shows the available quizzes
func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizService.List(r.Context(), sessionFrom(r))
	if err != nil {
		handleAPIError(w, r, err, "Error fetching quizzes")
		return
	}

	data := QuizListViewData{Page: h.page(r, "Quizzes")}
	for _, q := range quizzes {
		data.Quizzes = append(data.Quizzes, QuizCard{Quiz: q, Display: q.DisasterType.Display()})
	}
	h.render(w, "quizzes.tmpl", data)
}

// Show renders a quiz's questions
func (h *QuizHandler) Show(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizService.Get(r.Context(), sessionFrom(r), r.PathValue("id"))
	if err != nil {
		handleAPIError(w, r, err, "Error fetching quiz")
		return
	}
	h.render(w, "quiz.tmpl", QuizViewData{Page: h.page(r, quiz.Title), Quiz: *quiz})
}

// Submit scores the answers; unanswered questions send the form back
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	ac := sessionFrom(r)
	quiz, err := h.quizService.Get(r.Context(), ac, r.PathValue("id"))
	if err != nil {
		handleAPIError(w, r, err, "Error fetching quiz")
		return
	}

	answers, missing := service.AnswersFromForm(*quiz, r.Form)
	if len(missing) > 0 {
		data := QuizViewData{
			Page:     h.page(r, quiz.Title),
			Quiz:     *quiz,
			Selected: answers,
			Missing:  make(map[string]bool, len(missing)),
		}
		for _, id := range missing {
			data.Missing[id] = true
		}
		data.Error = "Please answer every question."
		h.renderStatus(w, http.StatusUnprocessableEntity, "quiz.tmpl", data)
		return
	}

	result, err := h.quizService.Submit(r.Context(), ac, *quiz, answers)
	if err != nil {
		if redirectIfExpired(w, r, err) {
			return
		}
		data := QuizViewData{Page: h.page(r, quiz.Title), Quiz: *quiz, Selected: answers}
		data.Error = userMessage(err)
		h.renderStatus(w, http.StatusBadGateway, "quiz.tmpl", data)
		return
	}

	data := QuizResultViewData{
		Page:    h.page(r, quiz.Title+" Results"),
		Quiz:    *quiz,
		Result:  result,
		Percent: result.Percent(),
	}
	h.render(w, "quiz_result.tmpl", data)
}

// Leaderboard shows the ranked users
func (h *QuizHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.quizService.Leaderboard(r.Context(), sessionFrom(r))
	if err != nil {
		handleAPIError(w, r, err, "Error fetching leaderboard")
		return
	}
	h.render(w, "leaderboard.tmpl", LeaderboardViewData{Page: h.page(r, "Leaderboard"), Entries: entries})
}
