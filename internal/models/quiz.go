package models

// Quiz is an ordered set of multiple-choice questions
type Quiz struct {
	ID           string
	Title        string
	Description  string
	DisasterType DisasterType
	Questions    []Question
}

// Question is one quiz question
type Question struct {
	ID      string
	Text    string
	Choices []Choice
}

// Choice is a selectable answer
type Choice struct {
	ID   string
	Text string
}

// Answers maps question id to the chosen choice id
type Answers map[string]string

// QuizResult is the outcome of a submission
type QuizResult struct {
	Score int
	Total int
	// User holds the account fields the backend returned with the score, if any
	User *UserPatch
}

// Percent returns the score as a percentage of the total
func (r QuizResult) Percent() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) * 100 / float64(r.Total)
}
