package models

import "time"

// Role is the access level the backend assigns to an account
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a backend role string to a Role, defaulting to RoleUser
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// User is the signed-in account as cached in the session
type User struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Email            string        `json:"email"`
	Role             Role          `json:"role"`
	AvatarURL        string        `json:"avatarUrl,omitempty"`
	Score            int           `json:"score"`
	CompletedQuizzes int           `json:"completedQuizzes"`
	AverageScore     float64       `json:"averageScore"`
	QuizHistory      []QuizAttempt `json:"quizHistory,omitempty"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Clone returns a deep copy so callers cannot mutate shared state
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.QuizHistory != nil {
		c.QuizHistory = append([]QuizAttempt(nil), u.QuizHistory...)
	}
	return &c
}

// QuizAttempt records one completed quiz
type QuizAttempt struct {
	QuizID      string    `json:"quizId"`
	QuizTitle   string    `json:"quizTitle,omitempty"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	CompletedAt time.Time `json:"completedAt"`
}

// UserPatch holds optional fields merged into a User. Nil fields are left alone.
type UserPatch struct {
	Name             *string
	Email            *string
	Role             *Role
	AvatarURL        *string
	Score            *int
	CompletedQuizzes *int
	AverageScore     *float64
	QuizHistory      []QuizAttempt
}

// Apply merges the patch into u
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.Score != nil {
		u.Score = *p.Score
	}
	if p.CompletedQuizzes != nil {
		u.CompletedQuizzes = *p.CompletedQuizzes
	}
	if p.AverageScore != nil {
		u.AverageScore = *p.AverageScore
	}
	if p.QuizHistory != nil {
		u.QuizHistory = append([]QuizAttempt(nil), p.QuizHistory...)
	}
}

// LeaderboardEntry is one ranked row of the leaderboard
type LeaderboardEntry struct {
	Rank             int
	UserID           string
	Name             string
	Score            int
	CompletedQuizzes int
	AverageScore     float64
}
