package handlers

import (
	"time"

	"readyset/internal/models"
	"readyset/internal/service"
)

// Page holds the fields every template reads
type Page struct {
	Title     string
	User      *models.User
	CSRFToken string
	Error     string
	Success   string
}

type LoginViewData struct {
	Page
	OAuthProviders []OAuthProviderView
	Email          string
	Next           string
}

type RegisterViewData struct {
	Page
	OAuthProviders []OAuthProviderView
	Email          string
	Name           string
}

type HomeViewData struct {
	Page
	Disasters []models.Display
}

type ContentCard struct {
	models.Content
	Display models.Display
}

type LearnViewData struct {
	Page
	Cards     []ContentCard
	Disasters []models.Display
	Filter    string
}

type ContentDetailViewData struct {
	Page
	Card ContentCard
}

type DashboardViewData struct {
	Page
	Kits          []models.Kit
	Alerts        []models.Alert
	RecentQuizzes []models.QuizAttempt
}

type KitListViewData struct {
	Page
	Kits []models.Kit
}

type KitFormViewData struct {
	Page
	Form         service.KitForm
	HouseTypes   []string
	MinResidents int
	MaxResidents int
}

type KitDetailViewData struct {
	Page
	Kit          models.Kit
	EmailEnabled bool
}

type KitEditViewData struct {
	Page
	Kit     models.Kit
	Encoded string
	// EditingID is the item whose row is open for editing
	EditingID  string
	HouseTypes []string
}

type KitDeleteViewData struct {
	Page
	Kit models.Kit
}

type QuizCard struct {
	models.Quiz
	Display models.Display
}

type QuizListViewData struct {
	Page
	Quizzes []QuizCard
}

type QuizViewData struct {
	Page
	Quiz     models.Quiz
	Selected models.Answers
	Missing  map[string]bool
}

type QuizResultViewData struct {
	Page
	Quiz    models.Quiz
	Result  models.QuizResult
	Percent float64
}

type LeaderboardViewData struct {
	Page
	Entries []models.LeaderboardEntry
}

type AlertsViewData struct {
	Page
	Alerts    []models.Alert
	UpdatedAt time.Time
	FeedError string
}

type ProfileViewData struct {
	Page
	Name  string
	Email string
}

type AdminDashboardViewData struct {
	Page
	UserCount        int
	KitCount         int
	ContentCount     int
	AlertSubscribers int
	AlertsUpdatedAt  time.Time
}

type AdminUsersViewData struct {
	Page
	Users []models.User
	Roles []models.Role
}

type AdminContentListViewData struct {
	Page
	Cards []ContentCard
}

type AdminContentFormViewData struct {
	Page
	Content       models.Content
	DisasterTypes []models.Display
	BeforeTips    string
	DuringTips    string
	AfterTips     string
	Action        string
}

type AdminKitsViewData struct {
	Page
	Kits []models.Kit
}

type AdminSettingsViewData struct {
	Page
	AlertFeedURL   string
	DefaultFeedURL string
}
