package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"readyset/internal/handlers"
	"readyset/internal/models"
	"readyset/internal/service"
)

func TestTemplatesRender(t *testing.T) {
	tmpl, err := loadTemplates("../../internal/templates")
	if err != nil {
		t.Fatalf("loadTemplates: %v", err)
	}

	qty := 4
	expires := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	user := &models.User{ID: "u1", Name: "Ana", Role: models.RoleAdmin, AvatarURL: "https://img.example/a.png"}
	page := handlers.Page{Title: "Test - ReadySet", User: user, CSRFToken: "tok"}
	kit := models.Kit{
		ID: "k1", HouseType: "house", Region: "Coast", NumResidents: 2, HasPets: true,
		RecommendedItems: []models.Item{
			{ID: "i1", Name: "Water", Quantity: &qty, Unit: "gal", ExpirationDate: &expires},
			{ID: "i2", Name: "Radio <AM/FM>"},
		},
	}
	quiz := models.Quiz{
		ID: "q1", Title: "Flood basics", DisasterType: models.DisasterFlood,
		Questions: []models.Question{{ID: "a", Text: "Move to?", Choices: []models.Choice{{ID: "1", Text: "High ground"}}}},
	}
	content := models.Content{ID: "c1", Title: "Floods", DisasterType: models.DisasterFlood, BeforeTips: []string{"Plan"}}
	card := handlers.ContentCard{Content: content, Display: content.DisasterType.Display()}

	pages := map[string]any{
		"home.tmpl":            handlers.HomeViewData{Page: page, Disasters: []models.Display{models.DisasterFlood.Display()}},
		"login.tmpl":           handlers.LoginViewData{Page: handlers.Page{Error: "bad"}, OAuthProviders: []handlers.OAuthProviderView{{Name: "google", Label: "Google", URL: "/auth/google/start"}}},
		"register.tmpl":        handlers.RegisterViewData{},
		"profile.tmpl":         handlers.ProfileViewData{Page: page, Name: "Ana"},
		"learn.tmpl":           handlers.LearnViewData{Page: page, Cards: []handlers.ContentCard{card}, Disasters: []models.Display{card.Display}, Filter: "flood"},
		"content_detail.tmpl":  handlers.ContentDetailViewData{Page: page, Card: card},
		"dashboard.tmpl":       handlers.DashboardViewData{Page: page, Kits: []models.Kit{kit}, Alerts: []models.Alert{{Title: "Storm"}}, RecentQuizzes: []models.QuizAttempt{{QuizID: "q1", Score: 3, Total: 4}}},
		"alerts.tmpl":          handlers.AlertsViewData{Page: page, Alerts: []models.Alert{{Title: "Storm", End: &expires}}, FeedError: "timeout"},
		"kits.tmpl":            handlers.KitListViewData{Page: page, Kits: []models.Kit{kit}},
		"kit_new.tmpl":         handlers.KitFormViewData{Page: page, Form: service.KitForm{HouseType: "house"}, HouseTypes: models.HouseTypes, MinResidents: 1, MaxResidents: 20},
		"kit_detail.tmpl":      handlers.KitDetailViewData{Page: page, Kit: kit, EmailEnabled: true},
		"kit_edit.tmpl":        handlers.KitEditViewData{Page: page, Kit: kit, Encoded: service.EncodeItems(kit.RecommendedItems), EditingID: "i1", HouseTypes: models.HouseTypes},
		"kit_delete.tmpl":      handlers.KitDeleteViewData{Page: page, Kit: kit},
		"quizzes.tmpl":         handlers.QuizListViewData{Page: page, Quizzes: []handlers.QuizCard{{Quiz: quiz, Display: quiz.DisasterType.Display()}}},
		"quiz.tmpl":            handlers.QuizViewData{Page: page, Quiz: quiz, Selected: models.Answers{"a": "1"}, Missing: map[string]bool{"a": true}},
		"quiz_result.tmpl":     handlers.QuizResultViewData{Page: page, Quiz: quiz, Result: models.QuizResult{Score: 1, Total: 1}, Percent: 100},
		"leaderboard.tmpl":     handlers.LeaderboardViewData{Page: page, Entries: []models.LeaderboardEntry{{Rank: 1, UserID: "u1", Name: "Ana"}}},
		"admin_dashboard.tmpl": handlers.AdminDashboardViewData{Page: page, UserCount: 3},
		"admin_users.tmpl":     handlers.AdminUsersViewData{Page: page, Users: []models.User{*user, {ID: "u2", Role: models.RoleUser}}, Roles: []models.Role{models.RoleUser, models.RoleAdmin}},
		"admin_content.tmpl":   handlers.AdminContentListViewData{Page: page, Cards: []handlers.ContentCard{card}},
		"admin_content_form.tmpl": handlers.AdminContentFormViewData{
			Page: page, Content: content, DisasterTypes: []models.Display{card.Display}, BeforeTips: "Plan", Action: "/admin/content/c1",
		},
		"admin_kits.tmpl":     handlers.AdminKitsViewData{Page: page, Kits: []models.Kit{kit}},
		"admin_settings.tmpl": handlers.AdminSettingsViewData{Page: page, AlertFeedURL: "https://alerts.example/rss"},
	}

	for name, data := range pages {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
				t.Fatalf("ExecuteTemplate: %v", err)
			}
			if !strings.Contains(buf.String(), "</html>") {
				t.Error("page is missing the footer")
			}
		})
	}
}

func TestTemplatesEscapeUserContent(t *testing.T) {
	tmpl, err := loadTemplates("../../internal/templates")
	if err != nil {
		t.Fatalf("loadTemplates: %v", err)
	}
	data := handlers.KitDetailViewData{Kit: models.Kit{ID: "k1", RecommendedItems: []models.Item{{Name: "<script>x</script>"}}}}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "kit_detail.tmpl", data); err != nil {
		t.Fatalf("ExecuteTemplate: %v", err)
	}
	if strings.Contains(buf.String(), "<script>x</script>") {
		t.Error("item name was not escaped")
	}
}
