package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"readyset/internal/models"
)

func TestNormalizeKitShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"current", `{"id":"k1","houseType":"apartment","region":"Coast","numResidents":3,"hasPets":true,
			"recommendedItems":[{"id":"i1","name":"Water","description":"1 gal/day","quantity":9,"unit":"gal"}]}`},
		{"legacy", `{"_id":"k1","house_type":"apartment","region":"Coast","residents":"3","has_pets":"true",
			"items":[{"_id":"i1","name":"Water","description":"1 gal/day","quantity":"9","unit":"gal"}]}`},
		{"numeric id", `{"id":"k1","houseType":"apartment","region":"Coast","residents":3,"hasPets":1,
			"items":[{"id":"i1","name":"Water","description":"1 gal/day","qty":9,"unit":"gal"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, ok := normalizeKit(json.RawMessage(tt.body))
			if !ok {
				t.Fatal("normalizeKit rejected the kit")
			}
			if k.ID != "k1" || k.HouseType != "apartment" || k.NumResidents != 3 || !k.HasPets {
				t.Errorf("kit = %+v", k)
			}
			if len(k.RecommendedItems) != 1 {
				t.Fatalf("items = %+v", k.RecommendedItems)
			}
			it := k.RecommendedItems[0]
			if it.ID != "i1" || it.Name != "Water" || it.Quantity == nil || *it.Quantity != 9 || it.Unit != "gal" {
				t.Errorf("item = %+v", it)
			}
		})
	}
}

func TestNormalizeKitNumberID(t *testing.T) {
	k, ok := normalizeKit(json.RawMessage(`{"id":17,"items":["Flashlight","Radio"]}`))
	if !ok || k.ID != "17" {
		t.Fatalf("kit = %+v ok=%v", k, ok)
	}
	if len(k.RecommendedItems) != 2 || k.RecommendedItems[1].Name != "Radio" || k.RecommendedItems[0].ID == k.RecommendedItems[1].ID {
		t.Errorf("items = %+v", k.RecommendedItems)
	}
}

func TestNormalizeQuizChoices(t *testing.T) {
	body := `{"id":"q1","title":"Floods","questions":[
		{"id":"a","text":"Move to?","choices":[{"id":"c1","text":"High ground"},{"id":"c2","text":"Basement"}]},
		{"question":"Water depth to avoid?","options":["6 inches","6 feet"]}
	]}`
	q, ok := normalizeQuiz(json.RawMessage(body))
	if !ok || len(q.Questions) != 2 {
		t.Fatalf("quiz = %+v", q)
	}
	if q.Questions[0].Choices[0] != (models.Choice{ID: "c1", Text: "High ground"}) {
		t.Errorf("object choices = %+v", q.Questions[0].Choices)
	}
	second := q.Questions[1]
	if second.ID != "1" || second.Text != "Water depth to avoid?" {
		t.Errorf("second question = %+v", second)
	}
	want := []models.Choice{{ID: "0", Text: "6 inches"}, {ID: "1", Text: "6 feet"}}
	if !reflect.DeepEqual(second.Choices, want) {
		t.Errorf("string choices = %+v, want %+v", second.Choices, want)
	}
}

func TestNormalizeContentTips(t *testing.T) {
	flat := `{"id":"c1","title":"Quakes","type":"earthquake","video_url":"https://v/1","beforeTips":["Secure shelves"],"duringTips":"Drop\nCover\nHold on","afterTips":[]}`
	nested := `{"_id":"c1","title":"Quakes","disasterType":"Earthquake","videoUrl":"https://v/1","tips":{"before":["Secure shelves"],"during":["Drop","Cover","Hold on"]}}`

	for name, body := range map[string]string{"flat": flat, "nested": nested} {
		t.Run(name, func(t *testing.T) {
			c, ok := normalizeContent(json.RawMessage(body))
			if !ok {
				t.Fatal("rejected")
			}
			if c.DisasterType != models.DisasterEarthquake || c.VideoURL != "https://v/1" {
				t.Errorf("content = %+v", c)
			}
			if !reflect.DeepEqual(c.BeforeTips, []string{"Secure shelves"}) {
				t.Errorf("BeforeTips = %q", c.BeforeTips)
			}
			if !reflect.DeepEqual(c.DuringTips, []string{"Drop", "Cover", "Hold on"}) {
				t.Errorf("DuringTips = %q", c.DuringTips)
			}
			if len(c.AfterTips) != 0 {
				t.Errorf("AfterTips = %q", c.AfterTips)
			}
		})
	}
}

func TestListEnvelopes(t *testing.T) {
	for _, body := range []string{
		`[{"id":"k1"},{"id":"k2"}]`,
		`{"kits":[{"id":"k1"},{"id":"k2"}]}`,
		`{"items":[{"id":"k1"},{"id":"k2"}],"total":2}`,
	} {
		if got := normalizeKits(json.RawMessage(body)); len(got) != 2 {
			t.Errorf("normalizeKits(%s) = %d kits, want 2", body, len(got))
		}
	}
	if got := normalizeKits(json.RawMessage(`"oops"`)); got != nil {
		t.Errorf("scalar body gave %v", got)
	}
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestUserRoleSources(t *testing.T) {
	adminToken := signedToken(t, jwt.MapClaims{"sub": "9", "role": "admin"})

	tests := []struct {
		name  string
		body  string
		token string
		want  models.Role
	}{
		{"explicit role", `{"id":"1","role":"admin"}`, "", models.RoleAdmin},
		{"isAdmin flag", `{"id":"1","isAdmin":true}`, "", models.RoleAdmin},
		{"isAdmin false beats claim", `{"id":"1","isAdmin":false}`, adminToken, models.RoleUser},
		{"claim fallback", `{"id":"1"}`, adminToken, models.RoleAdmin},
		{"unknown role", `{"id":"1","role":"superuser"}`, "", models.RoleUser},
		{"nothing", `{"id":"1"}`, "not-a-jwt", models.RoleUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ok := normalizeUser(json.RawMessage(tt.body), tt.token)
			if !ok {
				t.Fatal("rejected")
			}
			if u.Role != tt.want {
				t.Errorf("Role = %q, want %q", u.Role, tt.want)
			}
		})
	}
}

func TestLoginResponseShapes(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "7", "email": "ana@example.com", "role": "user"})

	bodies := map[string]string{
		"token and user": `{"token":"` + token + `","user":{"id":7,"name":"Ana","email":"ana@example.com"}}`,
		"enveloped":      `{"data":{"accessToken":"` + token + `","user":{"_id":"7","name":"Ana","email":"ana@example.com"}}}`,
		"claims only":    `{"token":"` + token + `"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
					t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
				}
				w.Write([]byte(body))
			}))
			defer srv.Close()

			res, err := New(srv.URL).Login(context.Background(), "ana@example.com", "pw")
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if res.Token != token || res.User.ID != "7" || res.User.Email != "ana@example.com" {
				t.Errorf("result = %q %+v", res.Token, res.User)
			}
		})
	}
}

func TestLoginWithoutTokenFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"id":"1"}}`))
	}))
	defer srv.Close()
	if _, err := New(srv.URL).Login(context.Background(), "a", "b"); err == nil {
		t.Error("expected an error when no token is returned")
	}
}

func TestNormalizeLeaderboardRanks(t *testing.T) {
	got := normalizeLeaderboard(json.RawMessage(`{"leaderboard":[{"userId":"a","name":"A","score":30},{"id":"b","username":"B","totalScore":"20","rank":5}]}`))
	if len(got) != 2 {
		t.Fatalf("entries = %+v", got)
	}
	if got[0].Rank != 1 || got[0].Score != 30 || got[1].Rank != 5 || got[1].Name != "B" || got[1].Score != 20 {
		t.Errorf("entries = %+v", got)
	}
}

func TestSubmitQuizPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Answers []answerPayload `json:"answers"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		want := []answerPayload{{"a", "c1"}, {"b", "1"}}
		if !reflect.DeepEqual(body.Answers, want) {
			t.Errorf("answers = %+v, want %+v", body.Answers, want)
		}
		w.Write([]byte(`{"correct":1}`))
	}))
	defer srv.Close()

	quiz := models.Quiz{ID: "q", Questions: []models.Question{{ID: "a"}, {ID: "b"}}}
	res, err := New(srv.URL).SubmitQuiz(context.Background(), nil, quiz, models.Answers{"b": "1", "a": "c1"})
	if err != nil {
		t.Fatalf("SubmitQuiz: %v", err)
	}
	if res.Score != 1 || res.Total != 2 || res.User != nil {
		t.Errorf("result = %+v", res)
	}
}

func TestUserPatchOnlyCarriesPresentFields(t *testing.T) {
	id, patch, ok := normalizeUserPatch(json.RawMessage(`{"user":{"id":"1","score":99,"completedQuizzes":7}}`), "")
	if !ok || id != "1" {
		t.Fatalf("id=%q ok=%v", id, ok)
	}
	if patch.Name != nil || patch.Email != nil || patch.Role != nil || patch.AvatarURL != nil || patch.QuizHistory != nil {
		t.Errorf("absent fields set: %+v", patch)
	}
	if patch.Score == nil || *patch.Score != 99 || patch.CompletedQuizzes == nil || *patch.CompletedQuizzes != 7 {
		t.Errorf("score fields = %+v", patch)
	}

	adminToken := signedToken(t, jwt.MapClaims{"sub": "9", "role": "admin"})
	_, patch, ok = normalizeUserPatch(json.RawMessage(`{"name":"Ana"}`), adminToken)
	if !ok || patch.Role == nil || *patch.Role != models.RoleAdmin {
		t.Errorf("claim role not carried: %+v", patch)
	}
}
