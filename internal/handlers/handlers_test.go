package handlers

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"readyset/internal/api"
	"readyset/internal/models"
	"readyset/internal/security"
)

const testSessionID = "6f1c2a8e-3b7d-4c1e-9a55-0d2f7b8c9e10"

var pageTemplates = []string{
	"home.tmpl", "login.tmpl", "register.tmpl", "learn.tmpl", "content_detail.tmpl",
	"dashboard.tmpl", "kits.tmpl", "kit_new.tmpl", "kit_detail.tmpl", "kit_edit.tmpl",
	"kit_delete.tmpl", "quizzes.tmpl", "quiz.tmpl", "quiz_result.tmpl", "leaderboard.tmpl",
	"alerts.tmpl", "profile.tmpl", "admin_dashboard.tmpl", "admin_users.tmpl",
	"admin_content.tmpl", "admin_content_form.tmpl", "admin_kits.tmpl", "admin_settings.tmpl",
}

// stubTemplates renders each page as "name|error|success", plus the item text on the kit editor
func stubTemplates(t *testing.T) *template.Template {
	t.Helper()
	root := template.New("")
	for _, name := range pageTemplates {
		body := name + "|{{.Error}}|{{.Success}}"
		if name == "kit_edit.tmpl" {
			body += "|{{.Encoded}}"
		}
		template.Must(root.New(name).Parse(body))
	}
	return root
}

type memStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	block    chan struct{}
}

func newMemStore() *memStore { return &memStore{sessions: map[string]models.Session{}} }

func (m *memStore) Load(ctx context.Context, id string) (models.Session, error) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id], nil
}

func (m *memStore) Save(ctx context.Context, id string, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = s
	return nil
}

func (m *memStore) Clear(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memStore) get(id string) (models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

type harness struct {
	store   *memStore
	csrf    *security.CSRFGenerator
	mw      *Middleware
	client  *api.Client
	backend *httptest.Server
	tmpl    *template.Template
}

func newHarness(t *testing.T, backend http.HandlerFunc) *harness {
	t.Helper()
	if backend == nil {
		backend = func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{}`)) }
	}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	store := newMemStore()
	csrf := security.NewCSRFGenerator("test-secret")
	return &harness{
		store:   store,
		csrf:    csrf,
		mw:      NewMiddleware(store, csrf, nil, 0),
		client:  api.New(srv.URL),
		backend: srv,
		tmpl:    stubTemplates(t),
	}
}

func (h *harness) signIn(role models.Role) {
	h.store.sessions[testSessionID] = models.Session{
		Token: "tok",
		User:  &models.User{ID: "u1", Name: "Ana", Email: "ana@example.com", Role: role},
	}
}

func (h *harness) token(t *testing.T) string {
	t.Helper()
	tok, err := h.csrf.GenerateToken(testSessionID)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

// serve runs req through Provide then a mux holding one route
func (h *harness) serve(pattern string, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	req.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: testSessionID})
	rec := httptest.NewRecorder()
	h.mw.Provide(mux).ServeHTTP(rec, req)
	return rec
}

func (h *harness) postForm(t *testing.T, target string, form url.Values) *http.Request {
	t.Helper()
	form.Set(security.CSRFFieldName, h.token(t))
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
