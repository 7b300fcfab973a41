package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"readyset/internal/alerts"
	"readyset/internal/api"
	"readyset/internal/auth"
	"readyset/internal/config"
	"readyset/internal/database"
	"readyset/internal/handlers"
	"readyset/internal/repository"
	"readyset/internal/security"
	"readyset/internal/service"
	"readyset/internal/session"
)

// sessionStore is a store that can also drop stale sessions
type sessionStore interface {
	auth.Store
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	log.Println("Templates loaded successfully")

	sealer := security.NewSealer(cfg.SessionSecret)
	store, closeStore, err := newSessionStore(ctx, cfg, db, sealer)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	defer closeStore()

	// Initialize repositories
	avatarRepo := repository.NewAvatarRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Initialize services
	client := api.New(cfg.APIBaseURL, api.WithTimeout(cfg.APITimeout), api.WithPublicPaths(cfg.APIPublicPaths))

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Printf("Warning: email disabled: %v", err)
		emailService = nil
	}

	authService := service.NewAuthService(client, avatarRepo, emailService)
	kitService := service.NewKitService(client, emailService)
	quizService := service.NewQuizService(client)

	hub := alerts.NewHub(nil)
	feedURL := func(ctx context.Context) string {
		return settingsRepo.AlertFeedURL(ctx, cfg.AlertFeedURL)
	}
	poller := alerts.NewPoller(alerts.NewFetcher(&http.Client{Timeout: 20 * time.Second}), feedURL, cfg.AlertRefreshInterval, hub)
	hub.SetSource(poller.Current)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
		"facebook": {
			Name:  "facebook",
			Label: "Facebook",
			Config: &oauth2.Config{
				ClientID:     cfg.FacebookClientID,
				ClientSecret: cfg.FacebookClientSecret,
				Endpoint:     facebook.Endpoint,
				Scopes:       []string{"email", "public_profile"},
			},
			UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email,picture",
		},
	}

	// Initialize handlers
	rateLimiter := security.NewRateLimiter(10, time.Minute)
	mw := handlers.NewMiddleware(store, security.NewCSRFGenerator(cfg.SessionSecret), rateLimiter, cfg.SessionRetention)
	authHandler := handlers.NewAuthHandler(authService, templates, mw, oauthProviders, cfg.OAuthRedirectBaseURL)
	contentHandler := handlers.NewContentHandler(client, templates, mw)
	dashboardHandler := handlers.NewDashboardHandler(kitService, authService, poller, templates, mw)
	kitHandler := handlers.NewKitHandler(kitService, templates, mw)
	quizHandler := handlers.NewQuizHandler(quizService, templates, mw)
	alertHandler := handlers.NewAlertHandler(poller, hub, templates, mw)
	adminHandler := handlers.NewAdminHandler(client, settingsRepo, poller, hub, cfg.AlertFeedURL, templates, mw)
	healthHandler := handlers.NewHealthHandler(db)

	// Page routes; every one runs with the browser's auth context attached
	pages := http.NewServeMux()

	// Public routes
	pages.HandleFunc("GET /{$}", authHandler.Home)
	pages.HandleFunc("GET /login", authHandler.ShowLogin)
	pages.HandleFunc("POST /login", mw.RateLimit(mw.CSRFProtect(authHandler.Login)))
	pages.HandleFunc("GET /register", authHandler.ShowRegister)
	pages.HandleFunc("POST /register", mw.RateLimit(mw.CSRFProtect(authHandler.Register)))
	pages.HandleFunc("POST /logout", mw.CSRFProtect(authHandler.Logout))
	pages.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	pages.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)
	pages.HandleFunc("GET /learn", contentHandler.List)
	pages.HandleFunc("GET /learn/{id}", contentHandler.Show)
	pages.HandleFunc("GET /alerts", alertHandler.Page)
	pages.HandleFunc("GET /alerts/live", alertHandler.Live)

	// Signed-in routes
	pages.HandleFunc("GET /dashboard", mw.RequireAuth(dashboardHandler.Dashboard))
	pages.HandleFunc("GET /profile", mw.RequireAuth(dashboardHandler.ShowProfile))
	pages.HandleFunc("POST /profile", mw.RequireAuth(mw.CSRFProtect(dashboardHandler.UpdateProfile)))
	pages.HandleFunc("GET /kits", mw.RequireAuth(kitHandler.List))
	pages.HandleFunc("GET /kits/new", mw.RequireAuth(kitHandler.New))
	pages.HandleFunc("POST /kits", mw.RequireAuth(mw.CSRFProtect(kitHandler.Create)))
	pages.HandleFunc("GET /kits/{id}", mw.RequireAuth(kitHandler.Show))
	pages.HandleFunc("GET /kits/{id}/edit", mw.RequireAuth(kitHandler.Edit))
	pages.HandleFunc("POST /kits/{id}/edit", mw.RequireAuth(mw.CSRFProtect(kitHandler.EditAction)))
	pages.HandleFunc("GET /kits/{id}/delete", mw.RequireAuth(kitHandler.ConfirmDelete))
	pages.HandleFunc("POST /kits/{id}/delete", mw.RequireAuth(mw.CSRFProtect(kitHandler.Delete)))
	pages.HandleFunc("POST /kits/{id}/email", mw.RequireAuth(mw.CSRFProtect(mw.RateLimit(kitHandler.Email))))
	pages.HandleFunc("GET /quizzes", mw.RequireAuth(quizHandler.List))
	pages.HandleFunc("GET /quizzes/{id}", mw.RequireAuth(quizHandler.Show))
	pages.HandleFunc("POST /quizzes/{id}", mw.RequireAuth(mw.CSRFProtect(quizHandler.Submit)))
	pages.HandleFunc("GET /leaderboard", mw.RequireAuth(quizHandler.Leaderboard))

	// Admin routes
	pages.HandleFunc("GET /admin", mw.RequireAdmin(adminHandler.ShowAdminDashboard))
	pages.HandleFunc("GET /admin/users", mw.RequireAdmin(adminHandler.ShowManageUsers))
	pages.HandleFunc("POST /admin/users/{id}/role", mw.RequireAdmin(mw.CSRFProtect(adminHandler.UpdateUserRole)))
	pages.HandleFunc("POST /admin/users/{id}/delete", mw.RequireAdmin(mw.CSRFProtect(adminHandler.DeleteUser)))
	pages.HandleFunc("GET /admin/content", mw.RequireAdmin(adminHandler.ShowManageContent))
	pages.HandleFunc("GET /admin/content/new", mw.RequireAdmin(adminHandler.NewContent))
	pages.HandleFunc("POST /admin/content", mw.RequireAdmin(mw.CSRFProtect(adminHandler.CreateContent)))
	pages.HandleFunc("GET /admin/content/{id}/edit", mw.RequireAdmin(adminHandler.EditContent))
	pages.HandleFunc("POST /admin/content/{id}", mw.RequireAdmin(mw.CSRFProtect(adminHandler.UpdateContent)))
	pages.HandleFunc("POST /admin/content/{id}/delete", mw.RequireAdmin(mw.CSRFProtect(adminHandler.DeleteContent)))
	pages.HandleFunc("GET /admin/kits", mw.RequireAdmin(adminHandler.ShowManageKits))
	pages.HandleFunc("POST /admin/kits/{id}/delete", mw.RequireAdmin(mw.CSRFProtect(adminHandler.DeleteKit)))
	pages.HandleFunc("GET /admin/settings", mw.RequireAdmin(adminHandler.ShowSettings))
	pages.HandleFunc("POST /admin/settings", mw.RequireAdmin(mw.CSRFProtect(adminHandler.UpdateSettings)))

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))
	mux.HandleFunc("GET /healthz", healthHandler.Healthz)
	mux.Handle("/", mw.Provide(pages))

	handler := middleware.RequestID(middleware.RealIP(handlers.Logging(middleware.Recoverer(mux))))

	// Background workers stop with ctx
	go hub.Run(ctx)
	go poller.Run(ctx)
	go rateLimiter.Run(ctx)
	go pruneSessions(ctx, store, cfg.SessionRetention)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// newSessionStore picks the session backend. The returned func releases it.
func newSessionStore(ctx context.Context, cfg *config.Config, db *database.DB, sealer *security.Sealer) (sessionStore, func(), error) {
	switch strings.ToLower(cfg.SessionBackend) {
	case "redis":
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Println("Using Redis session store")
		return session.NewRedisStore(client, sealer, cfg.SessionRetention), func() { client.Close() }, nil
	case "sql", "":
		return session.NewSQLStore(repository.NewSessionRepository(db), sealer), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported session backend: %s", cfg.SessionBackend)
	}
}

// loadTemplates loads all template files
func loadTemplates(templatesPath string) (*template.Template, error) {
	patterns := []string{
		filepath.Join(templatesPath, "auth/*.tmpl"),
		filepath.Join(templatesPath, "pages/*.tmpl"),
		filepath.Join(templatesPath, "kits/*.tmpl"),
		filepath.Join(templatesPath, "quizzes/*.tmpl"),
		filepath.Join(templatesPath, "admin/*.tmpl"),
	}

	files := []string{filepath.Join(templatesPath, "base.tmpl")}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}

	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return "never"
			}
			return t.Format("Jan 2, 2006 15:04")
		},
		"optDate": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"dateValue": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format(time.DateOnly)
		},
		"qty": func(q *int) string {
			if q == nil {
				return ""
			}
			return fmt.Sprint(*q)
		},
		"add": func(a, b int) int {
			return a + b
		},
		"join": strings.Join,
	}
}

// pruneSessions periodically removes sessions idle for longer than retention
func pruneSessions(ctx context.Context, store sessionStore, retention time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Prune(ctx, retention)
			if err != nil {
				log.Printf("Error pruning sessions: %v", err)
			} else if n > 0 {
				log.Printf("Pruned %d idle sessions", n)
			}
		}
	}
}
