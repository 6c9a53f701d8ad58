// Package server wires the dependency graph and owns the HTTP lifecycle:
// which routes exist, which guards protect them, and how the process starts
// and shuts down.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/anisa/notekeeper/internal/auth"
	"github.com/anisa/notekeeper/internal/handler"
	"github.com/anisa/notekeeper/internal/middleware"
	sqliteRepo "github.com/anisa/notekeeper/internal/repository/sqlite"
	"github.com/anisa/notekeeper/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port        int
	TemplateDir string
	StaticDir   string
	DBPath      string
	SessionTTL  time.Duration
}

// sessionSweepInterval is how often expired session rows are swept.
const sessionSweepInterval = time.Hour

// Server holds the router and the resources it owns. The database handle is
// closed during graceful shutdown.
type Server struct {
	router   *chi.Mux
	config   Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	sessions *auth.SessionManager
}

// New assembles the whole dependency chain:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// Each layer receives only the interfaces it needs; handlers never touch
// the database and services never touch HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and binds every route to its handler.
//
// Route groups:
//   - public:                GET /           (landing)
//   - anonymous-only:        GET+POST /register, /login  (logged-in users bounce to /main)
//   - authenticated:         everything under /main and the note/item routes
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	render, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	sessions := auth.NewSessionManager(s.db, s.config.SessionTTL, s.logger)
	s.sessions = sessions
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.db, passwords, s.logger)
	noteService := service.NewNoteService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, sessions, render, s.logger)
	noteHandler := handler.NewNoteHandler(noteService, render, s.logger)

	// Public pages. Logout tolerates a missing session, so OptionalAuth.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(sessions))
		r.Get("/", authHandler.Landing)
		r.Get("/logout", authHandler.Logout)
	})

	// Login and registration bounce already-authenticated users to /main.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RedirectIfAuthenticated(sessions))
		r.Get("/register", authHandler.ShowRegister)
		r.Post("/register", authHandler.Register)
		r.Get("/login", authHandler.ShowLogin)
		r.Post("/login", authHandler.Login)
	})

	// Everything below requires a valid session.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(sessions))

		r.Get("/main", noteHandler.Main)
		r.Get("/note", noteHandler.ShowNoteForm)
		r.Get("/voiceNote", noteHandler.ShowVoiceNoteForm)
		r.Get("/exampleNote", noteHandler.ShowExampleNote)

		r.Post("/showNote", noteHandler.ShowNote)
		r.Post("/note", noteHandler.CreateNote)
		r.Post("/voiceNote", noteHandler.CreateVoiceNote)
		r.Post("/add", noteHandler.AddItem)
		r.Post("/edit", noteHandler.EditItem)
		r.Post("/editTitle", noteHandler.EditTitle)
		r.Post("/checkOff", noteHandler.CheckOff)
		r.Post("/delete", noteHandler.DeleteItem)
		r.Post("/delete-note", noteHandler.DeleteNote)
		r.Post("/deleteCheckedItems", noteHandler.DeleteCheckedItems)
		r.Post("/search", noteHandler.Search)
		r.Post("/deleteAccount", authHandler.DeleteAccount)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s
// cap), close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	// Background sweep of expired session rows; stops with the server.
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go s.sessions.Sweep(sweepCtx, sessionSweepInterval)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
