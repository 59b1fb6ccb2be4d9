// Package server is the composition root: it opens the database, builds the
// services and handlers, mounts the routes and runs the HTTP server with
// graceful shutdown.
//
//	config → sqlite.DB → services (policy, rules) → handlers → chi router
//
// Handlers never touch the database and services never touch HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/softdesk/internal/auth"
	"github.com/sakif/softdesk/internal/config"
	"github.com/sakif/softdesk/internal/handler"
	"github.com/sakif/softdesk/internal/middleware"
	"github.com/sakif/softdesk/internal/policy"
	sqliteRepo "github.com/sakif/softdesk/internal/repository/sqlite"
	"github.com/sakif/softdesk/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Server owns the database connection and closes it on shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and wires every route.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	return newServer(cfg, logger, auth.NewPasswordService())
}

// newServer takes the password service so tests can use a cheap bcrypt cost.
func newServer(cfg *config.Config, logger *slog.Logger, passwords *auth.PasswordService) (*Server, error) {
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

	if err := s.setupRoutes(passwords); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes builds the services and mounts:
//
//	POST   /api/signup, /api/token, /api/logout
//	GET    /auth/github/{login,link,callback}   (only when GitHub is configured)
//	GET    /api/me
//	GET    /api/users            GET/PATCH/DELETE /api/users/{id}
//	GET/POST /api/projects       GET/PATCH/DELETE /api/projects/{id}
//	GET/POST /api/projects/{id}/contributors    DELETE .../contributors/{contributorID}
//	GET/POST /api/projects/{id}/issues          GET .../issues/export
//	GET/PATCH/DELETE /api/issues/{id}
//	GET/POST /api/issues/{id}/comments          GET/PATCH/DELETE /api/comments/{id}
//
// Middleware order: request id and real IP first, then the actor is resolved
// so the request logger can see it, then panics are recovered inside the
// logger so they are logged as 500s.
func (s *Server) setupRoutes(passwords *auth.PasswordService) error {
	tokens, err := auth.NewTokenService(s.config.JWT.Secret, s.config.JWT.TTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	github := auth.NewGitHubProvider(
		s.config.GitHub.ClientID,
		s.config.GitHub.ClientSecret,
		s.config.GitHub.CallbackURL,
	)

	pol := policy.New(policy.ReadScope(s.config.Rules.ReadScope))
	rules := service.IssueRules{AssigneeMustContribute: s.config.Rules.AssigneeMustContribute}

	userService := service.NewUserService(s.db, passwords, pol, s.logger)
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	projectService := service.NewProjectService(s.db, pol, s.logger)
	contributorService := service.NewContributorService(s.db, pol, rules, s.logger)
	issueService := service.NewIssueService(s.db, pol, rules, s.logger)
	commentService := service.NewCommentService(s.db, pol, s.logger)

	authHandler := handler.NewAuthHandler(authService, userService, github,
		tokens.TTL(), s.config.Mode == config.ModeRelease, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	projectHandler := handler.NewProjectHandler(projectService, s.logger)
	contributorHandler := handler.NewContributorHandler(contributorService, s.logger)
	issueHandler := handler.NewIssueHandler(issueService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, handler.NewMarkdown(), s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(auth.Authenticate(tokens, s.db, s.logger))
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.NotFound(handler.HandleNotFound)
	s.router.MethodNotAllowed(handler.HandleMethodNotAllowed)

	if github != nil {
		s.router.Route("/auth/github", func(r chi.Router) {
			r.Get("/login", authHandler.HandleGitHubLogin)
			r.With(auth.RequireAuth).Get("/link", authHandler.HandleGitHubLink)
			r.Get("/callback", authHandler.HandleGitHubCallback)
		})
	} else {
		s.logger.Info("GitHub sign-in disabled: GITHUB_CLIENT_ID not set")
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/token", authHandler.HandleToken)
		r.Post("/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)

			r.Get("/me", authHandler.HandleMe)

			r.Get("/users", userHandler.HandleList)
			r.Route("/users/{id}", func(r chi.Router) {
				r.Get("/", userHandler.HandleGet)
				r.Patch("/", userHandler.HandleUpdate)
				r.Delete("/", userHandler.HandleDelete)
			})

			r.Get("/projects", projectHandler.HandleList)
			r.Post("/projects", projectHandler.HandleCreate)
			r.Route("/projects/{id}", func(r chi.Router) {
				r.Get("/", projectHandler.HandleGet)
				r.Patch("/", projectHandler.HandleUpdate)
				r.Delete("/", projectHandler.HandleDelete)

				r.Get("/contributors", contributorHandler.HandleList)
				r.Post("/contributors", contributorHandler.HandleCreate)
				r.Delete("/contributors/{contributorID}", contributorHandler.HandleDelete)

				r.Get("/issues", issueHandler.HandleList)
				r.Post("/issues", issueHandler.HandleCreate)
				r.Get("/issues/export", issueHandler.HandleExport)
			})

			r.Route("/issues/{id}", func(r chi.Router) {
				r.Get("/", issueHandler.HandleGet)
				r.Patch("/", issueHandler.HandleUpdate)
				r.Delete("/", issueHandler.HandleDelete)

				r.Get("/comments", commentHandler.HandleList)
				r.Post("/comments", commentHandler.HandleCreate)
			})

			r.Route("/comments/{id}", func(r chi.Router) {
				r.Get("/", commentHandler.HandleGet)
				r.Patch("/", commentHandler.HandleUpdate)
				r.Delete("/", commentHandler.HandleDelete)
			})
		})
	})

	return nil
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

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
			slog.String("mode", string(s.config.Mode)),
			slog.String("database", s.config.DBPath),
			slog.String("readScope", s.config.Rules.ReadScope),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
