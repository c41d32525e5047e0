package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tjgf2022/logkeeper-roles-hub/config"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/db"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/events"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/handlers"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/services"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/storage"
	"github.com/tjgf2022/logkeeper-roles-hub/internal/store"
)

// Server wraps the HTTP server, the router, and the owned resources.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
	logger     *slog.Logger
}

// New constructs a Server: opens the database, wires the optional
// event and archive backends, and registers every route.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	backend, err := events.NewBackend(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("events backend: %w", err)
	}
	publisher := events.NewPublisher(backend, cfg.Events.Channel, logger)

	archiveStore, err := storage.New(ctx, cfg.Archive)
	if err != nil {
		_ = publisher.Close()
		_ = dbConn.Close()
		return nil, fmt.Errorf("archive storage: %w", err)
	}

	userRepo := store.NewUserRepository(dbConn)
	logRepo := store.NewWorkLogRepository(dbConn)

	userService := services.NewUserService(userRepo)
	identity := services.NewIdentityService(userRepo, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	logService := services.NewWorkLogService(logRepo, publisher)
	summaryService := services.NewSummaryService(logRepo, userRepo)
	archiveService := services.NewArchiveService(logRepo, archiveStore)

	authMiddleware := handlers.RequireAuth(identity)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger(logger),
		middleware.Timeout(60*time.Second),
	)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, identity, userService, cfg.Auth.LoginRateLimit)
	})
	router.With(authMiddleware).Get("/navigation", handlers.Navigation)
	router.Route("/logs", func(r chi.Router) {
		handlers.WorkLogRouter(r, logService, authMiddleware)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, authMiddleware)
	})
	router.Route("/dashboard", func(r chi.Router) {
		handlers.DashboardRouter(r, summaryService, authMiddleware)
	})
	router.Route("/settings", func(r chi.Router) {
		handlers.SettingsRouter(r, archiveService, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		publisher:  publisher,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown, then releases the owned
// resources.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if closeErr := s.publisher.Close(); closeErr != nil {
		s.logger.Error("close events publisher", "error", closeErr)
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
