// Package server wires the application together: it opens the configured
// storage backend, assembles the service and handler layers, and owns the
// HTTP server's lifecycle.
//
// This is the composition root — every dependency is constructed here and
// passed down explicitly. There are no package-level singletons: the store
// is opened once in New and closed on shutdown in Start.
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
	"github.com/go-chi/cors"

	"github.com/sadman/hostelreview/internal/auth"
	"github.com/sadman/hostelreview/internal/config"
	"github.com/sadman/hostelreview/internal/handler"
	"github.com/sadman/hostelreview/internal/middleware"
	"github.com/sadman/hostelreview/internal/repository"
	sqliteRepo "github.com/sadman/hostelreview/internal/repository/sqlite"
	"github.com/sadman/hostelreview/internal/repository/workbook"
	"github.com/sadman/hostelreview/internal/service"
	"github.com/sadman/hostelreview/internal/upload"
)

// Server holds the router and the resources it owns. The store is closed
// during graceful shutdown; nothing else keeps a handle to it.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	logger *slog.Logger
	store  repository.Store
}

// New opens the configured storage backend and wires every layer.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(); err != nil {
		store.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// openStore selects the storage backend. The two implementations satisfy
// the same interfaces; everything downstream is backend-agnostic.
func openStore(cfg config.Config, logger *slog.Logger) (repository.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		store, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, nil
	case config.BackendWorkbook:
		store, err := workbook.Open(cfg.WorkbookPath, logger)
		if err != nil {
			return nil, fmt.Errorf("opening workbook store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// setupRoutes configures middleware, handlers and the route table.
//
// ROUTE STRUCTURE:
//
//	POST /signup, /login, /logout            → account lifecycle
//	GET  /hostels?q=                         → decorated hostel listing
//	GET  /hostels/{id}                       → one decorated hostel
//	POST /reviews                            → submit review (multipart)
//	GET  /export/reviews.csv                 → CSV download
//	GET  /api/hostels                        → plain hostel list (CORS-open)
//	GET  /static/uploads/*                   → uploaded images
//	/admin/...                               → maintenance (admin only)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret)
	if err != nil {
		return err
	}
	uploads, err := upload.New(s.cfg.UploadDir, s.logger)
	if err != nil {
		return err
	}

	reviewSvc := service.NewReviewService(s.store, s.logger)
	authSvc := service.NewAuthService(s.store.Users(), auth.NewPasswordService(), tokens, s.logger)
	adminSvc := service.NewAdminService(s.store, s.logger)

	authHandler := handler.NewAuthHandler(authSvc, s.logger)
	hostelHandler := handler.NewHostelHandler(reviewSvc, s.logger)
	reviewHandler := handler.NewReviewHandler(reviewSvc, uploads, s.logger)
	adminHandler := handler.NewAdminHandler(adminSvc, reviewSvc, s.logger)

	// Uploaded images. StripPrefix maps /static/uploads/x.png onto the
	// upload directory.
	fileServer := http.FileServer(http.Dir(s.cfg.UploadDir))
	s.router.Handle("/static/uploads/*", http.StripPrefix("/static/uploads/", fileServer))

	// Account lifecycle.
	s.router.Post("/signup", authHandler.HandleSignup)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Post("/logout", authHandler.HandleLogout)

	// Public surface. OptionalAuth attaches the reviewer's identity to
	// submissions without blocking anonymous visitors.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))
		r.Get("/hostels", hostelHandler.HandleList)
		r.Get("/hostels/{id}", hostelHandler.HandleGet)
		r.Post("/reviews", reviewHandler.HandleSubmit)
		r.Get("/export/reviews.csv", reviewHandler.HandleExportCSV)
	})

	// JSON API, CORS-open for external consumers.
	s.router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/hostels", hostelHandler.HandleAPIList)
	})

	// Maintenance surface: authenticated admin only.
	s.router.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Use(auth.RequireAdmin(s.store.Users(), s.cfg.AdminEmail))

		r.Get("/reviews", adminHandler.HandleRawReviews)
		r.Post("/migrate", adminHandler.HandleMigrate)
		r.Get("/backups", adminHandler.HandleListBackups)
		r.Post("/backups", adminHandler.HandleCreateBackup)
		r.Get("/backups/{name}", adminHandler.HandleDownloadBackup)
		r.Post("/backups/{name}/restore", adminHandler.HandleRestore)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests for up
// to 30 seconds, and close the store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
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
			slog.Int("port", s.cfg.Port),
			slog.String("backend", s.cfg.StorageBackend),
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
