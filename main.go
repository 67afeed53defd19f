// Command taskhub is a multi-user task-tracking backend. It wires the
// configuration, database pool, services, and HTTP router together and runs
// the server with graceful shutdown.
package main

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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/user/taskhub-go/auth"
	"github.com/user/taskhub-go/config"
	"github.com/user/taskhub-go/db"
	"github.com/user/taskhub-go/tasks"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// .env is a development convenience; in production the variables are set
	// directly.
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found or could not be loaded", "error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(cfg.Database)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.Database, "./migrations"); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	userRepo := auth.NewPostgresUserRepository(pool)
	authService := auth.NewService(userRepo, *cfg.Auth, logger)
	authHandlers := auth.NewHandlers(authService)

	taskRepo := tasks.NewPostgresTaskRepository(pool)
	taskService := tasks.NewService(taskRepo, logger)
	taskHandlers := tasks.NewHandlers(taskService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.HandleRegister())
		r.Post("/login", authHandlers.HandleLogin())
		r.Post("/logout", authHandlers.HandleLogout())

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Auth))
			r.Get("/profile", authHandlers.HandleGetProfile())
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth))
		r.Put("/me", authHandlers.HandleUpdateProfile())
		r.Put("/me/password", authHandlers.HandleChangePassword())
		r.Delete("/me", authHandlers.HandleDeleteAccount())
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth))
		taskHandlers.RegisterRoutes(r)
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}
