package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/certprep/backend/internal/achievements"
	"github.com/certprep/backend/internal/auth"
	"github.com/certprep/backend/internal/config"
	"github.com/certprep/backend/internal/database"
	"github.com/certprep/backend/internal/middleware"
	"github.com/certprep/backend/internal/progress"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("port", "", "Listen port (overrides PORT)")
}

func runServe(ctx context.Context) error {
	st, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	if st.pg != nil {
		if err := database.Migrate(st.pg); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, st),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("port", cfg.Port).WithField("backend", cfg.StorageBackend).Info("Server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(c *config.Config, st *storage) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.AccessLog)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	var tokens *auth.TokenIssuer
	var authHandler *auth.Handler
	if st.pg != nil {
		tokens = auth.NewTokenIssuer(c.JWTSecret, c.TokenTTL)
		authHandler = auth.NewHandler(auth.NewPGUserStore(st.pg), tokens)
		api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
		api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	}

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	if tokens != nil {
		protected.Use(middleware.Auth(tokens))
		protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	} else {
		protected.Use(middleware.StaticUser(c.LocalUserID))
	}

	awards := achievements.NewService(st.repo, c.AchievementTZ)
	stores := func(userID int64) *progress.Store {
		return progress.NewStore(st.backend, userID)
	}
	progress.NewHandler(stores, awards).RegisterRoutes(protected)
	achievements.NewHandler(awards).RegisterRoutes(protected)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	return corsHandler.Handler(r)
}
