package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vstrecha/vstrecha/backend/internal/adapters/config"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/database/redis"
	"github.com/vstrecha/vstrecha/backend/pkg/logger"
	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
	"gorm.io/gorm"
)

type Server struct {
	*http.Server
	Mux      *http.ServeMux
	DB       *gorm.DB
	Redis    *redis.Client
	Settings config.Settings
	Logger   *types.Logger
}

func New(config *config.Config) (*Server, error) {
	serverLogger, err := logger.Named("http")
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	return &Server{
		Server: &http.Server{
			Addr:              config.Settings.HTTP.Addr,
			Handler:           mux,
			ReadTimeout:       config.Settings.HTTP.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      config.Settings.HTTP.WriteTimeout,
		},
		Mux:      mux,
		DB:       config.Database,
		Redis:    config.Redis,
		Settings: config.Settings,
		Logger:   serverLogger,
	}, nil
}

// Start serves until ctx is done and then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.Log.Infof("HTTP server listening on %s", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Settings.HTTP.ShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Close releases the database and cache connections.
func (s *Server) Close() {
	if sqlDB, err := s.DB.DB(); err == nil {
		if err = sqlDB.Close(); err != nil {
			logger.Log.Errorf("Failed to close the database: %v", err)
		}
	}
	if err := s.Redis.Close(); err != nil {
		logger.Log.Errorf("Failed to close redis: %v", err)
	}
}
