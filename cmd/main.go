package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vstrecha/vstrecha/backend/cmd/server"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/config"
	setupServer "github.com/vstrecha/vstrecha/backend/internal/adapters/controller/rest/setup"
	"github.com/vstrecha/vstrecha/backend/pkg/logger"

	_ "time/tzdata"
)

func main() {
	cfg := config.Get()
	s, err := server.New(cfg)
	if err != nil {
		log.Panic(err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupServer.Setup(ctx, s)

	if err = s.Start(ctx); err != nil {
		logger.Log.Errorf("HTTP server stopped: %v", err)
	}
}
