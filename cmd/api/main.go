package main

import (
	"os"

	"github.com/yigit/sims/internal/pkg/logger"
	"github.com/yigit/sims/internal/server"
)

// @title SIMS API
// @version 1.0
// @description Student information management: academics, attendance, results and notices
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
