package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"readyset/internal/config"
	"readyset/internal/database"
)

var rootCmd = &cobra.Command{
	Use:           "readyctl",
	Short:         "Maintenance tasks for the ReadySet frontend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// openDB connects to the database named by the environment
func openDB() (*config.Config, *database.DB, error) {
	cfg := config.Load()
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, db, nil
}
