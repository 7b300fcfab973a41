package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"readyset/internal/repository"
	"readyset/internal/security"
	"readyset/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect and clean up stored sessions",
}

var pruneOlderThan time.Duration

var sessionsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete sessions idle for longer than the retention period",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		retention := cfg.SessionRetention
		if pruneOlderThan > 0 {
			retention = pruneOlderThan
		}

		if strings.EqualFold(cfg.SessionBackend, "redis") {
			// redis keys carry their own TTL
			fmt.Fprintln(cmd.OutOrStdout(), "Redis sessions expire on their own; nothing to prune")
			return nil
		}

		store := session.NewSQLStore(repository.NewSessionRepository(db), security.NewSealer(cfg.SessionSecret))
		n, err := store.Prune(cmd.Context(), retention)
		if err != nil {
			return fmt.Errorf("failed to prune sessions: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d sessions idle for more than %s\n", n, retention)
		return nil
	},
}

var sessionsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := repository.NewSessionRepository(db).Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to count sessions: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

func init() {
	sessionsPruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 0, "idle time after which a session is deleted (default SESSION_RETENTION)")
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsPruneCmd, sessionsCountCmd)
}
