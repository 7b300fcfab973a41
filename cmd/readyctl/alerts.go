package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"readyset/internal/alerts"
	"readyset/internal/config"
	"readyset/internal/database"
	"readyset/internal/repository"
)

var (
	alertsURL string
	alertsAll bool
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Fetch the alert feed and print the active alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		feedURL := alertsURL
		if feedURL == "" {
			cfg := config.Load()
			feedURL = cfg.AlertFeedURL
			// the admin setting overrides the environment when the database is reachable
			if db, err := database.InitializeWithConfig(cfg); err == nil {
				feedURL = repository.NewSettingsRepository(db).AlertFeedURL(cmd.Context(), cfg.AlertFeedURL)
				db.Close()
			}
		}
		if feedURL == "" {
			return fmt.Errorf("no feed URL: pass --url or set ALERT_FEED_URL")
		}

		fetcher := alerts.NewFetcher(&http.Client{Timeout: 20 * time.Second})
		items, err := fetcher.Fetch(cmd.Context(), feedURL)
		if err != nil {
			return err
		}
		if !alertsAll {
			items = alerts.Active(items, time.Now())
		}

		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "No active alerts")
			return nil
		}
		for _, a := range items {
			fmt.Fprintf(out, "- %s\n", a.Title)
			if a.End != nil {
				fmt.Fprintf(out, "  until %s\n", a.End.Format(time.RFC1123))
			}
			if a.Link != "" {
				fmt.Fprintf(out, "  %s\n", a.Link)
			}
		}
		return nil
	},
}

func init() {
	alertsCmd.Flags().StringVar(&alertsURL, "url", "", "feed URL (default: admin setting, then ALERT_FEED_URL)")
	alertsCmd.Flags().BoolVar(&alertsAll, "all", false, "include expired and not yet started alerts")
	rootCmd.AddCommand(alertsCmd)
}
