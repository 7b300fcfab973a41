package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAlertsCommandPrintsActive(t *testing.T) {
	expired := time.Now().AddDate(0, 0, -2).UTC().Format(time.RFC3339)
	feed := `<?xml version="1.0"?>
<rss version="2.0" xmlns:cap="urn:oasis:names:tc:emergency:cap:1.2"><channel><title>Alerts</title>
<item><title>Flood watch</title><link>https://alerts.example/1</link></item>
<item><title>Old heat advisory</title><cap:expires>` + expired + `</cap:expires></item>
</channel></rss>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feed)
	}))
	defer srv.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"alerts", "--url", srv.URL})
	t.Cleanup(func() { alertsURL, alertsAll = "", false })

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("alerts: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "- Flood watch") || !strings.Contains(got, "https://alerts.example/1") {
		t.Errorf("output missing active alert:\n%s", got)
	}
	if strings.Contains(got, "Old heat advisory") {
		t.Errorf("expired alert was printed:\n%s", got)
	}
}
