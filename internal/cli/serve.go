package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vigilhq/vigil/internal/config"
	"github.com/vigilhq/vigil/internal/engine"
	"github.com/vigilhq/vigil/internal/geo"
	"github.com/vigilhq/vigil/internal/handlers"
	"github.com/vigilhq/vigil/internal/metrics"
	"github.com/vigilhq/vigil/internal/notify"
	"github.com/vigilhq/vigil/internal/server"
	"github.com/vigilhq/vigil/internal/store"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the subscription engine and status server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	subscriptionsCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Env overrides for push credentials
	if url := os.Getenv("GOTIFY_URL"); url != "" {
		cfg.Gotify.URL = url
	}
	if token := os.Getenv("GOTIFY_TOKEN"); token != "" {
		cfg.Gotify.Token = token
	}

	// Resolve database path
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	var notifier notify.Notifier
	if cfg.Gotify.URL != "" && cfg.Gotify.Token != "" {
		notifier = notify.NewGotify(cfg.Gotify.URL, cfg.Gotify.Token)
		fmt.Fprintf(os.Stderr, "  push: gotify (%s)\n", cfg.Gotify.URL)
	} else {
		notifier = notify.Log{}
		fmt.Fprintln(os.Stderr, "  push: log only (no gotify credentials)")
	}

	deps := handlers.Deps{Geocoder: geo.NewNominatim(cfg.Nominatim.URL)}
	subs := buildSubscriptions(cfg.Subscriptions, deps)

	m := metrics.New(nil)
	eng := engine.New(db, db, subs, engine.Options{Notifier: notifier, Metrics: m})
	eng.Start(context.Background())
	defer eng.Stop()

	srv := server.New(db, eng, m, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "vigil serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}

// buildSubscriptions resolves each declaration's handler. A declaration
// whose handler cannot be built is skipped with a warning; the rest
// still run.
func buildSubscriptions(declared []config.SubscriptionConfig, deps handlers.Deps) []engine.Subscription {
	subs := make([]engine.Subscription, 0, len(declared))
	for _, sc := range declared {
		h, err := handlers.New(sc.Handler, sc.Params, deps)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: subscription %s: %v, skipping\n", sc.Label, err)
			continue
		}
		subs = append(subs, engine.Subscription{
			Label:        sc.Label,
			Query:        sc.Query,
			Interval:     sc.Interval(),
			Handler:      h,
			Mode:         engine.TriggerMode(sc.TriggerMode),
			RateLimit:    sc.RateLimitPerMinute,
			QueryTimeout: sc.QueryTimeout(),
		})
	}
	return subs
}

var subscriptionsCmd = &cobra.Command{
	Use:   "subscriptions",
	Short: "List configured subscriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		for _, sc := range cfg.Subscriptions {
			fmt.Printf("%-24s %-12s every %-4s mode=%-4s rate=%d/min\n",
				sc.Label, sc.Handler, sc.Interval(), sc.TriggerMode, sc.RateLimitPerMinute)
		}
		return nil
	},
}
