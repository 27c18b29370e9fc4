package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/orehub/minetrack/internal/config"
	"github.com/orehub/minetrack/internal/engine"
	"github.com/orehub/minetrack/internal/events"
	"github.com/orehub/minetrack/internal/property"
	"github.com/orehub/minetrack/internal/sequence"
	"github.com/orehub/minetrack/internal/store/postgres"
)

var (
	jsonOut  bool
	dbFlag   string
	wsFlag   string
	natsFlag string

	// Resolved per invocation from flags, env, and the active profile.
	workspace string
)

var rootCmd = &cobra.Command{
	Use:   "minetrack",
	Short: "Issue tracker with user-defined properties, backed by PostgreSQL",
}

// resolveSettings picks connection settings with flag > env > profile
// precedence. The database URL is the only required setting.
func resolveSettings() (dbURL, natsURL string, err error) {
	env, err := config.FromEnv()
	if err != nil {
		return "", "", err
	}
	profile := activeProfile()

	dbURL = firstNonEmpty(dbFlag, env.DatabaseURL, profile.DatabaseURL)
	if dbURL == "" {
		return "", "", fmt.Errorf("no database configured: set --db, MINETRACK_DATABASE_URL, or a profile")
	}
	// The env default workspace applies only after the profile's choice.
	workspace = firstNonEmpty(wsFlag, os.Getenv("MINETRACK_WORKSPACE"), profile.Workspace, env.Workspace)
	natsURL = firstNonEmpty(natsFlag, env.NATSURL, profile.NATSURL)
	return dbURL, natsURL, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// openEngine connects to the database and wires the engine. The returned
// cleanup closes the publisher and the store.
func openEngine() (*engine.Engine, func(), error) {
	dbURL, natsURL, err := resolveSettings()
	if err != nil {
		return nil, nil, err
	}

	st, err := postgres.New(dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var pub events.Publisher = &events.NoopPublisher{}
	if natsURL != "" {
		pub, err = events.NewNATSPublisher(natsURL)
		if err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("connecting to NATS: %w", err)
		}
	}

	eng := engine.New(st, property.NewRegistries(logger), sequence.NewAllocator(st, logger), pub, logger)
	cleanup := func() {
		pub.Close()
		st.Close()
	}
	return eng, cleanup, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "PostgreSQL URL (overrides profile and env)")
	rootCmd.PersistentFlags().StringVar(&wsFlag, "workspace", "", "workspace id")
	rootCmd.PersistentFlags().StringVar(&natsFlag, "nats", "", "NATS URL for event emission")

	rootCmd.AddGroup(
		&cobra.Group{ID: "issues", Title: "Issues:"},
		&cobra.Group{ID: "properties", Title: "Properties:"},
		&cobra.Group{ID: "admin", Title: "Administration:"},
	)

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(propsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(profileCmd)

	rootCmd.SetHelpFunc(colorizedHelpFunc())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
