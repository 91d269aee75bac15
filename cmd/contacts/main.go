package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jward/contacts"
	"github.com/jward/contacts/internal/config"
	"github.com/jward/contacts/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagDB       string
	flagFormat   string
	flagConfig   string
	flagDriver   string
	flagLogLevel string
)

// cfg is resolved from flags, environment and contacts.yaml before any
// subcommand runs.
var cfg config.Config

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "contacts",
	Short:         "Personal contacts backed by a local SQLite file",
	Long:          "Contacts keeps names and birth dates in a single-table SQLite database. Use the subcommands for scripted access or 'contacts tui' for the interactive list.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd.Flags(), flagConfig)
		if err != nil {
			return err
		}
		if err := validateFormat(cfg.Format); err != nil {
			return err
		}
		if _, err := contacts.ParseDriver(cfg.Driver); err != nil {
			return err
		}
		logger, err := logging.New(os.Stderr, cfg.LogLevel)
		if err != nil {
			return err
		}
		logging.L = logger
		return nil
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: contacts.db in the user config directory)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "output format: json|text|yaml (default text)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: contacts.yaml in the user config directory or working directory)")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "SQLite driver: sqlite3 (cgo) or sqlite (pure Go)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(configCmd)
}

// openManager starts a Manager on the configured database and waits for the
// store to open.
func openManager(ctx context.Context) (*contacts.Manager, error) {
	driver, err := contacts.ParseDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if err := ensureDir(cfg.DB); err != nil {
		return nil, err
	}
	m := contacts.Open(cfg.DB,
		contacts.WithDriver(driver),
		contacts.WithLogger(logging.L),
	)
	if err := m.Ready(ctx); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}
