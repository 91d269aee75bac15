package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jward/contacts/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or write contacts.yaml",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return outputResult(CLIResult{Command: "config show", Results: cfg})
	},
}

var (
	flagInitPath  string
	flagInitForce bool
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the resolved configuration to a contacts.yaml",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().StringVar(&flagInitPath, "path", "", "file to write (default: contacts.yaml in the user config directory)")
	configInitCmd.Flags().BoolVar(&flagInitForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := flagInitPath
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return outputError("config init", err)
		}
		path = filepath.Join(dir, "contacts.yaml")
	}
	if _, err := os.Stat(path); err == nil && !flagInitForce {
		return outputError("config init", fmt.Errorf("%s already exists (use --force to overwrite)", path))
	}
	if err := config.Write(path, cfg); err != nil {
		return outputError("config init", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}
