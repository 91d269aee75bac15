package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jward/contacts"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List everyone in primary-key order",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one person",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var addCmd = &cobra.Command{
	Use:   "add <name> <birth>",
	Short: "Add a person; birth is YYYY-MM-DD",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

var (
	flagEditName  string
	flagEditBirth string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a person's name or birth date",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a person",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

func init() {
	editCmd.Flags().StringVar(&flagEditName, "name", "", "new name")
	editCmd.Flags().StringVar(&flagEditBirth, "birth", "", "new birth date (YYYY-MM-DD)")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	m, err := openManager(ctx)
	if err != nil {
		return outputError("list", err)
	}
	defer m.Close()

	people := []CLIPerson{}
	err = m.Do(ctx, func(ctx context.Context, s contacts.PeopleStore) error {
		recs, err := s.All(ctx)
		if err != nil {
			return err
		}
		for rec, err := range recs.Each(ctx) {
			if err != nil {
				return err
			}
			people = append(people, personToCLI(rec))
		}
		return nil
	})
	if err != nil {
		return outputError("list", err)
	}
	total := len(people)
	return outputResult(CLIResult{Command: "list", Results: people, TotalCount: &total})
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := parseIDArg(args[0])
	if err != nil {
		return outputError("get", err)
	}
	ctx := cmd.Context()
	m, err := openManager(ctx)
	if err != nil {
		return outputError("get", err)
	}
	defer m.Close()

	rec, err := findPerson(ctx, m, id)
	if err != nil {
		return outputError("get", err)
	}
	return outputResult(CLIResult{Command: "get", Results: personToCLI(rec)})
}

func runAdd(cmd *cobra.Command, args []string) error {
	name, err := validateName(args[0])
	if err != nil {
		return outputError("add", err)
	}
	birth, err := contacts.ParseEpochDay(args[1])
	if err != nil {
		return outputError("add", err)
	}
	ctx := cmd.Context()
	m, err := openManager(ctx)
	if err != nil {
		return outputError("add", err)
	}
	defer m.Close()

	var id int64
	err = m.Do(ctx, func(ctx context.Context, s contacts.PeopleStore) error {
		var err error
		id, err = s.Insert(ctx, name, birth)
		return err
	})
	if err != nil {
		return outputError("add", err)
	}
	return outputResult(CLIResult{Command: "add", Results: personToCLI(contacts.Record{ID: id, Name: name, Birth: birth})})
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := parseIDArg(args[0])
	if err != nil {
		return outputError("edit", err)
	}
	nameSet := cmd.Flags().Changed("name")
	birthSet := cmd.Flags().Changed("birth")
	if !nameSet && !birthSet {
		return outputError("edit", fmt.Errorf("nothing to change: pass --name and/or --birth"))
	}
	var (
		name  string
		birth contacts.EpochDay
	)
	if nameSet {
		if name, err = validateName(flagEditName); err != nil {
			return outputError("edit", err)
		}
	}
	if birthSet {
		if birth, err = contacts.ParseEpochDay(flagEditBirth); err != nil {
			return outputError("edit", err)
		}
	}

	ctx := cmd.Context()
	m, err := openManager(ctx)
	if err != nil {
		return outputError("edit", err)
	}
	defer m.Close()

	rec, err := findPerson(ctx, m, id)
	if err != nil {
		return outputError("edit", err)
	}
	if nameSet {
		rec = rec.WithName(name)
	}
	if birthSet {
		rec = rec.WithBirth(birth)
	}
	err = m.Do(ctx, func(ctx context.Context, s contacts.PeopleStore) error {
		return s.Update(ctx, rec)
	})
	if err != nil {
		return outputError("edit", err)
	}
	return outputResult(CLIResult{Command: "edit", Results: personToCLI(rec)})
}

func runRemove(cmd *cobra.Command, args []string) error {
	id, err := parseIDArg(args[0])
	if err != nil {
		return outputError("rm", err)
	}
	ctx := cmd.Context()
	m, err := openManager(ctx)
	if err != nil {
		return outputError("rm", err)
	}
	defer m.Close()

	rec, err := findPerson(ctx, m, id)
	if err != nil {
		return outputError("rm", err)
	}
	err = m.Do(ctx, func(ctx context.Context, s contacts.PeopleStore) error {
		return s.Delete(ctx, rec)
	})
	if err != nil {
		return outputError("rm", err)
	}
	return outputResult(CLIResult{Command: "rm", Results: personToCLI(rec)})
}

// --- Helpers ---

// findPerson looks up id on the worker; a missing person is an error here.
func findPerson(ctx context.Context, m *contacts.Manager, id int64) (contacts.Record, error) {
	var (
		rec   contacts.Record
		found bool
	)
	err := m.Do(ctx, func(ctx context.Context, s contacts.PeopleStore) error {
		var err error
		rec, found, err = s.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return contacts.Record{}, err
	}
	if !found {
		return contacts.Record{}, fmt.Errorf("no person with id %d", id)
	}
	return rec, nil
}

// parseIDArg parses a positional id with a clear error.
func parseIDArg(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: must be a non-negative integer", value)
	}
	if id < 0 {
		return 0, fmt.Errorf("invalid id %q: must be non-negative", value)
	}
	return id, nil
}

// validateName trims name and rejects an empty result. The store stores
// whatever it is given, so this is the only check.
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}
	return name, nil
}

// ensureDir creates the directory holding dbPath.
func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}
