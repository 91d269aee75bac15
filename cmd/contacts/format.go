package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jward/contacts/internal/config"
	"gopkg.in/yaml.v3"
)

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text", "yaml"}

// validateFormat checks that the --format value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, ", "))
}

// outputResult writes a CLIResult to stdout in the configured format.
func outputResult(result CLIResult) error {
	return writeResult(os.Stdout, cfg.Format, result)
}

// outputError writes an error in the configured format and returns it so RunE
// can propagate it to Cobra. json and yaml put an envelope on stdout; text
// goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if cfg.Format == "text" || cfg.Format == "" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	_ = writeResult(os.Stdout, cfg.Format, CLIResult{Command: command, Error: err.Error()})
	return err
}

func writeResult(w io.Writer, format string, result CLIResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeResultText(w, result)
	}
}

func writeResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIPerson:
		formatPeopleText(w, v)
	case CLIPerson:
		formatPeopleText(w, []CLIPerson{v})
	case config.Config:
		formatConfigText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	if result.TotalCount != nil {
		noun := "people"
		if *result.TotalCount == 1 {
			noun = "person"
		}
		fmt.Fprintf(w, "\n%d %s\n", *result.TotalCount, noun)
	}
	return nil
}

// formatPeopleText formats people as aligned columns.
func formatPeopleText(w io.Writer, people []CLIPerson) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBIRTH")
	for _, p := range people {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, p.Birth)
	}
	tw.Flush()
}

// formatConfigText formats the resolved configuration as key: value lines.
func formatConfigText(w io.Writer, c config.Config) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "db:\t%s\n", c.DB)
	fmt.Fprintf(tw, "driver:\t%s\n", c.Driver)
	fmt.Fprintf(tw, "log_level:\t%s\n", c.LogLevel)
	fmt.Fprintf(tw, "format:\t%s\n", c.Format)
	tw.Flush()
}
