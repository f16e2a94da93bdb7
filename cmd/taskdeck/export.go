package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Joseda-hg/taskdeck/internal/app"
	"github.com/Joseda-hg/taskdeck/internal/model"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the signed-in user's tasks, lists and preferences",
	RunE: withSession(func(ctx context.Context, session *app.Session) error {
		snapshot, err := session.Snapshot()
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", exportOut, err)
			}
			defer f.Close()
			w = f
		}
		if err := writeSnapshot(w, snapshot, exportFormat); err != nil {
			return err
		}
		if exportOut != "" {
			successf("Exported %d task(s) to %s", len(snapshot.Tasks), exportOut)
		}
		return nil
	}),
}

// writeSnapshot encodes as json or yaml. YAML goes through the JSON form so
// both formats share the same field names.
func writeSnapshot(w io.Writer, snapshot model.Snapshot, format string) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	case "yaml", "yml":
		raw, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (want json or yaml)", format)
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "json or yaml")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (defaults to stdout)")
	rootCmd.AddCommand(exportCmd)
}
