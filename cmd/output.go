package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"

	"github.com/pders01/reflexion/internal/config"
	"github.com/pders01/reflexion/internal/models"
	"github.com/pders01/reflexion/internal/progression"
	"github.com/pders01/reflexion/internal/store"
)

// stdout returns the command's output writer, os.Stdout when run directly
func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

// render writes v as JSON or toon when requested, otherwise calls human
func render(w io.Writer, asJSON, asToon bool, v any, human func(io.Writer)) error {
	if asJSON {
		output, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(w, string(output))
		return nil
	}

	if asToon {
		output, err := gotoon.Encode(v)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Fprintln(w, output)
		return nil
	}

	human(w)
	return nil
}

// readInput reads a file, or stdin for "-"
func readInput(cmd *cobra.Command, arg string) ([]byte, error) {
	if arg == "-" {
		var in io.Reader = os.Stdin
		if cmd != nil {
			in = cmd.InOrStdin()
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", arg, err)
	}
	return data, nil
}

// loadSnapshot reads a snapshot from a JSON file, stdin ("-") or a stored
// snapshot reference (YYYY-MM-DDTHHMM/topic).
func loadSnapshot(cmd *cobra.Command, arg string) (models.Snapshot, error) {
	if store.IsRef(arg) {
		return store.New(config.GetSnapshotDir()).LoadRef(arg)
	}

	data, err := readInput(cmd, arg)
	if err != nil {
		return models.Snapshot{}, err
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %s: %v", progression.ErrInvalidSnapshot, arg, err)
	}
	if err := progression.ValidateSnapshot(snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", arg, err)
	}
	return snap, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
