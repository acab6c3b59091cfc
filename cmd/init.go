package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pders01/reflexion/internal/config"
	"github.com/pders01/reflexion/internal/git"
)

const preCommitHook = `#!/bin/sh
# Git hook to prevent commits on snapshot branches

branch=$(git rev-parse --abbrev-ref HEAD)

if echo "$branch" | grep -q "^snapshot/"; then
    echo "ERROR: Snapshots are immutable. Cannot commit to snapshot branch: $branch"
    echo "Create a new snapshot instead with: reflexion save <topic>"
    exit 1
fi

exit 0
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize reflexion in the current repository",
	Long: `Install git hooks and create configuration for reflexion.

This command:
  - Installs the pre-commit hook to prevent modifications to snapshots
  - Creates a default config file if it doesn't exist

Run this once per repository to set up snapshot protection.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if !git.IsGitRepo() {
		return fmt.Errorf("not a git repository")
	}
	w := stdout(cmd)

	gitDir, err := git.GitDir()
	if err != nil {
		return err
	}
	hooksDir := filepath.Join(gitDir, "hooks")
	if err := os.MkdirAll(hooksDir, 0755); err != nil {
		return fmt.Errorf("failed to create hooks directory: %w", err)
	}

	hookPath := filepath.Join(hooksDir, "pre-commit")
	if _, err := os.Stat(hookPath); err == nil {
		fmt.Fprintf(w, "Warning: pre-commit hook already exists at %s\n", hookPath)
		fmt.Fprintln(w, "To preserve immutability, ensure it includes snapshot branch protection.")
		return nil
	}

	if err := os.WriteFile(hookPath, []byte(preCommitHook), 0755); err != nil {
		return fmt.Errorf("failed to write pre-commit hook: %w", err)
	}

	fmt.Fprintf(w, "✓ Installed pre-commit hook: %s\n", hookPath)
	fmt.Fprintln(w, "  Snapshot branches are now protected from modifications")

	configDir, err := defaultConfigDir()
	if err != nil {
		return err
	}
	configPath := filepath.Join(configDir, "config.toml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		data, err := config.Marshal(config.Default())
		if err != nil {
			return err
		}
		if err := os.WriteFile(configPath, data, 0644); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}

		fmt.Fprintf(w, "✓ Created default config: %s\n", configPath)
	} else {
		fmt.Fprintf(w, "Config already exists: %s\n", configPath)
	}

	fmt.Fprintln(w, "\n✓ Reflexion initialized successfully!")
	fmt.Fprintln(w, "  You can now use: reflexion save <topic>")

	return nil
}
