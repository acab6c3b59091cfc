package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pders01/reflexion/internal/backend"
	"github.com/pders01/reflexion/internal/config"
	"github.com/pders01/reflexion/internal/server"
)

var (
	serveAddr    string
	serveEnvFile string
	serveDebug   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backend proxy and diff API",
	Long: `Serve the HTTP API in front of the agent backend.

Routes:
  GET  /api/info              backend health (auth optional)
  GET  /api/projects          knowledge graph projects
  POST /api/project/apply     apply a decision
  GET  /api/decisions         pending decisions of a thread
  POST /api/progression/diff  compare two snapshots
  POST /api/hydration/view    hydration progress toward a target
  POST /api/brief/decision    approve or reject concept brief options
  *    /api/...               forwarded to the backend

Environment variables from --env-file are loaded before configuration.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config server.addr)")
	serveCmd.Flags().StringVar(&serveEnvFile, "env-file", ".env", "Environment file to load")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadEnvFile(serveEnvFile); err != nil {
		return err
	}

	logger, err := newLogger(serveDebug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client, err := backend.NewClient(config.GetBackendConfig())
	if err != nil {
		return err
	}
	agg, err := config.GetAggregation()
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = config.GetServerAddr()
	}

	return server.New(client, logger, agg).ListenAndServe(addr)
}

// loadEnvFile loads path into the environment; a missing file is not an error
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	fmt.Fprintln(os.Stderr, "Loaded environment from", path)
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
