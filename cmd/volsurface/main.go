package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "volsurface",
		Short:        "Implied volatility surface builder",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build a filled surface from a quote batch and store a snapshot",
		RunE:  runBuild,
	}
	addInputFlags(buildCmd)
	buildCmd.Flags().String("out", "./data/surfaces.jsonl", "output snapshot JSONL path (empty disables)")
	buildCmd.Flags().String("pg-dsn", "", "Postgres DSN (optional)")
	buildCmd.Flags().Int("max-retries", 3, "maximum Postgres retry attempts")
	buildCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial Postgres retry backoff")
	root.AddCommand(buildCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the filled grid and summary for a quote batch",
		RunE:  runInspect,
	}
	addInputFlags(inspectCmd)
	inspectCmd.Flags().Bool("normalized", false, "print normalized values instead of IV")
	inspectCmd.Flags().String("snapshot", "", "render the latest matching snapshot from this JSONL file instead of building")
	inspectCmd.Flags().String("pg-dsn", "", "render the latest snapshot for ticker and type from Postgres instead of building")
	inspectCmd.Flags().Int("max-retries", 3, "maximum Postgres retry attempts")
	inspectCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial Postgres retry backoff")
	root.AddCommand(inspectCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the surface and pick API over HTTP",
		RunE:  runServe,
	}
	addInputFlags(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "listen address")
	serveCmd.Flags().Duration("shutdown-timeout", 5*time.Second, "graceful shutdown timeout")
	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("in", "", "input quote batch (json, jsonl or csv)")
	cmd.Flags().String("format", "", "input format (json, jsonl, csv); inferred from extension when empty")
	cmd.Flags().String("ticker", "", "ticker the batch belongs to")
	cmd.Flags().String("type", "Call", "option type (Call or Put)")
	cmd.Flags().Int64("min-volume", 0, "drop quotes with volume below this")
	cmd.Flags().Int64("min-open-interest", 0, "drop quotes with open interest below this")
	cmd.Flags().Bool("prune", false, "drop outliers (moneyness outside 0.5-1.5, IV outside 0.001-2, over 61 days)")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
