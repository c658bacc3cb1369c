package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ncp/patient-summary/internal/config"
	"github.com/ncp/patient-summary/internal/platform/fhir"
	"github.com/ncp/patient-summary/internal/summary"
	"github.com/ncp/patient-summary/internal/terminology"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "summary-cli",
		Short: "FHIR patient summary normalizer",
	}

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(lookupCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [bundle.json]",
		Short: "Normalize a FHIR document bundle into a clinical summary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pretty, _ := cmd.Flags().GetBool("pretty")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			raw, err := readInput(args)
			if err != nil {
				return err
			}

			var doc fhir.Raw
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("decode bundle: %w", err)
			}

			if cfg.MetricsAddr != "" {
				go serveMetrics(cfg.MetricsAddr, logger)
			}

			engine := summary.NewEngine(newResolver(cfg, logger), logger)
			result := engine.Parse(context.Background(), doc)

			enc := json.NewEncoder(os.Stdout)
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(result)
		},
	}
	cmd.Flags().Bool("pretty", false, "Indent the JSON output")
	return cmd
}

func lookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <code>",
		Short: "Resolve a single code against the terminology service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			system, _ := cmd.Flags().GetString("system")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			resolver := newResolver(cfg, logger)
			res := resolver.Resolve(context.Background(), args[0], system)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().String("system", fhir.OIDATC, "Code system OID")
	return cmd
}

// newLogger follows the environment split: structured JSON output by default,
// console output in development.
func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	}
	return logger
}

// newResolver wires the terminology resolver; without a configured gateway
// base URL it still serves the static fallback table and code echoes.
func newResolver(cfg *config.Config, logger zerolog.Logger) *terminology.Resolver {
	var gateway terminology.Gateway
	if cfg.CTSBaseURL != "" {
		gateway = terminology.NewHTTPGateway(cfg.CTSBaseURL, cfg.CTSTimeout())
	}
	return terminology.NewResolver(gateway, terminology.NewCache(), cfg.TargetLanguage, logger)
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn().Err(err).Msg("metrics listener stopped")
	}
}
