package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ghfacilities/query-engine/internal/apperr"
	"github.com/ghfacilities/query-engine/internal/config"
	"github.com/ghfacilities/query-engine/internal/logging"
	"github.com/ghfacilities/query-engine/internal/version"
)

func main() {
	var traceFlag bool
	var outputFormat string

	root := &cobra.Command{
		Use:     "queryengine",
		Short:   "Answers natural-language questions about Ghana's healthcare facility corpus",
		Version: version.Version,
	}

	queryCmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Classify, route, and answer a single natural-language query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logging.Init(cfg.LogLevel, cfg.LogPath)

			eng, err := buildEngine(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("build engine: %w", err)
			}
			defer eng.Close()

			resp, err := eng.runQuery(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !traceFlag {
				resp.Trace = nil
			}

			return writeResponse(cmd, resp, outputFormat)
		},
	}
	queryCmd.Flags().BoolVar(&traceFlag, "trace", false, "include the full per-agent execution trace in the output")
	queryCmd.Flags().StringVar(&outputFormat, "format", "json", "output format: json, pretty")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an interactive read-eval-print loop over stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logging.Init(cfg.LogLevel, cfg.LogPath)

			eng, err := buildEngine(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("build engine: %w", err)
			}
			defer eng.Close()

			return runREPL(cmd.Context(), eng, traceFlag)
		},
	}
	serveCmd.Flags().BoolVar(&traceFlag, "trace", false, "include the full per-agent execution trace in each response")

	root.AddCommand(queryCmd, serveCmd)

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("queryengine")
		os.Exit(1)
	}
}

func writeResponse(cmd *cobra.Command, resp any, format string) error {
	var out []byte
	var err error
	if format == "pretty" {
		out, err = json.MarshalIndent(resp, "", "  ")
	} else {
		out, err = json.Marshal(resp)
	}
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runREPL(ctx context.Context, eng *engine, traceFlag bool) error {
	decoder := json.NewDecoder(os.Stdin)
	for {
		var line struct {
			Query string `json:"query"`
		}
		if err := decoder.Decode(&line); err != nil {
			return nil
		}

		reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		resp, err := eng.runQuery(reqCtx, line.Query)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
			continue
		}
		if !traceFlag {
			resp.Trace = nil
		}
		out, err := json.Marshal(resp)
		if err != nil {
			fmt.Fprintf(os.Stderr, "encode failed: %v\n", err)
			continue
		}
		fmt.Println(string(out))
	}
}

// validateQuery enforces the inbound query-length boundary before the
// classifier ever sees it.
func validateQuery(query string) error {
	if query == "" || len(query) > 2000 {
		return apperr.ErrInvalidInput
	}
	return nil
}
