// Command flowbridge converts one AI-generated HTML document into an
// artifact bundle pasteable into the target builder.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flowbridge/compiler/internal/pipeline"
	"github.com/flowbridge/compiler/internal/semantic"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flowbridge",
		Short:         "HTML to builder scene-graph transpiler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBuildCmd())
	return root
}

func newBuildCmd() *cobra.Command {
	var (
		projectName string
		outPath     string
		useLLM      bool
		useMock     bool
		endpoint    string
		verbose     bool
	)
	cmd := &cobra.Command{
		Use:   "build <input.html>",
		Short: "Run the import pipeline over one HTML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if projectName == "" {
				projectName = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			log := zap.NewNop()
			if verbose {
				log, err = zap.NewDevelopment()
				if err != nil {
					return err
				}
				defer log.Sync() //nolint:errcheck
			}

			cfg := pipeline.FromEnv()
			if useLLM {
				cfg.UseLLM = true
			}
			if useMock {
				cfg.UseLLM = true
				cfg.LLMMock = true
			}

			var llm semantic.Client
			if cfg.UseLLM {
				target := endpoint
				if cfg.LLMMock {
					srv := httptest.NewServer(semantic.NewMockRouter(log))
					defer srv.Close()
					target = srv.URL + semantic.EndpointPath
				}
				if target != "" {
					llm = semantic.NewHTTPClient(target, log)
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			progress := func(stage string, percent int) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%-14s %3d%%\n", stage, percent)
			}
			bundle, err := pipeline.ProcessImport(ctx, string(input), projectName, progress, llm, cfg, log)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(bundle, "", "  ")
			if err != nil {
				return err
			}
			if outPath == "" || outPath == "-" {
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			return os.WriteFile(outPath, out, 0o644)
		},
	}
	cmd.Flags().StringVarP(&projectName, "name", "n", "", "project name (defaults to the input file name)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "bundle output path, - for stdout")
	cmd.Flags().BoolVar(&useLLM, "llm", false, "enable the semantic patch round")
	cmd.Flags().BoolVar(&useMock, "mock", false, "run the semantic round against the in-process mock")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "semantic patch endpoint URL")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline internals")
	return cmd
}
