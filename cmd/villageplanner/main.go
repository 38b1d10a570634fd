package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "villageplanner",
		Short:         "Attractor-driven village layout generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogging(logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(schemaCmd())
	rootCmd.AddCommand(savesCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}

func generateCmd() *cobra.Command {
	var (
		output string
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "generate [project-path]",
		Short: "Generate a village layout and write it as a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var override *int64
			if cmd.Flags().Changed("seed") {
				override = &seed
			}
			return runGenerate(projectArg(args), output, override)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the document to a file instead of stdout")
	cmd.Flags().Int64Var(&seed, "seed", 0, "override the project seed")
	return cmd
}

func validateCmd() *cobra.Command {
	var document string

	cmd := &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate a project config or a saved document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(projectArg(args), document)
		},
	}

	cmd.Flags().StringVarP(&document, "document", "d", "", "validate this document file instead of the project")
	return cmd
}

func renderCmd() *cobra.Command {
	var (
		output  string
		texture bool
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "render [project-path | document.json]",
		Short: "Render a project or a saved document to SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var debugOverride *bool
			if cmd.Flags().Changed("debug") {
				debugOverride = &debug
			}
			return runRender(projectArg(args), output, texture, debugOverride)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the SVG to a file instead of stdout")
	cmd.Flags().BoolVar(&texture, "texture", false, "shade the ground with noise tiles")
	cmd.Flags().BoolVar(&debug, "debug", false, "draw placement circles")
	return cmd
}

func serveCmd() *cobra.Command {
	var (
		port   int
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the local server with the interactive canvas",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), projectArg(args), port, dbPath)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "HTTP server port")
	cmd.Flags().StringVar(&dbPath, "db", "", "scene archive path (defaults to the project's store.path)")
	return cmd
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the village document",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSchema()
		},
	}
}

func savesCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "saves",
		Short: "Inspect the scene archive",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "village.db", "scene archive path")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved scenes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSavesList(cmd.Context(), dbPath)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show [id]",
		Short: "Print a saved document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSavesShow(cmd.Context(), dbPath, args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a saved scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSavesDelete(cmd.Context(), dbPath, args[0])
		},
	})
	return cmd
}

func projectArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
