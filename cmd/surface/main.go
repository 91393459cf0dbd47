package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jward/surface"
	"github.com/jward/surface/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagDB      string
	flagConfig  string
	flagFormat  string
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "surface",
	Short:         "Map the public API surface of a checked codebase",
	Long:          "Surface answers API-surface queries over a serialized semantic snapshot: stable declaration identities, export catalogs, access paths, related types, public interfaces, and import statements.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "snapshot database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "surface.yaml", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: json|text")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log skipped and unresolved targets")

	rootCmd.AddCommand(exportsCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(relatedCmd)
	rootCmd.AddCommand(idCmd)
	rootCmd.AddCommand(printCmd)
	rootCmd.AddCommand(importCmd)
}

func validateFormat(format string) error {
	switch format {
	case "json", "text":
		return nil
	}
	return fmt.Errorf("invalid format %q: must be json or text", format)
}

// loadEngine builds the Engine from the config file and flag overrides.
func loadEngine() (*surface.Engine, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	dbPath := cfg.Snapshot
	if flagDB != "" {
		dbPath = flagDB
	}

	snap, err := surface.LoadSnapshot(dbPath)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", dbPath, err)
	}

	opts := []surface.Option{
		surface.WithPackageName(cfg.Package),
		surface.WithRootDir(cfg.RootDir),
		surface.WithEntrypoints(cfg.Entrypoints...),
		surface.WithPreferredNames(cfg.PreferredNames...),
		surface.WithInternalMembers(cfg.InternalMembers...),
		surface.WithMaxDepth(cfg.MaxDepth),
	}
	if flagVerbose {
		opts = append(opts, surface.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	return surface.New(snap, opts...), nil
}

// declArg resolves the (file, line, col) positional arguments common to the
// declaration-targeting commands.
func declArg(eng *surface.Engine, args []string) (*surface.Declaration, error) {
	file := args[0]
	line, err := parsePositive(args[1], "line")
	if err != nil {
		return nil, err
	}
	col, err := parsePositive(args[2], "col")
	if err != nil {
		return nil, err
	}
	d := eng.Snapshot().DeclarationAt(file, line, col)
	if d == nil {
		return nil, fmt.Errorf("no declaration at %s:%d:%d", file, line, col)
	}
	return d, nil
}

func parsePositive(s, label string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", label, s)
	}
	return n, nil
}
