package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/javanhut/corelsp/internal/config"
	"github.com/javanhut/corelsp/internal/workspace"
)

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Run a one-shot full compile over a workspace and report its symbol index",
	Long:  "index drives the same FullCompile path the server runs at startup, without opening an LSP connection — useful for warming the disk cache or sanity-checking a workspace manifest from a terminal.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndex(cmd.Context(), args[0])
	},
}

func runIndex(ctx context.Context, root string) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving workspace path: %w", err)
	}
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("workspace path %s: %w", root, err)
	}

	manifestPath := cfgFile
	if manifestPath == "" {
		candidate := filepath.Join(root, "corelsp.toml")
		if _, err := os.Stat(candidate); err == nil {
			manifestPath = candidate
		}
	}

	cfg, err := config.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	eng := workspace.New(root, cfg)
	if err := eng.FullCompile(ctx); err != nil {
		return fmt.Errorf("full compile: %w", err)
	}

	symbols := eng.WorkspaceSymbolSearch("")
	fmt.Printf("indexed %s: %d symbols\n", root, len(symbols))
	return nil
}
