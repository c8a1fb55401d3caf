package cmd

import (
	"fmt"
	"os"

	"github.com/go-drift/nativebridge/pkg/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "config",
		Short: "Show resolved bridge settings",
		Long: `Show the bridge settings resolved from bridge.yaml, NATIVEBRIDGE_*
environment variables and defaults.

The directory defaults to the current working directory.`,
		Usage: "bridgectl config [dir]",
		Run:   runConfig,
	})
}

func runConfig(args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("invalid directory: %w", err)
	}
	cfg, err := config.Resolve(dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Fprintf(stdout, "App:       %s\n", cfg.AppName)
	if cfg.ModulePath != "" {
		fmt.Fprintf(stdout, "Module:    %s\n", cfg.ModulePath)
	}
	fmt.Fprintf(stdout, "Codec:     %s\n", cfg.Codec.Name())
	fmt.Fprintf(stdout, "Protocol:  %s\n", cfg.ProtocolVersion)
	fmt.Fprintf(stdout, "Root type: %s\n", cfg.RootType)
	fmt.Fprintf(stdout, "AutoFlush: %t\n", cfg.AutoFlush)
	fmt.Fprintf(stdout, "Verbose:   %t\n", cfg.Verbose)
	return nil
}
