package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	addr       string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envAddr := os.Getenv("HTTP_ADDR")
	if envAddr == "" {
		envAddr = ":8080"
	}
	envConfig := os.Getenv("CONFIG_PATH")

	cmd := &cobra.Command{
		Use:   "quizdesk",
		Short: "Local-first quiz taking and grading service",
	}

	cmd.PersistentFlags().StringVar(&addr, "addr", envAddr, "address to listen on")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(newServeCmd(&configPath, &addr))
	cmd.AddCommand(newSeedCmd(&configPath))
	cmd.AddCommand(newTakeCmd(&configPath))
	cmd.AddCommand(newExportCmd(&configPath))
	return cmd
}
