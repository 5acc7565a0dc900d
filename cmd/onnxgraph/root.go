package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/born-ml/onnxgraph/internal/logging"
	"github.com/spf13/cobra"
)

var logger = logging.NewNop()

var rootCmd = &cobra.Command{
	Use:   "onnxgraph",
	Short: "onnxgraph builds, inspects and checks ONNX graphs",
	Long: `onnxgraph builds ONNX model files from Go builders or YAML graph
descriptions, and inspects or checks existing .onnx files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("log-level")
		level, err := logging.ParseLevel(name)
		if err != nil {
			return err
		}
		logger = logging.New(level)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
}
