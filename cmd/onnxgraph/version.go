package main

import (
	"fmt"

	"github.com/born-ml/onnxgraph/internal/onnx"
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of onnxgraph",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "onnxgraph %s (IR version %d, opset %d)\n",
			version, onnx.IRVersion, onnx.DefaultOpsetVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
