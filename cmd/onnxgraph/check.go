package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/born-ml/onnxgraph/internal/onnx"
	"github.com/born-ml/onnxgraph/internal/parallel"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.onnx>...",
	Short: "Check models for structural errors",
	Long: `Verifies graph ordering, name uniqueness, opset imports and operator
arity. Files are checked concurrently and every finding is reported; the
exit status is 1 if any file is invalid.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.OutOrStdout(), args, parallel.DefaultConfig())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(w io.Writer, paths []string, cfg parallel.Config) error {
	results := parallel.Map(paths, checkFile, cfg)

	var errs []error
	for i, err := range results {
		if err != nil {
			logger.Debug("model check failed", "path", paths[i], "error", err)
			errs = append(errs, fmt.Errorf("%s is invalid:\n%w", paths[i], err))
			continue
		}
		fmt.Fprintf(w, "%s is valid\n", paths[i])
	}
	return errors.Join(errs...)
}

func checkFile(path string) error {
	m, err := onnx.ParseFile(path)
	if err != nil {
		return err
	}
	return onnx.Check(m)
}
