package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/onnxgraph/internal/attention"
	"github.com/born-ml/onnxgraph/internal/graphdef"
	"github.com/born-ml/onnxgraph/internal/onnx"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	errTerminalOutput = errors.New("refusing to write a binary model to a terminal")
	errTwoSources     = errors.New("--file and --builtin cannot be used together")
)

type buildOptions struct {
	file    string // YAML description file
	builtin string // builtin description name
	output  string
	check   bool
	infer   bool
}

var buildOpts buildOptions

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an ONNX model",
	Long: `Builds the attention graph, a builtin description (--builtin) or a YAML
graph description (--file). With -o the binary model is written to a file,
or to stdout for "-o -"; otherwise a summary is printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd.OutOrStdout(), buildOpts)
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildOpts.file, "file", "f", "", "YAML graph description file")
	buildCmd.Flags().StringVar(&buildOpts.builtin, "builtin", "", "Builtin graph description name")
	buildCmd.Flags().StringVarP(&buildOpts.output, "output", "o", "", "Write the model to this .onnx file (- for stdout)")
	buildCmd.Flags().BoolVar(&buildOpts.check, "check", false, "Run the checker before writing")
	buildCmd.Flags().BoolVar(&buildOpts.infer, "infer", false, "Record inferred intermediate shapes as value_info")
	buildCmd.MarkFlagsMutuallyExclusive("file", "builtin")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(w io.Writer, opts buildOptions) error {
	m, err := buildModel(opts)
	if err != nil {
		return err
	}
	logger.Debug("built model", "graph", m.Graph.Name, "nodes", len(m.Graph.Nodes))

	if opts.infer {
		if m, err = onnx.InferShapes(m); err != nil {
			return fmt.Errorf("failed to infer shapes: %w", err)
		}
		logger.Debug("inferred shapes", "value_info", len(m.Graph.ValueInfo))
	}
	if opts.check {
		if err := onnx.Check(m); err != nil {
			return fmt.Errorf("model check failed:\n%w", err)
		}
		logger.Info("model check passed", "graph", m.Graph.Name)
	}

	switch opts.output {
	case "":
		printModel(w, m)
		return nil
	case "-":
		return writeModel(w, m)
	}
	if err := onnx.WriteFile(opts.output, m); err != nil {
		return err
	}
	logger.Info("wrote model", "path", opts.output)
	fmt.Fprintf(w, "Wrote %s\n", opts.output)
	return nil
}

func buildModel(opts buildOptions) (*onnx.ModelProto, error) {
	var (
		d   *graphdef.Description
		err error
	)
	switch {
	case opts.file != "" && opts.builtin != "":
		return nil, errTwoSources
	case opts.file != "":
		d, err = graphdef.LoadFile(opts.file)
	case opts.builtin != "":
		d, err = graphdef.Builtin(opts.builtin)
	default:
		return attention.Build(), nil
	}
	if err != nil {
		return nil, err
	}
	return d.Build()
}

func writeModel(w io.Writer, m *onnx.ModelProto) error {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115: file descriptors fit in int.
		return errTerminalOutput
	}
	data, err := onnx.Marshal(m)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	logger.Info("wrote model", "path", "-", "bytes", len(data))
	return nil
}
