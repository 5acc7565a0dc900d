package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/born-ml/onnxgraph/internal/onnx"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.onnx>",
	Short: "Print a model's metadata, declared tensors and nodes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := onnx.ParseFile(args[0])
		if err != nil {
			return err
		}
		logger.Debug("parsed model", "path", args[0])
		printModel(cmd.OutOrStdout(), m)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func printModel(w io.Writer, m *onnx.ModelProto) {
	info := onnx.Info(m)
	fmt.Fprintf(w, "Graph:     %s\n", info.GraphName)
	fmt.Fprintf(w, "Producer:  %s %s\n", info.ProducerName, info.ProducerVersion)
	fmt.Fprintf(w, "IR:        %d\n", info.IRVersion)
	fmt.Fprintf(w, "Opset:     %d\n", info.OpsetVersion)
	fmt.Fprintf(w, "Weights:   %d\n", info.WeightCount)
	if sum, err := onnx.Fingerprint(m); err == nil {
		fmt.Fprintf(w, "Digest:    xxh64:%016x\n", sum)
	} else {
		logger.Warn("cannot fingerprint model", "error", err)
	}

	g := m.Graph
	if g == nil {
		return
	}
	fmt.Fprintln(w, "Inputs:")
	for i := range g.Inputs {
		printValue(w, &g.Inputs[i])
	}
	fmt.Fprintln(w, "Outputs:")
	for i := range g.Outputs {
		printValue(w, &g.Outputs[i])
	}
	if len(g.ValueInfo) > 0 {
		fmt.Fprintln(w, "Value info:")
		for i := range g.ValueInfo {
			printValue(w, &g.ValueInfo[i])
		}
	}
	fmt.Fprintf(w, "Nodes (%d):\n", info.NodeCount)
	for i := range g.Nodes {
		n := &g.Nodes[i]
		op := n.OpType
		if n.Domain != "" {
			op = n.Domain + "." + op
		}
		fmt.Fprintf(w, "  %s(%s) -> %s\n", op, strings.Join(n.Inputs, ", "), strings.Join(n.Outputs, ", "))
	}
}

func printValue(w io.Writer, vi *onnx.ValueInfoProto) {
	var tt *onnx.TensorTypeProto
	if vi.Type != nil {
		tt = vi.Type.TensorType
	}
	fmt.Fprintf(w, "  %s: %s\n", vi.Name, onnx.FormatType(tt))
}
