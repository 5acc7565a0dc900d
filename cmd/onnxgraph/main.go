// Package main provides the onnxgraph CLI.
package main

func main() {
	Execute()
}
