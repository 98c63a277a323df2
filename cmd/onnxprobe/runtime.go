package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zerfoo/onnxprobe/internal/onnx"
)

func newRuntimeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runtime",
		Short: "Check whether the ONNX Runtime shared library loads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := a.cfg.OnnxRuntime.LibraryPath
			if err := onnx.RuntimeAvailable(lib); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ONNX Runtime is available: %s\n", lib)
			return nil
		},
	}
	cmd.Flags().String("library", "", "path to the ONNX Runtime shared library")
	return cmd
}
