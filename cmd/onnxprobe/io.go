package main

import (
	"github.com/spf13/cobra"

	"github.com/zerfoo/onnxprobe/pkg/inspector"
)

func newIOCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "io [model]",
		Short: "List the inputs and outputs a session exposes",
		Long: `Opens the model as an inference session and lists every declared input
and output with its name, shape and type. Dimensions without a fixed size are
shown by their symbolic name, or "?" when unnamed.

The session backend is "native" (pure Go), "onnxruntime" (requires the shared
library) or "auto", which uses ONNX Runtime when the library loads.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			format, err := inspector.ParseFormat(a.cfg.Output.Format)
			if err != nil {
				return err
			}
			backend, err := inspector.SelectBackend(ctx, a.cfg.Session.Backend, a.cfg.OnnxRuntime.LibraryPath)
			if err != nil {
				return err
			}
			path, err := a.resolveModel(cmd, args)
			if err != nil {
				return err
			}
			return inspector.InspectSession(ctx, cmd.OutOrStdout(), path, backend, format)
		},
	}
	cmd.Flags().String("backend", "", "session backend: auto, native or onnxruntime")
	cmd.Flags().String("library", "", "path to the ONNX Runtime shared library")
	return cmd
}
