package main

import (
	"github.com/spf13/cobra"

	"github.com/zerfoo/onnxprobe/pkg/inspector"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info [model]",
		Short: "Print the opset version and graph input/output names",
		Long: `Reads the model file without creating a session and prints the version
of its first opset import and the names of the graph inputs and outputs.
Files ending in .zmf are read as ZMF models.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := inspector.ParseFormat(a.cfg.Output.Format)
			if err != nil {
				return err
			}
			path, err := a.resolveModel(cmd, args)
			if err != nil {
				return err
			}
			return inspector.InspectGraph(cmd.Context(), cmd.OutOrStdout(), path, format)
		},
	}
}
