package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zerfoo/onnxprobe/pkg/downloader"
)

func newDownloadCmd(a *app) *cobra.Command {
	var modelID, output, file string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download an ONNX model and its tokenizer files from HuggingFace Hub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.huggingFaceOptions()
			if file != "" {
				opts = append(opts, downloader.WithModelFile(file))
			}
			if w := a.progress(cmd); w != nil {
				opts = append(opts, downloader.WithProgress(w))
			}

			d := downloader.NewDownloader(downloader.NewHuggingFaceSource(a.cfg.HuggingFace.APIKey, opts...))

			// Progress and logs share stderr; the summary goes to stdout.
			fmt.Fprintf(cmd.ErrOrStderr(), "Downloading model '%s' to '%s'...\n", modelID, output)

			result, err := d.Download(cmd.Context(), modelID, output)
			if err != nil {
				return fmt.Errorf("failed to download model %s: %w", modelID, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Successfully downloaded model to: %s\n", result.ModelPath)
			if len(result.TokenizerPaths) > 0 {
				fmt.Fprintln(out, "Downloaded tokenizer files:")
				for _, p := range result.TokenizerPaths {
					fmt.Fprintf(out, "  - %s\n", p)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&modelID, "model", "", "HuggingFace model ID, for example org/repo")
	cmd.Flags().StringVar(&output, "output", ".", "directory to save the downloaded files")
	cmd.Flags().StringVar(&file, "file", "", "repository path of the .onnx file to fetch (default: first listed)")
	cmd.Flags().String("api-key", "", "HuggingFace API key for private or gated models")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}
