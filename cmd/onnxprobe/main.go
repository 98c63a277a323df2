package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"github.com/zerfoo/onnxprobe/internal/config"
	"github.com/zerfoo/onnxprobe/pkg/downloader"
	"github.com/zerfoo/onnxprobe/pkg/source"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
}

// flagKeys binds command line flags to configuration keys. A flag only
// overrides the configured value when it is set explicitly.
var flagKeys = map[string]string{
	"format":    "output.format",
	"backend":   "session.backend",
	"library":   "onnxruntime.library_path",
	"cache-dir": "cache.dir",
	"api-key":   "huggingface.api_key",
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "onnxprobe",
		Short: "Inspect the inputs, outputs and opset of ONNX models",
		Long: `onnxprobe prints what an ONNX model expects and produces.

Key Commands:
  io        - List session inputs and outputs with name, shape and type
  info      - Print the opset version and graph input/output names
  download  - Fetch a model from HuggingFace Hub
  runtime   - Check whether the ONNX Runtime shared library loads

Models may be local paths or http(s)://, gs:// and hf://org/repo[/file]
locations; remote models are cached after the first fetch.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml or the user config dir)")
	rootCmd.PersistentFlags().String("format", "", "output format: text, json or yaml")
	rootCmd.PersistentFlags().String("cache-dir", "", "directory for downloaded models")
	rootCmd.PersistentFlags().Bool("no-progress", false, "disable download progress bars")

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)
	// Registered up front so command lookup knows --help takes no value.
	rootCmd.InitDefaultHelpFlag()

	rootCmd.AddCommand(
		newIOCmd(a),
		newInfoCmd(a),
		newDownloadCmd(a),
		newRuntimeCmd(a),
	)
	return rootCmd
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	v, err := config.New(a.cfgFile)
	if err != nil {
		return err
	}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && err == nil {
			err = v.BindPFlag(key, f)
		}
	})
	if err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	if noProgress, _ := cmd.Flags().GetBool("no-progress"); noProgress {
		v.Set("ui.progress_bar", false)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.v, a.cfg = v, cfg

	cmd.SetContext(klog.NewContext(cmd.Context(), klog.Background().WithName("onnxprobe")))
	return nil
}

// progress returns where download progress is drawn, or nil when disabled.
func (a *app) progress(cmd *cobra.Command) io.Writer {
	if !a.cfg.UI.ProgressBar {
		return nil
	}
	return cmd.ErrOrStderr()
}

func (a *app) huggingFaceOptions() []downloader.Option {
	return []downloader.Option{
		downloader.WithEndpoints(a.cfg.HuggingFace.APIURL, a.cfg.HuggingFace.CDNURL),
	}
}

// resolveModel returns a local path for the model argument, falling back to
// the configured default model.
func (a *app) resolveModel(cmd *cobra.Command, args []string) (string, error) {
	location := a.cfg.Model.Path
	if len(args) > 0 {
		location = args[0]
	}
	resolver := source.NewResolver(a.cfg.Cache.Dir,
		source.WithProgress(a.progress(cmd)),
		source.WithHuggingFace(a.cfg.HuggingFace.APIKey, a.huggingFaceOptions()...),
	)
	return resolver.Resolve(cmd.Context(), location)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}

func main() {
	defer klog.Flush()
	if err := execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		handleErr(err)
	}
}

func handleErr(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	klog.Flush()
	os.Exit(1)
}
