package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, so session.backend is
// read from ONNXPROBE_SESSION_BACKEND.
const EnvPrefix = "ONNXPROBE"

// DefaultModelPath is inspected when no model argument is given.
const DefaultModelPath = "crop_prediction_model_ir9.onnx"

// Config is the resolved onnxprobe configuration.
type Config struct {
	Model       ModelConfig       `mapstructure:"model"`
	Session     SessionConfig     `mapstructure:"session"`
	OnnxRuntime OnnxRuntimeConfig `mapstructure:"onnxruntime"`
	Output      OutputConfig      `mapstructure:"output"`
	Cache       CacheConfig       `mapstructure:"cache"`
	HuggingFace HuggingFaceConfig `mapstructure:"huggingface"`
	UI          UIConfig          `mapstructure:"ui"`
}

type ModelConfig struct {
	Path string `mapstructure:"path"`
}

type SessionConfig struct {
	Backend string `mapstructure:"backend"`
}

type OnnxRuntimeConfig struct {
	LibraryPath string `mapstructure:"library_path"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

type HuggingFaceConfig struct {
	APIKey string `mapstructure:"api_key"`
	APIURL string `mapstructure:"api_url"`
	CDNURL string `mapstructure:"cdn_url"`
}

type UIConfig struct {
	ProgressBar bool `mapstructure:"progress_bar"`
}

// New returns a viper instance with defaults, environment bindings and, when
// present, the config file applied. configFile overrides the search path; an
// explicitly named file that cannot be read is an error.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if configDir := getUserConfigDir(); configDir != "" {
			v.AddConfigPath(configDir)
		}
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Names other tools already use for the same settings.
	if err := v.BindEnv("huggingface.api_key", EnvPrefix+"_HUGGINGFACE_API_KEY", "HF_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("huggingface.api_url", EnvPrefix+"_HUGGINGFACE_API_URL", "HUGGINGFACE_API_URL"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("huggingface.cdn_url", EnvPrefix+"_HUGGINGFACE_CDN_URL", "HUGGINGFACE_CDN_URL"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return v, nil
}

// Load unmarshals v into a Config and expands user paths.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Cache.Dir = expandPath(cfg.Cache.Dir)
	cfg.OnnxRuntime.LibraryPath = expandPath(cfg.OnnxRuntime.LibraryPath)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model.path", DefaultModelPath)
	v.SetDefault("session.backend", "auto")
	v.SetDefault("onnxruntime.library_path", defaultLibraryPath())
	v.SetDefault("output.format", "text")
	v.SetDefault("cache.dir", defaultCacheDir())
	v.SetDefault("huggingface.api_key", "")
	v.SetDefault("huggingface.api_url", "https://huggingface.co/api/models/")
	v.SetDefault("huggingface.cdn_url", "https://huggingface.co/")
	v.SetDefault("ui.progress_bar", true)
}

// defaultLibraryPath honours the variable onnxruntime_go's own tooling uses
// before falling back to the usual install location for the platform.
func defaultLibraryPath() string {
	if p := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); p != "" {
		return p
	}
	switch runtime.GOOS {
	case "darwin":
		return "/usr/local/lib/libonnxruntime.dylib"
	case "windows":
		return "onnxruntime.dll"
	default:
		return "/usr/local/lib/libonnxruntime.so"
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "onnxprobe")
	}
	return filepath.Join(os.TempDir(), "onnxprobe")
}

func getUserConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "onnxprobe")
}

// expandPath expands a leading ~ and environment variables.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return os.ExpandEnv(path)
}
