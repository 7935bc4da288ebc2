package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cratesweep/cratesweep/pkg/types"
)

// Config holds the build information of the binary. Everything a run
// needs is read through viper so flags, CRATESWEEP_* variables and the
// optional config file share one precedence order.
type Config struct {
	ConfigFile string
	Version    string
}

// NewConfig creates a new CLI configuration with defaults
func NewConfig() *Config {
	return &Config{Version: "dev"}
}

// Flag names double as viper keys and, upper-cased with '-' replaced by
// '_', as environment variable suffixes.
const (
	flagOut             = "out"
	flagTest            = "test"
	flagBench           = "bench"
	flagRelease         = "release"
	flagForce           = "force"
	flagIsolation       = "isolation"
	flagTimeout         = "timeout"
	flagIndexURL        = "index-url"
	flagDownloadURL     = "download-url"
	flagSkipIndexUpdate = "skip-index-update"
	flagVerbosity       = "verbosity"
	flagMetricsFile     = "metrics-file"
	flagNotify          = "notify"
	flagNotifySound     = "notify-sound"
)

const (
	envPrefix      = "CRATESWEEP"
	configFileName = "cratesweep"
)

// addRunFlags registers every flag that feeds types.RunConfig
func addRunFlags(cmd *cobra.Command) {
	defaults := types.DefaultRunConfig()
	flags := cmd.Flags()

	flags.String(flagOut, defaults.OutputDir, "output directory for the index, sources, captures and results")
	flags.BoolP(flagTest, "t", false, "run the test suite after a successful build")
	flags.BoolP(flagBench, "b", false, "run benchmarks after a successful build")
	flags.Bool(flagRelease, false, "build and test in release mode")
	flags.Bool(flagForce, false, "discard recorded results and attempt every package again")
	flags.String(flagIsolation, string(defaults.Isolation), "isolation mode (process, inprocess)")
	flags.Duration(flagTimeout, 0, "per-package deadline, 0 disables it")
	flags.String(flagIndexURL, defaults.IndexURL, "git URL of the registry index")
	flags.String(flagDownloadURL, defaults.DownloadURL, "base URL of package archives")
	flags.Bool(flagSkipIndexUpdate, false, "use the mirrored index as is")
	flags.StringP(flagVerbosity, "v", string(defaults.Verbosity), "log level (debug, info, warn, error)")
	flags.String(flagMetricsFile, "", "write Prometheus metrics to this file when the run ends")
	flags.Bool(flagNotify, false, "show a desktop notification when the run ends")
	flags.Bool(flagNotifySound, false, "beep after a run with failures, together with --notify")
}

// newViper binds the flags of cmd, the environment and the config file
func newViper(cmd *cobra.Command, configFile string) (*viper.Viper, error) {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(configFileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// runConfig converts the merged settings into the immutable run configuration
func runConfig(v *viper.Viper) (types.RunConfig, error) {
	mode, err := types.ParseIsolationMode(v.GetString(flagIsolation))
	if err != nil {
		return types.RunConfig{}, err
	}

	cfg := types.RunConfig{
		OutputDir:       v.GetString(flagOut),
		RunTests:        v.GetBool(flagTest),
		RunBenchmarks:   v.GetBool(flagBench),
		Release:         v.GetBool(flagRelease),
		Force:           v.GetBool(flagForce),
		Isolation:       mode,
		Timeout:         v.GetDuration(flagTimeout),
		IndexURL:        v.GetString(flagIndexURL),
		DownloadURL:     v.GetString(flagDownloadURL),
		SkipIndexUpdate: v.GetBool(flagSkipIndexUpdate),
		Verbosity:       types.LogLevel(strings.ToLower(v.GetString(flagVerbosity))),
		MetricsFile:     v.GetString(flagMetricsFile),
		Notify:          v.GetBool(flagNotify),
		NotifySound:     v.GetBool(flagNotifySound),
	}
	if err := cfg.Validate(); err != nil {
		return types.RunConfig{}, err
	}
	return cfg, nil
}
