package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/cratesweep/cratesweep/pkg/isolation"
	"github.com/cratesweep/cratesweep/pkg/types"
)

func parseRunConfig(t *testing.T, configFile string, args ...string) (types.RunConfig, error) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	v, err := newViper(cmd, configFile)
	if err != nil {
		return types.RunConfig{}, err
	}
	return runConfig(v)
}

func TestRunConfig_Defaults(t *testing.T) {
	cfg, err := parseRunConfig(t, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != types.DefaultRunConfig() {
		t.Errorf("defaults = %+v, want %+v", cfg, types.DefaultRunConfig())
	}
}

func TestRunConfig_Flags(t *testing.T) {
	cfg, err := parseRunConfig(t, "", "-t", "-b", "--release", "--force", "--out", "runs/1", "--timeout", "90s", "-v", "debug", "--notify", "--notify-sound")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.RunTests || !cfg.RunBenchmarks || !cfg.Release || !cfg.Force || !cfg.Notify || !cfg.NotifySound {
		t.Errorf("boolean flags not applied: %+v", cfg)
	}
	if cfg.OutputDir != "runs/1" || cfg.Timeout != 90*time.Second || cfg.Verbosity != types.LogLevelDebug {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestRunConfig_Environment(t *testing.T) {
	t.Setenv("CRATESWEEP_DOWNLOAD_URL", "http://mirror.local/crates")
	t.Setenv("CRATESWEEP_SKIP_INDEX_UPDATE", "true")
	t.Setenv("CRATESWEEP_OUT", "from-env")

	cfg, err := parseRunConfig(t, "", "--out", "from-flag")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DownloadURL != "http://mirror.local/crates" || !cfg.SkipIndexUpdate {
		t.Errorf("environment not applied: %+v", cfg)
	}
	if cfg.OutputDir != "from-flag" {
		t.Errorf("flag should win over environment, got %q", cfg.OutputDir)
	}
}

func TestRunConfig_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cratesweep.yaml")
	content := "test: true\ntimeout: 30s\nisolation: inprocess\nmetrics-file: run.prom\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := parseRunConfig(t, path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.RunTests || cfg.Timeout != 30*time.Second || cfg.Isolation != types.IsolationInProcess {
		t.Errorf("config file not applied: %+v", cfg)
	}
	if cfg.MetricsFile != "run.prom" {
		t.Errorf("metrics file = %q", cfg.MetricsFile)
	}
}

func TestRunConfig_ExplicitFalseBeatsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cratesweep.yaml")
	if err := os.WriteFile(path, []byte("test: true\nbench: true\nrelease: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := parseRunConfig(t, path, isolation.ChildArgs(types.DefaultRunConfig(), types.PackageID{Name: "serde"})[1:]...)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RunTests || cfg.RunBenchmarks || cfg.Release {
		t.Errorf("child flags should override the config file: %+v", cfg)
	}
}

func TestRunConfig_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		configFile string
		args       []string
	}{
		{name: "isolation", args: []string{"--isolation", "thread"}},
		{name: "negative timeout", args: []string{"--timeout", "-1s"}},
		{name: "empty output", args: []string{"--out", ""}},
		{name: "missing config file", configFile: "/nonexistent/cratesweep.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseRunConfig(t, tt.configFile, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("error: could not compile", 10); got != "error: co…" {
		t.Errorf("truncate = %q", got)
	}
}
