// Package types provides core types and configurations for cratesweep
package types

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// WildcardSpec selects every package in the mirrored index
const WildcardSpec = "*"

// PackageID identifies one unit of work: a package name and an optional
// version requirement. The zero Version means "newest available".
type PackageID struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
}

// String renders the identifier as "name" or "name=version"
func (p PackageID) String() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "=" + p.Version
}

// HasVersion reports whether a version requirement was given
func (p PackageID) HasVersion() bool {
	return p.Version != ""
}

// PackageSet is the ordered list of packages processed by one run.
// Duplicates are preserved.
type PackageSet []PackageID

// Strings returns the string form of every identifier in order
func (s PackageSet) Strings() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.String()
	}
	return out
}

// ResolvedPackage is a concrete, downloaded package version ready to build
type ResolvedPackage struct {
	ID           PackageID
	Version      string
	SourceDir    string
	ManifestPath string
}

// String renders the resolved package as "name-version"
func (r *ResolvedPackage) String() string {
	return fmt.Sprintf("%s-%s", r.ID.Name, r.Version)
}

// IsolationMode selects how a package attempt is contained
type IsolationMode string

const (
	IsolationProcess   IsolationMode = "process"
	IsolationInProcess IsolationMode = "inprocess"
)

// ParseIsolationMode validates an isolation mode name
func ParseIsolationMode(s string) (IsolationMode, error) {
	switch IsolationMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", IsolationProcess:
		return IsolationProcess, nil
	case IsolationInProcess:
		return IsolationInProcess, nil
	}
	return "", fmt.Errorf("unknown isolation mode %q (want %q or %q)", s, IsolationProcess, IsolationInProcess)
}

// LogLevel represents logging verbosity levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Default endpoints for the crates.io registry
const (
	DefaultIndexURL    = "https://github.com/rust-lang/crates.io-index"
	DefaultDownloadURL = "https://static.crates.io/crates"
	DefaultOutputDir   = "work"
)

// RunConfig is the immutable configuration of one run. It is passed
// explicitly to every component.
type RunConfig struct {
	OutputDir     string
	RunTests      bool
	RunBenchmarks bool
	Release       bool
	Force         bool

	Isolation       IsolationMode
	Timeout         time.Duration
	IndexURL        string
	DownloadURL     string
	SkipIndexUpdate bool
	Verbosity       LogLevel
	MetricsFile     string
	Notify          bool
	NotifySound     bool
}

// DefaultRunConfig returns a configuration with every default applied
func DefaultRunConfig() RunConfig {
	return RunConfig{
		OutputDir:   DefaultOutputDir,
		Isolation:   IsolationProcess,
		IndexURL:    DefaultIndexURL,
		DownloadURL: DefaultDownloadURL,
		Verbosity:   LogLevelInfo,
	}
}

// Validate checks the configuration for values no component can work with
func (c RunConfig) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output directory is required")
	}
	if _, err := ParseIsolationMode(string(c.Isolation)); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// Layout computes the on-disk paths under the output directory
type Layout struct {
	Root string
}

// NewLayout creates a layout rooted at dir
func NewLayout(dir string) Layout {
	return Layout{Root: dir}
}

// IndexDir is the mirrored registry index
func (l Layout) IndexDir() string { return filepath.Join(l.Root, "index") }

// IndexTmpDir receives a fresh clone before it is renamed into place
func (l Layout) IndexTmpDir() string { return filepath.Join(l.Root, ".index") }

// CargoHome is the shared build-tool home for the run
func (l Layout) CargoHome() string { return filepath.Join(l.Root, ".cargo") }

// TargetDir is the shared build-output directory
func (l Layout) TargetDir() string { return filepath.Join(l.Root, "target") }

// SourceDir holds unpacked package sources
func (l Layout) SourceDir() string { return filepath.Join(l.Root, "src") }

// StdioDir holds per-package captured output
func (l Layout) StdioDir() string { return filepath.Join(l.Root, "stdio") }

// ResultsDir holds per-package result records
func (l Layout) ResultsDir() string { return filepath.Join(l.Root, "results") }

// SetupDirs lists the directories created before the first attempt
func (l Layout) SetupDirs() []string {
	return []string{l.Root, l.CargoHome(), l.SourceDir(), l.StdioDir(), l.ResultsDir()}
}
