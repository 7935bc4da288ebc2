// Package cli provides the command-line interface for cratesweep
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cratesweep/cratesweep/pkg/isolation"
	"github.com/cratesweep/cratesweep/pkg/types"
)

// CLI encapsulates the command-line interface and keeps it free of
// global state
type CLI struct {
	config   *Config
	rootCmd  *cobra.Command
	runCmd   *cobra.Command
	childCmd *cobra.Command
	output   io.Writer
	errorOut io.Writer
}

// NewCLI creates a new CLI instance with the given configuration
func NewCLI(config *Config) *CLI {
	if config == nil {
		config = NewConfig()
	}

	cli := &CLI{
		config:   config,
		output:   os.Stdout,
		errorOut: os.Stderr,
	}

	cli.setupCommands()
	return cli
}

// NewCLIWithOutput creates a CLI with custom output writers (for testing)
func NewCLIWithOutput(config *Config, output, errorOut io.Writer) *CLI {
	cli := NewCLI(config)
	cli.output = output
	cli.errorOut = errorOut
	cli.rootCmd.SetOut(output)
	cli.rootCmd.SetErr(errorOut)
	return cli
}

// Execute runs the CLI with the given arguments. A first argument equal
// to the recurse flag selects the hidden child mode.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == isolation.RecurseFlag {
		c.childCmd.SetArgs(args[1:])
		return c.childCmd.ExecuteContext(ctx)
	}
	c.rootCmd.SetArgs(c.route(args))
	return c.rootCmd.ExecuteContext(ctx)
}

// rootArgs start an invocation that cobra handles on the root command
var rootArgs = map[string]bool{
	"-h":         true,
	"--help":     true,
	"--version":  true,
	"help":       true,
	"completion": true,
}

// route sends every invocation that does not open with a subcommand to the
// run command. Package names are only ever positional arguments of run, so
// `cratesweep --out runs version` attempts the crate named version.
func (c *CLI) route(args []string) []string {
	if len(args) == 0 || rootArgs[args[0]] {
		return args
	}
	for _, sub := range c.rootCmd.Commands() {
		if sub.Name() == args[0] || sub.HasAlias(args[0]) {
			return args
		}
	}
	return append([]string{c.runCmd.Name()}, args...)
}

func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:   "cratesweep [flags] <spec>...",
		Short: "Build, test and benchmark registry packages in bulk",
		Long: `cratesweep attempts every named package, or the whole mirrored index with '*',
one at a time inside a crash boundary and records one outcome per package.

Specs are "name" or "name=version". Packages with a recorded outcome are skipped,
so an interrupted run picks up where it stopped. A package named like a
subcommand is attempted with 'cratesweep run <name>' or after any run flag.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	// Listed for help only; Execute routes flagged invocations to run
	addRunFlags(c.rootCmd)
	c.rootCmd.PersistentFlags().StringVar(&c.config.ConfigFile, "config", "", "config file (default: ./cratesweep.yaml)")

	c.rootCmd.Version = c.config.Version
	c.rootCmd.SetVersionTemplate("📦 cratesweep v{{.Version}}\n")

	c.runCmd = &cobra.Command{
		Use:   "run [flags] <spec>...",
		Short: "Attempt packages (the default when no subcommand is named)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return c.runParent(cmd, args)
		},
	}
	addRunFlags(c.runCmd)

	c.rootCmd.AddCommand(c.runCmd)
	c.rootCmd.AddCommand(c.newReportCmd())
	c.rootCmd.AddCommand(c.newVersionCmd())

	c.childCmd = &cobra.Command{
		Use:           isolation.RecurseFlag + " [flags] -- <spec>",
		Hidden:        true,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runChild(cmd, args)
		},
	}
	addRunFlags(c.childCmd)
}

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.output, "📦 cratesweep v%s\n", c.config.Version)
		},
	}
}

// ExitCode maps the error of Execute to a process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, isolation.ErrInterrupted):
		return 130
	case types.IsSetupError(err):
		return 2
	default:
		return 1
	}
}

// PrintError writes err the way the CLI reports fatal errors
func (c *CLI) PrintError(err error) {
	fmt.Fprintf(c.errorOut, "📦 %s %v\n", color.RedString("[cratesweep]"), err)
}
