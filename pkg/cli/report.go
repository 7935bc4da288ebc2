package cli

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/cratesweep/cratesweep/pkg/results"
	"github.com/cratesweep/cratesweep/pkg/types"
)

const maxMessageWidth = 60

func (c *CLI) newReportCmd() *cobra.Command {
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Tabulate the recorded outcome of every package",
		Long:  `Read the result records under the output directory and print one row per package.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd, c.config.ConfigFile)
			if err != nil {
				return err
			}
			return c.runReport(v.GetString(flagOut), failedOnly)
		},
	}
	cmd.Flags().String(flagOut, types.DefaultOutputDir, "output directory of the run")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "only list packages that did not succeed")
	return cmd
}

func (c *CLI) runReport(outputDir string, failedOnly bool) error {
	records, err := results.NewStore(outputDir).List()
	if err != nil {
		return err
	}

	counts := make(map[types.OutcomeKind]int)
	table := tablewriter.NewWriter(c.output)
	table.Header("Package", "Outcome", "Build", "Test", "Bench", "Message")
	for _, r := range records {
		counts[r.Outcome]++
		if failedOnly && r.Outcome == types.OutcomeSuccess {
			continue
		}
		table.Append([]string{r.Package, string(r.Outcome), r.BuildTime, r.TestTime, r.BenchTime, truncate(r.Message, maxMessageWidth)})
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	fmt.Fprintf(c.output, "%d packages recorded", len(records))
	for _, k := range types.OutcomeKinds {
		if n := counts[k]; n > 0 {
			fmt.Fprintf(c.output, ", %d %s", n, k)
		}
	}
	fmt.Fprintln(c.output)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
