// Package validate implements the validate command.
package validate

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentstation/marcmerge/internal/appcontext"
	"github.com/agentstation/marcmerge/internal/cmd/emoji"
	"github.com/agentstation/marcmerge/internal/cmd/output"
	"github.com/agentstation/marcmerge/internal/cmd/table"
	"github.com/agentstation/marcmerge/pkg/merge"
)

// Result is the validation outcome of one rules file.
type Result struct {
	File    string `json:"file" yaml:"file"`
	Valid   bool   `json:"valid" yaml:"valid"`
	Rules   int    `json:"rules" yaml:"rules"`
	Indexes int    `json:"indexes" yaml:"indexes"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewCommand creates the validate command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var showRules bool
	cmd := &cobra.Command{
		Use:     "validate <rules>...",
		GroupID: "management",
		Short:   "Check merge rules files",
		Long: `Load each rules file and build a merger from it.

This reports:
  - syntax errors in YAML, JSON or TOML rules
  - tag patterns that do not compile
  - unknown insert modes
  - undefined actions and comparators`,
		Example: `  marcmerge validate rules.yaml
  marcmerge validate rules.yaml legacy.toml --show-rules`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, configs := Check(app, args)

			w := cmd.OutOrStdout()
			format := output.DetectFormat(app.OutputFormat())
			if err := output.NewFormatter(format).Format(w, results); err != nil {
				return err
			}
			if showRules && format == output.FormatTable {
				for _, cfg := range configs {
					fmt.Fprintln(w)
					if err := output.NewFormatter(format).Format(w, table.RulesToTableData(cfg)); err != nil {
						return err
					}
				}
			}
			return report(cmd.ErrOrStderr(), results)
		},
	}

	cmd.Flags().BoolVar(&showRules, "show-rules", false, "print the rules of each valid file (table output)")

	return cmd
}

// Check validates every path. Configs of valid files are returned in
// argument order.
func Check(app appcontext.Interface, paths []string) ([]Result, []*merge.Config) {
	results := make([]Result, 0, len(paths))
	var configs []*merge.Config

	for _, path := range paths {
		res := Result{File: path}
		cfg, err := merge.LoadConfig(path)
		if err == nil {
			_, err = app.Merger(path)
		}
		if err != nil {
			res.Error = err.Error()
			app.Logger().Debug().Err(err).Str("file", path).Msg("Rules file invalid")
		} else {
			res.Valid = true
			res.Rules = len(cfg.Fields)
			res.Indexes = len(cfg.Sort.Indexes)
			configs = append(configs, cfg)
		}
		results = append(results, res)
	}
	return results, configs
}

func report(w io.Writer, results []Result) error {
	invalid := 0
	for _, r := range results {
		if !r.Valid {
			invalid++
		}
	}
	if invalid > 0 {
		fmt.Fprintf(w, "%s %d of %d rules files invalid\n", color.RedString(emoji.Error), invalid, len(results))
		return fmt.Errorf("found %d invalid rules files", invalid)
	}
	fmt.Fprintf(w, "%s %d rules files valid\n", color.GreenString(emoji.Success), len(results))
	return nil
}
