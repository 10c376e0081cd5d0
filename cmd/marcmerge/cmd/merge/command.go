// Package merge implements the merge command.
package merge

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentstation/marcmerge/internal/appcontext"
	"github.com/agentstation/marcmerge/internal/cmd/output"
	"github.com/agentstation/marcmerge/internal/cmd/table"
	"github.com/agentstation/marcmerge/pkg/errors"
	"github.com/agentstation/marcmerge/pkg/logging"
	"github.com/agentstation/marcmerge/pkg/merge"
	"github.com/agentstation/marcmerge/pkg/record"
)

// Flags holds the merge command flags.
type Flags struct {
	Rules        string
	Details      bool
	Out          string
	RecordFormat string
}

// NewCommand creates the merge command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}
	cmd := &cobra.Command{
		Use:     "merge <preferred> <other>",
		GroupID: "core",
		Short:   "Merge two records",
		Long: `Merge an other record into a preferred record.

The preferred record is the base of the result. Fields of the other record
are handled by the first rule whose tag pattern matches; fields with no
matching rule are dropped. Records may be JSON, YAML or MessagePack files,
chosen by extension.`,
		Example: `  marcmerge merge --rules rules.yaml preferred.json other.json
  marcmerge merge --rules rules.toml a.json b.json --details -o table
  marcmerge merge a.json b.json --out merged.msgpack`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, flags, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&flags.Rules, "rules", "r", "", "merge rules file (default from merge_config)")
	cmd.Flags().BoolVar(&flags.Details, "details", false, "include the per-field audit trail")
	cmd.Flags().StringVar(&flags.Out, "out", "", "write the merged record to this file")
	cmd.Flags().StringVar(&flags.RecordFormat, "record-format", "", "format for --out: json, yaml, msgpack (default from extension)")

	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface, flags *Flags, preferredPath, otherPath string) error {
	logger := app.Logger()

	merger, err := app.Merger(flags.Rules)
	if err != nil {
		return err
	}

	preferred, err := record.ReadFile(preferredPath)
	if err != nil {
		return err
	}
	other, err := record.ReadFile(otherPath)
	if err != nil {
		return err
	}

	ctx := logging.WithRecordID(cmd.Context(), "preferred", preferred.ID())
	ctx = logging.WithRecordID(ctx, "other", other.ID())

	res, err := merger.MergeWithDetails(ctx, preferred, other)
	if err != nil {
		if errors.IsMultipleFields(err) {
			return fmt.Errorf("%w (use skipOnMultiple to keep the preferred fields instead)", err)
		}
		return err
	}

	logger.Info().
		Str("preferred", filepath.Base(preferredPath)).
		Str("other", filepath.Base(otherPath)).
		Int("fields", len(res.Record.Fields)).
		Msg("Merged records")

	if flags.Out != "" {
		format := record.FormatFromPath(flags.Out)
		if flags.RecordFormat != "" {
			if format, err = record.ParseFormat(flags.RecordFormat); err != nil {
				return err
			}
		}
		if err := record.WriteFileFormat(flags.Out, res.Record, format); err != nil {
			return err
		}
		logger.Info().Str("path", flags.Out).Msg("Wrote merged record")
		return nil
	}

	return Render(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), res, flags.Details)
}

// Render writes a merge result. Tables show the record and, when asked,
// the details below it; structured formats emit the record alone or the
// whole result.
func Render(w io.Writer, format output.Format, res *merge.Result, withDetails bool) error {
	if res == nil {
		return &errors.ValidationError{Field: "result", Message: "cannot be nil"}
	}
	formatter := output.NewFormatter(format)

	switch format {
	case output.FormatJSON, output.FormatYAML:
		if withDetails {
			return formatter.Format(w, res)
		}
		return formatter.Format(w, res.Record)
	default:
		tables := []output.Data{output.Data(table.RecordToTableData(res.Record, format == output.FormatWide))}
		if withDetails {
			tables = append(tables, output.Data(table.DetailsToTableData(res.Details)))
		}
		return formatter.Format(w, tables)
	}
}
