// Package batch implements the batch command, which merges many record
// pairs concurrently.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/marcmerge/internal/appcontext"
	"github.com/agentstation/marcmerge/internal/cmd/emoji"
	"github.com/agentstation/marcmerge/internal/cmd/output"
	"github.com/agentstation/marcmerge/pkg/errors"
	"github.com/agentstation/marcmerge/pkg/logging"
	"github.com/agentstation/marcmerge/pkg/merge"
	"github.com/agentstation/marcmerge/pkg/record"
)

// Status of a pair after a batch run.
const (
	StatusMerged = "merged"
	StatusFailed = "failed"
)

// Result reports one pair of a batch run.
type Result struct {
	Name     string `json:"name" yaml:"name"`
	Status   string `json:"status" yaml:"status"`
	Fields   int    `json:"fields" yaml:"fields"`
	Inserted int    `json:"inserted" yaml:"inserted"`
	Replaced int    `json:"replaced" yaml:"replaced"`
	Skipped  int    `json:"skipped" yaml:"skipped"`
	Output   string `json:"output,omitempty" yaml:"output,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewCommand creates the batch command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		rules       string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:     "batch <manifest>",
		GroupID: "core",
		Short:   "Merge many record pairs listed in a manifest",
		Long: `Merge every pair listed in a YAML or JSON manifest.

  rules: rules.yaml
  outDir: merged
  pairs:
    - name: b1
      preferred: records/a.json
      other: records/b.json

Pairs run concurrently. A failing pair does not stop the others; the
command exits non-zero when any pair failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := LoadManifest(args[0])
			if err != nil {
				return err
			}
			if rules == "" {
				rules = manifest.Rules
			}
			merger, err := app.Merger(rules)
			if err != nil {
				return err
			}
			if concurrency <= 0 {
				concurrency = app.Concurrency()
			}
			if err := os.MkdirAll(manifest.OutDir, 0o755); err != nil { //nolint:gosec // output directory is user visible
				return err
			}

			results, err := Run(cmd.Context(), merger, manifest.Pairs, concurrency)
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			if err := output.NewFormatter(format).Format(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			return Summarize(cmd.ErrOrStderr(), results)
		},
	}

	cmd.Flags().StringVarP(&rules, "rules", "r", "", "merge rules file (overrides the manifest)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "pairs merged in parallel (default from config)")

	return cmd
}

// Run merges every pair with at most concurrency merges in flight and
// writes each result to its output path. Per-pair failures are reported in
// the results; only cancellation aborts the run.
func Run(ctx context.Context, merger *merge.Merger, pairs []Pair, concurrency int) ([]Result, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	// Each goroutine writes only its own index.
	results := make([]Result, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(concurrency, max(len(pairs), 1)))

	for i, pair := range pairs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			pairCtx := logging.WithFields(gctx, map[string]any{"pair": pair.Name, "output": pair.Output})
			res, err := mergePair(pairCtx, merger, pair)
			if err != nil {
				if errors.IsCanceled(err) || gctx.Err() != nil {
					return context.Canceled
				}
				logging.FromContext(logging.WithError(pairCtx, err)).Warn().Msg("Pair failed")
				results[i] = Result{Name: pair.Name, Status: StatusFailed, Error: err.Error()}
				return nil
			}

			outcomes := res.Details.Outcomes()
			results[i] = Result{
				Name:     pair.Name,
				Status:   StatusMerged,
				Fields:   len(res.Record.Fields),
				Inserted: outcomes[merge.OutcomeInserted] + outcomes[merge.OutcomeTransformed],
				Replaced: outcomes[merge.OutcomeReplaced],
				Skipped:  outcomes[merge.OutcomeSkipped],
				Output:   pair.Output,
			}
			logging.FromContext(pairCtx).Debug().Msg("Pair merged")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func mergePair(ctx context.Context, merger *merge.Merger, pair Pair) (*merge.Result, error) {
	preferred, err := record.ReadFile(pair.Preferred)
	if err != nil {
		return nil, err
	}
	other, err := record.ReadFile(pair.Other)
	if err != nil {
		return nil, err
	}

	res, err := merger.MergeWithDetails(ctx, preferred, other)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(pair.Output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // output directory is user visible
			return nil, err
		}
	}
	if err := record.WriteFile(pair.Output, res.Record); err != nil {
		return nil, err
	}
	return res, nil
}

// Summarize prints a colored one-line summary and returns an error when
// any pair failed.
func Summarize(w io.Writer, results []Result) error {
	merged, failed := 0, 0
	for _, r := range results {
		if r.Status == StatusMerged {
			merged++
		} else {
			failed++
		}
	}

	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	failedText := fmt.Sprintf("%d failed", failed)
	symbol := green(emoji.Success)
	if failed > 0 {
		failedText = red(failedText)
		symbol = red(emoji.Error)
	}
	fmt.Fprintf(w, "%s %s, %s\n", symbol, green(fmt.Sprintf("%d merged", merged)), failedText)

	if failed > 0 {
		return fmt.Errorf("%d of %d pairs failed", failed, len(results))
	}
	return nil
}
