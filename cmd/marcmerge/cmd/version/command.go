// Package version implements the version command.
package version

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentstation/marcmerge/internal/appcontext"
)

// NewCommand creates the version command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		GroupID: "management",
		Short:   "Show version information",
		Long:    `Show version information for the marcmerge CLI.`,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			label := color.New(color.Faint).SprintFunc()
			fmt.Fprintf(w, "marcmerge version %s\n", color.New(color.Bold).Sprint(app.Version()))
			fmt.Fprintf(w, "%s %s\n", label("commit:"), app.Commit())
			fmt.Fprintf(w, "%s %s\n", label("built:"), app.Date())
			fmt.Fprintf(w, "%s %s\n", label("built by:"), app.BuiltBy())
			fmt.Fprintf(w, "%s %s\n", label("go version:"), runtime.Version())
			fmt.Fprintf(w, "%s %s/%s\n", label("platform:"), runtime.GOOS, runtime.GOARCH)
		},
	}
}
