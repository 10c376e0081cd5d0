package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/marcmerge/cmd/marcmerge/cmd/batch"
	mergecmd "github.com/agentstation/marcmerge/cmd/marcmerge/cmd/merge"
	"github.com/agentstation/marcmerge/cmd/marcmerge/cmd/validate"
	"github.com/agentstation/marcmerge/cmd/marcmerge/cmd/version"
)

// CreateMergeCommand creates the merge command with app dependencies.
func (a *App) CreateMergeCommand() *cobra.Command {
	return mergecmd.NewCommand(a)
}

// CreateBatchCommand creates the batch command with app dependencies.
func (a *App) CreateBatchCommand() *cobra.Command {
	return batch.NewCommand(a)
}

// CreateValidateCommand creates the validate command with app dependencies.
func (a *App) CreateValidateCommand() *cobra.Command {
	return validate.NewCommand(a)
}

// CreateVersionCommand creates the version command with app dependencies.
func (a *App) CreateVersionCommand() *cobra.Command {
	return version.NewCommand(a)
}
