// Package emoji provides the status symbols shared by marcmerge commands.
package emoji

// Status symbols for command summaries.
const (
	// Success marks a merged pair or a valid rules file.
	Success = "✓"

	// Error marks a failed pair or an invalid rules file.
	Error = "✗"

	// Skipped marks a field an action left out of the merged record.
	Skipped = "-"
)
