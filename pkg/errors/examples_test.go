package errors_test

import (
	"fmt"

	"github.com/agentstation/marcmerge/pkg/errors"
)

// Example demonstrates checking an error category through wrapping.
func Example() {
	err := errors.NewMergeError("000123", "000456",
		errors.NewUndefinedActionError("245", "mangle"))

	if errors.IsConfigError(err) {
		fmt.Println("fix the rules file")
	}

	// Output: fix the rules file
}

// Example_multipleFields demonstrates special-casing the selectBetter invariant.
func Example_multipleFields() {
	err := errors.NewMergeError("a", "b", errors.NewActionError("selectBetter", "100", errors.ErrMultipleFields))

	if errors.IsMultipleFields(err) {
		fmt.Println("skip field 100 and retry")
	}

	// Output: skip field 100 and retry
}
