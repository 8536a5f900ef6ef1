package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // Every candidate passed
	ExitCheckFailed = 1 // A candidate scored below the threshold or failed validation
	ExitError       = 2 // Configuration or runtime error
)

// CheckFailedError indicates that the evaluation ran to completion, but one
// or more candidates did not pass the configured gate.
type CheckFailedError struct {
	Message string
}

func (e *CheckFailedError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var checkErr *CheckFailedError
		if errors.As(err, &checkErr) {
			os.Exit(ExitCheckFailed)
		}

		os.Exit(ExitError)
	}
}
