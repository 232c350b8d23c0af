// Command flowkernel evaluates numeric dataflow pipelines from the command
// line or serves them over HTTP.
package main

import (
	"context"
	"fmt"
	"os"

	apperrors "github.com/kbukum/flowkernel/errors"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status: 2 for rejected input,
// 3 for missing tables or files, 1 otherwise.
func exitCode(err error) int {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		return 1
	}
	switch appErr.Code {
	case apperrors.ErrCodeInvalidPipeline, apperrors.ErrCodeTypeMismatch, apperrors.ErrCodeInvalidInput:
		return 2
	case apperrors.ErrCodeNotFound:
		return 3
	default:
		return 1
	}
}
