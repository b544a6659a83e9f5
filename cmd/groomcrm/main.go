// Package main provides the groomcrm CLI, the command-line surface over the
// grooming record store, photo folder, and calendar integration.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/groomcrm/groomcrm/pkg/types"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode classifies an error: bad input or a missing record is a user
// error, anything else is a system error.
func exitCode(err error) int {
	for _, userErr := range []error{
		types.ErrNotFound, types.ErrInvalidID, types.ErrInvalidData,
		types.ErrInvalidPatch, types.ErrInvalidStatus, types.ErrInvalidName,
		types.ErrInvalidPrice, types.ErrInvalidPath, types.ErrInvalidFilter,
		types.ErrTableNotFound,
	} {
		if errors.Is(err, userErr) {
			return exitUserError
		}
	}
	return exitSysError
}
