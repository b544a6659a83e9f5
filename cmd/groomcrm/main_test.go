package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/groomcrm/groomcrm/pkg/types"
)

func TestExitCodeClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found is user error", err: types.ErrNotFound, want: exitUserError},
		{name: "wrapped not found", err: fmt.Errorf("get photo: %w", types.ErrNotFound), want: exitUserError},
		{name: "bad status", err: types.ErrInvalidStatus, want: exitUserError},
		{name: "bad filter", err: types.ErrInvalidFilter, want: exitUserError},
		{name: "unknown table", err: types.ErrTableNotFound, want: exitUserError},
		{name: "anything else", err: errors.New("disk on fire"), want: exitSysError},
		{name: "detached store", err: types.ErrStoreDetached, want: exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestConfirmHonorsYesFlag(t *testing.T) {
	flagYes = true
	t.Cleanup(func() { flagYes = false })
	assert.True(t, confirm("Delete everything?"))
}
