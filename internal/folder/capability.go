// Package folder implements the external folder store: durable binary
// storage for visit photos rooted at a single user-granted directory
// capability. The capability is a revocable, permission-scoped handle to a
// directory tree, never a plain path string; its permission and liveness
// are re-validated before every use.
package folder

import (
	"errors"
	"io"
)

// Permission is the grant state of a directory capability.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionPrompt  Permission = "prompt"
	PermissionDenied  Permission = "denied"
)

// Handle is a capability-scoped view of one directory. Operations return
// ErrNotFound for missing entries, ErrPermissionDenied when the grant does
// not cover the operation, and ErrHandleInvalid when the directory behind
// the handle no longer exists.
type Handle interface {
	// Entries lists child names. This is the cheap liveness probe used by
	// validation: a dead handle fails here with ErrHandleInvalid.
	Entries() ([]string, error)

	// Child returns the named subdirectory, creating it when create is
	// true. Without create, a missing child returns ErrNotFound.
	Child(name string, create bool) (Handle, error)

	// OpenFile opens the named file for reading.
	OpenFile(name string) (io.ReadCloser, error)

	// CreateFile opens the named file for writing, creating or truncating
	// it.
	CreateFile(name string) (io.WriteCloser, error)

	// StatFile reports whether the named file exists; ErrNotFound when it
	// does not.
	StatFile(name string) error

	// Remove deletes the named entry. ErrNotFound when it does not exist.
	Remove(name string) error

	// QueryPermission reports the current grant state without prompting.
	QueryPermission() Permission

	// RequestPermission attempts to (re-)obtain the grant and returns the
	// resulting state.
	RequestPermission() Permission
}

// Opener materializes a Handle from its persisted locator. A nil Opener on
// the store means the capability API is unavailable in this runtime.
type Opener func(locator string) (Handle, error)

// Folder store errors. Permission problems and dead handles are distinct
// so the user is told precisely which remedial action to take.
var (
	ErrUnsupported      = errors.New("folder capability API is not available in this runtime")
	ErrNoFolder         = errors.New("no storage folder selected")
	ErrPermissionDenied = errors.New("storage folder permission denied; re-grant access to the folder")
	ErrHandleInvalid    = errors.New("storage folder handle is no longer valid; re-select the folder")
	ErrNotFound         = errors.New("entry not found")
)
