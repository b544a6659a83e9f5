// Package groom carries the application identity stamped into backup
// manifests and the CLI version output.
package groom

const (
	// AppName is the application name recorded in backup manifests and
	// used for backup filenames.
	AppName = "groom-crm"

	// Version is the application version.
	Version = "1.0.0"
)
