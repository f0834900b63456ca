package types

import "errors"

// Sentinel errors for the failure categories Plugforge distinguishes.
// These enable reliable error checking with errors.Is()
var (
	// ErrValidation indicates malformed user input, such as a bad
	// version string or a plugin path with no descriptor
	ErrValidation = errors.New("validation error")

	// ErrResolution indicates no installed engine matches a requested
	// version spec
	ErrResolution = errors.New("resolution error")

	// ErrFileSystem indicates an unreadable directory or file during
	// scanning, loading or cleanup
	ErrFileSystem = errors.New("filesystem error")

	// ErrExternalTool indicates the build tool or archiver failed to
	// launch or exited nonzero
	ErrExternalTool = errors.New("external tool error")
)
