package constants

import "errors"

// Operation errors.
var (
	ErrUnsupportedOutput = errors.New("unsupported output format")
	ErrServiceRequired   = errors.New("service name is required")
	ErrNoBuildPath       = errors.New("service has no build path")
)

// File system errors.
var (
	ErrNotDirectory = errors.New("build path is not a directory")
)
