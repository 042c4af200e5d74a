package object

import "errors"

var (
	// ErrNotFound signals that no object directory exists for the code.
	ErrNotFound = errors.New("object not found")
	// ErrCodeTaken signals that the target code's directory already exists.
	ErrCodeTaken = errors.New("object code already taken")
	// ErrNoContent signals a directory that holds no content file.
	ErrNoContent = errors.New("object has no content file")
)
