package domain

import "errors"

var (
	// ErrBadRequest marks a batch rejected before any work starts.
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound marks a data source, augmentation or stage that could not be resolved.
	ErrNotFound = errors.New("not found")
	// ErrStageFailed marks an augmentation stage that raised while producing outputs.
	ErrStageFailed = errors.New("stage execution failed")
	// ErrPersist marks an output image that could not be written.
	ErrPersist = errors.New("persist failed")
)
