/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error values for reference corpus loading.
*/

package corpus

import (
	"errors"
	"fmt"
)

var (
	// ErrNoReferenceFiles is returned when no usable reference document remains after filtering
	ErrNoReferenceFiles = errors.New("no reference files")
	// ErrReferenceLoadFailure marks a single reference file that could not be loaded
	ErrReferenceLoadFailure = errors.New("reference load failure")
)

// ReferenceLoadError describes a skipped reference file
type ReferenceLoadError struct {
	Path string
	Err  error
}

func (e *ReferenceLoadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrReferenceLoadFailure, e.Path, e.Err)
}

// Unwrap exposes both the failure marker and the underlying cause
func (e *ReferenceLoadError) Unwrap() []error {
	return []error{ErrReferenceLoadFailure, e.Err}
}
