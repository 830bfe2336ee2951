package s3load

import (
	"errors"
	"fmt"
	"os"
)

var (
	// Returned (wrapped in a ReferenceError) when a relative reference is loaded
	// without a base path to resolve it against.
	ErrUnresolvableReference = errors.New("unresolvable reference")

	// Returned (wrapped in a DateError) when a page's date is set to something that
	// is neither a time nor one of the accepted date strings.
	ErrInvalidDate = errors.New("invalid date")
)

// ReferenceError names the reference that could not be resolved.
type ReferenceError struct {
	Ref string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("cannot load %q without a base path", e.Ref)
}

func (e *ReferenceError) Unwrap() error {
	return ErrUnresolvableReference
}

// DateError names the source file whose date value was rejected.
type DateError struct {
	Path  string
	Value any
}

func (e *DateError) Error() string {
	return fmt.Sprintf(`invalid date %#v in %s: use "yyyy-mm-dd" or "yyyy-mm-dd hh:mm:ss" formats`, e.Value, e.Path)
}

func (e *DateError) Unwrap() error {
	return ErrInvalidDate
}

func panicOrError(err error) error {
	if err != nil {
		if os.Getenv("PANIC_ON_ALL_ERRORS") == "true" || os.Getenv("PANIC_ON_S3LOAD_ERRORS") == "true" {
			panic(err)
		}
	}
	return err
}
