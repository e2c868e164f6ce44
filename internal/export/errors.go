package export

import (
	"errors"
	"fmt"
)

const (
	CodeConfig   = "E_CONFIG"
	CodeResource = "E_RESOURCE"
)

var (
	// ErrConfiguration matches every fatal pre-pass configuration problem.
	ErrConfiguration = errors.New("configuration error")
	// ErrResource matches failures to prepare or save the destination.
	ErrResource = errors.New("resource error")
	// ErrCancelled is returned when the caller stopped the export between
	// tiles.
	ErrCancelled = errors.New("export cancelled")
)

type Error struct {
	Code string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Code == CodeConfig
	case ErrResource:
		return e.Code == CodeResource
	}
	return false
}

func configError(op string, err error) error {
	return &Error{Code: CodeConfig, Op: op, Err: err}
}

func resourceError(op string, err error) error {
	return &Error{Code: CodeResource, Op: op, Err: err}
}
