package view

import (
	"errors"
	"fmt"

	"github.com/japaniel/kanjigraph/pkg/entity"
)

var (
	// ErrTypeMismatch matches any *TypeMismatchError.
	ErrTypeMismatch = errors.New("entity type mismatch")
	// ErrLoad matches any *LoadError.
	ErrLoad = errors.New("view load failed")
)

// TypeMismatchError is returned when the requested id is not of the requested type.
type TypeMismatchError struct {
	ID     int64
	Want   entity.Type
	Actual entity.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("entity %d is a %s, not a %s", e.ID, e.Actual, e.Want)
}

// Is lets errors.Is(err, ErrTypeMismatch) match.
func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// LoadError is returned when the focal record or any related record could not be fetched.
// No partial View is ever returned alongside it.
type LoadError struct {
	FocalID int64
	// ID is the record whose fetch failed.
	ID  int64
	Err error
}

func (e *LoadError) Error() string {
	if e.ID == e.FocalID {
		return fmt.Sprintf("load entity %d: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("load view of %d: related entity %d: %v", e.FocalID, e.ID, e.Err)
}

// Is lets errors.Is(err, ErrLoad) match.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

func (e *LoadError) Unwrap() error { return e.Err }
