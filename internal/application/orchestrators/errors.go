package orchestrators

import (
	"errors"
	"fmt"
	"time"

	"frontdesk/internal/domain/member"
)

// ErrInvalidInput classifies errors the desk can fix by correcting the form.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError carries a message safe to show next to a form.
// It matches ErrInvalidInput under errors.Is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Is makes errors.Is(err, ErrInvalidInput) true for every ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a desk-correctable error rather than a
// store or infrastructure failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, member.ErrNotFound)
}

func nowOrDefault(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
