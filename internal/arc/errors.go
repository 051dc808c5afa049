package arc

import (
	"errors"
	"fmt"
)

// Stable error kinds surfaced to callers.
var (
	// ErrCatalogueUnavailable is returned when the source could not be reached or parsed.
	ErrCatalogueUnavailable = errors.New("catalogue unavailable")

	// ErrLanguageNotSupported is returned when a translation is requested for a
	// language the catalogue (or the phrase dictionary) does not carry.
	ErrLanguageNotSupported = errors.New("language not supported")

	// ErrUnsupportedSchemaEpoch is returned when a version falls outside the known bounds.
	ErrUnsupportedSchemaEpoch = errors.New("unsupported schema epoch")

	// ErrInvalidTemplateName is returned when an uploaded session file name
	// does not follow template_{crf}_{version}_{language}_{date}.csv.
	ErrInvalidTemplateName = errors.New("invalid template name")

	// ErrInvariantViolated is returned when a transformer post-condition fails.
	// It is fatal for the session.
	ErrInvariantViolated = errors.New("invariant violated")
)

// UnavailableError records which fetch failed. It matches both
// ErrCatalogueUnavailable and the underlying cause under errors.Is.
type UnavailableError struct {
	Op     string
	Target string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %s: %v", ErrCatalogueUnavailable, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", ErrCatalogueUnavailable, e.Op, e.Target, e.Err)
}

func (e *UnavailableError) Unwrap() []error {
	return []error{ErrCatalogueUnavailable, e.Err}
}

// Unavailable wraps err as an UnavailableError. A nil err yields nil, and an
// error that already is an UnavailableError is returned unchanged.
func Unavailable(op, target string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return err
	}
	return &UnavailableError{Op: op, Target: target, Err: err}
}

// InvariantError describes a failed transformer post-condition.
type InvariantError struct {
	Stage    string
	Variable string
	Detail   string
}

func (e *InvariantError) Error() string {
	if e.Variable == "" {
		return fmt.Sprintf("%s: %s: %s", ErrInvariantViolated, e.Stage, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %s: %s", ErrInvariantViolated, e.Stage, e.Variable, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolated
}

// IsFatal reports whether err must end the session.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvariantViolated)
}
