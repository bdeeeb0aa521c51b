package admission

import "errors"

var (
	ErrNotFound      = errors.New("record not found")
	ErrNoSuchName    = errors.New("no name at that position")
	ErrDuplicateName = errors.New("name already in batch")

	// ErrIncompleteBatch is the blocking message shown when a batch is committed
	// without a year, a class or any names.
	ErrIncompleteBatch = errors.New("please fill year, class, and add at least one name")
	ErrInvalidSchool   = errors.New("please check the school details")
)

// Messages shown to staff for the blocking errors above.
const (
	IncompleteBatchMessage = "Please fill year, class, and add at least one name."
	InvalidSchoolMessage   = "Please check the school details."
)

// Message returns the text to show a person for err.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrIncompleteBatch):
		return IncompleteBatchMessage
	case errors.Is(err, ErrInvalidSchool):
		return InvalidSchoolMessage
	}
	return err.Error()
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is returned when a commit is rejected. Nothing is written.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
