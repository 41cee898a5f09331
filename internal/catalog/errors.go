package catalog

import "errors"

// Validation failures.  They are caused by bad client input and never
// leave side effects behind; handlers map them to 400.
var (
	ErrUnknownSortField = errors.New("unknown sort field")
	ErrInvalidDirection = errors.New("invalid sort direction")
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrInvalidPage      = errors.New("invalid page")
	ErrUnknownAction    = errors.New("unknown batch action")
	ErrEmptySelection   = errors.New("no movies selected")
)

// State machine violations; handlers map them to 409.
var (
	ErrBatchInProgress = errors.New("a batch action is already pending")
	ErrNoPendingBatch  = errors.New("no batch action is pending")
)

// IsValidation reports whether err is a client-correctable failure.
func IsValidation(err error) bool {
	for _, target := range []error{ErrUnknownSortField, ErrInvalidDirection, ErrInvalidFilter, ErrInvalidPage, ErrUnknownAction, ErrEmptySelection} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
