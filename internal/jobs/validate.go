package jobs

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError marks a single job or profile as unusable. Callers skip the
// offending record and keep processing the batch.
type ValidationError struct {
	Kind string
	ID   string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("invalid %s %s: %v", e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("invalid %s: %v", e.Kind, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
