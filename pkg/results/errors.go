package results

import (
	"fmt"
)

// NotFoundError indicates a lookup for a batch result that was never
// stored.
type NotFoundError struct {
	BatchID string
}

// Error returns the error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("result not found: %s", e.BatchID)
}
