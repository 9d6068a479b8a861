package fleet

import "fmt"

// InventoryError is the recoverable listing failure: it is returned only
// after the bounded backoff budget is exhausted. A run that receives one
// fails whole; no partial fleet is ever evaluated.
type InventoryError struct {
	Region  string
	Service string
	Err     error
}

func (e *InventoryError) Error() string {
	return fmt.Sprintf("inventory %s/%s: %v", e.Service, e.Region, e.Err)
}

func (e *InventoryError) Unwrap() error { return e.Err }

// TransitionError is a single resource's failed state-change request. It is
// recorded in the run summary and never aborts the batch; the next
// scheduled invocation retries naturally.
type TransitionError struct {
	ResourceID string
	Err        error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s: %v", e.ResourceID, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }
