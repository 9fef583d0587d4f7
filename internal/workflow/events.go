package workflow

import "github.com/joseph-ayodele/invoice-intake/internal/extract"

// Event is something the owner goroutine must apply with Dispatch.
type Event interface {
	generation() uint64
}

// SubmitCompleted carries the result of the attempt started at Generation.
type SubmitCompleted struct {
	Generation uint64
	Result     extract.Result
}

// NavigationDue fires once the observation delay after a success has elapsed.
type NavigationDue struct {
	Generation uint64
	RecordID   string
}

func (e SubmitCompleted) generation() uint64 { return e.Generation }
func (e NavigationDue) generation() uint64   { return e.Generation }
