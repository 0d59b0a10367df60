package tasks

import (
	"context"
)

// Task describes one background submission. ConcurrencyKey is the
// token the runtime serializes on: two tasks sharing a key never run
// at the same time.
type Task struct {
	Key            string
	ConcurrencyKey string
	Payload        map[string]any
}

// Handle identifies an accepted submission. An empty ID means the
// runtime did not accept the task.
type Handle struct {
	ID string
}

// Submitter hands work to the background task runtime. Fire and
// forget: Submit returns once the runtime has accepted the task, not
// when it completes.
type Submitter interface {
	Submit(ctx context.Context, task Task) (*Handle, error)
}
