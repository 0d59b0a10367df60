package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
)

// TemporalSubmitter implements Submitter on a Temporal client. The
// concurrency key becomes the workflow id, so Temporal's
// one-running-workflow-per-id rule gives the per-key serialization the
// chat orchestration relies on.
type TemporalSubmitter struct {
	client    client.Client
	taskQueue string
	logger    *slog.Logger
}

// NewTemporalSubmitter creates a Temporal-backed task submitter.
func NewTemporalSubmitter(c client.Client, taskQueue string, logger *slog.Logger) *TemporalSubmitter {
	return &TemporalSubmitter{
		client:    c,
		taskQueue: taskQueue,
		logger:    logger,
	}
}

// Submit starts the workflow named by task.Key. Duplicate submissions
// for a concurrency key queue behind the running workflow instead of
// racing it.
func (s *TemporalSubmitter) Submit(ctx context.Context, task Task) (*Handle, error) {
	opts := client.StartWorkflowOptions{
		ID:                       fmt.Sprintf("%s-%s", task.Key, task.ConcurrencyKey),
		TaskQueue:                s.taskQueue,
		WorkflowIDReusePolicy:    enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowIDConflictPolicy: enums.WORKFLOW_ID_CONFLICT_POLICY_USE_EXISTING,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    30 * time.Second,
			BackoffCoefficient: 1.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    5,
		},
	}

	run, err := s.client.ExecuteWorkflow(ctx, opts, task.Key, task.Payload)
	if err != nil {
		return nil, fmt.Errorf("submit %s: %w", task.Key, err)
	}

	s.logger.Debug("background task submitted",
		"task", task.Key,
		"concurrency_key", task.ConcurrencyKey,
		"run_id", run.GetRunID(),
	)

	return &Handle{ID: run.GetRunID()}, nil
}

// NewClient dials Temporal using the given address and namespace. An
// empty address disables background submission; callers get a nil
// client back and should fall back to a no-op submitter.
func NewClient(address, namespace string, logger *slog.Logger) (client.Client, error) {
	if address == "" {
		logger.Warn("temporal address not set; background tasks disabled")
		return nil, nil
	}

	c, err := client.Dial(client.Options{
		HostPort:  address,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal: %w", err)
	}

	logger.Info("connected to temporal", "address", address, "namespace", namespace)
	return c, nil
}

// NopSubmitter accepts every task without doing anything. Used when
// Temporal is not configured (local development).
type NopSubmitter struct {
	logger *slog.Logger
}

// NewNopSubmitter creates a no-op submitter.
func NewNopSubmitter(logger *slog.Logger) *NopSubmitter {
	return &NopSubmitter{logger: logger}
}

// Submit logs the task and fabricates a handle.
func (s *NopSubmitter) Submit(_ context.Context, task Task) (*Handle, error) {
	s.logger.Info("background task skipped (no runtime configured)",
		"task", task.Key,
		"concurrency_key", task.ConcurrencyKey,
	)
	return &Handle{ID: "local-" + task.ConcurrencyKey}, nil
}
