// Package jobs runs background maintenance of the revocation store.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/layer-3/trustgate/ports"
	"go.uber.org/zap"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeRevocationSweep removes revocation entries past the retention horizon.
	TaskTypeRevocationSweep = "revocation:sweep"
)

// SweepPayload overrides the configured retention when set.
type SweepPayload struct {
	Retention time.Duration `json:"retention,omitempty"`
}

// NewSweepTask constructs an Asynq task.
func NewSweepTask(payload SweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRevocationSweep, data, asynq.Queue(QueueDefault), asynq.MaxRetry(1)), nil
}

// SweepJob deletes expired revocation entries from a store without native expiry
type SweepJob struct {
	sweeper   ports.Sweeper
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewSweepJob(sweeper ports.Sweeper, retention time.Duration, logger *zap.Logger) *SweepJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepJob{sweeper: sweeper, retention: retention, logger: logger, now: time.Now}
}

// Run removes entries revoked before now minus retention.
func (j *SweepJob) Run(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = j.retention
	}
	cutoff := j.now().Add(-retention)

	removed, err := j.sweeper.Sweep(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep revocations: %w", err)
	}
	j.logger.Info("revocation sweep finished", zap.Int64("removed", removed), zap.Time("cutoff", cutoff))
	return removed, nil
}

// Handle processes TaskTypeRevocationSweep tasks.
func (j *SweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SweepPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
	}
	_, err := j.Run(ctx, payload.Retention)
	return err
}

// RunEvery sweeps on a ticker until ctx is done. Used for the in-memory store,
// which lives in the API process and cannot be reached by the worker.
func (j *SweepJob) RunEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.Run(ctx, 0); err != nil {
				j.logger.Warn("revocation sweep failed", zap.Error(err))
			}
		}
	}
}
