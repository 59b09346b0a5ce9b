package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Refresher rebuilds the cached summary of one branch.
type Refresher interface {
	Refresh(ctx context.Context, branch string) error
}

// DashboardRefreshJob handles TaskDashboardRefresh.
type DashboardRefreshJob struct {
	Service Refresher
	Logger  *slog.Logger
	clock   func() time.Time
}

func NewDashboardRefreshJob(service Refresher, logger *slog.Logger) *DashboardRefreshJob {
	return &DashboardRefreshJob{
		Service: service,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle decodes the payload and refreshes the branch. A malformed payload
// is not retried.
func (j *DashboardRefreshJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("dashboard refresh: dependencies not configured")
	}
	var payload DashboardRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		j.log().Warn("discarding malformed payload", slog.Any("error", err))
		return asynq.SkipRetry
	}
	if payload.Branch == "" {
		payload.Branch = allBranches
	}

	start := j.now()
	if err := j.Service.Refresh(ctx, payload.Branch); err != nil {
		j.log().Error("refresh dashboard", slog.String("branch", payload.Branch), slog.Any("error", err))
		return err
	}
	j.log().Info("refreshed dashboard summary", slog.String("branch", payload.Branch), slog.Duration("duration", j.now().Sub(start)))
	return nil
}

func (j *DashboardRefreshJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardRefresh))
	}
	return slog.Default().With(slog.String("job", TaskDashboardRefresh))
}

func (j *DashboardRefreshJob) now() time.Time {
	if j != nil && j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
