package jobs

import (
	"encoding/json"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue every dashboard task runs on.
	QueueDefault = "default"
	// TaskDashboardRefresh recomputes and caches a branch summary.
	TaskDashboardRefresh = "dashboard:refresh"

	allBranches = "all"
)

// DashboardRefreshPayload names the branch whose summary is recomputed.
type DashboardRefreshPayload struct {
	Branch string `json:"branch"`
}

// NewDashboardRefreshTask creates a refresh task. An empty branch refreshes
// the combined summary.
func NewDashboardRefreshTask(branch string) (*asynq.Task, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		branch = allBranches
	}
	body, err := json.Marshal(DashboardRefreshPayload{Branch: branch})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardRefresh, body, asynq.Queue(QueueDefault)), nil
}
