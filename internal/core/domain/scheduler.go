package domain

import "time"

// Maintenance task IDs.
const (
	// TaskIDEmbeddingBackfill embeds knowledge documents that have no vector.
	TaskIDEmbeddingBackfill = "embedding-backfill"

	// TaskIDSessionReset returns sessions stuck in the error state to idle.
	TaskIDSessionReset = "session-reset"
)

// MaintenanceTask describes a built-in background task.
type MaintenanceTask struct {
	ID              string
	Name            string
	DefaultInterval time.Duration
}

// MaintenanceTasks returns the built-in tasks in registration order.
func MaintenanceTasks() []MaintenanceTask {
	return []MaintenanceTask{
		{ID: TaskIDEmbeddingBackfill, Name: "Embedding Backfill", DefaultInterval: 15 * time.Minute},
		{ID: TaskIDSessionReset, Name: "Session Reset", DefaultInterval: time.Minute},
	}
}

// ScheduledTask is the persisted schedule of one maintenance task.
type ScheduledTask struct {
	ID       string
	Name     string
	Interval time.Duration
	Enabled  bool

	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time

	// LastError is empty after a successful run.
	LastError string
}

// Due reports whether the task should run at now. An enabled task that
// was never scheduled is due immediately.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// Record applies the outcome of a run. The next run is one interval after
// the run ended, so a slow run never queues back-to-back executions.
func (t *ScheduledTask) Record(r TaskResult) {
	t.LastRun = r.StartedAt
	t.NextRun = r.EndedAt.Add(t.Interval)
	if r.Success {
		t.LastError = ""
		t.LastSuccess = r.EndedAt
		return
	}
	t.LastError = r.Error
}

// TaskResult is one entry in a task's run history.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// ItemsProcessed counts documents embedded or sessions reset.
	ItemsProcessed int
}

// Duration returns how long the run took.
func (r TaskResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// SchedulerConfig switches maintenance on or off, globally and per task.
type SchedulerConfig struct {
	Enabled     bool
	TaskConfigs map[string]TaskConfig
}

// TaskConfig is the configured schedule for one task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// GetTaskConfig returns the configuration for taskID, or the zero value
// (disabled) when the task is not configured.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig enables every built-in task at its default interval.
func DefaultSchedulerConfig() SchedulerConfig {
	cfg := SchedulerConfig{Enabled: true, TaskConfigs: make(map[string]TaskConfig)}
	for _, task := range MaintenanceTasks() {
		cfg.TaskConfigs[task.ID] = TaskConfig{Enabled: true, Interval: task.DefaultInterval}
	}
	return cfg
}
