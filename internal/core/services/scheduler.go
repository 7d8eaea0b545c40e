package services

import (
	"context"
	"sync"
	"time"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
	"github.com/wevysya/voiceos/internal/logger"
)

var _ driving.Scheduler = (*Scheduler)(nil)

// historyPerTask is how many run results are kept for each task.
const historyPerTask = 100

// taskFunc runs one maintenance pass and reports how many items it handled.
type taskFunc func(ctx context.Context) (int, error)

// Scheduler runs the pipeline's maintenance tasks on their intervals.
// Each due task runs in its own goroutine; Stop waits for them.
type Scheduler struct {
	config    domain.SchedulerConfig
	store     driven.SchedulerStore
	knowledge driving.KnowledgeService
	voice     driving.VoiceService
	tick      time.Duration
	now       func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. knowledge and voice may be nil; the
// tasks that need them then do nothing.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	knowledge driving.KnowledgeService,
	voice driving.VoiceService,
) *Scheduler {
	return &Scheduler{
		config:    config,
		store:     store,
		knowledge: knowledge,
		voice:     voice,
		tick:      time.Minute,
		now:       time.Now,
	}
}

// Start registers the configured tasks and blocks, running due tasks every
// tick, until ctx is done or Stop is called. Starting twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stop := s.stopCh
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: registering tasks: %v", err)
	}

	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// Stop ends the loop and waits for in-flight tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseTasks writes every enabled built-in task to the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}
	for _, t := range domain.MaintenanceTasks() {
		cfg := s.config.GetTaskConfig(t.ID)
		if !cfg.Enabled {
			continue
		}
		if err := s.ensureTask(ctx, t.ID, t.Name, cfg); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask creates the task, or applies a changed interval to the stored
// one. A changed interval reschedules from now.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	switch {
	case task == nil:
		task = &domain.ScheduledTask{ID: id, Name: name, Interval: cfg.Interval, NextRun: s.now().Add(cfg.Interval)}
	case task.Interval != cfg.Interval:
		task.Interval = cfg.Interval
		task.NextRun = s.now().Add(cfg.Interval)
	}
	task.Enabled = cfg.Enabled

	return s.store.SaveTask(ctx, task)
}

// checkAndRunDueTasks starts every task that is due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: listing tasks: %v", err)
		return
	}

	now := s.now()
	for i := range tasks {
		if tasks[i].Due(now) {
			s.runTask(ctx, &tasks[i])
		}
	}
}

// runTask runs task in the background and records its outcome.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	run := s.taskFunc(task.ID)
	if run == nil {
		logger.Warn("scheduler: no runner for task %s", task.ID)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := domain.TaskResult{TaskID: task.ID, StartedAt: s.now()}
		n, err := run(ctx)
		result.EndedAt = s.now()
		result.ItemsProcessed = n
		result.Success = err == nil
		if err != nil {
			result.Error = err.Error()
			logger.Warn("scheduler: %s failed: %v", task.ID, err)
		} else {
			logger.Debug("scheduler: %s handled %d items in %s", task.ID, n, result.Duration())
		}
		task.Record(result)

		if err := s.store.SaveTask(ctx, task); err != nil {
			logger.Warn("scheduler: saving task %s: %v", task.ID, err)
		}
		if err := s.store.RecordResult(ctx, &result); err != nil {
			logger.Warn("scheduler: recording result for %s: %v", task.ID, err)
		}
		if err := s.store.PruneHistory(ctx, historyPerTask); err != nil {
			logger.Warn("scheduler: pruning history: %v", err)
		}
	}()
}

func (s *Scheduler) taskFunc(id string) taskFunc {
	switch id {
	case domain.TaskIDEmbeddingBackfill:
		return s.runEmbeddingBackfill
	case domain.TaskIDSessionReset:
		return func(context.Context) (int, error) { return s.runSessionReset(), nil }
	}
	return nil
}

// runEmbeddingBackfill embeds documents stored without a vector. Having no
// embedding service configured is not a failure.
func (s *Scheduler) runEmbeddingBackfill(ctx context.Context) (int, error) {
	if s.knowledge == nil {
		return 0, nil
	}
	n, err := s.knowledge.BackfillEmbeddings(ctx)
	if err == domain.ErrEmbeddingUnavailable { //nolint:errorlint // the bare sentinel means no embedder is configured
		logger.Debug("scheduler: embedding backfill skipped: %v", err)
		return 0, nil
	}
	return n, err
}

// runSessionReset returns sessions stuck in error to idle.
func (s *Scheduler) runSessionReset() int {
	if s.voice == nil {
		return 0
	}
	return s.voice.ResetStale()
}
