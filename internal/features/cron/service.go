package cron_feature

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-agrofleet/internal/config"
	"go-agrofleet/internal/features/filter_session"
	"go-agrofleet/internal/features/inventory"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 5 * time.Minute

type CronService interface {
	ListCronJobs() []CronJob
	GetCronJob(name string) (*CronJob, error)
	ExecuteCronJob(ctx context.Context, name string) error
	GetCronJobLogs(ctx context.Context, name string, limit int) ([]CronJobLog, error)
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
	RegisterJob(name, description, schedule string, run JobFunc) error
	UnregisterJob(name string) error
}

type CronServiceImpl struct {
	repo   CronRepository
	logger *zap.Logger

	scheduler  *cron.Cron
	jobs       map[string]*CronJob
	jobEntries map[string]cron.EntryID
	running    map[string]bool
	mu         sync.RWMutex
	now        func() time.Time
}

// NewCronService registers the session sweep and the catalog refresh on
// their configured schedules. An empty schedule leaves the job manual-only.
func NewCronService(
	cfg *config.Config,
	repo CronRepository,
	inventoryService inventory.InventoryService,
	sessionService filter_session.FilterSessionService,
	logger *zap.Logger,
) (CronService, error) {
	s := newCronService(repo, logger)

	if err := s.RegisterJob(JobSessionSweep, "Evict idle filter sessions", cfg.SweepSchedule, func(ctx context.Context) (int, error) {
		return sessionService.Sweep(), nil
	}); err != nil {
		return nil, err
	}

	if err := s.RegisterJob(JobCatalogRefresh, "Rebuild filter option catalogs", cfg.CatalogSchedule, func(ctx context.Context) (int, error) {
		if err := inventoryService.RefreshCatalogs(ctx); err != nil {
			return 0, err
		}
		return len(inventory.Resources()), nil
	}); err != nil {
		return nil, err
	}

	return s, nil
}

func newCronService(repo CronRepository, logger *zap.Logger) *CronServiceImpl {
	return &CronServiceImpl{
		repo:       repo,
		logger:     logger.Named("cron"),
		scheduler:  cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		jobs:       make(map[string]*CronJob),
		jobEntries: make(map[string]cron.EntryID),
		running:    make(map[string]bool),
		now:        time.Now,
	}
}

func (s *CronServiceImpl) ListCronJobs() []CronJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]CronJob, 0, len(s.jobs))
	for name, job := range s.jobs {
		copied := *job
		copied.Running = s.running[name]
		jobs = append(jobs, copied)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

func (s *CronServiceImpl) GetCronJob(name string) (*CronJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[name]
	if !ok {
		return nil, ErrJobNotFound
	}
	copied := *job
	copied.Running = s.running[name]
	return &copied, nil
}

// ExecuteCronJob runs a job immediately, outside its schedule. It fails with
// ErrJobRunning while another run of the same job is in progress.
func (s *CronServiceImpl) ExecuteCronJob(ctx context.Context, name string) error {
	return s.execute(ctx, name, true)
}

func (s *CronServiceImpl) execute(ctx context.Context, name string, manual bool) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return ErrJobNotFound
	}
	if s.running[name] {
		s.mu.Unlock()
		s.logger.Info("cron job already running, skipped", zap.String("job", name), zap.Bool("manual", manual))
		return ErrJobRunning
	}
	s.running[name] = true
	run := job.run
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.running, name)
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	startTime := s.now()
	logEntry := &CronJobLog{
		CronJobName: name,
		StartTime:   startTime,
		Status:      StatusRunning,
		Manual:      manual,
	}
	if err := s.repo.CreateLog(ctx, logEntry); err != nil {
		s.logger.Warn("failed to create cron log", zap.String("job", name), zap.Error(err))
	}

	affected, execErr := run(ctx)

	endTime := s.now()
	logEntry.EndTime = &endTime
	logEntry.RecordsAffected = affected
	logEntry.Status = StatusSuccess
	if execErr != nil {
		logEntry.Status = StatusFailed
		logEntry.Error = execErr.Error()
	}
	if err := s.repo.UpdateLog(ctx, logEntry); err != nil {
		s.logger.Warn("failed to update cron log", zap.String("job", name), zap.Error(err))
	}

	s.mu.Lock()
	if current, ok := s.jobs[name]; ok {
		current.LastRun = &startTime
		current.LastStatus = logEntry.Status
		current.LastError = logEntry.Error
		current.NextRun = nextRun(current.Schedule, endTime)
	}
	s.mu.Unlock()

	fields := []zap.Field{
		zap.String("job", name),
		zap.Bool("manual", manual),
		zap.Int("affected", affected),
		zap.Duration("took", endTime.Sub(startTime)),
	}
	if execErr != nil {
		s.logger.Error("cron job failed", append(fields, zap.Error(execErr))...)
	} else {
		s.logger.Info("cron job finished", fields...)
	}
	return execErr
}

func (s *CronServiceImpl) GetCronJobLogs(ctx context.Context, name string, limit int) ([]CronJobLog, error) {
	if _, err := s.GetCronJob(name); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.GetLogs(ctx, name, limit)
}

func (s *CronServiceImpl) InitializeScheduler(ctx context.Context) error {
	s.scheduler.Start()
	s.logger.Info("cron scheduler started", zap.Int("jobs", len(s.scheduler.Entries())))
	return nil
}

func (s *CronServiceImpl) StopScheduler() error {
	ctx := s.scheduler.Stop()
	<-ctx.Done()
	s.logger.Info("cron scheduler stopped")
	return nil
}

// RegisterJob adds or replaces a job. Jobs with an empty schedule can only be
// run through ExecuteCronJob.
func (s *CronServiceImpl) RegisterJob(name, description, schedule string, run JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := &CronJob{
		Name:        name,
		Description: description,
		Schedule:    schedule,
		Active:      schedule != "",
		run:         run,
	}

	var entryID cron.EntryID
	if job.Active {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return fmt.Errorf("invalid cron expression for %s: %w", name, err)
		}
		id, err := s.scheduler.AddFunc(schedule, func() {
			_ = s.execute(context.Background(), name, false)
		})
		if err != nil {
			return fmt.Errorf("failed to add cron job to scheduler: %w", err)
		}
		entryID = id
		job.NextRun = nextRun(schedule, s.now())
	}

	if old, exists := s.jobEntries[name]; exists {
		s.scheduler.Remove(old)
		delete(s.jobEntries, name)
	}
	if job.Active {
		s.jobEntries[name] = entryID
	}
	s.jobs[name] = job
	return nil
}

func (s *CronServiceImpl) UnregisterJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; !ok {
		return ErrJobNotFound
	}
	if entryID, exists := s.jobEntries[name]; exists {
		s.scheduler.Remove(entryID)
		delete(s.jobEntries, name)
	}
	delete(s.jobs, name)
	return nil
}

func nextRun(schedule string, from time.Time) *time.Time {
	if schedule == "" {
		return nil
	}
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil
	}
	next := sched.Next(from)
	return &next
}
