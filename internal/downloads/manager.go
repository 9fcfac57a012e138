package downloads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"gorm.io/gorm"

	"github.com/marquee-tv/marquee/internal/config"
	"github.com/marquee-tv/marquee/internal/database"
	"github.com/marquee-tv/marquee/internal/events"
	"github.com/marquee-tv/marquee/internal/schedule"
)

// Manager owns the download collection and the timers advancing it.
//
// All reads and writes of the collection happen under mu, and a tick rewrites
// only its own job's progress and status, so concurrent ticks never clobber
// each other.
type Manager struct {
	mu sync.Mutex

	db        *gorm.DB
	sched     schedule.Scheduler
	config    config.DownloadsConfig
	increment func() int
	notifier  *events.Notifier
	logger    *slog.Logger

	// job id -> running task; a tick whose task is no longer here is stale
	tasks map[string]*jobTask

	onComplete func(Job)
}

type jobTask struct {
	id     string
	handle schedule.Handle
}

// Option configures a Manager
type Option func(*Manager)

// WithScheduler replaces the wall-clock scheduler
func WithScheduler(s schedule.Scheduler) Option {
	return func(m *Manager) { m.sched = s }
}

// WithIncrement replaces the pseudo-random progress increment
func WithIncrement(f func() int) Option {
	return func(m *Manager) { m.increment = f }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a download manager. db may be nil, in which case storage is
// unavailable: the collection reads as empty and additions are dropped.
func NewManager(db *gorm.DB, cfg *config.DownloadsConfig, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("tick interval must be positive")
	}
	if cfg.MinIncrement < 1 || cfg.MaxIncrement < cfg.MinIncrement {
		return nil, fmt.Errorf("invalid increment range [%d, %d]", cfg.MinIncrement, cfg.MaxIncrement)
	}

	m := &Manager{
		db:     db,
		sched:  schedule.New(),
		config: *cfg,
		logger: slog.Default(),
		tasks:  make(map[string]*jobTask),
	}
	m.increment = func() int {
		return m.config.MinIncrement + rand.IntN(m.config.MaxIncrement-m.config.MinIncrement+1)
	}
	for _, opt := range opts {
		opt(m)
	}
	m.notifier = events.NewNotifier("downloads", m.logger)

	return m, nil
}

// Start resumes ticking for jobs persisted as downloading, when auto-resume is on
func (m *Manager) Start(ctx context.Context) {
	if !m.config.AutoResume || m.db == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []database.DownloadJob
	if err := m.db.WithContext(ctx).Where("status = ?", string(StatusDownloading)).Find(&rows).Error; err != nil {
		m.logger.Warn("failed to load active downloads", "error", err)
		return
	}
	for _, row := range rows {
		m.startTaskLocked(row.ID)
	}
	if len(rows) > 0 {
		m.logger.Info("resumed downloads", "count", len(rows))
	}
}

// Stop cancels every timer. Persisted jobs keep their status and resume on the next Start.
func (m *Manager) Stop() {
	m.mu.Lock()
	for id, task := range m.tasks {
		task.handle.Stop()
		delete(m.tasks, id)
	}
	m.mu.Unlock()
}

// Close stops every timer and closes subscriber channels
func (m *Manager) Close() {
	m.Stop()
	m.notifier.Close()
}

// Add creates a job for req and starts advancing it.
// It reports false when the id is already tracked; that request is ignored.
func (m *Manager) Add(ctx context.Context, req Request) bool {
	if req.ID == "" {
		return false
	}

	m.mu.Lock()
	added := m.addLocked(ctx, req)
	m.mu.Unlock()

	if added {
		m.notifier.Notify()
	}
	return added
}

func (m *Manager) addLocked(ctx context.Context, req Request) bool {
	if m.db == nil {
		m.logger.Debug("download dropped, storage unavailable", "job_id", req.ID)
		return false
	}

	var count int64
	if err := m.db.WithContext(ctx).Model(&database.DownloadJob{}).Where("id = ?", req.ID).Count(&count).Error; err != nil {
		m.logger.Debug("download lookup failed", "job_id", req.ID, "error", err)
		return false
	}
	if count > 0 {
		m.logger.Debug("download already tracked", "job_id", req.ID)
		return false
	}

	size := req.Size
	if size == "" {
		size = m.config.DefaultSize
	}
	row := database.DownloadJob{
		ID:        req.ID,
		Title:     req.Title,
		Thumbnail: req.Thumbnail,
		Size:      size,
		Quality:   req.Quality,
		MediaURL:  req.MediaURL,
		Status:    string(StatusDownloading),
		Progress:  0,
		AddedAt:   m.sched.Now(),
	}
	if err := m.db.WithContext(ctx).Create(&row).Error; err != nil {
		m.logger.Debug("download insert dropped", "job_id", req.ID, "error", err)
		return false
	}

	m.startTaskLocked(req.ID)
	m.logger.Info("download added", "job_id", req.ID, "title", req.Title, "quality", req.Quality)
	return true
}

// Remove deletes the job and stops its timer. Unknown ids are fine.
// Observers are always notified.
func (m *Manager) Remove(ctx context.Context, id string) {
	m.mu.Lock()
	m.stopTaskLocked(id)
	if m.db != nil {
		if err := m.db.WithContext(ctx).Where("id = ?", id).Delete(&database.DownloadJob{}).Error; err != nil {
			m.logger.Debug("download remove dropped", "job_id", id, "error", err)
		}
	}
	m.mu.Unlock()

	m.notifier.Notify()
}

// Clear removes every job
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	for id := range m.tasks {
		m.stopTaskLocked(id)
	}
	if m.db != nil {
		if err := m.db.WithContext(ctx).Where("1 = 1").Delete(&database.DownloadJob{}).Error; err != nil {
			m.logger.Debug("download clear dropped", "error", err)
		}
	}
	m.mu.Unlock()

	m.notifier.Notify()
}

// Pause stops advancing a downloading job
func (m *Manager) Pause(ctx context.Context, id string) error {
	return m.transition(ctx, id, StatusPaused)
}

// Resume continues a paused (or errored) job from its current progress
func (m *Manager) Resume(ctx context.Context, id string) error {
	return m.transition(ctx, id, StatusDownloading)
}

func (m *Manager) transition(ctx context.Context, id string, target Status) error {
	m.mu.Lock()
	err := m.transitionLocked(ctx, id, target)
	m.mu.Unlock()

	if err != nil {
		return err
	}
	m.notifier.Notify()
	return nil
}

func (m *Manager) transitionLocked(ctx context.Context, id string, target Status) error {
	if m.db == nil {
		return ErrNotFound
	}

	row, err := m.getRowLocked(ctx, id)
	if err != nil {
		return err
	}

	current := Status(row.Status)
	if !current.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
	}

	if err := m.db.WithContext(ctx).Model(&database.DownloadJob{}).
		Where("id = ?", id).
		Update("status", string(target)).Error; err != nil {
		return fmt.Errorf("failed to update download: %w", err)
	}

	if target.IsActive() {
		m.startTaskLocked(id)
	} else {
		m.stopTaskLocked(id)
	}
	m.logger.Debug("download status changed", "job_id", id, "from", current, "to", target)
	return nil
}

// List returns every job, newest first
func (m *Manager) List(ctx context.Context) []Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return []Job{}
	}

	var rows []database.DownloadJob
	if err := m.db.WithContext(ctx).Order("rowid DESC").Find(&rows).Error; err != nil {
		m.logger.Debug("download list failed", "error", err)
		return []Job{}
	}

	jobs := make([]Job, len(rows))
	for i, row := range rows {
		jobs[i] = rowToJob(row)
	}
	return jobs
}

// Get returns one job
func (m *Manager) Get(ctx context.Context, id string) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return Job{}, ErrNotFound
	}
	row, err := m.getRowLocked(ctx, id)
	if err != nil {
		return Job{}, err
	}
	return rowToJob(row), nil
}

// Subscribe returns a channel signalled after every change to the collection
func (m *Manager) Subscribe() <-chan struct{} {
	return m.notifier.Subscribe()
}

// Unsubscribe releases a channel returned by Subscribe
func (m *Manager) Unsubscribe(ch <-chan struct{}) {
	m.notifier.Unsubscribe(ch)
}

// OnDownloadComplete sets a callback run when a job reaches 100%
func (m *Manager) OnDownloadComplete(callback func(Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onComplete = callback
}

// Active returns the number of jobs with a running timer
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *Manager) startTaskLocked(id string) {
	if _, running := m.tasks[id]; running {
		return
	}
	task := &jobTask{id: id}
	task.handle = m.sched.Every(m.config.TickInterval, func() { m.tick(task) })
	m.tasks[id] = task
}

func (m *Manager) stopTaskLocked(id string) {
	if task, ok := m.tasks[id]; ok {
		task.handle.Stop()
		delete(m.tasks, id)
	}
}

// tick advances one job by a pseudo-random increment
func (m *Manager) tick(task *jobTask) {
	m.mu.Lock()
	job, changed := m.tickLocked(task)
	callback := m.onComplete
	m.mu.Unlock()

	if !changed {
		return
	}
	m.notifier.Notify()
	if job.Status == StatusCompleted && callback != nil {
		go callback(job)
	}
}

func (m *Manager) tickLocked(task *jobTask) (Job, bool) {
	if m.tasks[task.id] != task {
		// stopped while this tick was in flight
		return Job{}, false
	}

	ctx := context.Background()
	row, err := m.getRowLocked(ctx, task.id)
	if errors.Is(err, ErrNotFound) {
		// removed behind our back: never write it back into existence
		m.stopTaskLocked(task.id)
		return Job{}, false
	}
	if err != nil {
		m.logger.Debug("download tick skipped", "job_id", task.id, "error", err)
		return Job{}, false
	}
	if Status(row.Status) != StatusDownloading {
		m.stopTaskLocked(task.id)
		return Job{}, false
	}

	progress := min(row.Progress+m.increment(), 100)
	if progress < row.Progress {
		progress = row.Progress
	}

	updates := map[string]any{"progress": progress}
	if progress >= 100 {
		now := m.sched.Now()
		updates["status"] = string(StatusCompleted)
		updates["completed_at"] = now
		row.Status = string(StatusCompleted)
		row.CompletedAt = &now
	}
	row.Progress = progress

	if err := m.db.WithContext(ctx).Model(&database.DownloadJob{}).Where("id = ?", task.id).Updates(updates).Error; err != nil {
		m.logger.Debug("download tick dropped", "job_id", task.id, "error", err)
		return Job{}, false
	}

	if row.Status == string(StatusCompleted) {
		m.stopTaskLocked(task.id)
		m.logger.Info("download completed", "job_id", task.id, "title", row.Title)
	}
	return rowToJob(row), true
}

func (m *Manager) getRowLocked(ctx context.Context, id string) (database.DownloadJob, error) {
	var rows []database.DownloadJob
	if err := m.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return database.DownloadJob{}, fmt.Errorf("failed to load download: %w", err)
	}
	if len(rows) == 0 {
		return database.DownloadJob{}, ErrNotFound
	}
	return rows[0], nil
}

func rowToJob(row database.DownloadJob) Job {
	return Job{
		ID:          row.ID,
		Title:       row.Title,
		Thumbnail:   row.Thumbnail,
		Size:        row.Size,
		Quality:     row.Quality,
		MediaURL:    row.MediaURL,
		Status:      Status(row.Status),
		Progress:    row.Progress,
		AddedAt:     row.AddedAt,
		CompletedAt: row.CompletedAt,
	}
}
