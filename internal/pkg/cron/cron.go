package cron

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Job is a named function run repeatedly at a fixed interval.
type Job struct {
	Name        string
	Description string
	Interval    time.Duration
	Fn          func(ctx context.Context) error
}

// JobInfo is the serializable snapshot of one job's state.
type JobInfo struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"` // idle | running | ok | failed
	Error       string     `json:"error,omitempty"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	NextRunAt   time.Time  `json:"next_run_at"`
}

type jobState struct {
	job Job

	mu      sync.Mutex
	running bool
	lastErr error
	lastRun *time.Time
	nextRun time.Time
}

// Scheduler runs interval jobs on background goroutines. Register all jobs
// before calling Start; manual triggers are allowed at any time after.
type Scheduler struct {
	mu   sync.RWMutex
	jobs map[string]*jobState
	base context.Context
}

func New() *Scheduler {
	return &Scheduler{
		jobs: make(map[string]*jobState),
		base: context.Background(),
	}
}

// Register adds a job to the scheduler.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = &jobState{
		job:     job,
		nextRun: time.Now().Add(job.Interval),
	}
}

// Start launches one goroutine per registered job. The context stops them all.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.base = ctx
	states := make([]*jobState, 0, len(s.jobs))
	for _, st := range s.jobs {
		states = append(states, st)
	}
	s.mu.Unlock()

	for _, st := range states {
		go st.loop(ctx)
	}
}

// Trigger runs a job by name immediately, off the caller's goroutine.
func (s *Scheduler) Trigger(name string) error {
	s.mu.RLock()
	st, ok := s.jobs[name]
	ctx := s.base
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q not found", name)
	}
	go st.run(ctx)
	return nil
}

// List returns a snapshot of every job, sorted by name.
func (s *Scheduler) List() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, st := range s.jobs {
		infos = append(infos, st.info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Get returns the snapshot for one job by name.
func (s *Scheduler) Get(name string) (JobInfo, error) {
	s.mu.RLock()
	st, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return JobInfo{}, fmt.Errorf("job %q not found", name)
	}
	return st.info(), nil
}

func (st *jobState) loop(ctx context.Context) {
	ticker := time.NewTicker(st.job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.run(ctx)
		}
	}
}

func (st *jobState) run(ctx context.Context) {
	st.mu.Lock()
	if st.running {
		st.mu.Unlock()
		return
	}
	st.running = true
	st.mu.Unlock()

	err := st.call(ctx)

	now := time.Now()
	st.mu.Lock()
	st.running = false
	st.lastErr = err
	st.lastRun = &now
	st.nextRun = now.Add(st.job.Interval)
	st.mu.Unlock()
}

func (st *jobState) call(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return st.job.Fn(ctx)
}

func (st *jobState) info() JobInfo {
	st.mu.Lock()
	defer st.mu.Unlock()

	info := JobInfo{
		Name:        st.job.Name,
		Description: st.job.Description,
		Status:      "idle",
		LastRunAt:   st.lastRun,
		NextRunAt:   st.nextRun,
	}
	switch {
	case st.running:
		info.Status = "running"
	case st.lastErr != nil:
		info.Status = "failed"
		info.Error = st.lastErr.Error()
	case st.lastRun != nil:
		info.Status = "ok"
	}
	return info
}
