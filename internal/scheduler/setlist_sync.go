package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/concertlog/concertlog/internal/tasks"
)

// Enqueuer is the slice of the task client the scheduler needs.
type Enqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// SetlistSyncScheduler periodically queues a sweep that retries the
// catalog lookup for shows still missing setlists.
type SetlistSyncScheduler struct {
	queue    Enqueuer
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewSetlistSyncScheduler creates a scheduler with a standard five
// field cron schedule.
func NewSetlistSyncScheduler(queue Enqueuer, schedule string) *SetlistSyncScheduler {
	return &SetlistSyncScheduler{
		queue:    queue,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the schedule. Idempotent while running.
func (s *SetlistSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("invalid setlist sync schedule %q: %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true
	log.Printf("Setlist sync scheduler: started with schedule %q", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *SetlistSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil
	log.Printf("Setlist sync scheduler: stopped")
}

// RunNow queues an immediate sweep.
func (s *SetlistSyncScheduler) RunNow() {
	go s.runSweep()
}

// IsRunning reports whether the scheduler is active.
func (s *SetlistSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next sweep fires, nil when stopped.
func (s *SetlistSyncScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *SetlistSyncScheduler) runSweep() {
	if _, err := s.queue.Add(tasks.EnrichPendingTask{}).Save(); err != nil {
		log.Printf("Setlist sync: queueing sweep failed: %v", err)
		return
	}
	log.Printf("Setlist sync: sweep queued")
}
