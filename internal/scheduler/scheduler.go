package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Refreshable is implemented by *dashboard.Dashboard.
type Refreshable interface {
	Refresh(ctx context.Context) error
}

// Refresher periodically re-runs the search for the displayed place.
type Refresher struct {
	scheduler *gocron.Scheduler
	target    Refreshable
	interval  time.Duration
	timeout   time.Duration
}

// New creates a Refresher. An interval of zero disables it.
func New(target Refreshable, interval, timeout time.Duration) *Refresher {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Refresher{
		scheduler: s,
		target:    target,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (r *Refresher) Start() error {
	if r.interval <= 0 {
		log.Println("scheduler: auto-refresh disabled")
		return nil
	}

	_, err := r.scheduler.Every(r.interval).WaitForSchedule().Do(r.Tick)
	if err != nil {
		return err
	}

	r.scheduler.StartAsync()
	log.Printf("scheduler: auto-refresh every %s", r.interval)
	return nil
}

// Tick runs one refresh with a bounded context.
func (r *Refresher) Tick() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.target.Refresh(ctx); err != nil {
		log.Printf("scheduler: refresh failed: %v", err)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (r *Refresher) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}
