package scheduler

import (
	"context"
	"sync"
	"time"

	"portal-cms/logger"
	"portal-cms/models"

	"github.com/rs/zerolog"
)

// DefaultInterval is the polling period when none is configured.
const DefaultInterval = 60 * time.Second

// Publisher is the part of the lifecycle manager the scheduler drives.
type Publisher interface {
	DueContentIDs(ctx context.Context, now time.Time) ([]uint, error)
	AutoPublish(ctx context.Context, id uint) (*models.ContentItem, error)
}

// TickSummary is the outcome of one polling pass.
type TickSummary struct {
	Published int `json:"published"`
	Errors    int `json:"errors"`
}

type Option func(*Scheduler)

func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// Scheduler promotes due scheduled content to published. One instance runs
// per process, owned by main; its ticks never overlap.
type Scheduler struct {
	publisher Publisher
	interval  time.Duration
	clock     func() time.Time
	log       zerolog.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

func New(publisher Publisher, opts ...Option) *Scheduler {
	s := &Scheduler{
		publisher: publisher,
		interval:  DefaultInterval,
		clock:     time.Now,
		log:       logger.WithComponent("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tick runs one pass at now. Failures are counted, never returned.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) TickSummary {
	var summary TickSummary

	ids, err := s.publisher.DueContentIDs(ctx, now)
	if err != nil {
		s.log.Error().Err(err).Msg("due content query failed")
		summary.Errors = 1
		s.record(summary)
		return summary
	}

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			skipped := len(ids) - i
			summary.Errors += skipped
			s.log.Warn().Err(err).Int("skipped", skipped).Msg("tick interrupted")
			break
		}
		if _, err := s.publisher.AutoPublish(ctx, id); err != nil {
			summary.Errors++
			s.log.Warn().Err(err).Uint("content_id", id).Msg("auto-publish failed")
			continue
		}
		summary.Published++
	}

	s.record(summary)
	return summary
}

func (s *Scheduler) record(summary TickSummary) {
	ticksTotal.Inc()
	publishedTotal.Add(float64(summary.Published))
	errorsTotal.Add(float64(summary.Errors))

	event := s.log.Debug()
	if summary.Published > 0 || summary.Errors > 0 {
		event = s.log.Info()
	}
	event.Int("published", summary.Published).Int("errors", summary.Errors).Msg("scheduler tick")
}

// Start runs a first pass immediately, then one per interval, until ctx is
// done or Stop is called. Calling Start on a running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})

	s.wg.Add(1)
	go s.loop(ctx, s.stop)

	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")
}

func (s *Scheduler) loop(ctx context.Context, stop chan struct{}) {
	defer s.wg.Done()
	defer s.finish(stop)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx, s.clock().UTC())
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.Tick(ctx, s.clock().UTC())
		}
	}
}

// finish marks the scheduler idle when the loop that owns stop exits, so a
// scheduler whose context ended can be started again.
func (s *Scheduler) finish(stop chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == stop {
		s.running = false
	}
}

// Stop waits for the tick in progress, if any, to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info().Msg("scheduler stopped")
}
