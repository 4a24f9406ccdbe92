// Package historian drains the action log queue from Redis and archives it in
// batches.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/flipseven/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Queue is the part of the Redis client the historian reads with.
type Queue interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Writer persists flushed batches.
type Writer interface {
	InsertGameActions(ctx context.Context, actions []models.GameAction) error
	MarkAbandoned(ctx context.Context, gameID uuid.UUID) error
}

// Options tunes a Service. Zero values take the defaults below.
type Options struct {
	QueueName  string
	BatchSize  int
	FlushEvery time.Duration
	// Inactivity is how long a room may go without actions before it is marked abandoned.
	Inactivity time.Duration
	PopTimeout time.Duration
	Logger     *logrus.Logger
}

// Service captures game actions from Redis and writes them through a Writer.
type Service struct {
	queue  Queue
	writer Writer
	opts   Options
	log    *logrus.Entry
	now    func() time.Time

	batchMu sync.Mutex
	batch   []models.GameAction

	activityMu   sync.Mutex
	lastActivity map[uuid.UUID]time.Time
}

func NewService(queue Queue, writer Writer, opts Options) *Service {
	if opts.QueueName == "" {
		opts.QueueName = "flipseven_actions"
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.FlushEvery <= 0 {
		opts.FlushEvery = 500 * time.Millisecond
	}
	if opts.Inactivity <= 0 {
		opts.Inactivity = 10 * time.Minute
	}
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = 3 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Service{
		queue:        queue,
		writer:       writer,
		opts:         opts,
		log:          opts.Logger.WithField("queue", opts.QueueName),
		now:          time.Now,
		batch:        make([]models.GameAction, 0, opts.BatchSize),
		lastActivity: make(map[uuid.UUID]time.Time),
	}
}

// Run blocks until ctx is cancelled or a loop fails. The pending batch is flushed
// on the way out.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info("Historian started.")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(gctx) })
	g.Go(func() error { return s.flushLoop(gctx) })
	g.Go(func() error { return s.inactivityLoop(gctx) })
	err := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Flush(shutdownCtx)
	s.log.Info("Historian shutting down.")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// readLoop continuously uses BLPop to retrieve messages from the Redis queue.
func (s *Service) readLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res, err := s.queue.BLPop(ctx, s.opts.PopTimeout, s.opts.QueueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.WithError(err).Error("BLPop failed.")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		// res[0] is the queue name and res[1] the payload
		if len(res) < 2 {
			continue
		}
		s.Handle(ctx, res[1])
	}
}

// Handle decodes one queued payload and adds it to the batch, flushing when the
// batch is full. Malformed payloads are logged and dropped.
func (s *Service) Handle(ctx context.Context, payload string) {
	var action models.GameAction
	if err := json.Unmarshal([]byte(payload), &action); err != nil {
		s.log.WithError(err).Warn("Invalid action record.")
		return
	}
	s.touch(action)

	s.batchMu.Lock()
	s.batch = append(s.batch, action)
	full := len(s.batch) >= s.opts.BatchSize
	s.batchMu.Unlock()

	if full {
		s.Flush(ctx)
	}
}

func (s *Service) flushLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.FlushEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Flush(ctx)
		}
	}
}

// Flush writes the current batch. A failed batch is logged and dropped.
func (s *Service) Flush(ctx context.Context) {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}
	batch := make([]models.GameAction, len(s.batch))
	copy(batch, s.batch)
	s.batch = s.batch[:0]
	s.batchMu.Unlock()

	if err := s.writer.InsertGameActions(ctx, batch); err != nil {
		s.log.WithError(err).Errorf("Failed to flush %d action(s).", len(batch))
		return
	}
	s.log.Debugf("Flushed %d action(s) to DB.", len(batch))
}

// Pending is the number of buffered actions.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}

func (s *Service) touch(action models.GameAction) {
	s.activityMu.Lock()
	defer s.activityMu.Unlock()
	if action.ActionType == models.ActionTypeGameEnd {
		delete(s.lastActivity, action.RoomID)
		return
	}
	s.lastActivity[action.RoomID] = s.now()
}

func (s *Service) inactivityLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.SweepInactive(ctx)
		}
	}
}

// SweepInactive marks every room silent for longer than the inactivity window as
// abandoned and returns their ids.
func (s *Service) SweepInactive(ctx context.Context) []uuid.UUID {
	now := s.now()
	var stale []uuid.UUID
	s.activityMu.Lock()
	for id, last := range s.lastActivity {
		if now.Sub(last) > s.opts.Inactivity {
			stale = append(stale, id)
			delete(s.lastActivity, id)
		}
	}
	s.activityMu.Unlock()

	for _, id := range stale {
		if err := s.writer.MarkAbandoned(ctx, id); err != nil {
			s.log.WithError(err).Warnf("Failed to mark game %v abandoned.", id)
			continue
		}
		s.log.Infof("Marked game %v as 'abandoned' due to inactivity.", id)
	}
	return stale
}
