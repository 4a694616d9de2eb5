// Package worker persists conflict advisories taken off the queue.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/adapters/mq/queue"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/logger"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/metrics"
)

const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 10 * time.Second
)

// Sink stores an advisory for supervising admins.
type Sink interface {
	SaveAdvisory(ctx context.Context, a queue.Advisory) error
}

// Queue defines how workers receive advisories.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Advisory
}

// Worker drains advisories into a Sink until the queue closes or ctx ends.
type Worker struct {
	queue  Queue
	sink   Sink
	name   string
	logger logger.Logger

	onFailure func(ctx context.Context, a queue.Advisory, err error)

	processed *atomic.Int64
	done      chan struct{}
}

// NewWorker creates a worker with configuration options.
func NewWorker(q Queue, sink Sink, opts ...Option) *Worker {
	w := &Worker{
		queue:     q,
		sink:      sink,
		name:      "worker",
		processed: &atomic.Int64{},
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run consumes advisories until the queue is closed and drained or ctx is done.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-items:
			if !ok {
				return
			}
			if err := w.process(ctx, a); err != nil {
				w.logger.Error(ctx, "error persisting advisory", logger.Error(err))
				if w.onFailure != nil {
					w.onFailure(ctx, a, err)
				}
			}
		}
	}
}

// Done is closed once Run returns.
func (w *Worker) Done() <-chan struct{} { return w.done }

func (w *Worker) process(ctx context.Context, a queue.Advisory) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.sink.SaveAdvisory(ctx, a); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("save advisory for team %s: %w", a.TeamID, err)
	}

	w.processed.Add(1)
	metrics.RecordAdvisoryEmitted()
	w.logger.Warn(ctx, "judges disagree on team total",
		logger.String("advisory_id", a.ID),
		logger.String("team_id", a.TeamID),
		logger.String("competition_id", a.CompetitionID),
		logger.Int("judges", a.JudgeCount),
		logger.Float64("min", a.Min),
		logger.Float64("max", a.Max),
		logger.Float64("spread_pct", a.SpreadPct),
		logger.Float64("threshold_pct", a.ThresholdPct),
		logger.String("triggered_by", a.TriggeredBy),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers   []*Worker
	queue     Queue
	processed atomic.Int64
	cancel    context.CancelFunc
	startOnce sync.Once
	logger    logger.Logger
}

// NewPool creates a pool of workerCount workers sharing opts. A count below
// one uses the default.
func NewPool(workerCount int, q Queue, sink Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		w := NewWorker(q, sink, append([]Option{WithName("advisory-worker-" + strconv.Itoa(i))}, opts...)...)
		w.processed = &p.processed
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start runs every worker in its own goroutine. Subsequent calls are no-ops.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		ctx, p.cancel = context.WithCancel(ctx)
		for _, w := range p.workers {
			go w.Run(ctx)
		}
		p.logger.Info(ctx, "advisory workers started", logger.Int("workers", len(p.workers)))
	})
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of advisories persisted so far.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Shutdown closes the queue and waits for workers to drain it. Workers still
// running when ctx or the pool timeout expires are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	if p.cancel == nil {
		return nil
	}
	defer p.cancel()

	waitCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-waitCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker pool shutdown: %w", waitCtx.Err())
		}
	}
	return nil
}
