package worker

import (
	"context"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/adapters/mq/queue"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/logger"
)

// Option applies a configuration option to a Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithFailureHandler is called with each advisory the sink rejects.
func WithFailureHandler(fn func(ctx context.Context, a queue.Advisory, err error)) Option {
	return func(w *Worker) {
		w.onFailure = fn
	}
}
