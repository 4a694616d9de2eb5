package scoring

import (
	"math"
	"time"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/logger"
)

// Option applies a configuration option to the Evaluator.
type Option func(*Evaluator)

// WithThreshold sets the spread percentage above which judges disagree.
// Negative and NaN values are ignored.
func WithThreshold(pct float64) Option {
	return func(e *Evaluator) {
		if pct >= 0 && !math.IsNaN(pct) && !math.IsInf(pct, 0) {
			e.thresholdPct = pct
		}
	}
}

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator replaces the score id generator.
func WithIDGenerator(gen func() string) Option {
	return func(e *Evaluator) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithLogger sets a custom logger for the evaluator.
func WithLogger(l logger.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}
