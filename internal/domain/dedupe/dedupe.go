// Package dedupe suppresses repeated conflict advisories.
package dedupe

import (
	"container/list"
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/domain/model"
)

// Deduper records advisory keys so an identical conflict is published once.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a later publish can retry it. Used when the
	// advisory could not be enqueued or persisted.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// AdvisoryKey identifies a conflict by its team, competition and the judge
// totals that produced it. A new submission that changes the aggregate
// produces a new key.
func AdvisoryKey(a model.Advisory) string {
	var b strings.Builder
	b.WriteString(a.CompetitionID)
	b.WriteByte('|')
	b.WriteString(a.TeamID)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(a.JudgeCount))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(a.Min, 'f', -1, 64))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(a.Max, 'f', -1, 64))
	return b.String()
}

// inMemoryDeduper keeps keys in insertion order.
// Bounded mode (maxSize > 0) evicts the oldest key once full.
// Unbounded mode (maxSize <= 0) never evicts.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front is newest
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}

	d.seen[key] = d.order.PushFront(key)
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, exists := d.seen[key]; exists {
		d.order.Remove(el)
		delete(d.seen, key)
		d.size.Add(-1)
	}
}

// evictOldest drops the earliest recorded key. Caller holds d.mu.
func (d *inMemoryDeduper) evictOldest() {
	el := d.order.Back()
	if el == nil {
		return
	}
	d.order.Remove(el)
	delete(d.seen, el.Value.(string))
	d.size.Add(-1)
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
