package api

import (
	"container/list"
	"context"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// JudgeHeader carries the caller's judge id when the default resolver is used.
const JudgeHeader = "X-Judge-ID"

// JudgeResolver extracts the authenticated judge from a request.
// Authentication happens upstream; the resolver only reads its outcome.
type JudgeResolver interface {
	ResolveJudge(r *http.Request) (string, bool)
}

// HeaderJudgeResolver reads the judge id from a request header.
type HeaderJudgeResolver struct {
	Header string
}

// ResolveJudge implements JudgeResolver.
func (h HeaderJudgeResolver) ResolveJudge(r *http.Request) (string, bool) {
	name := h.Header
	if name == "" {
		name = JudgeHeader
	}
	id := strings.TrimSpace(r.Header.Get(name))
	return id, id != ""
}

type ctxKey int

const ctxKeyJudge ctxKey = iota

// judgeFrom returns the judge stored by requireJudge.
func judgeFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyJudge).(string)
	return id
}

func requireJudge(resolver JudgeResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := resolver.ResolveJudge(r)
			if !ok {
				writeError(w, NewKind("api.identity", ErrUnauthorized))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyJudge, id)))
		})
	}
}

// defaultTrackedJudges caps how many judge buckets the limiter keeps.
const defaultTrackedJudges = 10000

// judgeLimiter throttles autosaves with one token bucket per judge. The
// least recently seen judge is dropped once max buckets are held.
type judgeLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	max      int
	limiters map[string]*list.Element
	order    *list.List
}

type judgeBucket struct {
	judgeID string
	lim     *rate.Limiter
}

func newJudgeLimiter(perSec float64, burst, maxJudges int) *judgeLimiter {
	if maxJudges < 1 {
		maxJudges = defaultTrackedJudges
	}
	return &judgeLimiter{
		limit:    rate.Limit(perSec),
		burst:    burst,
		max:      maxJudges,
		limiters: make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (l *judgeLimiter) allow(judgeID string) bool {
	l.mu.Lock()
	var lim *rate.Limiter
	if el, ok := l.limiters[judgeID]; ok {
		l.order.MoveToFront(el)
		lim = el.Value.(*judgeBucket).lim
	} else {
		if len(l.limiters) >= l.max {
			oldest := l.order.Back()
			l.order.Remove(oldest)
			delete(l.limiters, oldest.Value.(*judgeBucket).judgeID)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[judgeID] = l.order.PushFront(&judgeBucket{judgeID: judgeID, lim: lim})
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (l *judgeLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(judgeFrom(r.Context())) {
			writeError(w, NewKind("api.autosave", ErrRateLimited))
			return
		}
		next.ServeHTTP(w, r)
	})
}
