// Package screentime tracks per-member usage against the daily budget.
// Session starts are the only state; everything else is derived from the
// clock, so a member's counters reset implicitly at the next calendar day.
package screentime

import (
	"context"
	"sync"
	"time"

	"github.com/hearthgate/hearthgate/internal/cache"
	"github.com/hearthgate/hearthgate/internal/logging"
	"github.com/hearthgate/hearthgate/internal/policy"
	"github.com/hearthgate/hearthgate/internal/roster"
)

// Unlimited is the sentinel returned for members without enforcement. A
// large finite duration keeps the return type uniform for callers that
// subtract or compare.
const Unlimited = 24 * time.Hour

// DefaultTTL is how long a remaining-time answer may be served from cache.
// The value changes continuously while a session is open, so callers must
// tolerate staleness of this magnitude.
const DefaultTTL = time.Minute

const cachePrefix = "screentime"

// Recorder is the slice of the audit trail the accountant needs.
type Recorder interface {
	Record(ctx context.Context, memberID, activity, detail string)
}

// Accountant answers "how much screen time does this member have left
// today". Safe for concurrent use.
type Accountant struct {
	cache  cache.Cache
	audit  Recorder
	logger logging.Logger
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]time.Time // member ID -> session start
}

func New(c cache.Cache, audit Recorder, logger logging.Logger) *Accountant {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Accountant{
		cache:    c,
		audit:    audit,
		logger:   logger,
		ttl:      DefaultTTL,
		now:      time.Now,
		sessions: make(map[string]time.Time),
	}
}

// WithClock replaces the time source. For tests.
func (a *Accountant) WithClock(now func() time.Time) *Accountant {
	a.now = now
	return a
}

// WithTTL overrides how long computed remaining-time values stay cached.
func (a *Accountant) WithTTL(ttl time.Duration) *Accountant {
	a.ttl = ttl
	return a
}

// StartSession records that the member's session begins now. Called by the
// session layer when a member logs in; restrictions are applied from this
// instant.
func (a *Accountant) StartSession(ctx context.Context, member *roster.Member) {
	start := a.now()

	a.mu.Lock()
	a.sessions[member.ID] = start
	a.mu.Unlock()

	if a.audit != nil {
		a.audit.Record(ctx, member.ID, "session started", "screen-time tracking began")
	}
	a.logger.Debug(ctx, "session started", "member", member.ID)
}

// Remaining computes the member's remaining allowed usage for the current
// calendar day. Results are cached for a short TTL.
func (a *Accountant) Remaining(ctx context.Context, member *roster.Member) time.Duration {
	if !member.ScreenTime.Enforce || member.Role == policy.RoleParent {
		return Unlimited
	}

	key := cache.Key(cachePrefix, member.ID)
	if a.cache != nil {
		if v, found := a.cache.Get(ctx, key); found {
			if d, err := time.ParseDuration(v); err == nil {
				return d
			}
		}
	}

	remaining := a.compute(member)

	if a.cache != nil {
		a.cache.Set(ctx, key, remaining.String(), a.ttl)
	}
	return remaining
}

func (a *Accountant) compute(member *roster.Member) time.Duration {
	now := a.now()

	limit := member.ScreenTime.WeekdayLimit
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		limit = member.ScreenTime.WeekendLimit
	}

	var used time.Duration
	a.mu.Lock()
	start, ok := a.sessions[member.ID]
	a.mu.Unlock()
	if ok && sameDay(start, now) {
		used = now.Sub(start)
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// State returns a copy of the open session starts, for snapshotting.
func (a *Accountant) State() map[string]time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]time.Time, len(a.sessions))
	for id, start := range a.sessions {
		out[id] = start
	}
	return out
}

// Restore replaces the session table, typically from a snapshot on startup.
func (a *Accountant) Restore(sessions map[string]time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sessions = make(map[string]time.Time, len(sessions))
	for id, start := range sessions {
		a.sessions[id] = start
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
