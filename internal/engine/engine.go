// Package engine answers "may member M use resource R". Decisions combine
// the member's explicit overrides, the age-policy table, and (for URLs and
// text) an optional remote filter, in a fixed precedence order:
//
//	explicit allow > explicit block > age-based default
//
// That ordering is load-bearing: a block-list entry must never override a
// parent's explicit allow. Every freshly computed decision is recorded to
// the audit trail and cached under a purpose-prefixed key.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"github.com/hearthgate/hearthgate/internal/cache"
	"github.com/hearthgate/hearthgate/internal/common"
	"github.com/hearthgate/hearthgate/internal/filter"
	"github.com/hearthgate/hearthgate/internal/logging"
	"github.com/hearthgate/hearthgate/internal/policy"
	"github.com/hearthgate/hearthgate/internal/roster"
)

const (
	appPrefix     = "access"
	urlPrefix     = "url"
	contentPrefix = "content"

	// DefaultAccessTTL bounds how long a cached decision may outlive a
	// policy change. Shortening it trades recomputation for freshness.
	DefaultAccessTTL = 10 * time.Minute

	// DefaultBlockThreshold is the remote threat score at or above which a
	// deny verdict is honored.
	DefaultBlockThreshold = 0.5
)

// Recorder is the slice of the audit trail the engine needs.
type Recorder interface {
	Record(ctx context.Context, memberID, activity, detail string)
}

// RemoteFilter is the optional external filtering service.
type RemoteFilter interface {
	CheckURL(ctx context.Context, url string) (*filter.Verdict, error)
	CheckText(ctx context.Context, text string) (*filter.Verdict, error)
}

// Engine is safe for concurrent use; all mutable state lives in the cache
// and the audit trail, which synchronize internally.
type Engine struct {
	table     *policy.Table
	cache     cache.Cache
	audit     Recorder
	remote    RemoteFilter
	logger    logging.Logger
	accessTTL time.Duration
	threshold float64
}

// Option tweaks Engine construction.
type Option func(*Engine)

func WithAccessTTL(d time.Duration) Option {
	return func(e *Engine) { e.accessTTL = d }
}

func WithRemoteFilter(r RemoteFilter) Option {
	return func(e *Engine) { e.remote = r }
}

func WithBlockThreshold(score float64) Option {
	return func(e *Engine) { e.threshold = score }
}

func New(table *policy.Table, c cache.Cache, audit Recorder, logger logging.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	e := &Engine{
		table:     table,
		cache:     c,
		audit:     audit,
		logger:    logger,
		accessTTL: DefaultAccessTTL,
		threshold: DefaultBlockThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CanAccessApp decides whether the member may open the named application.
func (e *Engine) CanAccessApp(ctx context.Context, member *roster.Member, app string) bool {
	key := cache.Key(appPrefix, member.ID, app)
	if cached, found := e.lookup(ctx, key); found {
		return cached
	}

	allowed := e.decideApp(ctx, member, app)
	e.store(ctx, key, allowed)
	return allowed
}

func (e *Engine) decideApp(ctx context.Context, member *roster.Member, app string) bool {
	// Explicit allow wins over everything.
	if member.AppAllowed(app) {
		e.record(ctx, member.ID, "app access granted", app+" is on the allow list")
		return true
	}
	if member.AppBlocked(app) {
		e.record(ctx, member.ID, "app access blocked", app+" is on the block list")
		return false
	}

	if allowed, ok := e.table.AppRule(member.AgeGroup, app); ok {
		if !allowed {
			e.record(ctx, member.ID, "app access blocked",
				fmt.Sprintf("%s restricted for age group %s", app, member.AgeGroup))
			return false
		}
		e.record(ctx, member.ID, "app access granted", app+" allowed for age group "+member.AgeGroup.String())
		return true
	}

	// No rule at all: only parents get the benefit of the doubt.
	if member.Role == policy.RoleParent {
		e.record(ctx, member.ID, "app access granted", app+" unrestricted for parents")
		return true
	}
	e.record(ctx, member.ID, "app access blocked",
		fmt.Sprintf("%s has no rule for age group %s", app, member.AgeGroup))
	return false
}

// CanAccessURL decides whether the member may open the URL. A malformed URL
// is an input error: the check fails closed and the error is surfaced.
func (e *Engine) CanAccessURL(ctx context.Context, member *roster.Member, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false, fmt.Errorf("%w: malformed url %q", common.ErrInvalidInput, rawURL)
	}

	key := cache.Key(urlPrefix, member.ID, hashKey(rawURL))
	if cached, found := e.lookup(ctx, key); found {
		return cached, nil
	}

	allowed := e.decideURL(ctx, member, rawURL, parsed.Hostname())
	e.store(ctx, key, allowed)
	return allowed, nil
}

func (e *Engine) decideURL(ctx context.Context, member *roster.Member, rawURL, host string) bool {
	if member.WebsiteAllowed(rawURL) {
		e.record(ctx, member.ID, "url access granted", rawURL+" matches the allow list")
		return true
	}
	if member.WebsiteBlocked(rawURL) {
		e.record(ctx, member.ID, "url access blocked", rawURL+" matches the block list")
		return false
	}

	if verdict := e.consultRemote(ctx, rawURL, false); verdict != nil && !verdict.Allowed && verdict.Score >= e.threshold {
		e.record(ctx, member.ID, "url access blocked",
			fmt.Sprintf("remote filter: %s (score %.2f)", verdict.Reason, verdict.Score))
		return false
	}

	if fragment, blocked := e.table.BlockedDomain(member.AgeGroup, host); blocked {
		e.record(ctx, member.ID, "url access blocked",
			fmt.Sprintf("%s matches blocked domain %q for age group %s", host, fragment, member.AgeGroup))
		return false
	}

	// URLs default-allow: the web is deny-listed, not allow-listed.
	e.record(ctx, member.ID, "url access granted", rawURL)
	return true
}

// CanAccessContent decides whether the member may view a block of text.
// Keyword denials are absolute; no allow list overrides them.
func (e *Engine) CanAccessContent(ctx context.Context, member *roster.Member, text string) bool {
	key := cache.Key(contentPrefix, member.ID, hashKey(text))
	if cached, found := e.lookup(ctx, key); found {
		return cached
	}

	allowed := e.decideContent(ctx, member, text)
	e.store(ctx, key, allowed)
	return allowed
}

func (e *Engine) decideContent(ctx context.Context, member *roster.Member, text string) bool {
	if keyword, blocked := e.table.BlockedKeyword(member.AgeGroup, text); blocked {
		e.record(ctx, member.ID, "content blocked",
			fmt.Sprintf("keyword %q inappropriate for age group %s", keyword, member.AgeGroup))
		return false
	}

	if verdict := e.consultRemote(ctx, text, true); verdict != nil && !verdict.Allowed && verdict.Score >= e.threshold {
		e.record(ctx, member.ID, "content blocked",
			fmt.Sprintf("remote filter: %s (score %.2f)", verdict.Reason, verdict.Score))
		return false
	}

	e.record(ctx, member.ID, "content access granted", "")
	return true
}

// consultRemote returns nil when the filter is absent or unreachable; the
// caller then proceeds on local policy alone.
func (e *Engine) consultRemote(ctx context.Context, payload string, text bool) *filter.Verdict {
	if e.remote == nil {
		return nil
	}

	var (
		verdict *filter.Verdict
		err     error
	)
	if text {
		verdict, err = e.remote.CheckText(ctx, payload)
	} else {
		verdict, err = e.remote.CheckURL(ctx, payload)
	}
	if err != nil {
		e.logger.Warn(ctx, "remote filter unavailable, using local policy", "error", err)
		return nil
	}
	return verdict
}

func (e *Engine) lookup(ctx context.Context, key string) (allowed, found bool) {
	if e.cache == nil {
		return false, false
	}
	v, found := e.cache.Get(ctx, key)
	if !found {
		return false, false
	}
	return v == cache.True, true
}

func (e *Engine) store(ctx context.Context, key string, allowed bool) {
	if e.cache == nil {
		return
	}
	v := cache.False
	if allowed {
		v = cache.True
	}
	e.cache.Set(ctx, key, v, e.accessTTL)
}

func (e *Engine) record(ctx context.Context, memberID, activity, detail string) {
	if e.audit != nil {
		e.audit.Record(ctx, memberID, activity, detail)
	}
}

func hashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
