package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/types"
)

const (
	dateLayout = "2006-01-02"
	// windowDays is a fixed day count, not a calendar year.
	windowDays = 365
)

// WindowFor returns the inclusive window of windowDays days ending at latest.
func WindowFor(latest string) (types.Window, error) {
	end, err := time.Parse(dateLayout, latest)
	if err != nil {
		return types.Window{}, fmt.Errorf("parse latest date %q: %w", latest, err)
	}
	return types.Window{
		Start: end.AddDate(0, 0, -windowDays).Format(dateLayout),
		End:   end.Format(dateLayout),
	}, nil
}

// SpanResolver yields the dataset's first and latest observation dates.
// It returns ErrEmptyStore when there are none.
type SpanResolver interface {
	Span(ctx context.Context) (types.DateSpan, error)
	// Invalidate drops any remembered span; the next Span call hits the store.
	Invalidate()
}

type perRequestSpan struct {
	repo repository.ClimateRepository
}

// NewPerRequestSpan reads the span from the store on every call.
func NewPerRequestSpan(repo repository.ClimateRepository) SpanResolver {
	return &perRequestSpan{repo: repo}
}

func (p *perRequestSpan) Span(ctx context.Context) (types.DateSpan, error) {
	return fetchSpan(ctx, p.repo)
}

func (p *perRequestSpan) Invalidate() {}

func fetchSpan(ctx context.Context, repo repository.ClimateRepository) (types.DateSpan, error) {
	span, ok, err := repo.GetDateSpan(ctx)
	if err != nil {
		return types.DateSpan{}, storeError(err)
	}
	if !ok {
		return types.DateSpan{}, ErrEmptyStore
	}
	return span, nil
}

// CachedSpan remembers the span until ttl elapses (ttl 0 means until
// Invalidate is called). Empty results are never cached.
type CachedSpan struct {
	repo repository.ClimateRepository
	ttl  time.Duration
	now  func() time.Time

	mu        sync.RWMutex
	span      types.DateSpan
	fetchedAt time.Time
	valid     bool
}

func NewCachedSpan(repo repository.ClimateRepository, ttl time.Duration) *CachedSpan {
	return &CachedSpan{repo: repo, ttl: ttl, now: time.Now}
}

func (c *CachedSpan) Span(ctx context.Context) (types.DateSpan, error) {
	c.mu.RLock()
	if c.fresh() {
		span := c.span
		c.mu.RUnlock()
		return span, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fresh() {
		return c.span, nil
	}
	span, err := fetchSpan(ctx, c.repo)
	if err != nil {
		return types.DateSpan{}, err
	}
	c.span = span
	c.fetchedAt = c.now()
	c.valid = true
	return span, nil
}

// fresh must be called with c.mu held.
func (c *CachedSpan) fresh() bool {
	if !c.valid {
		return false
	}
	return c.ttl == 0 || c.now().Sub(c.fetchedAt) < c.ttl
}

func (c *CachedSpan) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}
