package services

import (
	"context"
	"fmt"
	"log/slog"

	"expensedash/internal/analytics"
	"expensedash/internal/cache"
	"expensedash/internal/core"
	"expensedash/internal/filter"
	applog "expensedash/internal/log"
)

// Dashboard opens per-request read sessions over the record store.
type Dashboard struct {
	store   Store
	queries cache.Cache[analytics.Table]
}

// NewDashboard builds a dashboard reader. queries may be nil to disable caching.
func NewDashboard(store Store, queries cache.Cache[analytics.Table]) *Dashboard {
	return &Dashboard{store: store, queries: queries}
}

// Session is the state of one dashboard request: a snapshot of every record
// and the view selected by the request's filter.
type Session struct {
	spec     filter.Spec
	all      []core.Expense
	filtered []core.Expense
	lastID   int64
	queries  cache.Cache[analytics.Table]
}

// Open loads the record set once and applies spec to it.
func (d *Dashboard) Open(ctx context.Context, spec filter.Spec) (*Session, error) {
	all, err := d.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("open dashboard: %w", err)
	}

	var lastID int64
	for _, e := range all {
		if e.ID > lastID {
			lastID = e.ID
		}
	}

	slog.DebugContext(ctx, "Dashboard session opened",
		applog.FieldComponent, applog.ComponentDashboard,
		applog.FieldOperation, applog.OpLoad,
		applog.FieldCategory, selection(spec.Category),
		applog.FieldPaymentMode, selection(spec.PaymentMode),
		applog.FieldMonth, selection(spec.Month),
		applog.FieldRecords, len(all))

	return &Session{
		spec:     spec,
		all:      all,
		filtered: filter.Apply(all, spec),
		lastID:   lastID,
		queries:  d.queries,
	}, nil
}

// Spec returns the filter this session was opened with.
func (s *Session) Spec() filter.Spec { return s.spec }

// Filters lists the selectable values present in the full record set.
func (s *Session) Filters() filter.Domain { return filter.Options(s.all) }

// Records returns the filtered view in insertion order.
func (s *Session) Records() []core.Expense { return s.filtered }

// KPIs summarises the filtered view.
func (s *Session) KPIs() core.KPIs { return filter.ComputeKPIs(s.filtered) }

// Charts computes the dashboard series over the filtered view.
func (s *Session) Charts() analytics.Charts { return analytics.BuildCharts(s.filtered) }

// Query runs one catalog query over the full record set.
func (s *Session) Query(c analytics.Catalog, id int) (analytics.Table, error) {
	q, err := analytics.Lookup(c, id)
	if err != nil {
		return analytics.Table{}, err
	}

	key := cacheKey(c, id, s.lastID)
	if s.queries != nil {
		if t, ok := s.queries.Get(key); ok {
			slog.Debug("Served cached query result", s.queryFields(c, id, key)...)
			return t, nil
		}
	}

	t := q.Fn(s.all)
	if s.queries != nil {
		s.queries.Set(key, t)
		slog.Debug("Cached query result", s.queryFields(c, id, key)...)
	}
	return t, nil
}

// Catalog runs every query of a catalog over the full record set, in catalog order.
func (s *Session) Catalog(ctx context.Context, c analytics.Catalog) ([]analytics.Result, error) {
	qs, err := analytics.Queries(c)
	if err != nil {
		return nil, err
	}

	if s.queries != nil {
		results := make([]analytics.Result, 0, len(qs))
		for _, q := range qs {
			t, ok := s.queries.Get(cacheKey(c, q.ID, s.lastID))
			if !ok {
				break
			}
			results = append(results, analytics.Result{Catalog: c, ID: q.ID, Label: q.Label, Table: t})
		}
		if len(results) == len(qs) {
			slog.DebugContext(ctx, "Served cached catalog", s.catalogFields(c)...)
			return results, nil
		}
	}

	results, err := analytics.RunCatalog(ctx, c, s.all)
	if err != nil {
		return nil, err
	}
	if s.queries != nil {
		for _, r := range results {
			s.queries.Set(cacheKey(c, r.ID, s.lastID), r.Table)
		}
	}
	slog.DebugContext(ctx, "Ran catalog", s.catalogFields(c)...)
	return results, nil
}

func (s *Session) queryFields(c analytics.Catalog, id int, key string) []any {
	return []any{
		applog.FieldComponent, applog.ComponentDashboard,
		applog.FieldOperation, applog.OpQuery,
		applog.FieldCatalog, string(c),
		applog.FieldQueryID, id,
		applog.FieldCacheKey, key,
		applog.FieldRecords, len(s.all),
	}
}

func (s *Session) catalogFields(c analytics.Catalog) []any {
	return []any{
		applog.FieldComponent, applog.ComponentDashboard,
		applog.FieldOperation, applog.OpQuery,
		applog.FieldCatalog, string(c),
		applog.FieldRecords, len(s.all),
	}
}

// selection renders a filter predicate for logs.
func selection(v *string) string {
	if v == nil {
		return filter.AllValue
	}
	return *v
}

// cacheKey identifies a query result for a given store state. Records are
// append-only, so the highest id changes on every append.
func cacheKey(c analytics.Catalog, id int, lastID int64) string {
	return fmt.Sprintf("%s:%d:%d", c, id, lastID)
}
