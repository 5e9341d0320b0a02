package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"factures/internal/cache"
	"factures/internal/core"
	"factures/internal/log"
)

const (
	DefaultTopClients    = 5
	PeriodTopClients     = 10
	DefaultRevenueMonths = 6
)

// ReportService computes read-only aggregates. Results are cached until the
// next write purges the cache or the entry expires.
type ReportService struct {
	store  ReportStore
	cache  cache.Cache[any]
	now    Clock
	logger *log.Logger

	// gen counts purges; a result computed across a purge is not stored.
	mu  sync.Mutex
	gen uint64
}

func NewReportService(store ReportStore, c cache.Cache[any], logger *log.Logger) *ReportService {
	if c == nil {
		c = cache.Noop[any]{}
	}
	return &ReportService{
		store:  store,
		cache:  c,
		now:    time.Now,
		logger: orDefaultLogger(logger, log.ComponentReport),
	}
}

func (s *ReportService) WithClock(now Clock) *ReportService {
	s.now = now
	return s
}

// Purge drops every cached report.
func (s *ReportService) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cache.Purge()
}

func cached[T any](s *ReportService, key string, compute func() (T, error)) (T, error) {
	if v, ok := s.cache.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	v, err := compute()
	if err != nil {
		return v, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.cache.Set(key, v)
	}
	return v, nil
}

func validatePeriod(from, to core.Date) error {
	if from.IsZero() {
		return &core.ValidationError{Field: "from", Message: "required"}
	}
	if to.IsZero() {
		return &core.ValidationError{Field: "to", Message: "required"}
	}
	if to.Before(from.Time) {
		return &core.ValidationError{Field: "to", Message: "before from"}
	}
	return nil
}

// PeriodReport aggregates invoices issued between from and to inclusive.
func (s *ReportService) PeriodReport(ctx context.Context, from, to core.Date) (core.PeriodReport, error) {
	fields := log.NewFields().WithPeriod(from.String(), to.String())
	if err := validatePeriod(from, to); err != nil {
		logFailure(ctx, s.logger, "Rejected period", log.OpPeriodReport, err, fields)
		return core.PeriodReport{}, err
	}

	key := fmt.Sprintf("period:%s:%s", from, to)
	report, err := cached(s, key, func() (core.PeriodReport, error) {
		r := core.PeriodReport{From: from, To: to}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			r.Stats, err = s.store.PeriodStats(gctx, from, to)
			return err
		})
		g.Go(func() error {
			var err error
			r.Invoices, err = s.store.ListInvoices(gctx, core.InvoiceFilter{DateFrom: from, DateTo: to})
			return err
		})
		g.Go(func() error {
			var err error
			r.TopClients, err = s.store.TopClients(gctx, PeriodTopClients, from, to)
			return err
		})
		g.Go(func() error {
			var err error
			r.Monthly, err = s.store.PaidRevenueByMonth(gctx, from, to)
			return err
		})
		if err := g.Wait(); err != nil {
			return core.PeriodReport{}, err
		}
		return r, nil
	})
	if err != nil {
		logFailure(ctx, s.logger, "Failed to build period report", log.OpPeriodReport, err, fields)
		return core.PeriodReport{}, err
	}
	return report, nil
}

// DashboardStats compares this calendar month's paid revenue with the previous one.
func (s *ReportService) DashboardStats(ctx context.Context) (core.DashboardStats, error) {
	now := s.now()
	current := core.DateOf(now).MonthKey()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	previous := core.DateOf(firstOfMonth.AddDate(0, -1, 0)).MonthKey()

	stats, err := cached(s, "dashboard:"+current, func() (core.DashboardStats, error) {
		var (
			d   core.DashboardStats
			err error
		)
		if d.RevenueThisMonth, d.PaidThisMonth, err = s.store.PaidRevenueForMonth(ctx, current); err != nil {
			return d, err
		}
		if d.RevenueLastMonth, _, err = s.store.PaidRevenueForMonth(ctx, previous); err != nil {
			return d, err
		}
		if d.PendingCount, d.PendingAmount, err = s.store.PendingInvoices(ctx); err != nil {
			return d, err
		}
		if d.ActiveClients, err = s.store.ActiveClients(ctx); err != nil {
			return d, err
		}
		if d.TotalClients, err = s.store.ClientCount(ctx); err != nil {
			return d, err
		}
		d.Variation = Variation(d.RevenueThisMonth, d.RevenueLastMonth)
		return d, nil
	})
	if err != nil {
		logFailure(ctx, s.logger, "Failed to compute dashboard", log.OpDashboard, err, nil)
		return core.DashboardStats{}, err
	}
	return stats, nil
}

// Variation is the percent change from previous to current, rounded to one
// decimal. It is 0 when previous is not positive.
func Variation(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	v := (current - previous) / previous * 100
	return math.Round(v*10) / 10
}

// ChartData returns the last six months of paid revenue and the status breakdown.
func (s *ReportService) ChartData(ctx context.Context) (core.ChartData, error) {
	today := core.DateOf(s.now())
	data, err := cached(s, "charts:"+today.String(), func() (core.ChartData, error) {
		monthly, err := s.revenueSince(ctx, today, DefaultRevenueMonths)
		if err != nil {
			return core.ChartData{}, err
		}
		byStatus, err := s.store.InvoiceStats(ctx)
		if err != nil {
			return core.ChartData{}, err
		}
		return core.ChartData{Monthly: monthly, ByStatus: byStatus}, nil
	})
	if err != nil {
		logFailure(ctx, s.logger, "Failed to compute chart data", log.OpChart, err, nil)
		return core.ChartData{}, err
	}
	return data, nil
}

// RevenueByMonth returns paid revenue per month for invoices issued in the
// last months months (6 when months <= 0).
func (s *ReportService) RevenueByMonth(ctx context.Context, months int) ([]core.MonthlyRevenue, error) {
	if months <= 0 {
		months = DefaultRevenueMonths
	}
	out, err := s.revenueSince(ctx, core.DateOf(s.now()), months)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to compute monthly revenue", log.OpChart, err, nil)
		return nil, err
	}
	return out, nil
}

func (s *ReportService) revenueSince(ctx context.Context, today core.Date, months int) ([]core.MonthlyRevenue, error) {
	cutoff := core.Date{Time: today.AddDate(0, -months, 0)}
	return s.store.PaidRevenueByMonth(ctx, cutoff, core.Date{})
}

// TopClients ranks clients by paid revenue (5 when limit <= 0). Zero dates leave the range open.
func (s *ReportService) TopClients(ctx context.Context, limit int, from, to core.Date) ([]core.TopClient, error) {
	if limit <= 0 {
		limit = DefaultTopClients
	}
	clients, err := s.store.TopClients(ctx, limit, from, to)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to rank clients", log.OpList, err, nil)
		return nil, err
	}
	return clients, nil
}

func (s *ReportService) InvoiceStats(ctx context.Context) ([]core.StatusStat, error) {
	stats, err := s.store.InvoiceStats(ctx)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to compute invoice stats", log.OpRead, err, nil)
		return nil, err
	}
	return stats, nil
}

// ExportRows flattens invoices issued in [from, to] for CSV and spreadsheet exports.
func (s *ReportService) ExportRows(ctx context.Context, from, to core.Date) ([]core.ExportRow, error) {
	fields := log.NewFields().WithPeriod(from.String(), to.String())
	if err := validatePeriod(from, to); err != nil {
		logFailure(ctx, s.logger, "Rejected export period", log.OpExport, err, fields)
		return nil, err
	}
	rows, err := s.store.ExportRows(ctx, from, to)
	if err != nil {
		logFailure(ctx, s.logger, "Failed to export rows", log.OpExport, err, fields)
		return nil, err
	}
	return rows, nil
}
