// Package snapshot turns the portal's operational records into the metrics
// and text report that ground the assistant.
package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/garyjia/clinic-assistant/internal/application/port"
	"github.com/garyjia/clinic-assistant/internal/domain/entity"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Record kinds, in report order.
const (
	KindReconciliation = "reconciliation"
	KindTickets        = "it_tickets"
	KindInquiries      = "billing_inquiries"
	KindBills          = "bills_payable"
	KindOrders         = "order_requests"
	KindRefunds        = "refund_requests"
	KindLocations      = "locations"
	KindUsers          = "users"
)

var kindOrder = []string{
	KindUsers, KindLocations, KindReconciliation, KindTickets,
	KindInquiries, KindBills, KindOrders, KindRefunds,
}

// RecordSet holds the raw records loaded for one request.
type RecordSet struct {
	Reconciliations []entity.ReconciliationEntry
	Inquiries       []entity.BillingInquiry
	Bills           []entity.PayableBill
	Orders          []entity.PurchaseOrder
	Refunds         []entity.RefundRequest
	Tickets         []entity.SupportTicket
	Locations       []entity.Location
	Users           []entity.UserAccount

	// Failed lists the kinds that could not be loaded and are empty.
	Failed []string
}

// Fetcher loads a RecordSet from a RecordStore. Queries run concurrently and
// a failing query degrades to an empty list instead of failing the fetch.
type Fetcher struct {
	store   port.RecordStore
	limit   int
	timeout time.Duration
	logger  *zap.Logger
}

// NewFetcher creates a Fetcher. A zero timeout leaves cancellation to ctx.
func NewFetcher(store port.RecordStore, timeout time.Duration, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		store:   store,
		limit:   port.RecentRecordLimit,
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch runs the six operational queries and the two reference queries and
// waits for all of them.
func (f *Fetcher) Fetch(ctx context.Context) *RecordSet {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	rs := &RecordSet{}

	var mu sync.Mutex
	failed := make(map[string]bool)
	fail := func(kind string, err error) {
		f.logger.Warn("Record query failed, continuing without it",
			zap.String("kind", kind),
			zap.Error(err))
		mu.Lock()
		failed[kind] = true
		mu.Unlock()
	}

	var eg errgroup.Group
	eg.Go(load(ctx, KindReconciliation, &rs.Reconciliations, limited(f.limit, f.store.ListReconciliations), fail))
	eg.Go(load(ctx, KindInquiries, &rs.Inquiries, limited(f.limit, f.store.ListBillingInquiries), fail))
	eg.Go(load(ctx, KindBills, &rs.Bills, limited(f.limit, f.store.ListPayableBills), fail))
	eg.Go(load(ctx, KindOrders, &rs.Orders, limited(f.limit, f.store.ListPurchaseOrders), fail))
	eg.Go(load(ctx, KindRefunds, &rs.Refunds, limited(f.limit, f.store.ListRefundRequests), fail))
	eg.Go(load(ctx, KindTickets, &rs.Tickets, limited(f.limit, f.store.ListSupportTickets), fail))
	eg.Go(load(ctx, KindLocations, &rs.Locations, f.store.ListActiveLocations, fail))
	eg.Go(load(ctx, KindUsers, &rs.Users, f.store.ListActiveUsers, fail))
	_ = eg.Wait()

	for _, kind := range kindOrder {
		if failed[kind] {
			rs.Failed = append(rs.Failed, kind)
		}
	}

	f.logger.Debug("Records fetched",
		zap.Int("reconciliations", len(rs.Reconciliations)),
		zap.Int("billing_inquiries", len(rs.Inquiries)),
		zap.Int("bills", len(rs.Bills)),
		zap.Int("orders", len(rs.Orders)),
		zap.Int("refunds", len(rs.Refunds)),
		zap.Int("tickets", len(rs.Tickets)),
		zap.Int("locations", len(rs.Locations)),
		zap.Int("users", len(rs.Users)),
		zap.Strings("failed", rs.Failed),
		zap.Duration("elapsed", time.Since(start)))

	return rs
}

func limited[T any](limit int, list func(context.Context, int) ([]T, error)) func(context.Context) ([]T, error) {
	return func(ctx context.Context) ([]T, error) {
		return list(ctx, limit)
	}
}

// load adapts one store query to an errgroup task that never reports an error.
func load[T any](ctx context.Context, kind string, dst *[]T, list func(context.Context) ([]T, error), fail func(string, error)) func() error {
	return func() error {
		rows, err := list(ctx)
		if err != nil {
			fail(kind, err)
			rows = nil
		}
		if rows == nil {
			rows = []T{}
		}
		*dst = rows
		return nil
	}
}
