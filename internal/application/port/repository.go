package port

import (
	"context"

	"github.com/garyjia/clinic-assistant/internal/domain/entity"
)

// RecentRecordLimit caps every operational record query.
const RecentRecordLimit = 200

// RecordStore defines read access to the portal's operational records.
// Operational listings are ordered newest first and capped at limit; each row
// carries its location name and creator display name.
type RecordStore interface {
	ListReconciliations(ctx context.Context, limit int) ([]entity.ReconciliationEntry, error)
	ListBillingInquiries(ctx context.Context, limit int) ([]entity.BillingInquiry, error)
	ListPayableBills(ctx context.Context, limit int) ([]entity.PayableBill, error)
	ListPurchaseOrders(ctx context.Context, limit int) ([]entity.PurchaseOrder, error)
	ListRefundRequests(ctx context.Context, limit int) ([]entity.RefundRequest, error)
	ListSupportTickets(ctx context.Context, limit int) ([]entity.SupportTicket, error)

	// ListActiveLocations returns every active location ordered by name.
	ListActiveLocations(ctx context.Context) ([]entity.Location, error)

	// ListActiveUsers returns every active user account ordered by name.
	ListActiveUsers(ctx context.Context) ([]entity.UserAccount, error)
}
