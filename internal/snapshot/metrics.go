package snapshot

import (
	"time"

	"github.com/garyjia/clinic-assistant/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TopVendorLimit is the number of vendors kept in the bill ranking.
const TopVendorLimit = 5

// Metrics is everything the snapshot reports, computed for one instant.
// Every section is populated even when its records are empty.
type Metrics struct {
	GeneratedAt    time.Time
	Users          UserMetrics
	Locations      []entity.Location
	Reconciliation ReconciliationMetrics
	Tickets        TicketMetrics
	Inquiries      InquiryMetrics
	Bills          BillMetrics
	Orders         OrderMetrics
	Refunds        RefundMetrics

	// Failed lists the record kinds that were unavailable.
	Failed []string
}

// StatusCount is the number of records in one status bucket.
type StatusCount struct {
	Status string
	Count  int
}

// RoleCount is the number of users holding a role.
type RoleCount struct {
	Role  entity.Role
	Count int
}

// UserMetrics summarizes the user directory.
type UserMetrics struct {
	Total        int
	ByRole       []RoleCount
	RecentLogins []entity.UserAccount
}

// LocationRollup is the reconciliation summary for one active location.
type LocationRollup struct {
	LocationID string
	Name       string
	Pending    int
	Accounted  int
	Collected  decimal.Decimal
}

// ReconciliationMetrics summarizes daily cash reconciliation.
type ReconciliationMetrics struct {
	Total          int
	ByStatus       []StatusCount
	ThisWeek       int
	ThisMonth      int
	TotalCollected decimal.Decimal
	TotalDeposited decimal.Decimal
	WeekCollected  decimal.Decimal
	MonthCollected decimal.Decimal
	Pending        []entity.ReconciliationEntry
	ByLocation     []LocationRollup
}

// Variance is collected minus deposited across all entries.
func (m ReconciliationMetrics) Variance() decimal.Decimal {
	return m.TotalCollected.Sub(m.TotalDeposited)
}

// TicketMetrics summarizes IT tickets.
type TicketMetrics struct {
	Total         int
	ByStatus      []StatusCount
	OpenByUrgency []StatusCount
	ThisWeek      int
	Open          []entity.SupportTicket
	Urgent        []entity.SupportTicket
	Unassigned    []entity.SupportTicket
}

// InquiryMetrics summarizes billing inquiries.
type InquiryMetrics struct {
	Total         int
	ByStatus      []StatusCount
	ThisWeek      int
	ThisMonth     int
	TotalAmount   decimal.Decimal
	PendingAmount decimal.Decimal
	Pending       []entity.BillingInquiry
}

// VendorTotal is the billed amount for one vendor.
type VendorTotal struct {
	Vendor string
	Amount decimal.Decimal
	Bills  int
}

// BillMetrics summarizes bills payable.
type BillMetrics struct {
	Total         int
	ThisMonth     int
	UnpaidCount   int
	PaidCount     int
	TotalAmount   decimal.Decimal
	UnpaidAmount  decimal.Decimal
	PaidAmount    decimal.Decimal
	Overdue       []entity.PayableBill
	OverdueAmount decimal.Decimal
	DueSoon       []entity.PayableBill
	DueSoonAmount decimal.Decimal
	TopVendors    []VendorTotal
}

// OrderMetrics summarizes order requests.
type OrderMetrics struct {
	Total       int
	ThisWeek    int
	ThisMonth   int
	TotalAmount decimal.Decimal
	MonthAmount decimal.Decimal
	Recent      []entity.PurchaseOrder
}

// RefundMetrics summarizes refund requests.
type RefundMetrics struct {
	Total          int
	ByStatus       []StatusCount
	ThisWeek       int
	ThisMonth      int
	TotalRequested decimal.Decimal
	PendingAmount  decimal.Decimal
	Pending        []entity.RefundRequest
}

// Count returns the count for status, or 0 when the bucket is absent.
func Count(buckets []StatusCount, status string) int {
	for _, b := range buckets {
		if b.Status == status {
			return b.Count
		}
	}
	return 0
}
