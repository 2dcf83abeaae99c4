package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/garyjia/clinic-assistant/internal/application/port"
	"github.com/garyjia/clinic-assistant/internal/domain/entity"
	"go.uber.org/zap"
)

// Every column is read as text and converted by the entity helpers so the
// same queries work on sqlite and Postgres whatever the column types are.
const (
	reconciliationQuery = `
		SELECT CAST(r.id AS TEXT), CAST(r.recon_date AS TEXT), CAST(r.location_id AS TEXT), l.name,
			r.status, CAST(r.total_collected AS TEXT), CAST(r.total_deposited AS TEXT),
			CAST(r.created_by AS TEXT), COALESCE(NULLIF(u.name, ''), u.username), CAST(r.created_at AS TEXT)
		FROM daily_reconciliation r
		LEFT JOIN locations l ON l.id = r.location_id
		LEFT JOIN users u ON u.id = r.created_by
		ORDER BY r.created_at DESC
		LIMIT %d`

	billingInquiryQuery = `
		SELECT CAST(b.id AS TEXT), b.patient_name, b.inquiry_type, CAST(b.amount_in_question AS TEXT),
			b.status, CAST(b.location_id AS TEXT), l.name,
			COALESCE(NULLIF(u.name, ''), u.username), CAST(b.created_at AS TEXT)
		FROM billing_inquiries b
		LEFT JOIN locations l ON l.id = b.location_id
		LEFT JOIN users u ON u.id = b.created_by
		ORDER BY b.created_at DESC
		LIMIT %d`

	payableBillQuery = `
		SELECT CAST(b.id AS TEXT), b.vendor, CAST(b.amount AS TEXT), CAST(b.due_date AS TEXT),
			CAST(b.paid AS TEXT), b.bill_status, CAST(b.location_id AS TEXT), l.name,
			COALESCE(NULLIF(u.name, ''), u.username), CAST(b.created_at AS TEXT)
		FROM bills_payment b
		LEFT JOIN locations l ON l.id = b.location_id
		LEFT JOIN users u ON u.id = b.created_by
		ORDER BY b.created_at DESC
		LIMIT %d`

	purchaseOrderQuery = `
		SELECT CAST(o.id AS TEXT), o.vendor, o.invoice_number, CAST(o.amount AS TEXT), o.entered_by,
			CAST(o.order_date AS TEXT), CAST(o.location_id AS TEXT), l.name,
			COALESCE(NULLIF(u.name, ''), u.username), CAST(o.created_at AS TEXT)
		FROM order_requests o
		LEFT JOIN locations l ON l.id = o.location_id
		LEFT JOIN users u ON u.id = o.created_by
		ORDER BY o.created_at DESC
		LIMIT %d`

	refundRequestQuery = `
		SELECT CAST(r.id AS TEXT), r.patient_name, r.refund_type, CAST(r.amount_requested AS TEXT),
			r.status, CAST(r.location_id AS TEXT), l.name,
			COALESCE(NULLIF(u.name, ''), u.username), CAST(r.created_at AS TEXT)
		FROM refund_requests r
		LEFT JOIN locations l ON l.id = r.location_id
		LEFT JOIN users u ON u.id = r.created_by
		ORDER BY r.created_at DESC
		LIMIT %d`

	supportTicketQuery = `
		SELECT CAST(t.id AS TEXT), CAST(t.ticket_number AS TEXT), t.urgency, t.status, t.assigned_to,
			t.description, CAST(t.location_id AS TEXT), l.name,
			COALESCE(NULLIF(u.name, ''), u.username), CAST(t.created_at AS TEXT)
		FROM it_requests t
		LEFT JOIN locations l ON l.id = t.location_id
		LEFT JOIN users u ON u.id = t.created_by
		ORDER BY t.created_at DESC
		LIMIT %d`

	locationQuery = `
		SELECT CAST(id AS TEXT), name
		FROM locations
		WHERE active
		ORDER BY name`

	userQuery = `
		SELECT CAST(id AS TEXT), name, email, username, role, CAST(last_login AS TEXT)
		FROM users
		WHERE active
		ORDER BY name`
)

// RecordRepository implements port.RecordStore over database/sql.
type RecordRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ port.RecordStore = (*RecordRepository)(nil)

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *sql.DB, logger *zap.Logger) *RecordRepository {
	return &RecordRepository{
		db:     db,
		logger: logger,
	}
}

// ListReconciliations returns the most recent daily reconciliation entries.
func (r *RecordRepository) ListReconciliations(ctx context.Context, limit int) ([]entity.ReconciliationEntry, error) {
	return queryRows(ctx, r, "daily_reconciliation", fmt.Sprintf(reconciliationQuery, limit),
		func(c *columns) entity.ReconciliationEntry {
			return entity.ReconciliationEntry{
				ID:             c.text(0),
				Date:           entity.ParseTime(c.text(1)),
				LocationID:     c.text(2),
				LocationName:   c.text(3),
				Status:         c.text(4),
				TotalCollected: entity.ParseAmount(c.text(5)),
				TotalDeposited: entity.ParseAmount(c.text(6)),
				CreatedBy:      c.text(7),
				CreatorName:    c.text(8),
				CreatedAt:      entity.ParseTime(c.text(9)),
			}
		}, 10)
}

// ListBillingInquiries returns the most recent billing inquiries.
func (r *RecordRepository) ListBillingInquiries(ctx context.Context, limit int) ([]entity.BillingInquiry, error) {
	return queryRows(ctx, r, "billing_inquiries", fmt.Sprintf(billingInquiryQuery, limit),
		func(c *columns) entity.BillingInquiry {
			return entity.BillingInquiry{
				ID:               c.text(0),
				PatientName:      c.text(1),
				InquiryType:      c.text(2),
				AmountInQuestion: entity.ParseAmount(c.text(3)),
				Status:           c.text(4),
				LocationID:       c.text(5),
				LocationName:     c.text(6),
				CreatorName:      c.text(7),
				CreatedAt:        entity.ParseTime(c.text(8)),
			}
		}, 9)
}

// ListPayableBills returns the most recent vendor bills.
func (r *RecordRepository) ListPayableBills(ctx context.Context, limit int) ([]entity.PayableBill, error) {
	return queryRows(ctx, r, "bills_payment", fmt.Sprintf(payableBillQuery, limit),
		func(c *columns) entity.PayableBill {
			return entity.PayableBill{
				ID:           c.text(0),
				Vendor:       c.text(1),
				Amount:       entity.ParseAmount(c.text(2)),
				DueDate:      entity.ParseTime(c.text(3)),
				Paid:         entity.ParseFlag(c.text(4)),
				Status:       c.text(5),
				LocationID:   c.text(6),
				LocationName: c.text(7),
				CreatorName:  c.text(8),
				CreatedAt:    entity.ParseTime(c.text(9)),
			}
		}, 10)
}

// ListPurchaseOrders returns the most recent order requests.
func (r *RecordRepository) ListPurchaseOrders(ctx context.Context, limit int) ([]entity.PurchaseOrder, error) {
	return queryRows(ctx, r, "order_requests", fmt.Sprintf(purchaseOrderQuery, limit),
		func(c *columns) entity.PurchaseOrder {
			return entity.PurchaseOrder{
				ID:            c.text(0),
				Vendor:        c.text(1),
				InvoiceNumber: c.text(2),
				Amount:        entity.ParseAmount(c.text(3)),
				EnteredBy:     c.text(4),
				Date:          entity.ParseTime(c.text(5)),
				LocationID:    c.text(6),
				LocationName:  c.text(7),
				CreatorName:   c.text(8),
				CreatedAt:     entity.ParseTime(c.text(9)),
			}
		}, 10)
}

// ListRefundRequests returns the most recent refund requests.
func (r *RecordRepository) ListRefundRequests(ctx context.Context, limit int) ([]entity.RefundRequest, error) {
	return queryRows(ctx, r, "refund_requests", fmt.Sprintf(refundRequestQuery, limit),
		func(c *columns) entity.RefundRequest {
			return entity.RefundRequest{
				ID:              c.text(0),
				PatientName:     c.text(1),
				Type:            c.text(2),
				AmountRequested: entity.ParseAmount(c.text(3)),
				Status:          c.text(4),
				LocationID:      c.text(5),
				LocationName:    c.text(6),
				CreatorName:     c.text(7),
				CreatedAt:       entity.ParseTime(c.text(8)),
			}
		}, 9)
}

// ListSupportTickets returns the most recent IT tickets.
func (r *RecordRepository) ListSupportTickets(ctx context.Context, limit int) ([]entity.SupportTicket, error) {
	return queryRows(ctx, r, "it_requests", fmt.Sprintf(supportTicketQuery, limit),
		func(c *columns) entity.SupportTicket {
			return entity.SupportTicket{
				ID:           c.text(0),
				TicketNumber: c.text(1),
				Urgency:      c.text(2),
				Status:       c.text(3),
				AssignedTo:   c.text(4),
				Description:  c.text(5),
				LocationID:   c.text(6),
				LocationName: c.text(7),
				CreatorName:  c.text(8),
				CreatedAt:    entity.ParseTime(c.text(9)),
			}
		}, 10)
}

// ListActiveLocations implements port.RecordStore.
func (r *RecordRepository) ListActiveLocations(ctx context.Context) ([]entity.Location, error) {
	return queryRows(ctx, r, "locations", locationQuery,
		func(c *columns) entity.Location {
			return entity.Location{ID: c.text(0), Name: c.text(1), Active: true}
		}, 2)
}

// ListActiveUsers implements port.RecordStore.
func (r *RecordRepository) ListActiveUsers(ctx context.Context) ([]entity.UserAccount, error) {
	return queryRows(ctx, r, "users", userQuery,
		func(c *columns) entity.UserAccount {
			role, ok := entity.ParseRole(c.text(4))
			if !ok {
				role = entity.Role(strings.ToLower(c.text(4)))
			}
			return entity.UserAccount{
				ID:        c.text(0),
				Name:      c.text(1),
				Email:     c.text(2),
				Username:  c.text(3),
				Role:      role,
				LastLogin: entity.ParseTime(c.text(5)),
			}
		}, 6)
}

// columns holds one scanned row of nullable text values.
type columns struct {
	values []sql.NullString
}

func (c *columns) text(i int) string {
	return strings.TrimSpace(c.values[i].String)
}

func queryRows[T any](ctx context.Context, r *RecordRepository, table, query string, build func(*columns) T, width int) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query records", zap.String("table", table), zap.Error(err))
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	c := &columns{values: make([]sql.NullString, width)}
	dest := make([]interface{}, width)
	for i := range c.values {
		dest[i] = &c.values[i]
	}

	records := []T{}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		records = append(records, build(c))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", table, err)
	}
	return records, nil
}
