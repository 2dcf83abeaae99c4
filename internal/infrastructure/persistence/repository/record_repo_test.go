package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/garyjia/clinic-assistant/internal/domain/entity"
	"github.com/garyjia/clinic-assistant/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fixtures = `
INSERT INTO locations (id, name, active) VALUES
	('dt', 'Downtown', TRUE),
	('es', 'Eastside', TRUE),
	('old', 'Closed Site', FALSE);

INSERT INTO users (id, name, email, username, role, active, last_login) VALUES
	('u1', 'Ana Park', 'ana@clinic.test', 'apark', 'finance_admin', TRUE, '2026-10-15 08:00:00'),
	('u2', '', 'ben@clinic.test', 'bruiz', 'Staff', TRUE, NULL),
	('u3', 'Gone User', 'gone@clinic.test', 'gone', 'staff', FALSE, NULL);

INSERT INTO daily_reconciliation (id, recon_date, location_id, status, total_collected, total_deposited, created_by, created_at) VALUES
	('r1', '2026-10-13', 'dt', 'Accounted', '$1,200.50', '1200.50', 'u1', '2026-10-13 18:00:00'),
	('r2', '2026-10-14', 'es', NULL, 'cash', NULL, 'u2', '2026-10-14 18:00:00'),
	('r3', '2026-10-14', NULL, 'Pending', '10', '10', NULL, '2026-10-14 19:00:00');

INSERT INTO bills_payment (id, vendor, amount, due_date, paid, bill_status, location_id, created_by, created_at) VALUES
	('b1', 'Henry Schein', '2400', '2026-10-10', 'No', 'Pending', 'dt', 'u1', '2026-10-01 10:00:00'),
	('b2', NULL, '99.99', NULL, 'Yes', 'Paid', NULL, NULL, '2026-10-02 10:00:00');

INSERT INTO it_requests (id, ticket_number, urgency, status, assigned_to, description, location_id, created_by, created_at) VALUES
	('t1', '1042', 'Critical', 'For Review', NULL, ' Printer down ', 'dt', 'u2', '2026-10-15 07:00:00');

INSERT INTO refund_requests (id, patient_name, refund_type, amount_requested, status, location_id, created_by, created_at) VALUES
	('f1', 'J. Doe', 'Overpayment', '45', 'Pending', 'es', 'u2', '2026-10-12 12:00:00');

INSERT INTO billing_inquiries (id, patient_name, inquiry_type, amount_in_question, status, location_id, created_by, created_at) VALUES
	('q1', 'M. Roe', 'Insurance', '310.10', 'In Progress', 'dt', 'u1', '2026-10-11 12:00:00');

INSERT INTO order_requests (id, vendor, invoice_number, amount, entered_by, order_date, location_id, created_by, created_at) VALUES
	('o1', 'Patterson', 'INV-77', '1,050', 'Ben', '2026-10-09', 'es', 'u2', '2026-10-09 09:00:00');
`

func setupRepo(t *testing.T) (*RecordRepository, *sql.DB) {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := database.New(ctx, database.Config{
		Driver:       database.DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "portal.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = database.NewMigrator(db, logger).RunMigrations(ctx, database.Migrations())
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, fixtures)
	require.NoError(t, err)

	return NewRecordRepository(db.DB, logger), db.DB
}

func TestRecordRepository_ListReconciliations(t *testing.T) {
	repo, _ := setupRepo(t)

	entries, err := repo.ListReconciliations(context.Background(), 200)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, []string{"r3", "r2", "r1"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})

	r1 := entries[2]
	assert.Equal(t, "Downtown", r1.LocationName)
	assert.Equal(t, "Ana Park", r1.CreatorName)
	assert.True(t, decimal.RequireFromString("1200.50").Equal(r1.TotalCollected))
	assert.Equal(t, time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC), r1.Date)
	assert.Equal(t, time.Date(2026, 10, 13, 18, 0, 0, 0, time.UTC), r1.CreatedAt)

	r2 := entries[1]
	assert.Equal(t, "Eastside", r2.LocationName)
	assert.Equal(t, "bruiz", r2.CreatorName)
	assert.Empty(t, r2.Status)
	assert.Equal(t, entity.ReconStatusPending, r2.EffectiveStatus())
	assert.True(t, r2.TotalCollected.IsZero())
	assert.True(t, r2.TotalDeposited.IsZero())

	r3 := entries[0]
	assert.Empty(t, r3.LocationName)
	assert.Empty(t, r3.CreatorName)
}

func TestRecordRepository_Limit(t *testing.T) {
	repo, _ := setupRepo(t)

	entries, err := repo.ListReconciliations(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "r3", entries[0].ID)
}

func TestRecordRepository_ListPayableBills(t *testing.T) {
	repo, _ := setupRepo(t)

	bills, err := repo.ListPayableBills(context.Background(), 200)
	require.NoError(t, err)
	require.Len(t, bills, 2)

	paid := bills[0]
	assert.Equal(t, "b2", paid.ID)
	assert.True(t, paid.Paid)
	assert.Equal(t, entity.UnknownVendor, paid.VendorName())
	assert.False(t, paid.HasDueDate())

	unpaid := bills[1]
	assert.False(t, unpaid.Paid)
	assert.True(t, unpaid.Unpaid())
	assert.Equal(t, time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC), unpaid.DueDate)
	assert.True(t, decimal.NewFromInt(2400).Equal(unpaid.Amount))
}

func TestRecordRepository_OtherKinds(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	tickets, err := repo.ListSupportTickets(ctx, 200)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "1042", tickets[0].TicketNumber)
	assert.Equal(t, "Printer down", tickets[0].Description)
	assert.True(t, tickets[0].Unassigned())

	refunds, err := repo.ListRefundRequests(ctx, 200)
	require.NoError(t, err)
	require.Len(t, refunds, 1)
	assert.Equal(t, "Overpayment", refunds[0].Type)
	assert.Equal(t, "Eastside", refunds[0].LocationName)

	inquiries, err := repo.ListBillingInquiries(ctx, 200)
	require.NoError(t, err)
	require.Len(t, inquiries, 1)
	assert.True(t, decimal.RequireFromString("310.10").Equal(inquiries[0].AmountInQuestion))

	orders, err := repo.ListPurchaseOrders(ctx, 200)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "INV-77", orders[0].InvoiceNumber)
	assert.True(t, decimal.NewFromInt(1050).Equal(orders[0].Amount))
	assert.Equal(t, "Ben", orders[0].EnteredBy)
}

func TestRecordRepository_ReferenceTables(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	locations, err := repo.ListActiveLocations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entity.Location{
		{ID: "dt", Name: "Downtown", Active: true},
		{ID: "es", Name: "Eastside", Active: true},
	}, locations)

	users, err := repo.ListActiveUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, entity.RoleStaff, users[0].Role)
	assert.Equal(t, "bruiz", users[0].DisplayName())
	assert.Equal(t, entity.RoleFinanceAdmin, users[1].Role)
	assert.Equal(t, time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC), users[1].LastLogin)
}

func TestRecordRepository_EmptyTables(t *testing.T) {
	repo, db := setupRepo(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, "DELETE FROM order_requests")
	require.NoError(t, err)

	orders, err := repo.ListPurchaseOrders(ctx, 200)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestRecordRepository_MissingTable(t *testing.T) {
	repo, db := setupRepo(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, "DROP TABLE refund_requests")
	require.NoError(t, err)

	_, err = repo.ListRefundRequests(ctx, 200)
	assert.ErrorContains(t, err, "refund_requests")
}

func TestRecordRepository_ContextCanceled(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.ListSupportTickets(ctx, 200)
	assert.Error(t, err)
}
