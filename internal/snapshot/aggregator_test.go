package snapshot

import (
	"testing"
	"time"

	"github.com/garyjia/clinic-assistant/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func dollars(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dollars(want).Equal(got), "want %s, got %s", want, got)
}

func TestAggregate_EmptyInput(t *testing.T) {
	for name, rs := range map[string]*RecordSet{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			m := Aggregate(rs, testNow)
			require.NotNil(t, m)

			assert.Equal(t, testNow, m.GeneratedAt)
			assert.Len(t, m.Users.ByRole, len(entity.Roles))
			assert.NotNil(t, m.Users.RecentLogins)
			assert.NotNil(t, m.Locations)
			assert.Len(t, m.Reconciliation.ByStatus, 3)
			assert.NotNil(t, m.Reconciliation.Pending)
			assert.NotNil(t, m.Reconciliation.ByLocation)
			assert.Len(t, m.Tickets.ByStatus, 4)
			assert.Len(t, m.Tickets.OpenByUrgency, 4)
			assert.NotNil(t, m.Tickets.Open)
			assert.Len(t, m.Inquiries.ByStatus, 3)
			assert.NotNil(t, m.Bills.Overdue)
			assert.NotNil(t, m.Bills.DueSoon)
			assert.NotNil(t, m.Bills.TopVendors)
			assert.NotNil(t, m.Orders.Recent)
			assert.Len(t, m.Refunds.ByStatus, 4)
			assert.NotNil(t, m.Refunds.Pending)
			assertMoney(t, "0", m.Reconciliation.TotalCollected)
			assertMoney(t, "0", m.Bills.UnpaidAmount)
		})
	}
}

func TestAggregate_MissingAndNonNumericAmounts(t *testing.T) {
	rs := &RecordSet{
		Reconciliations: []entity.ReconciliationEntry{
			{TotalCollected: entity.ParseAmount("100.25"), TotalDeposited: entity.ParseAmount("")},
			{TotalCollected: entity.ParseAmount("cash"), TotalDeposited: entity.ParseAmount("50")},
			{},
		},
		Bills: []entity.PayableBill{
			{Vendor: "A", Amount: entity.ParseAmount("n/a")},
			{Vendor: "B", Amount: entity.ParseAmount("20")},
		},
		Refunds: []entity.RefundRequest{
			{Status: "Pending", AmountRequested: entity.ParseAmount("")},
			{Status: "Pending", AmountRequested: entity.ParseAmount("15.5")},
		},
	}

	m := Aggregate(rs, testNow)

	assert.Equal(t, 3, m.Reconciliation.Total)
	assertMoney(t, "100.25", m.Reconciliation.TotalCollected)
	assertMoney(t, "50", m.Reconciliation.TotalDeposited)
	assert.Equal(t, 2, m.Bills.Total)
	assertMoney(t, "20", m.Bills.TotalAmount)
	assert.Len(t, m.Refunds.Pending, 2)
	assertMoney(t, "15.5", m.Refunds.PendingAmount)
}

func TestAggregate_MissingReconciliationStatusIsPending(t *testing.T) {
	rs := &RecordSet{
		Reconciliations: []entity.ReconciliationEntry{
			{ID: "1"},
			{ID: "2", Status: "Accounted"},
			{ID: "3", Status: "Rejected"},
			{ID: "4", Status: "pending"},
		},
	}

	m := Aggregate(rs, testNow)

	assert.Equal(t, 2, Count(m.Reconciliation.ByStatus, entity.ReconStatusPending))
	assert.Equal(t, 1, Count(m.Reconciliation.ByStatus, entity.ReconStatusAccounted))
	assert.Equal(t, 1, Count(m.Reconciliation.ByStatus, entity.ReconStatusRejected))
	require.Len(t, m.Reconciliation.Pending, 2)
	assert.Equal(t, "1", m.Reconciliation.Pending[0].ID)
	assert.Equal(t, "4", m.Reconciliation.Pending[1].ID)
}

func TestAggregate_TimeWindowBoundaries(t *testing.T) {
	rs := &RecordSet{
		Reconciliations: []entity.ReconciliationEntry{
			{ID: "exact-week", CreatedAt: testNow.Add(-7 * 24 * time.Hour), TotalCollected: dollars("10")},
			{ID: "past-week", CreatedAt: testNow.Add(-7*24*time.Hour - time.Second), TotalCollected: dollars("20")},
			{ID: "exact-month", CreatedAt: testNow.Add(-30 * 24 * time.Hour), TotalCollected: dollars("40")},
			{ID: "past-month", CreatedAt: testNow.Add(-30*24*time.Hour - time.Second), TotalCollected: dollars("80")},
			{ID: "no-timestamp"},
		},
	}

	m := Aggregate(rs, testNow)

	assert.Equal(t, 1, m.Reconciliation.ThisWeek)
	assertMoney(t, "10", m.Reconciliation.WeekCollected)
	assert.Equal(t, 3, m.Reconciliation.ThisMonth)
	assertMoney(t, "70", m.Reconciliation.MonthCollected)
	assertMoney(t, "150", m.Reconciliation.TotalCollected)
}

func TestAggregate_LocationRollup(t *testing.T) {
	rs := &RecordSet{
		Locations: []entity.Location{
			{ID: "dt", Name: "Downtown", Active: true},
			{ID: "old", Name: "Closed Site", Active: false},
			{ID: "es", Name: "Eastside", Active: true},
		},
		Reconciliations: []entity.ReconciliationEntry{
			{LocationID: "dt", Status: "Pending", TotalCollected: dollars("100")},
			{LocationID: "dt", Status: "Accounted", TotalCollected: dollars("200")},
			{LocationID: "dt", TotalCollected: dollars("5")},
			{LocationID: "old", Status: "Pending", TotalCollected: dollars("1000")},
			{LocationID: "nowhere", Status: "Accounted", TotalCollected: dollars("3000")},
			{Status: "Rejected", TotalCollected: dollars("7")},
		},
	}

	m := Aggregate(rs, testNow)

	require.Len(t, m.Locations, 2)
	require.Len(t, m.Reconciliation.ByLocation, 2)

	dt := m.Reconciliation.ByLocation[0]
	assert.Equal(t, "Downtown", dt.Name)
	assert.Equal(t, 2, dt.Pending)
	assert.Equal(t, 1, dt.Accounted)
	assertMoney(t, "305", dt.Collected)

	es := m.Reconciliation.ByLocation[1]
	assert.Equal(t, "Eastside", es.Name)
	assert.Zero(t, es.Pending)
	assertMoney(t, "0", es.Collected)

	assert.Equal(t, 6, m.Reconciliation.Total)
	assertMoney(t, "4312", m.Reconciliation.TotalCollected)
}

func TestAggregate_Bills(t *testing.T) {
	yesterday := testNow.Add(-24 * time.Hour)
	tomorrow := testNow.Add(24 * time.Hour)

	t.Run("unpaid bill due yesterday is overdue", func(t *testing.T) {
		m := Aggregate(&RecordSet{Bills: []entity.PayableBill{
			{Vendor: "Acme", Amount: dollars("99"), Paid: false, DueDate: yesterday},
		}}, testNow)

		require.Len(t, m.Bills.Overdue, 1)
		assertMoney(t, "99", m.Bills.OverdueAmount)
		assert.Empty(t, m.Bills.DueSoon)
	})

	t.Run("unpaid bill due tomorrow is due soon, not overdue", func(t *testing.T) {
		m := Aggregate(&RecordSet{Bills: []entity.PayableBill{
			{Vendor: "Acme", Amount: dollars("99"), Paid: false, DueDate: tomorrow},
		}}, testNow)

		assert.Empty(t, m.Bills.Overdue)
		require.Len(t, m.Bills.DueSoon, 1)
	})

	t.Run("due soon window is inclusive of seven days", func(t *testing.T) {
		m := Aggregate(&RecordSet{Bills: []entity.PayableBill{
			{ID: "edge", DueDate: testNow.Add(7 * 24 * time.Hour)},
			{ID: "beyond", DueDate: testNow.Add(7*24*time.Hour + time.Second)},
			{ID: "now", DueDate: testNow},
		}}, testNow)

		require.Len(t, m.Bills.DueSoon, 2)
		assert.Equal(t, "edge", m.Bills.DueSoon[0].ID)
		assert.Equal(t, "now", m.Bills.DueSoon[1].ID)
	})

	t.Run("paid bills are never overdue", func(t *testing.T) {
		m := Aggregate(&RecordSet{Bills: []entity.PayableBill{
			{Vendor: "Acme", Amount: dollars("10"), Paid: true, Status: "Paid", DueDate: yesterday},
		}}, testNow)

		assert.Empty(t, m.Bills.Overdue)
		assert.Equal(t, 1, m.Bills.PaidCount)
		assertMoney(t, "10", m.Bills.PaidAmount)
	})

	t.Run("paid flag with pending status is still unpaid", func(t *testing.T) {
		m := Aggregate(&RecordSet{Bills: []entity.PayableBill{
			{Amount: dollars("10"), Paid: true, Status: "Pending", DueDate: yesterday},
		}}, testNow)

		assert.Equal(t, 1, m.Bills.UnpaidCount)
		assert.Len(t, m.Bills.Overdue, 1)
	})

	t.Run("date-only due dates follow the clinic calendar", func(t *testing.T) {
		la, err := time.LoadLocation("America/Los_Angeles")
		require.NoError(t, err)
		evening := time.Date(2026, 10, 15, 18, 0, 0, 0, la)
		bills := []entity.PayableBill{
			{ID: "yesterday", DueDate: entity.ParseTime("2026-10-14")},
			{ID: "today", DueDate: entity.ParseTime("2026-10-15")},
			{ID: "tomorrow", DueDate: entity.ParseTime("2026-10-16")},
			{ID: "week", DueDate: entity.ParseTime("2026-10-22")},
			{ID: "later", DueDate: entity.ParseTime("2026-10-23")},
		}

		m := Aggregate(&RecordSet{Bills: bills}, evening)

		require.Len(t, m.Bills.Overdue, 1)
		assert.Equal(t, "yesterday", m.Bills.Overdue[0].ID)
		require.Len(t, m.Bills.DueSoon, 3)
		assert.Equal(t, "today", m.Bills.DueSoon[0].ID)
		assert.Equal(t, "tomorrow", m.Bills.DueSoon[1].ID)
		assert.Equal(t, "week", m.Bills.DueSoon[2].ID)
	})

	t.Run("due today is not overdue until local midnight", func(t *testing.T) {
		la, err := time.LoadLocation("America/Los_Angeles")
		require.NoError(t, err)
		bills := []entity.PayableBill{{ID: "today", DueDate: entity.ParseTime("2026-10-15")}}

		for _, now := range []time.Time{
			time.Date(2026, 10, 15, 0, 0, 0, 0, la),
			time.Date(2026, 10, 15, 16, 59, 0, 0, la),
			time.Date(2026, 10, 15, 23, 59, 59, 0, la),
		} {
			m := Aggregate(&RecordSet{Bills: bills}, now)
			assert.Empty(t, m.Bills.Overdue, "flagged overdue at %s", now)
			assert.Len(t, m.Bills.DueSoon, 1)
		}

		m := Aggregate(&RecordSet{Bills: bills}, time.Date(2026, 10, 16, 0, 0, 1, 0, la))
		assert.Len(t, m.Bills.Overdue, 1)
	})

	t.Run("timestamped due dates compare as instants", func(t *testing.T) {
		la, err := time.LoadLocation("America/Los_Angeles")
		require.NoError(t, err)
		now := time.Date(2026, 10, 15, 18, 0, 0, 0, la)
		m := Aggregate(&RecordSet{Bills: []entity.PayableBill{
			{ID: "past", DueDate: now.Add(-time.Minute).UTC()},
		}}, now)

		require.Len(t, m.Bills.Overdue, 1)
	})

	t.Run("bills without due date are unpaid but not flagged", func(t *testing.T) {
		m := Aggregate(&RecordSet{Bills: []entity.PayableBill{{Amount: dollars("10")}}}, testNow)

		assert.Equal(t, 1, m.Bills.UnpaidCount)
		assert.Empty(t, m.Bills.Overdue)
		assert.Empty(t, m.Bills.DueSoon)
	})
}

func TestAggregate_TopVendors(t *testing.T) {
	t.Run("sums by vendor and ranks descending", func(t *testing.T) {
		m := Aggregate(&RecordSet{Bills: []entity.PayableBill{
			{Vendor: "A", Amount: dollars("100")},
			{Vendor: "B", Amount: dollars("300")},
			{Vendor: "A", Amount: dollars("50")},
		}}, testNow)

		require.Len(t, m.Bills.TopVendors, 2)
		assert.Equal(t, "B", m.Bills.TopVendors[0].Vendor)
		assertMoney(t, "300", m.Bills.TopVendors[0].Amount)
		assert.Equal(t, "A", m.Bills.TopVendors[1].Vendor)
		assertMoney(t, "150", m.Bills.TopVendors[1].Amount)
		assert.Equal(t, 2, m.Bills.TopVendors[1].Bills)
	})

	t.Run("missing vendor is grouped as Unknown", func(t *testing.T) {
		m := Aggregate(&RecordSet{Bills: []entity.PayableBill{
			{Amount: dollars("5")},
			{Vendor: "  ", Amount: dollars("6")},
		}}, testNow)

		require.Len(t, m.Bills.TopVendors, 1)
		assert.Equal(t, entity.UnknownVendor, m.Bills.TopVendors[0].Vendor)
		assertMoney(t, "11", m.Bills.TopVendors[0].Amount)
	})

	t.Run("ties keep encounter order and list is capped", func(t *testing.T) {
		var bills []entity.PayableBill
		for _, v := range []string{"V1", "V2", "V3", "V4", "V5", "V6", "V7"} {
			bills = append(bills, entity.PayableBill{Vendor: v, Amount: dollars("10")})
		}
		m := Aggregate(&RecordSet{Bills: bills}, testNow)

		require.Len(t, m.Bills.TopVendors, TopVendorLimit)
		for i, v := range []string{"V1", "V2", "V3", "V4", "V5"} {
			assert.Equal(t, v, m.Bills.TopVendors[i].Vendor)
		}
	})
}

func TestAggregate_Tickets(t *testing.T) {
	rs := &RecordSet{Tickets: []entity.SupportTicket{
		{TicketNumber: "1", Urgency: "Critical", Status: "For Review"},
		{TicketNumber: "2", Urgency: "High", Status: "Resolved"},
		{TicketNumber: "3", Urgency: "High", Status: "In Progress", AssignedTo: "Sam"},
		{TicketNumber: "4", Urgency: "Low", Status: "On-hold"},
		{TicketNumber: "5", Urgency: "Medium", Status: "Resolved"},
	}}

	m := Aggregate(rs, testNow)

	assert.Equal(t, 5, m.Tickets.Total)
	assert.Equal(t, 2, Count(m.Tickets.ByStatus, entity.TicketStatusResolved))
	assert.Len(t, m.Tickets.Open, 3)
	require.Len(t, m.Tickets.Urgent, 2)
	assert.Equal(t, "1", m.Tickets.Urgent[0].TicketNumber)
	assert.Equal(t, "3", m.Tickets.Urgent[1].TicketNumber)
	require.Len(t, m.Tickets.Unassigned, 2)
	assert.Equal(t, "4", m.Tickets.Unassigned[1].TicketNumber)
	assert.Equal(t, 1, Count(m.Tickets.OpenByUrgency, entity.UrgencyHigh))
}

func TestAggregate_Users(t *testing.T) {
	rs := &RecordSet{Users: []entity.UserAccount{
		{Name: "Ana", Role: entity.RoleStaff, LastLogin: testNow.Add(-time.Hour)},
		{Name: "Ben", Role: entity.RoleStaff},
		{Name: "Cy", Role: entity.RoleSuperAdmin, LastLogin: testNow.Add(-time.Minute)},
		{Name: "Di", Role: "owner", LastLogin: testNow.Add(-48 * time.Hour)},
	}}

	m := Aggregate(rs, testNow)

	assert.Equal(t, 4, m.Users.Total)
	assert.Equal(t, RoleCount{Role: entity.RoleStaff, Count: 2}, m.Users.ByRole[0])
	assert.Equal(t, RoleCount{Role: entity.RoleSuperAdmin, Count: 1}, m.Users.ByRole[3])
	require.Len(t, m.Users.RecentLogins, 3)
	assert.Equal(t, "Cy", m.Users.RecentLogins[0].Name)
	assert.Equal(t, "Di", m.Users.RecentLogins[2].Name)
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	rs := &RecordSet{
		Bills:  []entity.PayableBill{{Vendor: "A", Amount: dollars("1")}, {Vendor: "B", Amount: dollars("2")}},
		Failed: []string{KindOrders},
	}

	m := Aggregate(rs, testNow)
	m.Failed[0] = "changed"

	assert.Equal(t, "A", rs.Bills[0].Vendor)
	assert.Equal(t, KindOrders, rs.Failed[0])
}
