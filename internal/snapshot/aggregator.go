package snapshot

import (
	"slices"
	"strings"
	"time"

	"github.com/garyjia/clinic-assistant/internal/domain/entity"
)

const (
	day            = 24 * time.Hour
	weekWindow     = 7 * day
	monthWindow    = 30 * day
	dueSoonWindow  = 7 * day
	recentLoginCap = 5
)

// window partitions timestamps relative to the request instant. Boundaries
// are inclusive.
type window struct {
	now        time.Time
	weekStart  time.Time
	monthStart time.Time
}

func newWindow(now time.Time) window {
	return window{
		now:        now,
		weekStart:  now.Add(-weekWindow),
		monthStart: now.Add(-monthWindow),
	}
}

func (w window) inWeek(t time.Time) bool {
	return !t.IsZero() && !t.Before(w.weekStart)
}

func (w window) inMonth(t time.Time) bool {
	return !t.IsZero() && !t.Before(w.monthStart)
}

// dueBounds returns when a due date starts and when it lapses. Date-only
// values (midnight UTC, as DATE columns decode) name a calendar day in the
// clinic's zone and lapse at the following local midnight.
func (w window) dueBounds(t time.Time) (start, lapse time.Time) {
	if !isCalendarDate(t) {
		return t, t
	}
	y, m, d := t.Date()
	loc := w.now.Location()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

func isCalendarDate(t time.Time) bool {
	if t.Location() != time.UTC {
		return false
	}
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

// Aggregate computes Metrics from rs as of now. It never fails; a nil or
// partially empty RecordSet yields zero-valued sections.
func Aggregate(rs *RecordSet, now time.Time) *Metrics {
	if rs == nil {
		rs = &RecordSet{}
	}
	w := newWindow(now)

	return &Metrics{
		GeneratedAt:    now,
		Users:          aggregateUsers(rs.Users),
		Locations:      activeLocations(rs.Locations),
		Reconciliation: aggregateReconciliation(rs.Reconciliations, activeLocations(rs.Locations), w),
		Tickets:        aggregateTickets(rs.Tickets, w),
		Inquiries:      aggregateInquiries(rs.Inquiries, w),
		Bills:          aggregateBills(rs.Bills, w),
		Orders:         aggregateOrders(rs.Orders, w),
		Refunds:        aggregateRefunds(rs.Refunds, w),
		Failed:         slices.Clone(rs.Failed),
	}
}

func activeLocations(locations []entity.Location) []entity.Location {
	active := make([]entity.Location, 0, len(locations))
	for _, l := range locations {
		if l.Active {
			active = append(active, l)
		}
	}
	return active
}

func aggregateUsers(users []entity.UserAccount) UserMetrics {
	m := UserMetrics{
		Total:        len(users),
		ByRole:       make([]RoleCount, 0, len(entity.Roles)),
		RecentLogins: []entity.UserAccount{},
	}
	for _, role := range entity.Roles {
		n := 0
		for _, u := range users {
			if u.Role == role {
				n++
			}
		}
		m.ByRole = append(m.ByRole, RoleCount{Role: role, Count: n})
	}

	for _, u := range users {
		if !u.LastLogin.IsZero() {
			m.RecentLogins = append(m.RecentLogins, u)
		}
	}
	slices.SortStableFunc(m.RecentLogins, func(a, b entity.UserAccount) int {
		return b.LastLogin.Compare(a.LastLogin)
	})
	if len(m.RecentLogins) > recentLoginCap {
		m.RecentLogins = m.RecentLogins[:recentLoginCap]
	}
	return m
}

func aggregateReconciliation(entries []entity.ReconciliationEntry, locations []entity.Location, w window) ReconciliationMetrics {
	m := ReconciliationMetrics{
		Total:      len(entries),
		ByStatus:   newBuckets(entity.ReconStatuses),
		Pending:    []entity.ReconciliationEntry{},
		ByLocation: make([]LocationRollup, 0, len(locations)),
	}

	rollups := make(map[string]*LocationRollup, len(locations))
	for _, l := range locations {
		m.ByLocation = append(m.ByLocation, LocationRollup{LocationID: l.ID, Name: l.Name})
	}
	for i := range m.ByLocation {
		rollups[m.ByLocation[i].LocationID] = &m.ByLocation[i]
	}

	for _, e := range entries {
		status := e.EffectiveStatus()
		tally(m.ByStatus, status)

		m.TotalCollected = m.TotalCollected.Add(e.TotalCollected)
		m.TotalDeposited = m.TotalDeposited.Add(e.TotalDeposited)
		if w.inWeek(e.CreatedAt) {
			m.ThisWeek++
			m.WeekCollected = m.WeekCollected.Add(e.TotalCollected)
		}
		if w.inMonth(e.CreatedAt) {
			m.ThisMonth++
			m.MonthCollected = m.MonthCollected.Add(e.TotalCollected)
		}
		if strings.EqualFold(status, entity.ReconStatusPending) {
			m.Pending = append(m.Pending, e)
		}

		r, ok := rollups[e.LocationID]
		if !ok || e.LocationID == "" {
			continue
		}
		switch {
		case strings.EqualFold(status, entity.ReconStatusPending):
			r.Pending++
		case strings.EqualFold(status, entity.ReconStatusAccounted):
			r.Accounted++
		}
		r.Collected = r.Collected.Add(e.TotalCollected)
	}
	return m
}

func aggregateTickets(tickets []entity.SupportTicket, w window) TicketMetrics {
	m := TicketMetrics{
		Total:         len(tickets),
		ByStatus:      newBuckets(entity.TicketStatuses),
		OpenByUrgency: newBuckets(entity.TicketUrgencies),
		Open:          []entity.SupportTicket{},
		Urgent:        []entity.SupportTicket{},
		Unassigned:    []entity.SupportTicket{},
	}
	for _, t := range tickets {
		tally(m.ByStatus, t.Status)
		if w.inWeek(t.CreatedAt) {
			m.ThisWeek++
		}
		if !t.Open() {
			continue
		}
		m.Open = append(m.Open, t)
		tally(m.OpenByUrgency, t.Urgency)
		if isUrgent(t.Urgency) {
			m.Urgent = append(m.Urgent, t)
		}
		if t.Unassigned() {
			m.Unassigned = append(m.Unassigned, t)
		}
	}
	return m
}

func isUrgent(urgency string) bool {
	u := strings.TrimSpace(urgency)
	return strings.EqualFold(u, entity.UrgencyCritical) || strings.EqualFold(u, entity.UrgencyHigh)
}

func aggregateInquiries(inquiries []entity.BillingInquiry, w window) InquiryMetrics {
	m := InquiryMetrics{
		Total:    len(inquiries),
		ByStatus: newBuckets(entity.InquiryStatuses),
		Pending:  []entity.BillingInquiry{},
	}
	for _, q := range inquiries {
		tally(m.ByStatus, q.Status)
		m.TotalAmount = m.TotalAmount.Add(q.AmountInQuestion)
		if w.inWeek(q.CreatedAt) {
			m.ThisWeek++
		}
		if w.inMonth(q.CreatedAt) {
			m.ThisMonth++
		}
		if strings.EqualFold(strings.TrimSpace(q.Status), entity.InquiryStatusPending) {
			m.Pending = append(m.Pending, q)
			m.PendingAmount = m.PendingAmount.Add(q.AmountInQuestion)
		}
	}
	return m
}

func aggregateBills(bills []entity.PayableBill, w window) BillMetrics {
	m := BillMetrics{
		Total:      len(bills),
		Overdue:    []entity.PayableBill{},
		DueSoon:    []entity.PayableBill{},
		TopVendors: []VendorTotal{},
	}
	dueSoonEnd := w.now.Add(dueSoonWindow)

	vendors := make(map[string]int)
	for _, b := range bills {
		m.TotalAmount = m.TotalAmount.Add(b.Amount)
		if w.inMonth(b.CreatedAt) {
			m.ThisMonth++
		}

		name := b.VendorName()
		idx, ok := vendors[name]
		if !ok {
			idx = len(m.TopVendors)
			vendors[name] = idx
			m.TopVendors = append(m.TopVendors, VendorTotal{Vendor: name})
		}
		m.TopVendors[idx].Amount = m.TopVendors[idx].Amount.Add(b.Amount)
		m.TopVendors[idx].Bills++

		if !b.Unpaid() {
			m.PaidCount++
			m.PaidAmount = m.PaidAmount.Add(b.Amount)
			continue
		}
		m.UnpaidCount++
		m.UnpaidAmount = m.UnpaidAmount.Add(b.Amount)

		if !b.HasDueDate() {
			continue
		}
		start, lapse := w.dueBounds(b.DueDate)
		switch {
		case lapse.Before(w.now):
			m.Overdue = append(m.Overdue, b)
			m.OverdueAmount = m.OverdueAmount.Add(b.Amount)
		case !start.After(dueSoonEnd):
			m.DueSoon = append(m.DueSoon, b)
			m.DueSoonAmount = m.DueSoonAmount.Add(b.Amount)
		}
	}

	m.TopVendors = RankVendors(m.TopVendors, TopVendorLimit)
	return m
}

// RankVendors sorts totals by amount, highest first, keeping encounter order
// for ties, and returns at most n entries.
func RankVendors(totals []VendorTotal, n int) []VendorTotal {
	ranked := slices.Clone(totals)
	slices.SortStableFunc(ranked, func(a, b VendorTotal) int {
		return b.Amount.Cmp(a.Amount)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func aggregateOrders(orders []entity.PurchaseOrder, w window) OrderMetrics {
	m := OrderMetrics{
		Total:  len(orders),
		Recent: []entity.PurchaseOrder{},
	}
	for _, o := range orders {
		m.TotalAmount = m.TotalAmount.Add(o.Amount)
		if w.inWeek(o.CreatedAt) {
			m.ThisWeek++
		}
		if w.inMonth(o.CreatedAt) {
			m.ThisMonth++
			m.MonthAmount = m.MonthAmount.Add(o.Amount)
		}
		m.Recent = append(m.Recent, o)
	}
	return m
}

func aggregateRefunds(refunds []entity.RefundRequest, w window) RefundMetrics {
	m := RefundMetrics{
		Total:    len(refunds),
		ByStatus: newBuckets(entity.RefundStatuses),
		Pending:  []entity.RefundRequest{},
	}
	for _, r := range refunds {
		tally(m.ByStatus, r.Status)
		m.TotalRequested = m.TotalRequested.Add(r.AmountRequested)
		if w.inWeek(r.CreatedAt) {
			m.ThisWeek++
		}
		if w.inMonth(r.CreatedAt) {
			m.ThisMonth++
		}
		if strings.EqualFold(strings.TrimSpace(r.Status), entity.RefundStatusPending) {
			m.Pending = append(m.Pending, r)
			m.PendingAmount = m.PendingAmount.Add(r.AmountRequested)
		}
	}
	return m
}

func newBuckets(statuses []string) []StatusCount {
	buckets := make([]StatusCount, len(statuses))
	for i, s := range statuses {
		buckets[i] = StatusCount{Status: s}
	}
	return buckets
}

// tally increments the bucket matching status, ignoring case and surrounding
// space. Statuses outside the bucket set are counted only in totals.
func tally(buckets []StatusCount, status string) {
	status = strings.TrimSpace(status)
	for i := range buckets {
		if strings.EqualFold(buckets[i].Status, status) {
			buckets[i].Count++
			return
		}
	}
}
