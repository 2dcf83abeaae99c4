package snapshot

import (
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/clinic-assistant/internal/domain/entity"
)

// Preview sizes per section.
const (
	PendingReconciliationPreview = 10
	OpenTicketPreview            = 15
	PendingInquiryPreview        = 8
	PendingRefundPreview         = 8
	OverdueBillPreview           = 8
	DueSoonBillPreview           = 5
	RecentOrderPreview           = 5
	RecentLoginPreview           = 5
)

const (
	headerLayout = "Monday, January 2, 2006 at 3:04 PM MST"
	dateLayout   = "Jan 2, 2006"
	stampLayout  = "Jan 2, 2006 3:04 PM"
)

// block is one piece of a section. It is written only when when is nil or
// returns true.
type block struct {
	when  func(m *Metrics) bool
	write func(w *textWriter, m *Metrics)
}

// section is a titled group of blocks. Sections with a nil when always render.
type section struct {
	title  string
	when   func(m *Metrics) bool
	blocks []block
}

type textWriter struct {
	b   strings.Builder
	loc *time.Location
}

func (w *textWriter) line(format string, args ...any) {
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *textWriter) date(t time.Time) string {
	if t.IsZero() {
		return "no date"
	}
	return t.In(w.loc).Format(dateLayout)
}

// day formats calendar dates, which carry no meaningful zone.
func (w *textWriter) day(t time.Time) string {
	if t.IsZero() {
		return "no date"
	}
	return t.Format(dateLayout)
}

func (w *textWriter) stamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.In(w.loc).Format(stampLayout)
}

// Render produces the snapshot text for m. Output depends only on m.
func Render(m *Metrics) string {
	return renderSections(m, "CLINIC OPERATIONS SNAPSHOT", snapshotSections)
}

func renderSections(m *Metrics, title string, sections []section) string {
	if m == nil {
		m = Aggregate(nil, time.Time{})
	}
	loc := m.GeneratedAt.Location()
	w := &textWriter{loc: loc}

	w.line("=== %s ===", title)
	w.line("Generated: %s", m.GeneratedAt.In(loc).Format(headerLayout))

	for _, s := range sections {
		if s.when != nil && !s.when(m) {
			continue
		}
		w.line("")
		w.line("%s", s.title)
		for _, b := range s.blocks {
			if b.when != nil && !b.when(m) {
				continue
			}
			b.write(w, m)
		}
	}
	return w.b.String()
}

// preview builds a block listing the first limit items under a header. The
// block is skipped entirely when items is empty.
func preview[T any](title string, limit int, items func(m *Metrics) []T, format func(w *textWriter, item T) string) block {
	return block{
		when: func(m *Metrics) bool { return len(items(m)) > 0 },
		write: func(w *textWriter, m *Metrics) {
			all := items(m)
			shown := all
			if len(shown) > limit {
				shown = shown[:limit]
			}
			w.line("%s (showing %d of %d):", title, len(shown), len(all))
			for _, item := range shown {
				w.line("- %s", format(w, item))
			}
		},
	}
}

func always(write func(w *textWriter, m *Metrics)) block {
	return block{write: write}
}

func statusLine(buckets []StatusCount) string {
	parts := make([]string, len(buckets))
	for i, b := range buckets {
		parts[i] = fmt.Sprintf("%s %d", b.Status, b.Count)
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return strings.TrimSpace(s)
}

func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

var snapshotSections = []section{
	{
		title: "USERS",
		blocks: []block{
			always(func(w *textWriter, m *Metrics) {
				w.line("Total active users: %d", m.Users.Total)
				parts := make([]string, len(m.Users.ByRole))
				for i, rc := range m.Users.ByRole {
					parts[i] = fmt.Sprintf("%s %d", rc.Role.Label(), rc.Count)
				}
				w.line("By role: %s", strings.Join(parts, ", "))
			}),
			preview("Recent sign-ins", RecentLoginPreview,
				func(m *Metrics) []entity.UserAccount { return m.Users.RecentLogins },
				func(w *textWriter, u entity.UserAccount) string {
					return fmt.Sprintf("%s (%s), last login %s", u.DisplayName(), u.Role.Label(), w.stamp(u.LastLogin))
				}),
		},
	},
	{
		title: "LOCATIONS",
		blocks: []block{always(func(w *textWriter, m *Metrics) {
			if len(m.Locations) == 0 {
				w.line("Active locations (0): none")
				return
			}
			names := make([]string, len(m.Locations))
			for i, l := range m.Locations {
				names[i] = l.Name
			}
			w.line("Active locations (%d): %s", len(names), strings.Join(names, ", "))
		})},
	},
	{
		title: "DAILY RECONCILIATION",
		blocks: []block{
			always(func(w *textWriter, m *Metrics) {
				r := m.Reconciliation
				w.line("Total entries: %d (this week: %d, this month: %d)", r.Total, r.ThisWeek, r.ThisMonth)
				w.line("Status: %s", statusLine(r.ByStatus))
				w.line("Total collected: %s | Total deposited: %s | Variance: %s",
					FormatCurrency(r.TotalCollected), FormatCurrency(r.TotalDeposited), FormatCurrency(r.Variance()))
				w.line("Collected this week: %s | Collected this month: %s",
					FormatCurrency(r.WeekCollected), FormatCurrency(r.MonthCollected))
			}),
			{
				when: func(m *Metrics) bool { return len(m.Reconciliation.ByLocation) > 0 },
				write: func(w *textWriter, m *Metrics) {
					w.line("By location:")
					for _, l := range m.Reconciliation.ByLocation {
						w.line("- %s: %d pending, %d accounted, %s collected", l.Name, l.Pending, l.Accounted, FormatCurrency(l.Collected))
					}
				},
			},
			preview("Pending entries", PendingReconciliationPreview,
				func(m *Metrics) []entity.ReconciliationEntry { return m.Reconciliation.Pending },
				func(w *textWriter, e entity.ReconciliationEntry) string {
					return fmt.Sprintf("%s | %s | collected %s | deposited %s | by %s",
						w.day(e.Date), orDash(e.LocationName), FormatCurrency(e.TotalCollected),
						FormatCurrency(e.TotalDeposited), orDash(e.CreatorName))
				}),
		},
	},
	{
		title: "IT TICKETS",
		blocks: []block{
			always(func(w *textWriter, m *Metrics) {
				t := m.Tickets
				w.line("Total tickets: %d (this week: %d)", t.Total, t.ThisWeek)
				w.line("Status: %s", statusLine(t.ByStatus))
				w.line("Open by urgency: %s", statusLine(t.OpenByUrgency))
				w.line("Critical/high open tickets: %d", len(t.Urgent))
				w.line("Unassigned open tickets: %d", len(t.Unassigned))
			}),
			preview("Open tickets", OpenTicketPreview,
				func(m *Metrics) []entity.SupportTicket { return m.Tickets.Open },
				func(w *textWriter, t entity.SupportTicket) string {
					assignee := "unassigned"
					if !t.Unassigned() {
						assignee = "assigned to " + strings.TrimSpace(t.AssignedTo)
					}
					return fmt.Sprintf("#%s [%s] %s | %s | %s | %s",
						orDash(t.TicketNumber), orDash(t.Urgency), orDash(t.Status),
						orDash(t.LocationName), assignee, clip(orDash(t.Description), 80))
				}),
		},
	},
	{
		title: "BILLING INQUIRIES",
		blocks: []block{
			always(func(w *textWriter, m *Metrics) {
				q := m.Inquiries
				w.line("Total inquiries: %d (this week: %d, this month: %d)", q.Total, q.ThisWeek, q.ThisMonth)
				w.line("Status: %s", statusLine(q.ByStatus))
				w.line("Total amount in question: %s | Pending amount: %s",
					FormatCurrency(q.TotalAmount), FormatCurrency(q.PendingAmount))
			}),
			preview("Pending inquiries", PendingInquiryPreview,
				func(m *Metrics) []entity.BillingInquiry { return m.Inquiries.Pending },
				func(w *textWriter, q entity.BillingInquiry) string {
					return fmt.Sprintf("%s | %s | %s | %s | opened %s",
						orDash(q.PatientName), orDash(q.InquiryType), FormatCurrency(q.AmountInQuestion),
						orDash(q.LocationName), w.date(q.CreatedAt))
				}),
		},
	},
	{
		title: "BILLS PAYABLE",
		blocks: []block{
			always(func(w *textWriter, m *Metrics) {
				b := m.Bills
				w.line("Total bills: %d (added this month: %d) | Total billed: %s", b.Total, b.ThisMonth, FormatCurrency(b.TotalAmount))
				w.line("Unpaid: %d (%s) | Paid: %d (%s)",
					b.UnpaidCount, FormatCurrency(b.UnpaidAmount), b.PaidCount, FormatCurrency(b.PaidAmount))
				w.line("Overdue: %d (%s) | Due in the next 7 days: %d (%s)",
					len(b.Overdue), FormatCurrency(b.OverdueAmount), len(b.DueSoon), FormatCurrency(b.DueSoonAmount))
			}),
			preview("Overdue bills", OverdueBillPreview,
				func(m *Metrics) []entity.PayableBill { return m.Bills.Overdue },
				billLine),
			preview("Bills due soon", DueSoonBillPreview,
				func(m *Metrics) []entity.PayableBill { return m.Bills.DueSoon },
				billLine),
			{
				when: func(m *Metrics) bool { return len(m.Bills.TopVendors) > 0 },
				write: func(w *textWriter, m *Metrics) {
					w.line("Top vendors by billed amount:")
					for i, v := range m.Bills.TopVendors {
						w.line("%d. %s: %s (%d bills)", i+1, v.Vendor, FormatCurrency(v.Amount), v.Bills)
					}
				},
			},
		},
	},
	{
		title: "ORDER REQUESTS",
		blocks: []block{
			always(func(w *textWriter, m *Metrics) {
				o := m.Orders
				w.line("Total orders: %d (this week: %d, this month: %d)", o.Total, o.ThisWeek, o.ThisMonth)
				w.line("Total ordered: %s | Ordered this month: %s", FormatCurrency(o.TotalAmount), FormatCurrency(o.MonthAmount))
			}),
			preview("Recent orders", RecentOrderPreview,
				func(m *Metrics) []entity.PurchaseOrder { return m.Orders.Recent },
				func(w *textWriter, o entity.PurchaseOrder) string {
					return fmt.Sprintf("%s | %s | invoice %s | %s | entered by %s",
						w.day(o.Date), o.VendorName(), orDash(o.InvoiceNumber), FormatCurrency(o.Amount), orDash(o.EnteredBy))
				}),
		},
	},
	{
		title: "REFUND REQUESTS",
		blocks: []block{
			always(func(w *textWriter, m *Metrics) {
				r := m.Refunds
				w.line("Total requests: %d (this week: %d, this month: %d)", r.Total, r.ThisWeek, r.ThisMonth)
				w.line("Status: %s", statusLine(r.ByStatus))
				w.line("Total requested: %s | Pending amount: %s", FormatCurrency(r.TotalRequested), FormatCurrency(r.PendingAmount))
			}),
			preview("Pending refunds", PendingRefundPreview,
				func(m *Metrics) []entity.RefundRequest { return m.Refunds.Pending },
				func(w *textWriter, r entity.RefundRequest) string {
					return fmt.Sprintf("%s | %s | %s | %s | requested %s",
						orDash(r.PatientName), orDash(r.Type), FormatCurrency(r.AmountRequested),
						orDash(r.LocationName), w.date(r.CreatedAt))
				}),
		},
	},
	{
		title: "DATA NOTES",
		when:  func(m *Metrics) bool { return len(m.Failed) > 0 },
		blocks: []block{always(func(w *textWriter, m *Metrics) {
			w.line("The following data could not be loaded and is shown as empty: %s.", strings.Join(m.Failed, ", "))
			w.line("Tell the user these figures may be incomplete if they ask about them.")
		})},
	},
}

func billLine(w *textWriter, b entity.PayableBill) string {
	return fmt.Sprintf("%s | %s | due %s | %s", b.VendorName(), FormatCurrency(b.Amount), w.day(b.DueDate), orDash(b.LocationName))
}
