package snapshot

import (
	"fmt"

	"github.com/garyjia/clinic-assistant/internal/domain/entity"
)

// DigestItemPreview caps the items listed under each digest heading.
const DigestItemPreview = 5

var digestSections = []section{
	{
		title: "URGENT",
		when:  hasUrgentItems,
		blocks: []block{
			{
				when: func(m *Metrics) bool { return len(m.Bills.Overdue) > 0 },
				write: func(w *textWriter, m *Metrics) {
					w.line("Overdue bills: %d (%s)", len(m.Bills.Overdue), FormatCurrency(m.Bills.OverdueAmount))
				},
			},
			{
				when: func(m *Metrics) bool { return len(m.Tickets.Urgent) > 0 },
				write: func(w *textWriter, m *Metrics) {
					w.line("Critical/high open tickets: %d", len(m.Tickets.Urgent))
				},
			},
			{
				when: func(m *Metrics) bool { return len(m.Tickets.Unassigned) > 0 },
				write: func(w *textWriter, m *Metrics) {
					w.line("Unassigned open tickets: %d", len(m.Tickets.Unassigned))
				},
			},
			preview("Overdue", DigestItemPreview,
				func(m *Metrics) []entity.PayableBill { return m.Bills.Overdue },
				billLine),
			preview("Urgent tickets", DigestItemPreview,
				func(m *Metrics) []entity.SupportTicket { return m.Tickets.Urgent },
				func(w *textWriter, t entity.SupportTicket) string {
					return fmt.Sprintf("#%s [%s] %s | %s", orDash(t.TicketNumber), orDash(t.Urgency), orDash(t.Status), clip(orDash(t.Description), 60))
				}),
		},
	},
	{
		title: "COMING UP",
		when:  func(m *Metrics) bool { return len(m.Bills.DueSoon) > 0 },
		blocks: []block{
			always(func(w *textWriter, m *Metrics) {
				w.line("Bills due in the next 7 days: %d (%s)", len(m.Bills.DueSoon), FormatCurrency(m.Bills.DueSoonAmount))
			}),
			preview("Due soon", DigestItemPreview,
				func(m *Metrics) []entity.PayableBill { return m.Bills.DueSoon },
				billLine),
		},
	},
	{
		title: "WAITING FOR REVIEW",
		blocks: []block{always(func(w *textWriter, m *Metrics) {
			w.line("Pending reconciliations: %d", len(m.Reconciliation.Pending))
			w.line("Pending billing inquiries: %d", len(m.Inquiries.Pending))
			w.line("Pending refunds: %d (%s)", len(m.Refunds.Pending), FormatCurrency(m.Refunds.PendingAmount))
		})},
	},
	{
		title: "ALL CLEAR",
		when:  func(m *Metrics) bool { return !hasUrgentItems(m) && len(m.Bills.DueSoon) == 0 },
		blocks: []block{always(func(w *textWriter, m *Metrics) {
			w.line("No overdue bills, no urgent or unassigned tickets, nothing due in the next 7 days.")
		})},
	},
	{
		title: "DATA NOTES",
		when:  func(m *Metrics) bool { return len(m.Failed) > 0 },
		blocks: []block{always(func(w *textWriter, m *Metrics) {
			w.line("Some data could not be loaded; counts may be incomplete.")
		})},
	},
}

func hasUrgentItems(m *Metrics) bool {
	return len(m.Bills.Overdue) > 0 || len(m.Tickets.Urgent) > 0 || len(m.Tickets.Unassigned) > 0
}

// RenderDigest produces the short urgent-items digest pushed to the team chat.
func RenderDigest(m *Metrics) string {
	return renderSections(m, "CLINIC DAILY DIGEST", digestSections)
}
