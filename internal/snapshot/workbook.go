package snapshot

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetSummary   = "Summary"
	SheetLocations = "Locations"
	SheetVendors   = "Top Vendors"
	SheetOverdue   = "Overdue Bills"
)

// WriteWorkbook writes m as an .xlsx workbook to w.
func WriteWorkbook(m *Metrics, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	for _, name := range []string{SheetLocations, SheetVendors, SheetOverdue} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("failed to create currency style: %w", err)
	}

	sheets := []struct {
		name      string
		moneyCols []string
		rows      [][]interface{}
	}{
		{SheetSummary, []string{"B"}, summaryRows(m)},
		{SheetLocations, []string{"D"}, locationRows(m)},
		{SheetVendors, []string{"B"}, vendorRows(m)},
		{SheetOverdue, []string{"B"}, overdueRows(m)},
	}

	for _, s := range sheets {
		if err := writeRows(f, s.name, s.rows); err != nil {
			return err
		}
		for _, col := range s.moneyCols {
			if err := f.SetColStyle(s.name, col, money); err != nil {
				return fmt.Errorf("failed to style %s!%s: %w", s.name, col, err)
			}
		}
		if err := f.SetColWidth(s.name, "A", "A", 36); err != nil {
			return fmt.Errorf("failed to size %s: %w", s.name, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func summaryRows(m *Metrics) [][]interface{} {
	return [][]interface{}{
		{"Metric", "Value"},
		{"Generated", m.GeneratedAt.Format(headerLayout)},
		{"Active users", m.Users.Total},
		{"Active locations", len(m.Locations)},
		{"Reconciliation entries", m.Reconciliation.Total},
		{"Pending reconciliations", len(m.Reconciliation.Pending)},
		{"Total collected", amount(m.Reconciliation.TotalCollected)},
		{"Total deposited", amount(m.Reconciliation.TotalDeposited)},
		{"Open IT tickets", len(m.Tickets.Open)},
		{"Critical/high open tickets", len(m.Tickets.Urgent)},
		{"Pending billing inquiries", len(m.Inquiries.Pending)},
		{"Billing amount in question", amount(m.Inquiries.TotalAmount)},
		{"Unpaid bills", m.Bills.UnpaidCount},
		{"Unpaid amount", amount(m.Bills.UnpaidAmount)},
		{"Overdue amount", amount(m.Bills.OverdueAmount)},
		{"Orders this month", m.Orders.ThisMonth},
		{"Ordered this month", amount(m.Orders.MonthAmount)},
		{"Pending refunds", len(m.Refunds.Pending)},
		{"Pending refund amount", amount(m.Refunds.PendingAmount)},
	}
}

func locationRows(m *Metrics) [][]interface{} {
	rows := [][]interface{}{{"Location", "Pending", "Accounted", "Collected"}}
	for _, l := range m.Reconciliation.ByLocation {
		rows = append(rows, []interface{}{l.Name, l.Pending, l.Accounted, amount(l.Collected)})
	}
	return rows
}

func vendorRows(m *Metrics) [][]interface{} {
	rows := [][]interface{}{{"Vendor", "Amount", "Bills"}}
	for _, v := range m.Bills.TopVendors {
		rows = append(rows, []interface{}{v.Vendor, amount(v.Amount), v.Bills})
	}
	return rows
}

func overdueRows(m *Metrics) [][]interface{} {
	rows := [][]interface{}{{"Vendor", "Amount", "Due date", "Location"}}
	for _, b := range m.Bills.Overdue {
		due := ""
		if b.HasDueDate() {
			due = b.DueDate.Format("2006-01-02")
		}
		rows = append(rows, []interface{}{b.VendorName(), amount(b.Amount), due, b.LocationName})
	}
	return rows
}
