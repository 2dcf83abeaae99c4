package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationEntry is one day's cash reconciliation for a location.
type ReconciliationEntry struct {
	ID             string          `json:"id"`
	Date           time.Time       `json:"date"`
	LocationID     string          `json:"location_id"`
	LocationName   string          `json:"location_name"`
	Status         string          `json:"status"`
	TotalCollected decimal.Decimal `json:"total_collected"`
	TotalDeposited decimal.Decimal `json:"total_deposited"`
	CreatedBy      string          `json:"created_by"`
	CreatorName    string          `json:"creator_name"`
	CreatedAt      time.Time       `json:"created_at"`
}

// EffectiveStatus returns the status, treating a missing value as Pending.
func (e ReconciliationEntry) EffectiveStatus() string {
	if s := strings.TrimSpace(e.Status); s != "" {
		return s
	}
	return ReconStatusPending
}

// BillingInquiry is a patient billing question under investigation.
type BillingInquiry struct {
	ID               string          `json:"id"`
	PatientName      string          `json:"patient_name"`
	InquiryType      string          `json:"inquiry_type"`
	AmountInQuestion decimal.Decimal `json:"amount_in_question"`
	Status           string          `json:"status"`
	LocationID       string          `json:"location_id"`
	LocationName     string          `json:"location_name"`
	CreatorName      string          `json:"creator_name"`
	CreatedAt        time.Time       `json:"created_at"`
}

// PayableBill is a vendor bill awaiting or after payment.
type PayableBill struct {
	ID           string          `json:"id"`
	Vendor       string          `json:"vendor"`
	Amount       decimal.Decimal `json:"amount"`
	DueDate      time.Time       `json:"due_date"`
	Paid         bool            `json:"paid"`
	Status       string          `json:"status"`
	LocationID   string          `json:"location_id"`
	LocationName string          `json:"location_name"`
	CreatorName  string          `json:"creator_name"`
	CreatedAt    time.Time       `json:"created_at"`
}

// VendorName returns the vendor, or UnknownVendor when absent.
func (b PayableBill) VendorName() string {
	if v := strings.TrimSpace(b.Vendor); v != "" {
		return v
	}
	return UnknownVendor
}

// Unpaid reports whether the bill still needs payment: the paid flag is not
// set or the bill status is still Pending.
func (b PayableBill) Unpaid() bool {
	return !b.Paid || strings.EqualFold(strings.TrimSpace(b.Status), BillStatusPending)
}

// HasDueDate reports whether a due date was recorded.
func (b PayableBill) HasDueDate() bool {
	return !b.DueDate.IsZero()
}

// PurchaseOrder is an order request entered against a vendor invoice.
type PurchaseOrder struct {
	ID            string          `json:"id"`
	Vendor        string          `json:"vendor"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	EnteredBy     string          `json:"entered_by"`
	Date          time.Time       `json:"date"`
	LocationID    string          `json:"location_id"`
	LocationName  string          `json:"location_name"`
	CreatorName   string          `json:"creator_name"`
	CreatedAt     time.Time       `json:"created_at"`
}

// VendorName returns the vendor, or UnknownVendor when absent.
func (o PurchaseOrder) VendorName() string {
	if v := strings.TrimSpace(o.Vendor); v != "" {
		return v
	}
	return UnknownVendor
}

// RefundRequest is a patient refund moving through approval.
type RefundRequest struct {
	ID              string          `json:"id"`
	PatientName     string          `json:"patient_name"`
	Type            string          `json:"type"`
	AmountRequested decimal.Decimal `json:"amount_requested"`
	Status          string          `json:"status"`
	LocationID      string          `json:"location_id"`
	LocationName    string          `json:"location_name"`
	CreatorName     string          `json:"creator_name"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SupportTicket is an IT request.
type SupportTicket struct {
	ID           string    `json:"id"`
	TicketNumber string    `json:"ticket_number"`
	Urgency      string    `json:"urgency"`
	Status       string    `json:"status"`
	AssignedTo   string    `json:"assigned_to"`
	Description  string    `json:"description"`
	LocationID   string    `json:"location_id"`
	LocationName string    `json:"location_name"`
	CreatorName  string    `json:"creator_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Open reports whether the ticket has not been resolved.
func (t SupportTicket) Open() bool {
	return !strings.EqualFold(strings.TrimSpace(t.Status), TicketStatusResolved)
}

// Unassigned reports whether nobody has picked the ticket up.
func (t SupportTicket) Unassigned() bool {
	return strings.TrimSpace(t.AssignedTo) == ""
}

// Location is a clinic site.
type Location struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// UserAccount is a portal user.
type UserAccount struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	LastLogin time.Time `json:"last_login"`
}

// DisplayName returns the best available name for the user.
func (u UserAccount) DisplayName() string {
	switch {
	case strings.TrimSpace(u.Name) != "":
		return u.Name
	case u.Username != "":
		return u.Username
	}
	return u.Email
}
