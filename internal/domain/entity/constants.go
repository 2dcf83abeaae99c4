package entity

// Status constants for ReconciliationEntry
const (
	ReconStatusPending   = "Pending"
	ReconStatusAccounted = "Accounted"
	ReconStatusRejected  = "Rejected"
)

// Status constants for BillingInquiry
const (
	InquiryStatusPending    = "Pending"
	InquiryStatusInProgress = "In Progress"
	InquiryStatusResolved   = "Resolved"
)

// Status constants for PayableBill
const (
	BillStatusPending = "Pending"
	BillStatusPaid    = "Paid"
)

// Status constants for RefundRequest
const (
	RefundStatusPending   = "Pending"
	RefundStatusApproved  = "Approved"
	RefundStatusCompleted = "Completed"
	RefundStatusDenied    = "Denied"
)

// Status constants for SupportTicket
const (
	TicketStatusForReview  = "For Review"
	TicketStatusInProgress = "In Progress"
	TicketStatusOnHold     = "On-hold"
	TicketStatusResolved   = "Resolved"
)

// Urgency constants for SupportTicket
const (
	UrgencyLow      = "Low"
	UrgencyMedium   = "Medium"
	UrgencyHigh     = "High"
	UrgencyCritical = "Critical"
)

// UnknownVendor is reported for bills and orders without a vendor name.
const UnknownVendor = "Unknown"

// Status buckets in display order.
var (
	ReconStatuses   = []string{ReconStatusPending, ReconStatusAccounted, ReconStatusRejected}
	InquiryStatuses = []string{InquiryStatusPending, InquiryStatusInProgress, InquiryStatusResolved}
	RefundStatuses  = []string{RefundStatusPending, RefundStatusApproved, RefundStatusCompleted, RefundStatusDenied}
	TicketStatuses  = []string{TicketStatusForReview, TicketStatusInProgress, TicketStatusOnHold, TicketStatusResolved}
	TicketUrgencies = []string{UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow}
)
