// Package capability describes what the signed-in user may do in the portal.
// Each role has exactly one Descriptor; nothing is shared between them.
package capability

import (
	"fmt"
	"strings"

	"github.com/garyjia/clinic-assistant/internal/domain/entity"
)

// Procedure is a short numbered how-to for a common task.
type Procedure struct {
	Title string
	Steps []string
}

// Descriptor is the capability text for one role.
type Descriptor struct {
	Role       entity.Role
	Summary    string
	Permitted  []string
	Prohibited []string
	Procedures []Procedure
}

// UnauthenticatedNotice is the whole narrative for a caller that is not
// signed in.
const UnauthenticatedNotice = `USER ACCESS
The current user is not signed in.
Do not share any figures or record details from the operational data.
Only explain that they need to sign in to the clinic portal to use the assistant.`

// Narrate returns the capability narrative for id. Unauthenticated callers
// get UnauthenticatedNotice and nothing else. An authenticated caller with a
// missing or unknown role is described as staff.
func Narrate(id entity.Identity) string {
	if !id.Authenticated {
		return UnauthenticatedNotice
	}
	role, ok := entity.ParseRole(id.Role)
	if !ok {
		role = entity.RoleStaff
	}
	return For(role).String()
}

// For returns the descriptor for role. Unknown roles get the staff descriptor.
func For(role entity.Role) Descriptor {
	switch role {
	case entity.RoleSuperAdmin:
		return superAdmin()
	case entity.RoleIT:
		return itSupport()
	case entity.RoleFinanceAdmin:
		return financeAdmin()
	default:
		return staff()
	}
}

// String renders the descriptor as plain text.
func (d Descriptor) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "USER CAPABILITIES (%s)\n", d.Role.Label())
	b.WriteString(d.Summary)
	b.WriteString("\n")

	writeList(&b, "This user can:", d.Permitted)
	writeList(&b, "This user cannot:", d.Prohibited)

	if len(d.Procedures) > 0 {
		b.WriteString("\nHow-to guides for this user:\n")
		for _, p := range d.Procedures {
			fmt.Fprintf(&b, "%s:\n", p.Title)
			for i, step := range p.Steps {
				fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
			}
		}
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func staff() Descriptor {
	return Descriptor{
		Role:    entity.RoleStaff,
		Summary: "Front-office staff enter the day's operational records for their location.",
		Permitted: []string{
			"Submit daily reconciliation entries for their location",
			"Log billing inquiries, bills to pay, order requests and refund requests",
			"Open IT tickets and follow their status",
			"Edit their own entries until the weekly edit cutoff",
		},
		Prohibited: []string{
			"Change the status of reconciliations, refunds, bills or billing inquiries",
			"Assign or close IT tickets",
			"Change anyone's account or role; a Super Admin handles account changes",
		},
		Procedures: []Procedure{
			{
				Title: "Submit a daily reconciliation",
				Steps: []string{
					"Open Daily Reconciliation from the sidebar.",
					"Pick the date and confirm your location.",
					"Enter the total collected and the total deposited.",
					"Click Submit. The entry stays Pending until finance reviews it.",
				},
			},
			{
				Title: "Request a refund for a patient",
				Steps: []string{
					"Open Refund Requests and click New Request.",
					"Enter the patient name, refund type and amount requested.",
					"Click Submit. Finance will approve or deny it.",
				},
			},
			{
				Title: "Report an IT problem",
				Steps: []string{
					"Open IT Requests and click New Ticket.",
					"Choose an urgency and describe the problem.",
					"Click Submit and note the ticket number shown.",
				},
			},
		},
	}
}

func financeAdmin() Descriptor {
	return Descriptor{
		Role:    entity.RoleFinanceAdmin,
		Summary: "Finance admins review and settle the money side of every location.",
		Permitted: []string{
			"Everything staff can do, across all locations",
			"Mark reconciliations as Accounted or Rejected",
			"Approve, deny or complete refund requests",
			"Mark bills as paid and resolve billing inquiries",
			"Export module data for reporting",
		},
		Prohibited: []string{
			"Manage portal accounts or roles",
			"Assign or close IT tickets",
		},
		Procedures: []Procedure{
			{
				Title: "Mark a reconciliation as Accounted",
				Steps: []string{
					"Open Daily Reconciliation and filter by Pending.",
					"Open the entry and compare collected against deposited.",
					"Set the status to Accounted, or Rejected with a note if the figures do not match.",
				},
			},
			{
				Title: "Approve or deny a refund",
				Steps: []string{
					"Open Refund Requests and filter by Pending.",
					"Review the amount requested and the patient account.",
					"Set the status to Approved or Denied, then to Completed once the refund is issued.",
				},
			},
			{
				Title: "Record a bill payment",
				Steps: []string{
					"Open Bills Payment and find the bill by vendor.",
					"Set Paid to Yes and the bill status to Paid.",
					"Save the bill.",
				},
			},
		},
	}
}

func itSupport() Descriptor {
	return Descriptor{
		Role:    entity.RoleIT,
		Summary: "IT staff triage and resolve technical support tickets from every location.",
		Permitted: []string{
			"View every IT ticket across locations",
			"Assign tickets and change their urgency or status",
			"Close tickets as Resolved",
		},
		Prohibited: []string{
			"Change the status of any financial record",
			"Manage portal accounts or roles",
		},
		Procedures: []Procedure{
			{
				Title: "Assign an IT ticket",
				Steps: []string{
					"Open IT Requests and filter by For Review.",
					"Open the ticket and choose a technician in Assigned To.",
					"Set the status to In Progress and save.",
				},
			},
			{
				Title: "Put a ticket on hold",
				Steps: []string{
					"Open the ticket from IT Requests.",
					"Set the status to On-hold and add what it is waiting on.",
					"Save the ticket.",
				},
			},
			{
				Title: "Resolve an IT ticket",
				Steps: []string{
					"Open the ticket and confirm the fix with the requester.",
					"Set the status to Resolved and save.",
				},
			},
		},
	}
}

func superAdmin() Descriptor {
	return Descriptor{
		Role:    entity.RoleSuperAdmin,
		Summary: "Super admins have full access to every module, location and account.",
		Permitted: []string{
			"Every module action across all locations",
			"User Management: add, edit and deactivate accounts and set roles",
			"Manage the list of active locations",
		},
		Prohibited: []string{
			"Share another user's sign-in details in chat",
		},
		Procedures: []Procedure{
			{
				Title: "Add a new user",
				Steps: []string{
					"Open User Management from the admin menu.",
					"Click Add User and enter name, email and username.",
					"Choose the role and save. The user receives a sign-in invitation.",
				},
			},
			{
				Title: "Reset a user's password",
				Steps: []string{
					"Open User Management and find the account.",
					"Click Reset Password and confirm.",
					"Tell the user to check their email for the reset link.",
				},
			},
			{
				Title: "Deactivate an account",
				Steps: []string{
					"Open User Management and find the account.",
					"Turn off Active and save. The user can no longer sign in.",
				},
			},
			{
				Title: "Add a location",
				Steps: []string{
					"Open Locations from the admin menu.",
					"Click Add Location, enter the name and mark it active.",
				},
			},
		},
	}
}
