// Package prompt assembles the instruction payload sent to the chat model.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/clinic-assistant/internal/domain/entity"
)

// TruncationMarker ends a snapshot that was cut to fit the size ceiling.
const TruncationMarker = "[snapshot truncated]"

const nowLayout = "Monday, January 2, 2006 at 3:04 PM MST"

const formattingRules = `You are the AI assistant built into the clinic operations portal.
Current date and time: %s

RESPONSE FORMAT
- Reply in plain text only. Do not use markdown, tables, headings or bold text.
- Use short paragraphs, and a simple "-" list when listing several items.
- Write money as dollars with two decimals and thousands separators, for example $1,234.50.
- Keep a friendly, conversational tone and get to the point.`

const withheldSnapshot = `CURRENT PORTAL DATA
Withheld because the user is not signed in.`

// Input is everything the composer needs for one request.
type Input struct {
	Knowledge *Knowledge
	Narrative string
	Snapshot  string
	Now       time.Time
	Identity  entity.Identity
}

// Composer builds instruction payloads. It never calls the model.
type Composer struct {
	maxSnapshotChars int
}

// NewComposer creates a Composer that cuts snapshots longer than
// maxSnapshotChars bytes. Zero or less disables the ceiling.
func NewComposer(maxSnapshotChars int) *Composer {
	return &Composer{maxSnapshotChars: maxSnapshotChars}
}

// Compose returns the instruction payload: formatting rules, domain
// knowledge, capability narrative, data snapshot and closing instructions,
// in that order.
func (c *Composer) Compose(in Input) string {
	parts := []string{
		fmt.Sprintf(formattingRules, in.Now.Format(nowLayout)),
	}
	if in.Knowledge != nil {
		parts = append(parts, strings.TrimRight(in.Knowledge.String(), "\n"))
	}
	if n := strings.TrimSpace(in.Narrative); n != "" {
		parts = append(parts, n)
	}
	parts = append(parts, c.snapshotPart(in), strings.TrimRight(closingInstructions(in.Identity), "\n"))
	return strings.Join(parts, "\n\n") + "\n"
}

func (c *Composer) snapshotPart(in Input) string {
	if !in.Identity.Authenticated {
		return withheldSnapshot
	}
	snap := strings.TrimRight(in.Snapshot, "\n")
	if snap == "" {
		return "CURRENT PORTAL DATA\nNo data is available right now."
	}
	return "CURRENT PORTAL DATA\n" + Truncate(snap, c.maxSnapshotChars)
}

// Truncate cuts s to at most limit bytes on a line boundary and appends
// TruncationMarker. s is returned unchanged when it fits or limit <= 0.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := strings.LastIndexByte(s[:limit], '\n')
	if cut < 0 {
		return TruncationMarker
	}
	return s[:cut] + "\n" + TruncationMarker
}

func closingInstructions(id entity.Identity) string {
	var b strings.Builder
	b.WriteString("HOW TO ANSWER\n")

	if !id.Authenticated {
		b.WriteString("- The user is not signed in. Do not reveal any operational data, names or amounts.\n")
		b.WriteString("- Ask them to sign in to the portal, and answer only general questions about what the assistant does.\n")
		return b.String()
	}

	if name := strings.TrimSpace(id.Name); name != "" {
		fmt.Fprintf(&b, "- You are talking with %s. Address them by first name.\n", name)
	}
	if loc := strings.TrimSpace(id.Location); loc != "" {
		fmt.Fprintf(&b, "- Their current location is %s. Prefer figures for that location when the question is ambiguous.\n", loc)
	}
	if mod := strings.TrimSpace(id.Module); mod != "" {
		fmt.Fprintf(&b, "- They are looking at the %s module.\n", mod)
	}
	b.WriteString("- Only give how-to steps listed under USER CAPABILITIES. For anything else, tell them who can do it instead of explaining how.\n")
	b.WriteString("- Base every number on CURRENT PORTAL DATA. If the data does not cover the question, say so rather than guessing.\n")
	b.WriteString("- When it is relevant, point out overdue bills, critical or high IT tickets and items waiting for review.\n")
	return b.String()
}
