package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	e := r.Event

	// Header
	sb.WriteString(fmt.Sprintf("# Attendance: %s\n\n", escapeCell(e.Name)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Event
	sb.WriteString("## Event\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| ID | %s |\n", escapeCell(e.ID)))
	sb.WriteString(fmt.Sprintf("| Date | %s |\n", e.Date.UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("| Creator | %s |\n", escapeCell(e.Creator)))
	sb.WriteString(fmt.Sprintf("| Token Mint | %s |\n", escapeCell(e.TokenMintAddress)))
	sb.WriteString("\n")

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Claims | %d |\n", r.Summary.TotalClaims))
	sb.WriteString(fmt.Sprintf("| Max Attendees | %s |\n", optionalInt(r.Summary.MaxAttendees)))
	sb.WriteString(fmt.Sprintf("| Remaining | %s |\n", optionalInt(r.Summary.Remaining)))
	if r.Summary.TotalClaims > 0 {
		sb.WriteString(fmt.Sprintf("| First Claim | %s |\n", r.Summary.FirstClaimAt.UTC().Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("| Last Claim | %s |\n", r.Summary.LastClaimAt.UTC().Format(time.RFC3339)))
	}
	sb.WriteString("\n")

	// Daily
	if len(r.Daily) > 0 {
		sb.WriteString("## Claims per Day\n\n")
		sb.WriteString("| Day | Claims |\n")
		sb.WriteString("|-----|--------|\n")
		for _, d := range r.Daily {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", d.Day.Format("2006-01-02"), d.Claims))
		}
		sb.WriteString("\n")
	}

	// Attendees
	sb.WriteString("## Attendees\n\n")
	if len(r.Attendees) == 0 {
		sb.WriteString("No claims yet.\n")
		return sb.String()
	}
	sb.WriteString("| # | Wallet | Claimed At |\n")
	sb.WriteString("|---|--------|------------|\n")
	for _, a := range r.Attendees {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s |\n",
			a.Position, escapeCell(a.WalletAddress), a.ClaimedAt.UTC().Format(time.RFC3339)))
	}

	return sb.String()
}

func optionalInt(p *int) string {
	if p == nil {
		return "unlimited"
	}
	return fmt.Sprintf("%d", *p)
}

// escapeCell keeps user text from breaking the table layout.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
