package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
	"github.com/rhonimohanraj/anti-bot/internal/infrastructure/sessionstore"
)

func renderHealthReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		var marker string
		switch check.Status {
		case domain.HealthOK:
			marker = color.GreenString("✓")
		case domain.HealthWarn:
			marker = color.YellowString("!")
		default:
			marker = color.RedString("✗")
		}
		fmt.Fprintf(out, "[%s] %-14s %s\n", marker, check.Name, check.Details)
	}
}

func renderSessions(out io.Writer, entries []sessionstore.Entry, now time.Time) {
	for i, e := range entries {
		id := e.ID
		if i == 0 {
			id = color.CyanString(e.ID)
		}
		fmt.Fprintf(out, "%s  %8s  %s\n", id, humanize.IBytes(uint64(e.Size)), humanize.RelTime(e.ModTime, now, "ago", "from now"))
	}
}

func renderHistory(out io.Writer, records []domain.HistoryRecord) {
	for _, rec := range records {
		status := rec.Status
		switch {
		case status == "":
			status = "-"
		case strings.HasPrefix(status, "✅"):
			status = color.GreenString(status)
		}
		fmt.Fprintf(out, "%s | %s | %-12s | %s | %s\n",
			rec.Timestamp.Local().Format(TimestampFormat),
			rec.SessionID,
			rec.Kind,
			status,
			rec.Target)
	}
}

func renderAssessment(out io.Writer, command string, r domain.RiskAssessment) {
	verdict := color.GreenString("allowed")
	if r.Blocked() {
		verdict = color.RedString("blocked")
	} else if r.Action == domain.ActionWarn {
		verdict = color.YellowString("allowed with warning")
	}
	fmt.Fprintf(out, "%s: %s (%s)\n", command, verdict, r.Level)
	for _, reason := range r.Reasons {
		fmt.Fprintf(out, " - %s\n", reason)
	}
}
