// Package report renders signal lists as the plain text that users copy to
// the clipboard or publish to a channel.
package report

import (
	"fmt"
	"strings"

	"github.com/lrchart/chartai/internal/core"
)

// Separator is printed between the table header and its rows.
const Separator = "--------------------------------------------------"

// TableHeader is the column header of the future list table.
const TableHeader = "TIMEFRAME ➡ PAIR ➡ TIME ➡ DIRECTION"

// PairWidth is the column width pairs are padded to in the table.
const PairWidth = 18

// Labels are the time zone captions printed in report headers.
type Labels struct {
	UTC  string
	Zone string
}

// DefaultLabels returns the captions for Pakistan time.
func DefaultLabels() Labels {
	return Labels{UTC: "+5:00", Zone: "PAKISTAN TIME ZONE"}
}

// FutureList formats a generated future signal list. An empty list yields
// an empty report.
func FutureList(signals []core.FutureSignal, l Labels) string {
	if len(signals) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "LOSS RECOVERY ⦿ FUTURE BOT\nUTC; %s\n%s\nLIST ------\n", l.UTC, l.Zone)
	for i, s := range signals {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "1 MIN ➡ %s ➡ %s ➡ %s", s.Pair, s.Time, s.Direction)
	}
	return b.String()
}

// AIForecast formats a model forecast for pair. An empty list yields an
// empty report.
func AIForecast(pair string, signals []core.FutureSignal, l Labels) string {
	if len(signals) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "LR - CHART AI ⦿ AI Future Signals\nUTC: %s\nPAIR: %s\n--------------------\n", l.UTC, pair)
	for i, s := range signals {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "TIME: %s ➡ DIRECTION: %s \nREASON: %s", s.Time, s.Direction, s.Reason)
	}
	return b.String()
}

// NextSignal formats a single generated signal the way the generator page
// shows it.
func NextSignal(s core.FutureSignal, timeframe string) string {
	return fmt.Sprintf("%s @ %s\n%s\nFor %s expiry", s.Pair, s.Time, s.Direction, timeframe)
}

// ChartAnalysis formats a single AI chart verdict.
func ChartAnalysis(r core.AnalysisResult) string {
	return fmt.Sprintf("LR - CHART AI ⦿ AI Chart Analyzer\nSIGNAL: %s\nREASON: %s", r.Signal, r.Reason)
}

// tableRow is one row of the on-screen list, with the pair left-aligned in
// a PairWidth column.
func tableRow(s core.FutureSignal) string {
	return fmt.Sprintf("1 MIN ➡ %s ➡ %s ➡ %s", PadRight(s.Pair, PairWidth), s.Time, s.Direction)
}

// Table renders the header, separator and one row per signal.
func Table(signals []core.FutureSignal) string {
	var b strings.Builder
	b.WriteString(TableHeader)
	b.WriteByte('\n')
	b.WriteString(Separator)
	b.WriteByte('\n')
	for _, s := range signals {
		b.WriteString(tableRow(s))
		b.WriteByte('\n')
	}
	return b.String()
}

// PadRight pads s with spaces to width runes. Longer strings are returned
// unchanged.
func PadRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
