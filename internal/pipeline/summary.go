package pipeline

import (
	"fmt"
	"strings"

	"billfeed/internal"
	"billfeed/internal/config"
)

// FormatSummary builds the multi-line chat message for one run.
func FormatSummary(s internal.BatchSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Bank transfer export for %s\n", s.TargetDate)

	batches := "none"
	if len(s.BatchNumbers) > 0 {
		batches = strings.Join(s.BatchNumbers, ", ")
	}
	fmt.Fprintf(&b, "Batches: %s\n", batches)

	fmt.Fprintf(&b, "Transfers: %d, total %s\n", s.Count, FormatCents(s.TotalCents))
	if s.Count > 0 {
		fmt.Fprintf(&b, "Transaction dates: %s to %s\n",
			s.MinDate.Format(config.DateLayout), s.MaxDate.Format(config.DateLayout))
	}
	fmt.Fprintf(&b, "Accuracy: %.1f%% (%d of %d rows for the day)\n",
		s.AccuracyRate, s.Count, s.DateMatchCount)

	if len(s.Top) > 0 {
		b.WriteString("Largest transfers:\n")
		for _, e := range s.Top {
			fmt.Fprintf(&b, "  %s  %s\n", e.InvoiceNumber, FormatCents(e.AmountCents))
		}
	}

	if s.DateMatchCount > s.Count {
		b.WriteString("Some rows for the day carry no invoice number, please check them manually.\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
