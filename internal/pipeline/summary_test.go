package pipeline

import (
	"strings"
	"testing"
	"time"

	"billfeed/internal"
)

func TestFormatSummary(t *testing.T) {
	s := internal.BatchSummary{
		TargetDate:     "08.02.2026",
		BatchNumbers:   []string{"B1", "B2"},
		MinDate:        time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC),
		MaxDate:        time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		Count:          3,
		TotalCents:     1000,
		Top:            []internal.TransferEntry{entry(8, "IN0004", 400)},
		DateMatchCount: 3,
		AccuracyRate:   100,
	}
	msg := FormatSummary(s)

	for _, want := range []string{
		"08.02.2026",
		"B1, B2",
		"Transfers: 3, total 10.00",
		"05.02.2026 to 10.02.2026",
		"Accuracy: 100.0%",
		"IN0004  4.00",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "manually") {
		t.Fatalf("unexpected warning at full accuracy:\n%s", msg)
	}
}

func TestFormatSummaryLowAccuracyWarning(t *testing.T) {
	s := internal.BatchSummary{
		TargetDate:     "08.02.2026",
		Count:          1,
		DateMatchCount: 2,
		AccuracyRate:   50,
	}
	msg := FormatSummary(s)
	if !strings.Contains(msg, "manually") {
		t.Fatalf("warning missing:\n%s", msg)
	}
}

func TestFormatSummaryEmptyRun(t *testing.T) {
	s := internal.BatchSummary{TargetDate: "08.02.2026"}
	msg := FormatSummary(s)
	if !strings.Contains(msg, "Batches: none") {
		t.Fatalf("missing empty batches line:\n%s", msg)
	}
	if !strings.Contains(msg, "Transfers: 0, total 0.00") {
		t.Fatalf("missing zero counts:\n%s", msg)
	}
	if strings.Contains(msg, "Transaction dates") {
		t.Fatalf("date range should be omitted for empty runs:\n%s", msg)
	}
}
