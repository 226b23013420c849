package pipeline

import (
	"sort"
	"strings"
	"time"

	"billfeed/internal"
	"billfeed/internal/config"
	"billfeed/internal/source"
)

// AggregateResult is the output of one filter/aggregate pass: the entries in
// export order (amount descending, stable) plus the batch summary.
type AggregateResult struct {
	Summary internal.BatchSummary
	Entries []internal.TransferEntry
}

// Aggregate selects the rows whose import_date equals the target date and
// whose invoice number carries the prefix, normalizes them into transfer
// entries and computes the batch summary. Any malformed date or amount on a
// kept row aborts the whole pass; nothing is exported partially.
func Aggregate(grid internal.Grid, cols internal.ColumnMap, targetDate, invoicePrefix, amountMode string) (AggregateResult, error) {
	entries := make([]internal.TransferEntry, 0)
	batchSet := map[string]struct{}{}
	dateMatches := 0
	var totalCents int64
	var minDate, maxDate time.Time

	for _, row := range dataRows(grid) {
		if source.Cell(row, cols.ImportDate) != targetDate {
			continue
		}
		dateMatches++

		invoice := source.Cell(row, cols.InvoiceNumber)
		if !strings.HasPrefix(invoice, invoicePrefix) {
			continue
		}

		cents, err := ParseAmountCents(source.Cell(row, cols.Amount), amountMode)
		if err != nil {
			return AggregateResult{}, err
		}

		rawDate := source.Cell(row, cols.TransactionDate)
		txDate, err := time.Parse(config.DateLayout, rawDate)
		if err != nil {
			return AggregateResult{}, &internal.FormatError{Field: internal.ColTransactionDate, Value: rawDate, Err: err}
		}

		if batch := source.Cell(row, cols.BatchNumber); batch != "" {
			batchSet[batch] = struct{}{}
		}

		if len(entries) == 0 || txDate.Before(minDate) {
			minDate = txDate
		}
		if len(entries) == 0 || txDate.After(maxDate) {
			maxDate = txDate
		}
		totalCents += cents

		entries = append(entries, internal.TransferEntry{
			TransactionDate: txDate,
			InvoiceNumber:   invoice,
			AmountCents:     cents,
		})
	}

	// Stable keeps the original worksheet order for equal amounts.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AmountCents > entries[j].AmountCents
	})

	accuracy := 0.0
	if dateMatches > 0 {
		accuracy = 100 * float64(len(entries)) / float64(dateMatches)
	}

	summary := internal.BatchSummary{
		TargetDate:     targetDate,
		BatchNumbers:   sortedKeys(batchSet),
		MinDate:        minDate,
		MaxDate:        maxDate,
		Count:          len(entries),
		TotalCents:     totalCents,
		Top:            topN(entries, 3),
		DateMatchCount: dateMatches,
		AccuracyRate:   accuracy,
	}
	return AggregateResult{Summary: summary, Entries: entries}, nil
}

func dataRows(grid internal.Grid) internal.Grid {
	if len(grid) < 2 {
		return nil
	}
	return grid[1:]
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func topN(entries []internal.TransferEntry, n int) []internal.TransferEntry {
	if len(entries) < n {
		n = len(entries)
	}
	top := make([]internal.TransferEntry, n)
	copy(top, entries[:n])
	return top
}
