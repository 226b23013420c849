package source

import (
	"context"
	"strings"

	"billfeed/internal"
)

// Source fetches a named worksheet as a full text grid, header row included.
type Source interface {
	Fetch(ctx context.Context, worksheet string) (internal.Grid, error)
}

// ResolveColumns locates the five required columns in the header row by exact
// name. Column order in the worksheet does not matter. The first missing name
// surfaces as a SchemaError.
func ResolveColumns(header []string) (internal.ColumnMap, error) {
	index := map[string]int{}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	var cm internal.ColumnMap
	wanted := []struct {
		name string
		dst  *int
	}{
		{internal.ColImportDate, &cm.ImportDate},
		{internal.ColTransactionDate, &cm.TransactionDate},
		{internal.ColInvoiceNumber, &cm.InvoiceNumber},
		{internal.ColAmount, &cm.Amount},
		{internal.ColBatchNumber, &cm.BatchNumber},
	}
	for _, w := range wanted {
		i, ok := index[w.name]
		if !ok {
			return internal.ColumnMap{}, &internal.SchemaError{Column: w.name}
		}
		*w.dst = i
	}
	return cm, nil
}

// Cell reads a cell by index, tolerating short rows. Trailing empty cells are
// commonly trimmed by spreadsheet backends.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
