package internal

import "time"

// Grid is a full worksheet read as text, header row included.
type Grid [][]string

// Required worksheet columns, matched against the header row by exact name.
const (
	ColImportDate      = "import_date"
	ColTransactionDate = "transaction_date"
	ColInvoiceNumber   = "extracted_invoice_number"
	ColAmount          = "transferred_amount"
	ColBatchNumber     = "batch_number"
)

// ColumnMap holds the resolved index of each required column.
type ColumnMap struct {
	ImportDate      int
	TransactionDate int
	InvoiceNumber   int
	Amount          int
	BatchNumber     int
}

// TransferEntry is one bank transfer kept for export: import date matched the
// run's target date, invoice number carried the prefix, amount normalized to
// integer cents.
type TransferEntry struct {
	TransactionDate time.Time
	InvoiceNumber   string
	AmountCents     int64
}

// ISODateTime renders the transaction date at midnight, the form the billing
// system expects in the CSV.
func (e TransferEntry) ISODateTime() string {
	return e.TransactionDate.Format("2006-01-02T15:04:05")
}

// BatchSummary aggregates one run.
type BatchSummary struct {
	TargetDate     string
	BatchNumbers   []string
	MinDate        time.Time
	MaxDate        time.Time
	Count          int
	TotalCents     int64
	Top            []TransferEntry
	DateMatchCount int
	AccuracyRate   float64
}
