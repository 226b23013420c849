package pipeline

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"billfeed/internal"
)

// PaymentMethod is appended as a constant to every exported row.
const PaymentMethod = "bank_transfer"

var csvHeader = []string{"transaction[date]", "invoice[id]", "transaction[amount]", "transaction[payment_method]"}

// WriteCSV writes the billing upload file. The billing importer requires
// every field double-quoted, so the lines are assembled by hand rather than
// through encoding/csv, which quotes only when it has to.
func WriteCSV(path string, entries []internal.TransferEntry) error {
	var b strings.Builder
	b.WriteString(csvLine(csvHeader))
	for _, e := range entries {
		b.WriteString(csvLine([]string{
			e.ISODateTime(),
			e.InvoiceNumber,
			strconv.FormatInt(e.AmountCents, 10),
			PaymentMethod,
		}))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// WriteShortcut writes the convenience link offered next to the CSV.
func WriteShortcut(path, url string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	content := "[InternetShortcut]\nURL=" + url + "\n"
	return os.WriteFile(path, []byte(content), 0o644)
}

func csvLine(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",") + "\n"
}
