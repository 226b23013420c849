package pipeline

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"billfeed/internal"
)

func entry(day int, invoice string, cents int64) internal.TransferEntry {
	return internal.TransferEntry{
		TransactionDate: time.Date(2026, 2, day, 0, 0, 0, 0, time.UTC),
		InvoiceNumber:   invoice,
		AmountCents:     cents,
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bank_transfers.csv")
	entries := []internal.TransferEntry{
		entry(8, "IN0001", 1050),
		entry(8, "IN0002", 200),
	}
	if err := WriteCSV(path, entries); err != nil {
		t.Fatal(err)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(blob), "\n"), "\n")
	if len(lines) != len(entries)+1 {
		t.Fatalf("lines=%d", len(lines))
	}
	if lines[0] != `"transaction[date]","invoice[id]","transaction[amount]","transaction[payment_method]"` {
		t.Fatalf("header: %s", lines[0])
	}
	if lines[1] != `"2026-02-08T00:00:00","IN0001","1050","bank_transfer"` {
		t.Fatalf("row: %s", lines[1])
	}

	// Round-trip: the amount column summed back equals the entry total.
	var sum int64
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		if len(fields) != 4 {
			t.Fatalf("field count: %s", line)
		}
		for _, f := range fields {
			if !strings.HasPrefix(f, `"`) || !strings.HasSuffix(f, `"`) {
				t.Fatalf("unquoted field %q in %s", f, line)
			}
		}
		if fields[3] != `"bank_transfer"` {
			t.Fatalf("payment method: %s", fields[3])
		}
		cents, err := strconv.ParseInt(strings.Trim(fields[2], `"`), 10, 64)
		if err != nil {
			t.Fatal(err)
		}
		sum += cents
	}
	if sum != 1250 {
		t.Fatalf("sum=%d", sum)
	}
}

func TestWriteCSVHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := WriteCSV(path, nil); err != nil {
		t.Fatal(err)
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(blob), "\n") != 1 {
		t.Fatalf("expected a single header line, got %q", blob)
	}
}

func TestCSVQuoteEscaping(t *testing.T) {
	line := csvLine([]string{`with "quotes"`, "plain"})
	if line != `"with ""quotes""","plain"`+"\n" {
		t.Fatalf("got %q", line)
	}
}

func TestWriteShortcut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billing_upload.url")
	if err := WriteShortcut(path, "https://billing.example.com/upload"); err != nil {
		t.Fatal(err)
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "[InternetShortcut]\nURL=https://billing.example.com/upload\n"
	if string(blob) != want {
		t.Fatalf("got %q", blob)
	}
}
