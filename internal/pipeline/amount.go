package pipeline

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"billfeed/internal"
)

// Amount parsing modes. The accepted input is a decimal major-unit string
// with either a comma or a dot as decimal separator ("10,50", "10.50", "5").
const (
	// AmountModeLegacy converts via float64 and truncates to cents. This is
	// what historical exports did; inputs like "4,35" land on 434 because of
	// binary floating point. Kept as the default for upload compatibility.
	AmountModeLegacy = "legacy"
	// AmountModeDecimal parses exactly and rounds half away from zero.
	AmountModeDecimal = "decimal"
)

// ParseAmountCents converts a transferred_amount cell to integer cents.
func ParseAmountCents(raw, mode string) (int64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if normalized == "" {
		return 0, &internal.FormatError{Field: internal.ColAmount, Value: raw, Err: errors.New("empty amount")}
	}

	switch mode {
	case AmountModeDecimal:
		d, err := decimal.NewFromString(normalized)
		if err != nil {
			return 0, &internal.FormatError{Field: internal.ColAmount, Value: raw, Err: err}
		}
		return d.Shift(2).Round(0).IntPart(), nil
	default:
		f, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			return 0, &internal.FormatError{Field: internal.ColAmount, Value: raw, Err: err}
		}
		return int64(f * 100), nil
	}
}

// FormatCents renders cents as a major-unit string for human-facing output.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
}

func pad2(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
