package core

import (
	"fmt"
	"regexp"
	"strconv"
)

// MaxInvoiceSequence is the last sequence that fits the 4-digit format.
const MaxInvoiceSequence = 9999

var invoiceNumberPattern = regexp.MustCompile(`^FAC-(\d{4})-(\d{4})$`)

// ParseInvoiceNumber splits FAC-<year>-<4 digits> into its year and sequence.
// The sequence starts at 1.
func ParseInvoiceNumber(number string) (year, seq int, err error) {
	m := invoiceNumberPattern.FindStringSubmatch(number)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedInvoiceNumber, number)
	}
	year, _ = strconv.Atoi(m[1])
	seq, _ = strconv.Atoi(m[2])
	if seq == 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedInvoiceNumber, number)
	}
	return year, seq, nil
}

// InvoiceNumberPrefix returns "FAC-<year>-".
func InvoiceNumberPrefix(year int) string {
	return fmt.Sprintf("FAC-%04d-", year)
}

// NextInvoiceNumber returns the number following last within year.
// An empty last starts the sequence at 0001.
func NextInvoiceNumber(year int, last string) (string, error) {
	prefix := InvoiceNumberPrefix(year)
	seq := 0
	if last != "" {
		lastYear, n, err := ParseInvoiceNumber(last)
		if err != nil {
			return "", err
		}
		if lastYear != year {
			return "", fmt.Errorf("%w: %q does not start with %q", ErrMalformedInvoiceNumber, last, prefix)
		}
		seq = n
	}
	if seq >= MaxInvoiceSequence {
		return "", fmt.Errorf("%w: %d", ErrSequenceExhausted, year)
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

// CheckInvoiceNumber validates a caller-supplied number against the issue year.
func CheckInvoiceNumber(number string, issue Date) error {
	year, _, err := ParseInvoiceNumber(number)
	if err != nil {
		return &ValidationError{Field: "number", Message: fmt.Sprintf("%q is not FAC-<year>-<4 digits>", number)}
	}
	if !issue.IsZero() && year != issue.Year() {
		return &ValidationError{Field: "number", Message: fmt.Sprintf("%s does not belong to issue year %d", number, issue.Year())}
	}
	return nil
}
