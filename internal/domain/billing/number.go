package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Invoice numbers follow the format INV-{yyyyMM}-{NNN}. The month
// prefix is taken from the invoice's issue date, so a backdated
// invoice numbers into its own period, and the sequence is scoped to
// one tenant and one prefix.

const invoiceNumberPrefixFormat = "INV-%s-"

// InvoiceNumberPrefix returns the month-scoped prefix for an issue date
func InvoiceNumberPrefix(issueDate time.Time) string {
	return fmt.Sprintf(invoiceNumberPrefixFormat, issueDate.Format("200601"))
}

// FormatInvoiceNumber renders a full invoice number from prefix and sequence
func FormatInvoiceNumber(prefix string, sequence int) string {
	return fmt.Sprintf("%s%03d", prefix, sequence)
}

// NextInvoiceSequence parses the numeric suffix of the highest existing
// number for a prefix and returns the next sequence value. An empty
// lastNumber starts the sequence at 1. A suffix that fails to parse
// also falls back to 1; callers should log that case, since it points
// at a malformed number in storage.
func NextInvoiceSequence(prefix, lastNumber string) (int, bool) {
	if lastNumber == "" {
		return 1, true
	}
	suffix := strings.TrimPrefix(lastNumber, prefix)
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return 1, false
	}
	return n + 1, true
}
