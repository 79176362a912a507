package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceNumberPrefix(t *testing.T) {
	march := time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "INV-202503-", InvoiceNumberPrefix(march))

	december := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV-202412-", InvoiceNumberPrefix(december))
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-202503-001", FormatInvoiceNumber("INV-202503-", 1))
	assert.Equal(t, "INV-202503-042", FormatInvoiceNumber("INV-202503-", 42))
	assert.Equal(t, "INV-202503-1000", FormatInvoiceNumber("INV-202503-", 1000))
}

func TestNextInvoiceSequence(t *testing.T) {
	prefix := "INV-202503-"

	seq, ok := NextInvoiceSequence(prefix, "")
	assert.True(t, ok)
	assert.Equal(t, 1, seq)

	seq, ok = NextInvoiceSequence(prefix, "INV-202503-001")
	assert.True(t, ok)
	assert.Equal(t, 2, seq)

	seq, ok = NextInvoiceSequence(prefix, "INV-202503-099")
	assert.True(t, ok)
	assert.Equal(t, 100, seq)

	// A malformed suffix falls back to the start of the sequence
	seq, ok = NextInvoiceSequence(prefix, "INV-202503-XYZ")
	assert.False(t, ok)
	assert.Equal(t, 1, seq)
}

func TestSequentialNumbersWithinMonth(t *testing.T) {
	issue := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	prefix := InvoiceNumberPrefix(issue)

	last := ""
	for want := 1; want <= 3; want++ {
		seq, ok := NextInvoiceSequence(prefix, last)
		assert.True(t, ok)
		assert.Equal(t, want, seq)
		last = FormatInvoiceNumber(prefix, seq)
	}
	assert.Equal(t, "INV-202503-003", last)
}
