package printing

// InvoicePDF is a rendered invoice document. ArchiveKey is empty when
// the PDF was not archived.
type InvoicePDF struct {
	FileName   string
	Data       []byte
	ArchiveKey string
}
