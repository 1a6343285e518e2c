package receivable

// DocumentStatus tracks how much of a receivable document has been settled
type DocumentStatus string

const (
	DocumentStatusPending DocumentStatus = "PENDING" // nothing applied yet
	DocumentStatusPartial DocumentStatus = "PARTIAL" // 0 < applied < total
	DocumentStatusPaid    DocumentStatus = "PAID"    // fully settled
	DocumentStatusVoid    DocumentStatus = "VOID"    // cancelled, accepts no applications
)

// IsValid checks if the status is a known DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusPartial, DocumentStatusPaid, DocumentStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// CanApply returns true if the document still accepts monetary applications
func (s DocumentStatus) CanApply() bool {
	return s != DocumentStatusVoid
}
