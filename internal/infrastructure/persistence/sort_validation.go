package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// TransactionSortFields contains allowed sort fields for ledger entries
var TransactionSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"date":       true,
	"type":       true,
	"status":     true,
	"method":     true,
	"amount":     true,
	"currency":   true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"date":       true,
	"amount":     true,
	"balance":    true,
	"method":     true,
	"applied":    true,
	"voided":     true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"email":      true,
	"status":     true,
}

// DocumentSortFields contains allowed sort fields for receivable documents.
// The number column differs per table, so it is validated per repository.
var DocumentSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"issued_at":  true,
	"total":      true,
	"status":     true,
}
