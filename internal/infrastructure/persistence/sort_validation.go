package persistence

import (
	"strings"

	"github.com/storefront/backend/internal/domain/catalog"
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

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"total_price": true,
	"status":      true,
}

// ProductOrderClause turns a listing ordering such as "-price" into an ORDER BY
// clause. Orderings outside catalog.AllowedOrderings fall back to "id ASC".
// Every clause ends with the id so that pages are stable.
func ProductOrderClause(ordering string) string {
	ordering = strings.TrimSpace(ordering)
	if !catalog.AllowedOrderings[ordering] {
		return "id ASC"
	}
	if field, ok := strings.CutPrefix(ordering, "-"); ok {
		return field + " DESC, id DESC"
	}
	return ordering + " ASC, id ASC"
}
