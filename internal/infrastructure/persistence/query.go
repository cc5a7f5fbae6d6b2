package persistence

import (
	"strings"

	"github.com/backoffice/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyOrderAndPage applies ordering and pagination to a query. The order
// column is sanitized to a bare identifier; anything else falls back to the
// given default.
func applyOrderAndPage(q *gorm.DB, filter shared.Filter, defaultOrder string) *gorm.DB {
	order := defaultOrder
	if filter.OrderBy != "" && isIdentifier(filter.OrderBy) {
		dir := "ASC"
		if strings.EqualFold(filter.OrderDir, "desc") {
			dir = "DESC"
		}
		order = filter.OrderBy + " " + dir
	}
	return q.Order(order).Offset(filter.Offset()).Limit(filter.Limit())
}

// isIdentifier reports whether s is a plain snake_case column name. Anything
// else is rejected to keep user input out of the ORDER BY clause.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

// escapeLike escapes LIKE wildcards in user-supplied prefixes
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
