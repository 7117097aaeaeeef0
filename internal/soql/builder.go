package soql

import (
	"fmt"
	"regexp"
	"strings"
)

// Builder handles the construction of SOQL retrieval expressions for
// migration and rollback job configurations.
type Builder struct{}

// NewBuilder creates a new Builder instance.
func NewBuilder() *Builder {
	return &Builder{}
}

// SelectFields builds a retrieval expression selecting the given fields.
// Duplicate fields (case-insensitive) are collapsed, first occurrence wins.
func (b *Builder) SelectFields(objectName string, fields []string) string {
	deduped := dedupeFields(fields)
	if len(deduped) == 0 {
		deduped = []string{"Id"}
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(deduped, ", "), objectName)
}

// SelectIdentifiers builds the minimal identifier-only retrieval expression.
func (b *Builder) SelectIdentifiers(objectName string) string {
	return b.SelectFields(objectName, []string{"Id"})
}

// SelectWithFilter builds an identifier retrieval carrying a verbatim filter
// clause. The clause is passed through untouched, including any ORDER BY or
// LIMIT suffix that followed the original WHERE.
func (b *Builder) SelectWithFilter(objectName, filterClause string) string {
	return fmt.Sprintf("SELECT Id FROM %s WHERE %s", objectName, strings.TrimSpace(filterClause))
}

// SelectMostRecent builds an identifier retrieval ordered by creation time,
// newest first, capped at limit rows.
func (b *Builder) SelectMostRecent(objectName string, limit int) string {
	return fmt.Sprintf("SELECT Id FROM %s ORDER BY CreatedDate DESC LIMIT %d", objectName, limit)
}

// SelectWhereNotNull builds an identifier retrieval requiring every given
// field to be populated. Composite external ids conjoin with AND.
func (b *Builder) SelectWhereNotNull(objectName string, fields []string) string {
	conds := make([]string, 0, len(fields))
	for _, f := range dedupeFields(fields) {
		conds = append(conds, fmt.Sprintf("%s != null", f))
	}
	return fmt.Sprintf("SELECT Id FROM %s WHERE %s", objectName, strings.Join(conds, " AND "))
}

var (
	whereRe = regexp.MustCompile(`(?is)\bWHERE\b\s+(.*)$`)
	limitRe = regexp.MustCompile(`(?is)\bLIMIT\b\s+(\d+)`)
)

// FilterClause extracts the filter clause of a retrieval expression: the text
// after WHERE, verbatim. Returns "" and false when the query has no filter.
func FilterClause(query string) (string, bool) {
	m := whereRe.FindStringSubmatch(query)
	if m == nil {
		return "", false
	}
	clause := strings.TrimSpace(m[1])
	if clause == "" {
		return "", false
	}
	return clause, true
}

// RowCap extracts the LIMIT value of a retrieval expression, if any.
func RowCap(query string) (int, bool) {
	m := limitRe.FindStringSubmatch(query)
	if m == nil {
		return 0, false
	}
	var n int
	if _, err := fmt.Sscanf(m[1], "%d", &n); err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func dedupeFields(fields []string) []string {
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		key := strings.ToLower(f)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}
