package repository

import (
	"fmt"
	"strings"
)

const (
	defaultPageSize = 10
	maxPageSize     = 1000
)

// orderBy turns a comma separated ordering such as "-created_at,name" into an
// ORDER BY clause. Fields missing from allowed are ignored. The id column is
// appended so pagination stays stable between requests.
func orderBy(raw string, allowed map[string]string, fallback, idColumn string) string {
	var parts []string
	seen := make(map[string]bool)
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		direction := "ASC"
		if strings.HasPrefix(token, "-") {
			direction = "DESC"
			token = token[1:]
		}
		column, ok := allowed[token]
		if !ok || seen[column] {
			continue
		}
		seen[column] = true
		parts = append(parts, column+" "+direction)
	}
	if len(parts) == 0 {
		parts = append(parts, fallback)
	}
	if !seen[idColumn] {
		parts = append(parts, idColumn+" DESC")
	}
	return strings.Join(parts, ", ")
}

// limitOffset renders LIMIT/OFFSET for a 1-based page.
func limitOffset(page, size int) string {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return fmt.Sprintf("LIMIT %d OFFSET %d", size, (page-1)*size)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern lowercases term and wraps it for a substring LIKE match.
// Wildcards in the term are escaped with the default backslash escape.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// whereClause joins conditions with AND.
func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}
