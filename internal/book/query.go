package book

import (
	"fmt"
	"sort"
	"strings"
)

const (
	clauseSeparator = ","
	filterSeparator = "*"
	descPrefix      = "-"
)

// SortField orders results by one document field.
type SortField struct {
	Field string
	Desc  bool
}

// Query defines sorting and exact-match filtering for listing books.
type Query struct {
	Sort   []SortField
	Filter map[string]string
}

// FilterKeys returns the filter field names in a stable order.
func (q Query) FilterKeys() []string {
	keys := make([]string, 0, len(q.Filter))
	for k := range q.Filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseQuery translates the raw sort and filter expressions of a request.
func ParseQuery(sortExpr, filterExpr string) (Query, error) {
	fields, err := ParseSort(sortExpr)
	if err != nil {
		return Query{}, err
	}
	filter, err := ParseFilter(filterExpr)
	if err != nil {
		return Query{}, err
	}
	return Query{Sort: fields, Filter: filter}, nil
}

// ParseSort parses "-year,title" into year descending then title ascending.
func ParseSort(expr string) ([]SortField, error) {
	var fields []SortField
	for _, clause := range splitClauses(expr) {
		desc := strings.HasPrefix(clause, descPrefix)
		name := strings.TrimSpace(strings.TrimPrefix(clause, descPrefix))
		if name == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedSort, clause)
		}
		fields = append(fields, SortField{Field: name, Desc: desc})
	}
	return fields, nil
}

// ParseFilter parses "author*Orwell,year*1949" into exact-match conditions.
// Each clause must hold exactly one separator and a non-empty key.
func ParseFilter(expr string) (map[string]string, error) {
	filter := map[string]string{}
	for _, clause := range splitClauses(expr) {
		parts := strings.Split(clause, filterSeparator)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedFilter, clause)
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedFilter, clause)
		}
		filter[key] = parts[1]
	}
	return filter, nil
}

func splitClauses(expr string) []string {
	var clauses []string
	for _, c := range strings.Split(expr, clauseSeparator) {
		if c = strings.TrimSpace(c); c != "" {
			clauses = append(clauses, c)
		}
	}
	return clauses
}
