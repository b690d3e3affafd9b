package plan

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// RawRecord is a single table row keyed by lowercased column name, before any
// dates have been assigned.
type RawRecord map[string]string

// ColumnMapping renames the column From to To.
type ColumnMapping struct {
	From string
	To   string
}

// ColumnMap is an ordered, validated list of column mappings. Every From and
// To is lowercase. The zero value is the identity mapping.
type ColumnMap []ColumnMapping

// NewColumnMap lowercases and validates the given mappings. Two mappings
// sharing a target, or a source column mapped twice, is an error naming the
// later mapping.
func NewColumnMap(mappings ...ColumnMapping) (ColumnMap, error) {
	m := make(ColumnMap, 0, len(mappings))
	for _, cm := range mappings {
		from := strings.ToLower(strings.TrimSpace(cm.From))
		to := strings.ToLower(strings.TrimSpace(cm.To))
		if from == "" || to == "" {
			return nil, fmt.Errorf("invalid column mapping %q:%q: column names must not be empty", cm.From, cm.To)
		}
		if m.HasSource(from) {
			return nil, fmt.Errorf("column '%s' is mapped more than once", from)
		}
		if m.hasTarget(to) {
			return nil, &ColumnMapConflictError{From: from, To: to}
		}
		m = append(m, ColumnMapping{From: from, To: to})
	}
	return m, nil
}

// ParseColumnMap parses an expression of the form "col:prop[,col:prop...]".
// An empty expression yields an empty map.
func ParseColumnMap(expr string) (ColumnMap, error) {
	if strings.TrimSpace(expr) == "" {
		return ColumnMap{}, nil
	}
	pairs := strings.Split(expr, ",")
	mappings := make([]ColumnMapping, 0, len(pairs))
	for _, p := range pairs {
		from, to, ok := strings.Cut(p, ":")
		if !ok || strings.Contains(to, ":") {
			return nil, fmt.Errorf("invalid column mapping %q: expected <col>:<prop>", p)
		}
		mappings = append(mappings, ColumnMapping{From: from, To: to})
	}
	return NewColumnMap(mappings...)
}

// HasSource reports whether col is remapped by m.
func (m ColumnMap) HasSource(col string) bool {
	col = strings.ToLower(col)
	return slices.ContainsFunc(m, func(cm ColumnMapping) bool { return cm.From == col })
}

func (m ColumnMap) hasTarget(col string) bool {
	return slices.ContainsFunc(m, func(cm ColumnMapping) bool { return cm.To == col })
}

// Apply returns a copy of rec with every mapped column renamed. Columns not
// named in m pass through unchanged. Mapping onto a column that exists in rec
// and is not itself remapped is a *ColumnMapConflictError.
func (m ColumnMap) Apply(rec RawRecord) (RawRecord, error) {
	in := make(RawRecord, len(rec))
	for k, v := range rec {
		in[strings.ToLower(k)] = v
	}

	out := make(RawRecord, len(in))
	for _, cm := range m {
		v, ok := in[cm.From]
		if !ok {
			continue
		}
		if _, exists := in[cm.To]; exists && !m.HasSource(cm.To) {
			return nil, &ColumnMapConflictError{From: cm.From, To: cm.To, Existing: true}
		}
		out[cm.To] = v
	}
	for k, v := range in {
		if m.HasSource(k) {
			continue
		}
		if _, ok := out[k]; ok {
			continue
		}
		out[k] = v
	}
	return out, nil
}

func (m ColumnMap) String() string {
	parts := make([]string, len(m))
	for i, cm := range m {
		parts[i] = cm.From + ":" + cm.To
	}
	return strings.Join(parts, ",")
}
