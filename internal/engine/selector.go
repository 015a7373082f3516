package engine

import "strings"

// Selector picks a subset of result columns by name, position or value type.
// Exactly one of the match fields should be set; Names wins when several are.
type Selector struct {
	Names     []string `json:"names,omitempty"`
	Positions []int    `json:"positions,omitempty"`
	Prefix    string   `json:"prefix,omitempty"`
	Suffix    string   `json:"suffix,omitempty"`
	Contains  string   `json:"contains,omitempty"`
	Numeric   bool     `json:"numeric,omitempty"`
}

// Apply projects the result down to the selected columns. Selecting nothing
// is not an error; the projection is just empty.
func (s *Selector) Apply(r *Result) (*Result, error) {
	if len(s.Names) > 0 {
		return r.Project(s.Names)
	}

	var names []string
	switch {
	case len(s.Positions) > 0:
		for _, p := range s.Positions {
			if p >= 0 && p < len(r.Columns) {
				names = append(names, r.Columns[p])
			}
		}
	case s.Prefix != "":
		for _, c := range r.Columns {
			if strings.HasPrefix(c, s.Prefix) {
				names = append(names, c)
			}
		}
	case s.Suffix != "":
		for _, c := range r.Columns {
			if strings.HasSuffix(c, s.Suffix) {
				names = append(names, c)
			}
		}
	case s.Contains != "":
		for _, c := range r.Columns {
			if strings.Contains(c, s.Contains) {
				names = append(names, c)
			}
		}
	case s.Numeric:
		for i, c := range r.Columns {
			if columnIsNumeric(r, i) {
				names = append(names, c)
			}
		}
	default:
		names = r.Columns
	}

	return r.Project(names)
}

// columnIsNumeric reports whether every non-nil value in the column is an
// integer or a float.
func columnIsNumeric(r *Result, col int) bool {
	seen := false
	for _, row := range r.Rows {
		switch row[col].(type) {
		case nil:
		case int64, float64:
			seen = true
		default:
			return false
		}
	}
	return seen
}
