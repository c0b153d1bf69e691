package clean

import "sort"

// Rule describes how the text cells of one field are turned into
// numbers.
type Rule struct {
	// Strip lists extra substrings removed before parsing.
	Strip []string `yaml:"strip,omitempty"`
	// Thousands removes "," grouping separators.
	Thousands bool `yaml:"thousands,omitempty"`
}

// Schema maps top-level column labels to their numeric rule. Columns
// not named here are left untouched.
type Schema map[string]Rule

func DefaultSchema() Schema {
	return Schema{
		// 2022 cycle
		"Primary vote":             {},
		"2pp vote":                 {},
		"Preferred Prime Minister": {},
		"Morrison":                 {},
		"Albanese":                 {},
		"Sample size":              {Thousands: true},
		// historical cycles
		"TPP vote":            {},
		"2PP vote":            {},
		"Political parties":   {},
		"Two-party-preferred": {},
	}
}

// Fields returns the schema's field names in sorted order.
func (s Schema) Fields() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
