package backend

import "strings"

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// Quote renders v as a single-quoted filter literal. Backslashes and quotes
// are escaped so the value cannot terminate the literal.
func Quote(v string) string {
	return "'" + quoteReplacer.Replace(v) + "'"
}

// Eq renders field='value'. field must be a trusted identifier.
func Eq(field, value string) string {
	return field + "=" + Quote(value)
}

// And joins terms with && inside one pair of parentheses.
func And(terms ...string) string {
	return "(" + strings.Join(terms, " && ") + ")"
}
