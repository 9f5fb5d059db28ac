package query

import (
	"strconv"
	"strings"
)

// reservedChars are the characters of the query surface that force a text
// value to be quoted when rendered.
const reservedChars = " +-&|!(){}[]^\"~*?:\\"

// validScalar reports whether v is an accepted scalar: text, boolean,
// integer, floating point, or absent (nil).
func validScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, int, int64, float64:
		return true
	}
	return false
}

// IsText reports whether v is a text scalar
func IsText(v any) bool {
	_, ok := v.(string)
	return ok
}

// IsWildcardText reports whether s is a valid wildcard pattern: text with at
// least one unescaped "*" or "?" and no unescaped whitespace. The escape
// character is a backslash.
func IsWildcardText(s string) bool {
	seen := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' {
			// Skip the escaped character
			i++
			continue
		}
		switch {
		case c == '*' || c == '?':
			seen = true
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			return false
		}
	}
	return seen
}

// formatScalar renders a scalar in its natural textual form. Absent values
// render as "*", the open-endpoint token of the query surface.
func formatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "*"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	}
	return ""
}

// needsQuoting reports whether a text value contains a reserved character
func needsQuoting(s string) bool {
	return strings.ContainsAny(s, reservedChars)
}

// quoteText wraps s in double quotes, escaping inner quotes with a backslash
func quoteText(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// reprScalar renders a scalar for Repr output. Unlike rendering, text is
// always quoted here.
func reprScalar(v any) string {
	if s, ok := v.(string); ok {
		return quoteText(s)
	}
	if v == nil {
		return "nil"
	}
	return formatScalar(v)
}

// scalarEqual compares two scalar values. Numeric values compare by value
// across integer and floating point forms.
func scalarEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}
