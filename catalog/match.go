package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ocdb/ocdb-query/query"
)

// Predicate decides whether a dataset matches a compiled expression
type Predicate func(*Dataset) bool

// Compile translates an expression tree into a single predicate over
// datasets. The tree is walked once; the returned predicate can be applied
// to any number of records.
func Compile(q query.Query) (Predicate, error) {
	c := &compiler{}
	p := query.Visit(q, c)
	if c.err != nil {
		return nil, c.err
	}
	return p, nil
}

// compiler builds predicates bottom-up while the tree is visited. Visits
// cannot fail, so the first wildcard translation error is carried on the
// compiler and checked afterwards.
type compiler struct {
	err error
}

func (c *compiler) VisitPhrase(q *query.Phrase, terms []Predicate) Predicate {
	return func(d *Dataset) bool {
		for _, match := range terms {
			if !match(d) {
				return false
			}
		}
		return true
	}
}

func (c *compiler) VisitBinaryOp(q *query.BinaryOp, left, right Predicate) Predicate {
	if q.Op() == query.KwOr {
		return func(d *Dataset) bool {
			return left(d) || right(d)
		}
	}
	return func(d *Dataset) bool {
		return left(d) && right(d)
	}
}

func (c *compiler) VisitUnaryOp(q *query.UnaryOp, operand Predicate) Predicate {
	if q.Op() == query.OpInclude {
		return operand
	}
	// NOT and the exclusion marker both negate
	return func(d *Dataset) bool {
		return !operand(d)
	}
}

func (c *compiler) VisitFieldValue(q *query.FieldValue) Predicate {
	name, want := q.Name(), q.Value()

	if name == "" {
		return anyField(func(have any) bool {
			return scalarMatches(have, want)
		})
	}
	return func(d *Dataset) bool {
		have, ok := d.attribute(name)
		if want == nil {
			// An absent query value tests for an absent field
			return !ok
		}
		return ok && scalarMatches(have, want)
	}
}

func (c *compiler) VisitFieldRange(q *query.FieldRange) Predicate {
	inRange := func(have any) bool {
		return boundSatisfied(have, q.Start(), q.IsExclusive(), false) &&
			boundSatisfied(have, q.End(), q.IsExclusive(), true)
	}
	if q.Name() == "" {
		return anyField(inRange)
	}
	name := q.Name()
	return func(d *Dataset) bool {
		have, ok := d.attribute(name)
		return ok && inRange(have)
	}
}

func (c *compiler) VisitFieldWildcard(q *query.FieldWildcard) Predicate {
	re, err := compilePattern(q.Value())
	if err != nil {
		if c.err == nil {
			c.err = fmt.Errorf("failed to compile wildcard %q: %w", q.Value(), err)
		}
		return func(*Dataset) bool { return false }
	}

	matches := func(have any) bool {
		s, ok := have.(string)
		return ok && re.MatchString(s)
	}
	if q.Name() == "" {
		return anyField(matches)
	}
	name := q.Name()
	return func(d *Dataset) bool {
		have, ok := d.attribute(name)
		return ok && matches(have)
	}
}

// anyField lifts a per-value test to a predicate over all addressable
// fields of a record
func anyField(test func(any) bool) Predicate {
	return func(d *Dataset) bool {
		for _, name := range d.fieldNames() {
			if have, ok := d.attribute(name); ok && test(have) {
				return true
			}
		}
		return false
	}
}

// scalarMatches compares a record value against a query value. Numbers
// compare by value across integer and floating point forms, text compares
// case-insensitively.
func scalarMatches(have, want any) bool {
	if hf, ok := toFloat(have); ok {
		wf, ok := toFloat(want)
		return ok && hf == wf
	}
	if hs, ok := have.(string); ok {
		ws, ok := want.(string)
		return ok && strings.EqualFold(hs, ws)
	}
	return have == want
}

// boundSatisfied checks a record value against one range bound. A nil bound
// is open. Numeric values compare numerically, text lexicographically;
// mixed comparisons never match.
func boundSatisfied(have, bound any, exclusive, upper bool) bool {
	if bound == nil {
		return true
	}

	if hf, ok := toFloat(have); ok {
		bf, ok := toFloat(bound)
		if !ok {
			return false
		}
		return ordered(hf, bf, exclusive, upper)
	}

	hs, hok := have.(string)
	bs, bok := bound.(string)
	if !hok || !bok {
		return false
	}
	return ordered(strings.Compare(hs, bs), 0, exclusive, upper)
}

func ordered[T int | float64](have, bound T, exclusive, upper bool) bool {
	if upper {
		if exclusive {
			return have < bound
		}
		return have <= bound
	}
	if exclusive {
		return have > bound
	}
	return have >= bound
}

func toFloat(v any) (float64, bool) {
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

// compilePattern translates a wildcard pattern into an anchored regular
// expression: "*" matches any run, "?" a single character, and
// backslash-escaped characters match literally.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			sb.WriteString(regexp.QuoteMeta(string(pattern[i+1])))
			i++
		case c == '*':
			sb.WriteString(".*")
		case c == '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}
