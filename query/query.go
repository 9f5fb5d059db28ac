package query

// query is the expression tree for structured catalog searches. Trees are
// immutable after construction and may be shared across goroutines.

import (
	"strings"
)

// Kind represents the kind of a node in the expression tree
type Kind string

const (
	PhraseKind        Kind = "phrase"
	BinaryOpKind      Kind = "binaryOp"
	UnaryOpKind       Kind = "unaryOp"
	FieldValueKind    Kind = "fieldValue"
	FieldWildcardKind Kind = "fieldWildcard"
	FieldRangeKind    Kind = "fieldRange"
)

// Boolean keywords and unary operators of the query surface
const (
	KwAnd = "AND"
	KwOr  = "OR"
	KwNot = "NOT"

	OpInclude = "+"
	OpExclude = "-"
)

// Query represents a node in the expression tree. The set of implementations
// is closed: consumers can rely on the six kinds below being exhaustive.
type Query interface {
	// Kind returns the node kind
	Kind() Kind

	// Precedence returns the binding strength of the node, used only to
	// decide parenthesization during rendering. Higher binds tighter.
	Precedence() int

	// String renders the canonical, minimally parenthesized text form
	String() string

	// Repr returns a constructor-call representation of the node
	Repr() string

	sealed()
}

// Phrase is an ordered juxtaposition of sub-expressions, rendered
// space-separated
type Phrase struct {
	terms []Query
}

// NewPhrase creates a phrase over the given terms. An empty phrase is valid
// and renders as the empty string.
func NewPhrase(terms ...Query) (*Phrase, error) {
	for i, t := range terms {
		if t == nil {
			return nil, invalidf("phrase term %d is nil", i)
		}
	}
	return &Phrase{terms: append([]Query(nil), terms...)}, nil
}

func (p *Phrase) Kind() Kind      { return PhraseKind }
func (p *Phrase) Precedence() int { return 400 }
func (p *Phrase) sealed()         {}

// Terms returns the terms of the phrase in order
func (p *Phrase) Terms() []Query {
	return append([]Query(nil), p.terms...)
}

func (p *Phrase) String() string {
	parts := make([]string, len(p.terms))
	for i, t := range p.terms {
		parts[i] = renderOperand(p, t)
	}
	return strings.Join(parts, " ")
}

func (p *Phrase) Repr() string {
	parts := make([]string, len(p.terms))
	for i, t := range p.terms {
		parts[i] = t.Repr()
	}
	return "Phrase(" + strings.Join(parts, ", ") + ")"
}

// BinaryOp is a boolean combination of two sub-expressions
type BinaryOp struct {
	op    string
	left  Query
	right Query
}

// NewBinaryOp creates a binary boolean node. The operator must be AND or OR.
func NewBinaryOp(op string, left, right Query) (*BinaryOp, error) {
	if op != KwAnd && op != KwOr {
		return nil, invalidf("unknown binary operator %q", op)
	}
	if left == nil || right == nil {
		return nil, invalidf("binary operator %s requires two operands", op)
	}
	return &BinaryOp{op: op, left: left, right: right}, nil
}

func (b *BinaryOp) Kind() Kind { return BinaryOpKind }
func (b *BinaryOp) sealed()    {}

func (b *BinaryOp) Precedence() int {
	if b.op == KwOr {
		return 500
	}
	return 600
}

// Op returns the operator keyword, AND or OR
func (b *BinaryOp) Op() string { return b.op }

// Left returns the first operand
func (b *BinaryOp) Left() Query { return b.left }

// Right returns the second operand
func (b *BinaryOp) Right() Query { return b.right }

func (b *BinaryOp) String() string {
	return renderOperand(b, b.left) + " " + b.op + " " + renderOperand(b, b.right)
}

func (b *BinaryOp) Repr() string {
	return "BinaryOp(" + quoteText(b.op) + ", " + b.left.Repr() + ", " + b.right.Repr() + ")"
}

// UnaryOp is a negation or inclusion/exclusion marker on an operand
type UnaryOp struct {
	op      string
	operand Query
}

// NewUnaryOp creates a unary node. The operator must be NOT, "+" or "-".
func NewUnaryOp(op string, operand Query) (*UnaryOp, error) {
	if op != KwNot && op != OpInclude && op != OpExclude {
		return nil, invalidf("unknown unary operator %q", op)
	}
	if operand == nil {
		return nil, invalidf("unary operator %s requires an operand", op)
	}
	return &UnaryOp{op: op, operand: operand}, nil
}

func (u *UnaryOp) Kind() Kind { return UnaryOpKind }
func (u *UnaryOp) sealed()    {}

func (u *UnaryOp) Precedence() int {
	if u.op == KwNot {
		return 800
	}
	return 900
}

// Op returns the operator, NOT, "+" or "-"
func (u *UnaryOp) Op() string { return u.op }

// Operand returns the wrapped expression
func (u *UnaryOp) Operand() Query { return u.operand }

func (u *UnaryOp) String() string {
	operand := renderOperand(u, u.operand)
	if u.op == KwNot {
		return u.op + " " + operand
	}
	return u.op + operand
}

func (u *UnaryOp) Repr() string {
	return "UnaryOp(" + quoteText(u.op) + ", " + u.operand.Repr() + ")"
}

// FieldValue is a name:value predicate, or a bare value if the name is empty
type FieldValue struct {
	name  string
	value any
}

// NewFieldValue creates a field-value predicate. The value must be a text,
// boolean, integer or floating point scalar, or nil for an absent value. An
// empty name means the predicate is not bound to a field.
func NewFieldValue(name string, value any) (*FieldValue, error) {
	if !validScalar(value) {
		return nil, invalidf("field value must be a scalar, got %T", value)
	}
	return &FieldValue{name: name, value: value}, nil
}

func (f *FieldValue) Kind() Kind      { return FieldValueKind }
func (f *FieldValue) Precedence() int { return 1000 }
func (f *FieldValue) sealed()         {}

// Name returns the field name, or the empty string if unbound
func (f *FieldValue) Name() string { return f.name }

// Value returns the scalar value, nil if absent
func (f *FieldValue) Value() any { return f.value }

// IsText reports whether the value is a text scalar
func (f *FieldValue) IsText() bool { return IsText(f.value) }

func (f *FieldValue) String() string {
	v := formatScalar(f.value)
	if s, ok := f.value.(string); ok && needsQuoting(s) {
		v = quoteText(s)
	}
	return withFieldName(f.name, v)
}

func (f *FieldValue) Repr() string {
	return "FieldValue(" + quoteText(f.name) + ", " + reprScalar(f.value) + ")"
}

// FieldWildcard is a pattern-match predicate. Its value is text containing
// at least one unescaped "*" or "?" and no unescaped whitespace.
type FieldWildcard struct {
	name  string
	value string
}

// NewFieldWildcard creates a wildcard predicate. The value keeps its escape
// sequences as written; it is never quoted when rendered.
func NewFieldWildcard(name, value string) (*FieldWildcard, error) {
	if !IsWildcardText(value) {
		return nil, invalidf("not a wildcard pattern: %q", value)
	}
	return &FieldWildcard{name: name, value: value}, nil
}

func (f *FieldWildcard) Kind() Kind      { return FieldWildcardKind }
func (f *FieldWildcard) Precedence() int { return 1000 }
func (f *FieldWildcard) sealed()         {}

// Name returns the field name, or the empty string if unbound
func (f *FieldWildcard) Name() string { return f.name }

// Value returns the raw pattern text, escapes included
func (f *FieldWildcard) Value() string { return f.value }

func (f *FieldWildcard) String() string {
	return withFieldName(f.name, f.value)
}

func (f *FieldWildcard) Repr() string {
	return "FieldWildcard(" + quoteText(f.name) + ", " + quoteText(f.value) + ")"
}

// FieldRange is a bounded-range predicate such as depth:[0 TO 100]
type FieldRange struct {
	name      string
	start     any
	end       any
	exclusive bool
}

// NewFieldRange creates a range predicate. Both bounds must be scalars and
// at least one must be present; a nil bound leaves that end open.
func NewFieldRange(name string, start, end any, exclusive bool) (*FieldRange, error) {
	if !validScalar(start) {
		return nil, invalidf("range start must be a scalar, got %T", start)
	}
	if !validScalar(end) {
		return nil, invalidf("range end must be a scalar, got %T", end)
	}
	if start == nil && end == nil {
		return nil, invalidf("range requires at least one bound")
	}
	return &FieldRange{name: name, start: start, end: end, exclusive: exclusive}, nil
}

func (f *FieldRange) Kind() Kind      { return FieldRangeKind }
func (f *FieldRange) Precedence() int { return 1000 }
func (f *FieldRange) sealed()         {}

// Name returns the field name, or the empty string if unbound
func (f *FieldRange) Name() string { return f.name }

// Start returns the lower bound, nil if open
func (f *FieldRange) Start() any { return f.start }

// End returns the upper bound, nil if open
func (f *FieldRange) End() any { return f.end }

// IsExclusive reports whether the bounds are excluded from the range
func (f *FieldRange) IsExclusive() bool { return f.exclusive }

func (f *FieldRange) String() string {
	v := formatScalar(f.start) + " TO " + formatScalar(f.end)
	if f.exclusive {
		v = "{" + v + "}"
	} else {
		v = "[" + v + "]"
	}
	return withFieldName(f.name, v)
}

func (f *FieldRange) Repr() string {
	return "FieldRange(" + quoteText(f.name) + ", " + reprScalar(f.start) + ", " +
		reprScalar(f.end) + ", " + formatScalar(f.exclusive) + ")"
}

// renderOperand renders an operand of a composite node, wrapping it in
// parentheses iff it binds weaker than the node it appears in.
func renderOperand(parent, operand Query) string {
	s := operand.String()
	if operand.Precedence() < parent.Precedence() {
		return "(" + s + ")"
	}
	return s
}

func withFieldName(name, value string) string {
	if name == "" {
		return value
	}
	return name + ":" + value
}

// Depth returns the number of levels in q, counting a leaf as 1.
func Depth(q Query) int {
	switch n := q.(type) {
	case *Phrase:
		max := 0
		for _, t := range n.terms {
			if d := Depth(t); d > max {
				max = d
			}
		}
		return max + 1
	case *BinaryOp:
		left, right := Depth(n.left), Depth(n.right)
		if right > left {
			left = right
		}
		return left + 1
	case *UnaryOp:
		return Depth(n.operand) + 1
	default:
		return 1
	}
}
