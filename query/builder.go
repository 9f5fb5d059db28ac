package query

// Convenience constructors for building well-formed trees without spelling
// out the node constructors. An empty name leaves a predicate unbound; use
// NewPhrase directly for juxtapositions.

// Value creates a name:value predicate. Pass "" as name for a bare value.
func Value(name string, value any) (*FieldValue, error) {
	return NewFieldValue(name, value)
}

// Wildcard creates a pattern-match predicate
func Wildcard(name, value string) (*FieldWildcard, error) {
	return NewFieldWildcard(name, value)
}

// Range creates an inclusive range predicate; a nil bound is open
func Range(name string, start, end any) (*FieldRange, error) {
	return NewFieldRange(name, start, end, false)
}

// ExclusiveRange creates a range predicate that excludes its bounds
func ExclusiveRange(name string, start, end any) (*FieldRange, error) {
	return NewFieldRange(name, start, end, true)
}

// Include wraps q in a "+" marker
func Include(q Query) (*UnaryOp, error) {
	return NewUnaryOp(OpInclude, q)
}

// Exclude wraps q in a "-" marker
func Exclude(q Query) (*UnaryOp, error) {
	return NewUnaryOp(OpExclude, q)
}

// Not negates q
func Not(q Query) (*UnaryOp, error) {
	return NewUnaryOp(KwNot, q)
}

// And combines two expressions conjunctively
func And(left, right Query) (*BinaryOp, error) {
	return NewBinaryOp(KwAnd, left, right)
}

// Or combines two expressions disjunctively
func Or(left, right Query) (*BinaryOp, error) {
	return NewBinaryOp(KwOr, left, right)
}

// Must panics if err is non-nil. It allows compact construction of trees
// whose validity is known at the call site, mostly in tests.
func Must[Q Query](q Q, err error) Q {
	if err != nil {
		panic(err)
	}
	return q
}
