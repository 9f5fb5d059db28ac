package query

// Visitor computes a per-node result while a Query tree is walked. One
// method exists per node kind; an implementation must handle all six.
// Consumers that have no result for a node return the zero value of T.
type Visitor[T any] interface {
	// VisitPhrase receives the results of the phrase terms in order
	VisitPhrase(q *Phrase, terms []T) T

	// VisitBinaryOp receives the results of both operands
	VisitBinaryOp(q *BinaryOp, left, right T) T

	// VisitUnaryOp receives the result of the operand
	VisitUnaryOp(q *UnaryOp, operand T) T

	VisitFieldValue(q *FieldValue) T
	VisitFieldRange(q *FieldRange) T
	VisitFieldWildcard(q *FieldWildcard) T
}

// Visit walks q depth-first and dispatches each node to v. Children are
// visited left-to-right before their parent, so v sees a post-order
// traversal and each composite visit receives its children's results.
func Visit[T any](q Query, v Visitor[T]) T {
	switch n := q.(type) {
	case *Phrase:
		terms := make([]T, len(n.terms))
		for i, t := range n.terms {
			terms[i] = Visit(t, v)
		}
		return v.VisitPhrase(n, terms)
	case *BinaryOp:
		left := Visit(n.left, v)
		right := Visit(n.right, v)
		return v.VisitBinaryOp(n, left, right)
	case *UnaryOp:
		return v.VisitUnaryOp(n, Visit(n.operand, v))
	case *FieldValue:
		return v.VisitFieldValue(n)
	case *FieldRange:
		return v.VisitFieldRange(n)
	case *FieldWildcard:
		return v.VisitFieldWildcard(n)
	}
	var zero T
	return zero
}
