package query

// Equal compares two expression trees for structural equality. Nodes of
// different kinds are never equal, even when they would match the same
// records.
func Equal(a, b Query) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch n1 := a.(type) {
	case *Phrase:
		if n2, ok := b.(*Phrase); ok {
			if len(n1.terms) != len(n2.terms) {
				return false
			}
			for i := range n1.terms {
				if !Equal(n1.terms[i], n2.terms[i]) {
					return false
				}
			}
			return true
		}
	case *BinaryOp:
		if n2, ok := b.(*BinaryOp); ok {
			return n1.op == n2.op &&
				Equal(n1.left, n2.left) &&
				Equal(n1.right, n2.right)
		}
	case *UnaryOp:
		if n2, ok := b.(*UnaryOp); ok {
			return n1.op == n2.op &&
				Equal(n1.operand, n2.operand)
		}
	case *FieldValue:
		if n2, ok := b.(*FieldValue); ok {
			return n1.name == n2.name &&
				scalarEqual(n1.value, n2.value)
		}
	case *FieldWildcard:
		if n2, ok := b.(*FieldWildcard); ok {
			return n1.name == n2.name &&
				n1.value == n2.value
		}
	case *FieldRange:
		if n2, ok := b.(*FieldRange); ok {
			return n1.name == n2.name &&
				scalarEqual(n1.start, n2.start) &&
				scalarEqual(n1.end, n2.end) &&
				n1.exclusive == n2.exclusive
		}
	}
	return false
}
