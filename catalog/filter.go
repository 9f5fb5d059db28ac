package catalog

import (
	"github.com/ocdb/ocdb-query/query"
)

// anyFieldKey addresses predicates that are not bound to a field name
const anyFieldKey = "$text"

// BuildFilter translates an expression tree into a storage-engine filter
// document, the nested operator form driver layers consume. The translation
// is structural only; nothing here talks to a store.
func BuildFilter(q query.Query) map[string]any {
	return query.Visit(q, filterBuilder{})
}

type filterBuilder struct{}

func (filterBuilder) VisitPhrase(q *query.Phrase, terms []map[string]any) map[string]any {
	switch len(terms) {
	case 0:
		return map[string]any{}
	case 1:
		return terms[0]
	}
	clauses := make([]any, len(terms))
	for i, t := range terms {
		clauses[i] = t
	}
	return map[string]any{"$and": clauses}
}

func (filterBuilder) VisitBinaryOp(q *query.BinaryOp, left, right map[string]any) map[string]any {
	op := "$and"
	if q.Op() == query.KwOr {
		op = "$or"
	}
	return map[string]any{op: []any{left, right}}
}

func (filterBuilder) VisitUnaryOp(q *query.UnaryOp, operand map[string]any) map[string]any {
	if q.Op() == query.OpInclude {
		return operand
	}
	return map[string]any{"$not": operand}
}

func (filterBuilder) VisitFieldValue(q *query.FieldValue) map[string]any {
	return map[string]any{filterKey(q.Name()): q.Value()}
}

func (filterBuilder) VisitFieldRange(q *query.FieldRange) map[string]any {
	lower, upper := "$gte", "$lte"
	if q.IsExclusive() {
		lower, upper = "$gt", "$lt"
	}

	bounds := make(map[string]any)
	if q.Start() != nil {
		bounds[lower] = q.Start()
	}
	if q.End() != nil {
		bounds[upper] = q.End()
	}
	return map[string]any{filterKey(q.Name()): bounds}
}

func (filterBuilder) VisitFieldWildcard(q *query.FieldWildcard) map[string]any {
	pattern := "<invalid>"
	if re, err := compilePattern(q.Value()); err == nil {
		pattern = re.String()
	}
	return map[string]any{filterKey(q.Name()): map[string]any{"$regex": pattern}}
}

func filterKey(name string) string {
	if name == "" {
		return anyFieldKey
	}
	return name
}
