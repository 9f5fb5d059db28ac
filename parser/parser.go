package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/ocdb/ocdb-query/query"
)

// DefaultMaxDepth bounds the nesting of parsed expressions. Query text is
// untrusted input, so the limit is enforced here rather than in the tree
// constructors.
const DefaultMaxDepth = 64

// Parser parses query expressions in the Lucene-like catalog search syntax
// into query trees
type Parser struct {
	maxDepth   int
	exprParser *participle.Parser[exprGrammar]
}

// exprGrammar is a space-separated sequence of sub-expressions (a phrase)
type exprGrammar struct {
	Terms []*orExpr `parser:"@@+"`
}

type orExpr struct {
	First *andExpr   `parser:"@@"`
	Rest  []*andExpr `parser:"('OR' @@)*"`
}

type andExpr struct {
	First *unaryExpr   `parser:"@@"`
	Rest  []*unaryExpr `parser:"('AND' @@)*"`
}

type unaryExpr struct {
	Not     *unaryExpr   `parser:"'NOT' @@"`
	Include *unaryExpr   `parser:"| '+' @@"`
	Exclude *unaryExpr   `parser:"| '-' @@"`
	Primary *primaryExpr `parser:"| @@"`
}

type primaryExpr struct {
	Paren *exprGrammar `parser:"'(' @@ ')'"`
	Field *fieldExpr   `parser:"| @@"`
}

// fieldExpr is a predicate with an optional field-name prefix
type fieldExpr struct {
	Name  string     `parser:"(@Term ':')?"`
	Range *rangeExpr `parser:"( @@"`
	Term  *termExpr  `parser:"| @@ )"`
}

type rangeExpr struct {
	Inclusive *boundsExpr `parser:"'[' @@ ']'"`
	Exclusive *boundsExpr `parser:"| '{' @@ '}'"`
}

type boundsExpr struct {
	Start *termExpr `parser:"@@ 'TO'"`
	End   *termExpr `parser:"@@"`
}

// termExpr is a quoted or bare scalar literal. The optional sign admits
// negative numbers in places where "-" cannot mean exclusion.
type termExpr struct {
	Quoted *string `parser:"@Quoted"`
	Sign   string  `parser:"| @'-'?"`
	Bare   *string `parser:"  @Term"`
}

// NewParser creates a parser for the catalog search syntax. A maxDepth of 0
// selects DefaultMaxDepth.
func NewParser(maxDepth int) (*Parser, error) {
	if maxDepth < 0 {
		return nil, fmt.Errorf("max depth must not be negative, got %d", maxDepth)
	}
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}

	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Keyword", Pattern: `\b(?:AND|OR|NOT|TO)\b`},
		{Name: "Quoted", Pattern: `"(?:\\.|[^"\\])*"`},
		{Name: "Term", Pattern: `(?:[^\s+\-:()\[\]{}"\\]|\\.)(?:[^\s:()\[\]{}"\\]|\\.)*`},
		{Name: "Punct", Pattern: `[:()\[\]{}+\-]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	exprParser, err := participle.Build[exprGrammar](
		participle.Lexer(lex),
		participle.UseLookahead(2),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build expression parser: %w", err)
	}

	return &Parser{
		maxDepth:   maxDepth,
		exprParser: exprParser,
	}, nil
}

// Parse parses a query expression into a tree
func (p *Parser) Parse(input string) (query.Query, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty query expression")
	}

	grammar, err := p.exprParser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}

	node, err := p.buildExpr(grammar)
	if err != nil {
		return nil, err
	}

	if d := query.Depth(node); d > p.maxDepth {
		return nil, fmt.Errorf("query nesting depth %d exceeds maximum %d", d, p.maxDepth)
	}

	return node, nil
}

// buildExpr builds the tree from a parsed expression sequence. A single
// sub-expression stays as is, multiple become a phrase.
func (p *Parser) buildExpr(e *exprGrammar) (query.Query, error) {
	terms := make([]query.Query, len(e.Terms))
	for i, t := range e.Terms {
		node, err := p.buildOr(t)
		if err != nil {
			return nil, err
		}
		terms[i] = node
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return query.NewPhrase(terms...)
}

func (p *Parser) buildOr(e *orExpr) (query.Query, error) {
	node, err := p.buildAnd(e.First)
	if err != nil {
		return nil, err
	}
	for _, rest := range e.Rest {
		right, err := p.buildAnd(rest)
		if err != nil {
			return nil, err
		}
		node, err = query.NewBinaryOp(query.KwOr, node, right)
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (p *Parser) buildAnd(e *andExpr) (query.Query, error) {
	node, err := p.buildUnary(e.First)
	if err != nil {
		return nil, err
	}
	for _, rest := range e.Rest {
		right, err := p.buildUnary(rest)
		if err != nil {
			return nil, err
		}
		node, err = query.NewBinaryOp(query.KwAnd, node, right)
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (p *Parser) buildUnary(e *unaryExpr) (query.Query, error) {
	var op string
	var inner *unaryExpr

	switch {
	case e.Not != nil:
		op, inner = query.KwNot, e.Not
	case e.Include != nil:
		op, inner = query.OpInclude, e.Include
	case e.Exclude != nil:
		op, inner = query.OpExclude, e.Exclude
	case e.Primary != nil:
		return p.buildPrimary(e.Primary)
	default:
		return nil, fmt.Errorf("invalid unary expression")
	}

	operand, err := p.buildUnary(inner)
	if err != nil {
		return nil, err
	}
	return query.NewUnaryOp(op, operand)
}

func (p *Parser) buildPrimary(e *primaryExpr) (query.Query, error) {
	if e.Paren != nil {
		return p.buildExpr(e.Paren)
	}
	if e.Field != nil {
		return p.buildField(e.Field)
	}
	return nil, fmt.Errorf("invalid primary expression")
}

func (p *Parser) buildField(e *fieldExpr) (query.Query, error) {
	name := unescapeString(e.Name)

	if e.Range != nil {
		bounds := e.Range.Inclusive
		exclusive := false
		if bounds == nil {
			bounds = e.Range.Exclusive
			exclusive = true
		}
		start, err := buildBound(bounds.Start)
		if err != nil {
			return nil, err
		}
		end, err := buildBound(bounds.End)
		if err != nil {
			return nil, err
		}
		return query.NewFieldRange(name, start, end, exclusive)
	}

	return buildTermValue(e.Term, name)
}

// buildTermValue turns a literal in value position into a predicate
func buildTermValue(t *termExpr, name string) (query.Query, error) {
	if t.Quoted != nil {
		return query.NewFieldValue(name, unquote(*t.Quoted))
	}

	raw := t.Sign + *t.Bare
	if query.IsWildcardText(raw) {
		// Keep the raw text, escapes are significant in patterns
		return query.NewFieldWildcard(name, raw)
	}
	return query.NewFieldValue(name, inferScalar(raw))
}

// buildBound turns a literal in range-bound position into a scalar. A bare
// "*" leaves the bound open.
func buildBound(t *termExpr) (any, error) {
	if t.Quoted != nil {
		return unquote(*t.Quoted), nil
	}
	raw := t.Sign + *t.Bare
	if raw == "*" {
		return nil, nil
	}
	return inferScalar(raw), nil
}

// inferScalar maps a bare literal to its scalar form: boolean and numeric
// literals keep their type, everything else is unescaped text.
func inferScalar(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return unescapeString(raw)
}

// unquote strips the surrounding quotes of a Quoted token and resolves its
// escape sequences
func unquote(s string) string {
	return unescapeString(s[1 : len(s)-1])
}

// unescapeString handles unescaping of backslash-escaped characters
func unescapeString(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	result := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			result = append(result, s[i+1])
			i++
			continue
		}
		result = append(result, s[i])
	}
	return string(result)
}
