package parser

import (
	"testing"

	"github.com/ocdb/ocdb-query/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser(0)
	require.NoError(t, err)
	return p
}

func TestParseSimple(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name     string
		input    string
		expected query.Query
	}{
		{
			name:     "bare term",
			input:    "chl",
			expected: query.Must(query.Value("", "chl")),
		},
		{
			name:     "named value",
			input:    "investigators:ernie",
			expected: query.Must(query.Value("investigators", "ernie")),
		},
		{
			name:     "integer literal",
			input:    "depth:10",
			expected: query.Must(query.Value("depth", 10)),
		},
		{
			name:     "negative integer literal",
			input:    "depth:-10",
			expected: query.Must(query.Value("depth", -10)),
		},
		{
			name:     "float literal",
			input:    "chl:0.25",
			expected: query.Must(query.Value("chl", 0.25)),
		},
		{
			name:     "boolean literal",
			input:    "shallow:true",
			expected: query.Must(query.Value("shallow", true)),
		},
		{
			name:     "quoted text keeps its literal form",
			input:    `flag:"true"`,
			expected: query.Must(query.Value("flag", "true")),
		},
		{
			name:     "quoted text with spaces",
			input:    `"a b"`,
			expected: query.Must(query.Value("", "a b")),
		},
		{
			name:     "quoted text with escaped quote",
			input:    `"say \"hi\""`,
			expected: query.Must(query.Value("", `say "hi"`)),
		},
		{
			name:     "wildcard term",
			input:    "name:er?ie*",
			expected: query.Must(query.Wildcard("name", "er?ie*")),
		},
		{
			name:     "escaped star is a plain value",
			input:    `name:er\*ie`,
			expected: query.Must(query.Value("name", "er*ie")),
		},
		{
			name:     "inclusive range",
			input:    "depth:[1 TO 10]",
			expected: query.Must(query.Range("depth", 1, 10)),
		},
		{
			name:     "exclusive range",
			input:    "depth:{1 TO 10}",
			expected: query.Must(query.ExclusiveRange("depth", 1, 10)),
		},
		{
			name:     "open lower bound",
			input:    "depth:[* TO 10]",
			expected: query.Must(query.Range("depth", nil, 10)),
		},
		{
			name:     "open upper bound",
			input:    "depth:[0.5 TO *]",
			expected: query.Must(query.Range("depth", 0.5, nil)),
		},
		{
			name:     "range with negative bound",
			input:    "lat:[-90 TO 90]",
			expected: query.Must(query.Range("lat", -90, 90)),
		},
		{
			name:     "unnamed range",
			input:    "[1 TO 2]",
			expected: query.Must(query.Range("", 1, 2)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := p.Parse(tt.input)
			require.NoError(t, err)
			assert.True(t, query.Equal(tt.expected, node),
				"expected %s, got %s", tt.expected.Repr(), node.Repr())
		})
	}
}

func TestParseOperators(t *testing.T) {
	p := newTestParser(t)

	a := query.Must(query.Value("", "a"))
	b := query.Must(query.Value("", "b"))
	c := query.Must(query.Value("", "c"))

	tests := []struct {
		name     string
		input    string
		expected query.Query
	}{
		{
			name:     "AND",
			input:    "a AND b",
			expected: query.Must(query.And(a, b)),
		},
		{
			name:     "OR",
			input:    "a OR b",
			expected: query.Must(query.Or(a, b)),
		},
		{
			name:     "AND binds tighter than OR",
			input:    "a OR b AND c",
			expected: query.Must(query.Or(a, query.Must(query.And(b, c)))),
		},
		{
			name:     "parens override precedence",
			input:    "a AND (b OR c)",
			expected: query.Must(query.And(a, query.Must(query.Or(b, c)))),
		},
		{
			name:     "AND is left associative",
			input:    "a AND b AND c",
			expected: query.Must(query.And(query.Must(query.And(a, b)), c)),
		},
		{
			name:     "NOT",
			input:    "NOT a",
			expected: query.Must(query.Not(a)),
		},
		{
			name:     "NOT binds tighter than AND",
			input:    "NOT a AND b",
			expected: query.Must(query.And(query.Must(query.Not(a)), b)),
		},
		{
			name:     "include and exclude markers",
			input:    "+a -b",
			expected: query.Must(query.NewPhrase(query.Must(query.Include(a)), query.Must(query.Exclude(b)))),
		},
		{
			name:     "phrase of three terms",
			input:    "a b c",
			expected: query.Must(query.NewPhrase(a, b, c)),
		},
		{
			name:     "phrase keeps operator grouping per term",
			input:    "a b OR c",
			expected: query.Must(query.NewPhrase(a, query.Must(query.Or(b, c)))),
		},
		{
			name:     "nested unary operators",
			input:    "NOT +a",
			expected: query.Must(query.Not(query.Must(query.Include(a)))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := p.Parse(tt.input)
			require.NoError(t, err)
			assert.True(t, query.Equal(tt.expected, node),
				"expected %s, got %s", tt.expected.Repr(), node.Repr())
		})
	}
}

func TestRoundTrip(t *testing.T) {
	p := newTestParser(t)

	trees := []query.Query{
		query.Must(query.Value("", "chl")),
		query.Must(query.Value("", "a b")),
		query.Must(query.Value("investigators", "ernie")),
		query.Must(query.Value("depth", 10)),
		query.Must(query.Value("shallow", true)),
		query.Must(query.Wildcard("name", "er?ie*")),
		query.Must(query.Range("depth", 1, 10)),
		query.Must(query.ExclusiveRange("depth", 0.5, nil)),
		query.Must(query.Range("", nil, 100)),
		query.Must(query.Not(query.Must(query.Value("", "a")))),
		query.Must(query.Include(query.Must(query.Value("f", "x")))),
		query.Must(query.And(
			query.Must(query.Value("", "a")),
			query.Must(query.Or(
				query.Must(query.Value("", "b")),
				query.Must(query.Value("", "c")),
			)),
		)),
		query.Must(query.Or(
			query.Must(query.Value("", "a")),
			query.Must(query.And(
				query.Must(query.Value("", "b")),
				query.Must(query.Value("", "c")),
			)),
		)),
		query.Must(query.NewPhrase(
			query.Must(query.Value("", "a")),
			query.Must(query.Exclude(query.Must(query.Wildcard("", "b*")))),
			query.Must(query.Range("depth", 0, 100)),
		)),
		query.Must(query.And(
			query.Must(query.NewPhrase(
				query.Must(query.Value("", "a")),
				query.Must(query.Value("", "b")),
			)),
			query.Must(query.Value("", "c")),
		)),
	}

	for _, tree := range trees {
		t.Run(tree.String(), func(t *testing.T) {
			text := tree.String()
			reparsed, err := p.Parse(text)
			require.NoError(t, err)
			assert.True(t, query.Equal(tree, reparsed),
				"round trip of %q: expected %s, got %s", text, tree.Repr(), reparsed.Repr())
			// The canonical text is a fixed point
			assert.Equal(t, text, reparsed.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "whitespace only", input: "   "},
		{name: "unbalanced paren", input: "(a AND b"},
		{name: "dangling operator", input: "a AND"},
		{name: "range missing TO", input: "depth:[1 10]"},
		{name: "range with both bounds open", input: "depth:[* TO *]"},
		{name: "unterminated quote", input: `"abc`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestMaxDepth(t *testing.T) {
	p, err := NewParser(3)
	require.NoError(t, err)

	node, err := p.Parse("NOT NOT a")
	require.NoError(t, err)
	assert.Equal(t, 3, query.Depth(node))

	_, err = p.Parse("NOT NOT NOT a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum")
}

func TestNewParserRejectsNegativeDepth(t *testing.T) {
	_, err := NewParser(-1)
	assert.Error(t, err)
}
