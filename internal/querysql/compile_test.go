package querysql

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/partialsql/internal/queryir"
)

func field(name string) queryir.EntityFieldReference {
	return queryir.EntityFieldReference{Entity: "entity", Field: name}
}

func single(c queryir.Criterion) queryir.OrCriteria {
	return queryir.OrCriteria{queryir.AndCriteria{c}}
}

func TestRender_Criterion(t *testing.T) {
	tests := []struct {
		name string
		c    queryir.Criterion
		want string
	}{
		{
			name: "equals number",
			c:    queryir.Criterion{Operator: queryir.Equals, Left: field("account_id"), Right: queryir.NumberValue("456")},
			want: "((entity.account_id = 456))",
		},
		{
			name: "not equals string",
			c:    queryir.Criterion{Operator: queryir.NotEquals, Left: field("status"), Right: queryir.StringValue("closed")},
			want: "((entity.status != 'closed'))",
		},
		{
			name: "string with embedded quote",
			c:    queryir.Criterion{Operator: queryir.Equals, Left: field("name"), Right: queryir.StringValue("o'brien")},
			want: "((entity.name = 'o''brien'))",
		},
		{
			name: "boolean",
			c:    queryir.Criterion{Operator: queryir.Equals, Left: field("active"), Right: queryir.BooleanValue(false)},
			want: "((entity.active = FALSE))",
		},
		{
			name: "fractional number kept as supplied",
			c:    queryir.Criterion{Operator: queryir.GreaterThan, Left: field("score"), Right: queryir.NumberValue("2.50")},
			want: "((entity.score > 2.50))",
		},
		{
			name: "less than with constant on the left",
			c:    queryir.Criterion{Operator: queryir.LessThan, Left: queryir.NumberValue("3"), Right: field("level")},
			want: "((3 < entity.level))",
		},
		{
			name: "in list of numbers",
			c: queryir.Criterion{
				Operator: queryir.InList,
				Left:     field("org_unit"),
				Right:    queryir.NumberArrayValue{"1", "2", "3"},
			},
			want: "((entity.org_unit = ANY(ARRAY[1, 2, 3])))",
		},
		{
			name: "in list of strings",
			c: queryir.Criterion{
				Operator: queryir.InList,
				Left:     field("role"),
				Right:    queryir.StringSetValue{"admin", "owner"},
			},
			want: "((entity.role = ANY(ARRAY['admin', 'owner'])))",
		},
		{
			name: "set on the right becomes containment",
			c: queryir.Criterion{
				Operator: queryir.Equals,
				Left:     field("tags"),
				Right:    queryir.StringSetValue{"a", "b"},
			},
			want: "((entity.tags @> ARRAY['a', 'b'] AND entity.tags <@ ARRAY['a', 'b']))",
		},
		{
			name: "set on the left becomes containment",
			c: queryir.Criterion{
				Operator: queryir.Equals,
				Left:     queryir.NumberSetValue{"1", "2"},
				Right:    field("ids"),
			},
			want: "((entity.ids @> ARRAY[1, 2] AND entity.ids <@ ARRAY[1, 2]))",
		},
		{
			name: "array equality stays plain equality",
			c: queryir.Criterion{
				Operator: queryir.Equals,
				Left:     field("ids"),
				Right:    queryir.NumberArrayValue{"1", "2"},
			},
			want: "((entity.ids = ARRAY[1, 2]))",
		},
		{
			name: "count",
			c: queryir.Criterion{
				Operator: queryir.Equals,
				Left:     queryir.FunctionCallOnFieldReference{Field: field("f"), Function: queryir.Count},
				Right:    queryir.NumberValue("4"),
			},
			want: "((cardinality(entity.f) = 4))",
		},
		{
			name: "max",
			c: queryir.Criterion{
				Operator: queryir.GreaterThan,
				Left:     queryir.FunctionCallOnFieldReference{Field: field("scores"), Function: queryir.Max},
				Right:    queryir.NumberValue("10"),
			},
			want: "(((SELECT MAX(val) FROM unnest(entity.scores) AS t(val)) > 10))",
		},
		{
			name: "sum",
			c: queryir.Criterion{
				Operator: queryir.LessThan,
				Left:     queryir.FunctionCallOnFieldReference{Field: field("costs"), Function: queryir.Sum},
				Right:    queryir.NumberValue("100"),
			},
			want: "(((SELECT SUM(val) FROM unnest(entity.costs) AS t(val)) < 100))",
		},
		{
			name: "sort",
			c: queryir.Criterion{
				Operator: queryir.Equals,
				Left:     queryir.FunctionCallOnFieldReference{Field: field("ids"), Function: queryir.Sort},
				Right:    queryir.NumberArrayValue{"1", "2"},
			},
			want: "((ARRAY(SELECT val FROM unnest(entity.ids) AS t(val) ORDER BY val) = ARRAY[1, 2]))",
		},
		{
			name: "abs and ceil",
			c: queryir.Criterion{
				Operator: queryir.Equals,
				Left:     queryir.FunctionCallOnFieldReference{Field: field("delta"), Function: queryir.Abs},
				Right:    queryir.FunctionCallOnFieldReference{Field: field("limit"), Function: queryir.Ceil},
			},
			want: "((abs(entity.delta) = ceil(entity.limit)))",
		},
		{
			name: "starts_with tests left for the right prefix",
			c: queryir.Criterion{
				Operator: queryir.Equals,
				Left: queryir.InfixFunctionCallOnOperands{
					Function: queryir.StartsWith,
					Left:     field("o"),
					Right:    queryir.StringValue("foo"),
				},
				Right: queryir.BooleanValue(true),
			},
			want: "((starts_with(entity.o, 'foo') = TRUE))",
		},
		{
			name: "plus",
			c: queryir.Criterion{
				Operator: queryir.Equals,
				Left:     queryir.InfixFunctionCallOnOperands{Function: queryir.Plus, Left: field("a"), Right: queryir.NumberValue("1")},
				Right:    queryir.NumberValue("2"),
			},
			want: "((entity.a + 1 = 2))",
		},
		{
			name: "mod",
			c: queryir.Criterion{
				Operator: queryir.Equals,
				Left:     queryir.InfixFunctionCallOnOperands{Function: queryir.Mod, Left: field("n"), Right: queryir.NumberValue("2")},
				Right:    queryir.NumberValue("0"),
			},
			want: "((entity.n % 2 = 0))",
		},
		{
			name: "nested arithmetic keeps grouping",
			c: queryir.Criterion{
				Operator: queryir.Equals,
				Left: queryir.InfixFunctionCallOnOperands{
					Function: queryir.Minus,
					Left:     field("a"),
					Right: queryir.InfixFunctionCallOnOperands{
						Function: queryir.Plus,
						Left:     field("b"),
						Right:    queryir.NumberValue("1"),
					},
				},
				Right: queryir.NumberValue("0"),
			},
			want: "((entity.a - (entity.b + 1) = 0))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(single(tt.c)))
		})
	}
}

func TestRender_Grouping(t *testing.T) {
	a := queryir.Criterion{Operator: queryir.Equals, Left: field("a"), Right: queryir.NumberValue("1")}
	b := queryir.Criterion{Operator: queryir.Equals, Left: field("b"), Right: queryir.StringValue("x")}

	tests := []struct {
		name string
		or   queryir.OrCriteria
		want string
	}{
		{"nil", nil, "()"},
		{"no groups", queryir.OrCriteria{}, "()"},
		{"one empty group", queryir.OrCriteria{{}}, "(())"},
		{"conjunction", queryir.OrCriteria{{a, b}}, "((entity.a = 1 AND entity.b = 'x'))"},
		{"disjunction", queryir.OrCriteria{{a}, {b}}, "((entity.a = 1) OR (entity.b = 'x'))"},
		{"mixed", queryir.OrCriteria{{a, b}, {}, {b}}, "((entity.a = 1 AND entity.b = 'x') OR () OR (entity.b = 'x'))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.or))
		})
	}
}

func TestCompile_Parameterized(t *testing.T) {
	compiler := NewSQLCompiler()

	or := queryir.OrCriteria{
		{
			{Operator: queryir.Equals, Left: field("account_id"), Right: queryir.NumberValue("456")},
			{Operator: queryir.Equals, Left: field("name"), Right: queryir.StringValue("o'brien")},
		},
		{
			{Operator: queryir.InList, Left: field("org_unit"), Right: queryir.NumberArrayValue{"1", "2"}},
			{Operator: queryir.GreaterThan, Left: field("score"), Right: queryir.NumberValue("1.5")},
			{Operator: queryir.Equals, Left: field("active"), Right: queryir.BooleanValue(true)},
		},
	}

	sql, params, err := compiler.Compile(or)
	require.NoError(t, err)

	assert.Equal(t,
		"((entity.account_id = $1 AND entity.name = $2) OR (entity.org_unit = ANY($3) AND entity.score > $4 AND entity.active = $5))",
		sql)
	// Values NOT in SQL
	assert.NotContains(t, sql, "brien")
	require.Len(t, params, 5)
	assert.Equal(t, int64(456), params[0])
	assert.Equal(t, "o'brien", params[1])
	assert.Equal(t, pq.Array([]int64{1, 2}), params[2])
	assert.Equal(t, 1.5, params[3])
	assert.Equal(t, true, params[4])
}

func TestCompile_SetEquality(t *testing.T) {
	compiler := NewSQLCompiler()

	sql, params, err := compiler.Compile(single(queryir.Criterion{
		Operator: queryir.Equals,
		Left:     field("tags"),
		Right:    queryir.StringSetValue{"a", "b"},
	}))
	require.NoError(t, err)

	assert.Equal(t, "((entity.tags @> $1 AND entity.tags <@ $1))", sql)
	assert.Equal(t, []any{pq.Array([]string{"a", "b"})}, params)
}

func TestCompile_Offset(t *testing.T) {
	compiler := &SQLCompiler{Offset: 2}

	sql, params, err := compiler.Compile(single(queryir.Criterion{
		Operator: queryir.Equals, Left: field("id"), Right: queryir.NumberValue("7"),
	}))
	require.NoError(t, err)
	assert.Equal(t, "((entity.id = $3))", sql)
	assert.Equal(t, []any{int64(7)}, params)
}

func TestCompile_FractionalArray(t *testing.T) {
	compiler := NewSQLCompiler()

	_, params, err := compiler.Compile(single(queryir.Criterion{
		Operator: queryir.InList, Left: field("ratio"), Right: queryir.NumberArrayValue{"1", "2.5"},
	}))
	require.NoError(t, err)
	assert.Equal(t, []any{pq.Array([]float64{1, 2.5})}, params)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		or   queryir.OrCriteria
		want string
	}{
		{
			name: "field pair",
			or:   single(queryir.Criterion{Operator: queryir.Equals, Left: field("a"), Right: field("b")}),
			want: "invalid criteria",
		},
		{
			name: "constant pair",
			or:   single(queryir.Criterion{Operator: queryir.Equals, Left: queryir.NumberValue("1"), Right: queryir.NumberValue("1")}),
			want: "invalid criteria",
		},
		{
			name: "integer overflow",
			or:   single(queryir.Criterion{Operator: queryir.Equals, Left: field("a"), Right: queryir.NumberValue("99999999999999999999")}),
			want: "out of int64 range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewSQLCompiler().Compile(tt.or)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
