package memfilter

import (
	"slices"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/testutil"
)

func personProperties() *Properties[testutil.Person] {
	return NewProperties(
		Integer("Id", func(p testutil.Person) *int64 { return &p.ID }),
		String("Name", func(p testutil.Person) *string { return p.Name }),
		Integer("Age", func(p testutil.Person) *int64 { return p.Age }),
		Decimal("Balance", func(p testutil.Person) *apd.Decimal { return p.Balance }),
		DateTime("Born", func(p testutil.Person) *time.Time { return p.Born }),
		DateTimeOffset("Seen", func(p testutil.Person) *time.Time { return p.Seen }),
		Boolean("Active", func(p testutil.Person) *bool { return p.Active }),
	)
}

func filterIDs(t *testing.T, c criteria.Criteria) []int64 {
	t.Helper()
	pred, err := Compile(personProperties(), c)
	require.NoError(t, err)
	return testutil.IDs(Filter(testutil.People(), pred))
}

func TestCompile_EmptyCriteriaMatchesEverything(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 3, 4}, filterIDs(t, testutil.NewPersonSearch()))
}

func TestCompile_NoneComparisonIsNoPredicate(t *testing.T) {
	s := testutil.NewPersonSearch()
	s.Name = &criteria.StringCriterion{Value: "zzz"}
	assert.Equal(t, []int64{1, 2, 3, 4}, filterIDs(t, s))
}

func TestCompile_Comparisons(t *testing.T) {
	testCases := []struct {
		name  string
		field criteria.Field
		want  []int64
	}{
		{"integer >= 2 skips null", criteria.Integer("Age", &criteria.IntegerCriterion{Comparison: criteria.IntegerGreaterThanOrEquals, Value: 2}), []int64{2, 3}},
		{"integer < 3", criteria.Integer("Age", &criteria.IntegerCriterion{Comparison: criteria.IntegerLessThan, Value: 3}), []int64{1, 2}},
		{"integer <= 1", criteria.Integer("Age", &criteria.IntegerCriterion{Comparison: criteria.IntegerLessThanOrEquals, Value: 1}), []int64{1}},
		{"integer > 1", criteria.Integer("Age", &criteria.IntegerCriterion{Comparison: criteria.IntegerGreaterThan, Value: 1}), []int64{2, 3}},
		{"integer = 2", criteria.Integer("Age", &criteria.IntegerCriterion{Comparison: criteria.IntegerEquals, Value: 2}), []int64{2}},
		{"integer <> 2 skips null", criteria.Integer("Age", &criteria.IntegerCriterion{Comparison: criteria.IntegerDoesNotEqual, Value: 2}), []int64{1, 3}},

		{"starts with a", criteria.String("Name", &criteria.StringCriterion{Comparison: criteria.StringStartsWith, Value: "a"}), []int64{1, 2, 4}},
		{"contains a", criteria.String("Name", &criteria.StringCriterion{Comparison: criteria.StringContains, Value: "a"}), []int64{1, 2, 4}},
		{"ends with b", criteria.String("Name", &criteria.StringCriterion{Comparison: criteria.StringEndsWith, Value: "b"}), []int64{2}},
		{"string equals", criteria.String("Name", &criteria.StringCriterion{Comparison: criteria.StringEquals, Value: "aa"}), []int64{4}},
		{"string does not equal", criteria.String("Name", &criteria.StringCriterion{Comparison: criteria.StringDoesNotEqual, Value: "aa"}), []int64{1, 2}},
		{"string is case sensitive", criteria.String("Name", &criteria.StringCriterion{Comparison: criteria.StringStartsWith, Value: "A"}), nil},

		{"decimal > 2", criteria.Decimal("Balance", &criteria.DecimalCriterion{Comparison: criteria.DecimalGreaterThan, Value: *apd.New(2, 0)}), []int64{2, 4}},
		{"decimal = 10", criteria.Decimal("Balance", &criteria.DecimalCriterion{Comparison: criteria.DecimalEquals, Value: *apd.New(10, 0)}), []int64{4}},

		{"born before 1991", criteria.DateTime("Born", &criteria.DateTimeCriterion{Comparison: criteria.DateTimeBefore, Value: testutil.Date(1991, 1, 1)}), []int64{1, 2}},
		{"born after or on 1990-05-01", criteria.DateTime("Born", &criteria.DateTimeCriterion{Comparison: criteria.DateTimeAfterOrEquals, Value: testutil.Date(1990, 5, 1)}), []int64{1, 3}},
		{"wall clock ignores zone", criteria.DateTime("Born", &criteria.DateTimeCriterion{
			Comparison: criteria.DateTimeEquals,
			Value:      time.Date(1990, 5, 1, 0, 0, 0, 0, time.FixedZone("UTC+9", 9*60*60)),
		}), []int64{1}},

		{"seen equals instant", criteria.DateTimeOffset("Seen", &criteria.DateTimeOffsetCriterion{
			Comparison: criteria.DateTimeOffsetEquals,
			Value:      time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
		}), []int64{2}},
		{"seen after", criteria.DateTimeOffset("Seen", &criteria.DateTimeOffsetCriterion{
			Comparison: criteria.DateTimeOffsetAfter,
			Value:      time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		}), []int64{2, 3}},

		{"active", criteria.Boolean("Active", &criteria.BooleanCriterion{Comparison: criteria.BooleanEquals, Value: true}), []int64{1, 3}},
		{"not active skips null", criteria.Boolean("Active", &criteria.BooleanCriterion{Comparison: criteria.BooleanDoesNotEqual, Value: true}), []int64{2}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, filterIDs(t, criteria.NewSet(tc.field)))
		})
	}
}

func TestCompile_EqualsAndDoesNotEqualPartitionNonNull(t *testing.T) {
	for _, v := range []int64{1, 2, 3, 99} {
		eq := filterIDs(t, criteria.NewSet(criteria.Integer("Age", &criteria.IntegerCriterion{Comparison: criteria.IntegerEquals, Value: v})))
		ne := filterIDs(t, criteria.NewSet(criteria.Integer("Age", &criteria.IntegerCriterion{Comparison: criteria.IntegerDoesNotEqual, Value: v})))

		all := append(slices.Clone(eq), ne...)
		slices.Sort(all)
		assert.Equal(t, []int64{1, 2, 3}, all, "value %d", v)
	}
}

func TestCompile_FieldsAreConjoined(t *testing.T) {
	s := testutil.NewPersonSearch()
	s.Name = &criteria.StringCriterion{Comparison: criteria.StringStartsWith, Value: "a"}
	s.Age = &criteria.IntegerCriterion{Comparison: criteria.IntegerGreaterThanOrEquals, Value: 2}
	assert.Equal(t, []int64{2}, filterIDs(t, s))
}

func TestCompile_FilterSuffixAndUnknownFields(t *testing.T) {
	set := criteria.NewSet(
		criteria.Integer("AgeFilter", &criteria.IntegerCriterion{Comparison: criteria.IntegerEquals, Value: 3}),
		criteria.String("Nickname", &criteria.StringCriterion{Comparison: criteria.StringEquals, Value: "nobody"}),
	)
	assert.Equal(t, []int64{3}, filterIDs(t, set))
}

func TestCompile_Errors(t *testing.T) {
	t.Run("unsupported comparison", func(t *testing.T) {
		s := testutil.NewPersonSearch()
		s.Active = &criteria.BooleanCriterion{Comparison: criteria.BooleanComparison(613)}

		_, err := Compile(personProperties(), s)
		require.Error(t, err)
		assert.EqualError(t, err, "BooleanComparison with value 613 hasn't been implemented")
	})

	t.Run("type mismatch", func(t *testing.T) {
		set := criteria.NewSet(criteria.String("Age", &criteria.StringCriterion{Comparison: criteria.StringEquals, Value: "1"}))

		_, err := Compile(personProperties(), set)
		require.Error(t, err)
		assert.True(t, criteria.IsTypeMismatch(err))
	})
}

func TestAll(t *testing.T) {
	s := testutil.NewPersonSearch()
	s.Active = &criteria.BooleanCriterion{Comparison: criteria.BooleanEquals, Value: true}
	pred, err := Compile(personProperties(), s)
	require.NoError(t, err)

	var ids []int64
	for p := range All(slices.Values(testutil.People()), pred) {
		ids = append(ids, p.ID)
		break
	}
	assert.Equal(t, []int64{1}, ids)
}

type record map[string]any

func TestDynamic(t *testing.T) {
	props := NewProperties(
		Dynamic("Score", criteria.ValueDecimal, func(r record) any { return r["score"] }),
		Dynamic("Count", criteria.ValueInteger, func(r record) any { return r["count"] }),
	)
	rows := []record{
		{"score": "1.25", "count": 1},
		{"score": 3.5, "count": int64(2)},
		{"score": nil, "count": "3"},
		{"count": "not a number"},
	}

	pred, err := Compile(props, criteria.NewSet(
		criteria.Decimal("Score", &criteria.DecimalCriterion{Comparison: criteria.DecimalGreaterThan, Value: *apd.New(1, 0)}),
	))
	require.NoError(t, err)
	assert.Len(t, Filter(rows, pred), 2)

	pred, err = Compile(props, criteria.NewSet(
		criteria.Integer("Count", &criteria.IntegerCriterion{Comparison: criteria.IntegerGreaterThanOrEquals, Value: 2}),
	))
	require.NoError(t, err)
	assert.Equal(t, []record{rows[1], rows[2]}, Filter(rows, pred))
}
