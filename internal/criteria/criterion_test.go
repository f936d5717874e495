package criteria

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type personSearch struct {
	Paging
	Name    *StringCriterion
	Age     *IntegerCriterion
	Balance *DecimalCriterion
	Active  *BooleanCriterion
}

func (s *personSearch) Fields() []Field {
	return []Field{
		String("Name", s.Name),
		Integer("Age", s.Age),
		Decimal("Balance", s.Balance),
		Boolean("Active", s.Active),
	}
}

func TestField_AbsentCriterion(t *testing.T) {
	var c Criteria = &personSearch{Paging: NewPaging()}

	for _, f := range c.Fields() {
		assert.False(t, f.Present, f.Name)
		assert.False(t, f.Sorted(), f.Name)
		op, err := f.Operator()
		require.NoError(t, err)
		assert.Equal(t, OpNone, op)
	}
	assert.Equal(t, DefaultPageSize, c.Page().PageSize)
}

func TestField_PresentCriterion(t *testing.T) {
	s := &personSearch{
		Name: &StringCriterion{Comparison: StringStartsWith, Value: "a", Sort: Ascending, SortOrder: 2},
	}

	f := s.Fields()[0]
	assert.True(t, f.Present)
	assert.True(t, f.Sorted())
	assert.Equal(t, ValueString, f.Type)
	assert.Equal(t, "a", f.Value)
	assert.Equal(t, 2, f.SortOrder)

	op, err := f.Operator()
	require.NoError(t, err)
	assert.Equal(t, OpStartsWith, op)
}

func TestField_NoneComparisonStillSorts(t *testing.T) {
	s := &personSearch{Age: &IntegerCriterion{Sort: Descending}}

	f := s.Fields()[1]
	op, err := f.Operator()
	require.NoError(t, err)
	assert.Equal(t, OpNone, op)
	assert.True(t, f.Sorted())
}

func TestField_DecimalIsCopied(t *testing.T) {
	d, _, err := apd.NewFromString("2.50")
	require.NoError(t, err)
	s := &personSearch{Balance: &DecimalCriterion{Comparison: DecimalEquals, Value: *d}}

	f := s.Fields()[2]
	got, ok := f.Value.(*apd.Decimal)
	require.True(t, ok)
	assert.Equal(t, "2.50", got.String())

	d.SetInt64(7)
	assert.Equal(t, "2.50", got.String(), "field must not alias the criterion value")
}

func TestField_TypeMismatch(t *testing.T) {
	f := Field{Name: "Age", Type: ValueInteger, Comparison: StringEquals, Value: "x", Present: true}

	_, err := f.Operator()
	require.Error(t, err)
	assert.True(t, IsTypeMismatch(err))
	assert.EqualError(t, err, `field "Age": criterion is string but target is integer`)
}

func TestField_OperandWallClock(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, zone)

	dt := DateTime("At", &DateTimeCriterion{Comparison: DateTimeEquals, Value: ts})
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), dt.Operand())

	dto := DateTimeOffset("At", &DateTimeOffsetCriterion{Comparison: DateTimeOffsetEquals, Value: ts})
	assert.Equal(t, ts, dto.Operand())
}

func TestSortBySortOrder(t *testing.T) {
	fields := []Field{
		String("A", &StringCriterion{Sort: Descending, SortOrder: 1}),
		String("C", &StringCriterion{Sort: Ascending, SortOrder: 0}),
		String("E", &StringCriterion{Sort: Ascending, SortOrder: 1}),
		String("F", &StringCriterion{Sort: Ascending, SortOrder: math.MinInt}),
		String("G", &StringCriterion{Sort: Ascending, SortOrder: math.MaxInt}),
	}

	SortBySortOrder(fields, func(f Field) int { return f.SortOrder })
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"F", "C", "A", "E", "G"}, names)
}

func TestPaging(t *testing.T) {
	p := Paging{}
	assert.Equal(t, DefaultPageSize, p.Normalized().PageSize)
	assert.Equal(t, 0, p.Offset())

	p = Paging{PageIndex: 3, PageSize: 25}
	assert.Equal(t, 75, p.Offset())

	require.NoError(t, Paging{}.Validate())
	err := Paging{PageIndex: -1}.Validate()
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidPaging, ErrorCodeOf(err))
	require.Error(t, Paging{PageSize: -3}.Validate())
	require.NoError(t, Paging{PageIndex: -1, ReturnAllResults: true}.Validate())
}

func TestPaging_RejectsOverflowingOffset(t *testing.T) {
	require.NoError(t, Paging{PageIndex: 1, PageSize: math.MaxInt}.Validate())
	require.NoError(t, Paging{PageIndex: math.MaxInt / 10}.Validate())

	for _, p := range []Paging{
		{PageIndex: 2, PageSize: math.MaxInt},
		{PageIndex: math.MaxInt/10 + 1, PageSize: 10},
		{PageIndex: math.MaxInt/10 + 1},
	} {
		err := p.Validate()
		require.Error(t, err, "%+v", p)
		assert.Equal(t, ErrCodeInvalidPaging, ErrorCodeOf(err))
	}

	require.NoError(t, Paging{PageIndex: math.MaxInt, PageSize: 10, ReturnAllResults: true}.Validate())
}

func TestPaging_WantsTotalCount(t *testing.T) {
	testCases := []struct {
		name   string
		paging Paging
		want   bool
	}{
		{"default", Paging{}, false},
		{"count on first page", Paging{IncludeTotalCountWithResults: true}, true},
		{"count on second page", Paging{PageIndex: 1, IncludeTotalCountWithResults: true}, false},
		{"return all", Paging{ReturnAllResults: true}, true},
		{"return all ignores index", Paging{ReturnAllResults: true, PageIndex: 4}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.paging.WantsTotalCount())
		})
	}
}

func TestDecodeDocument(t *testing.T) {
	doc := `
page_index: 1
page_size: 5
include_total_count: true
fields:
  - name: Name
    type: string
    comparison: StartsWith
    value: "a"
    sort: asc
    sort_order: 1
  - name: Age
    type: integer
    comparison: GreaterThanOrEquals
    value: 2
  - name: Balance
    type: decimal
    comparison: LessThan
    value: 2.75
  - name: Born
    type: datetime
    comparison: Before
    value: 2020-01-02
  - name: Active
    type: bool
    sort: descending
`
	set, err := DecodeDocument(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 1, set.PageIndex)
	assert.Equal(t, 5, set.PageSize)
	assert.True(t, set.IncludeTotalCountWithResults)
	require.Len(t, set.Fields(), 5)

	name, ok := set.Lookup("Name")
	require.True(t, ok)
	assert.Equal(t, StringStartsWith, name.Comparison)
	assert.Equal(t, "a", name.Value)
	assert.Equal(t, Ascending, name.Sort)

	age, _ := set.Lookup("Age")
	assert.Equal(t, int64(2), age.Value)

	balance, _ := set.Lookup("Balance")
	assert.Equal(t, "2.75", balance.Value.(*apd.Decimal).String())

	born, _ := set.Lookup("Born")
	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), born.Value)

	active, _ := set.Lookup("Active")
	assert.Equal(t, BooleanNone, active.Comparison)
	assert.Nil(t, active.Value)
	assert.Equal(t, Descending, active.Sort)
}

func TestDecodeDocument_OrdinalComparison(t *testing.T) {
	doc := `
fields:
  - name: Name
    type: string
    comparison: 613
    value: x
`
	set, err := DecodeDocument(strings.NewReader(doc))
	require.NoError(t, err)

	f := set.Fields()[0]
	_, err = f.Operator()
	assert.EqualError(t, err, "StringComparison with value 613 hasn't been implemented")
}

func TestDecodeDocument_Errors(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown key", "pagesize: 3\n", "failed to parse criteria YAML"},
		{"missing type", "fields:\n  - name: A\n", "type is required"},
		{"missing value", "fields:\n  - name: A\n    type: int\n    comparison: Equals\n", "value is required"},
		{"bad integer", "fields:\n  - name: A\n    type: int\n    comparison: Equals\n    value: x\n", "invalid integer"},
		{"bad comparison", "fields:\n  - name: A\n    type: bool\n    comparison: StartsWith\n    value: true\n", "unknown BooleanComparison"},
		{"bad sort", "fields:\n  - name: A\n    type: bool\n    sort: sideways\n", "unknown sort direction"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeDocument(strings.NewReader(tc.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
