package memfilter

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/testutil"
)

func search(t *testing.T, s *testutil.PersonSearch) *criteria.SearchResult[testutil.Person] {
	t.Helper()
	result, err := Search(testutil.People(), personProperties(), s)
	require.NoError(t, err)
	return result
}

func TestSearch_Paging(t *testing.T) {
	testCases := []struct {
		name  string
		index int
		size  int
		want  []int64
	}{
		{"first page", 0, 3, []int64{1, 2, 3}},
		{"second page", 1, 3, []int64{4}},
		{"past the end", 5, 3, nil},
		{"default size", 0, 0, []int64{1, 2, 3, 4}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := testutil.NewPersonSearch()
			s.PageIndex = tc.index
			s.PageSize = tc.size

			assert.Equal(t, tc.want, testutil.IDs(search(t, s).Results))
		})
	}
}

func TestSearch_PageBoundsNearMaxInt(t *testing.T) {
	s := testutil.NewPersonSearch()
	s.PageIndex = 1
	s.PageSize = math.MaxInt
	assert.Empty(t, search(t, s).Results)

	s.PageIndex = 0
	assert.Equal(t, []int64{1, 2, 3, 4}, testutil.IDs(search(t, s).Results))

	s.PageIndex = math.MaxInt/10 + 1
	s.PageSize = 10
	_, err := Search(testutil.People(), personProperties(), s)
	assert.Equal(t, criteria.ErrCodeInvalidPaging, criteria.ErrorCodeOf(err))
}

func TestSearch_UnsortedPagesFollowPrimaryKey(t *testing.T) {
	people := testutil.People()
	slices.Reverse(people)

	s := testutil.NewPersonSearch()
	s.PageSize = 3

	result, err := Search(people, personProperties(), s)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 2}, testutil.IDs(result.Results))

	result, err = Search(people, personProperties().WithPrimaryKey("Id"), s)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, testutil.IDs(result.Results))

	s.ReturnAllResults = true
	result, err = Search(people, personProperties().WithPrimaryKey("Id"), s)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 2, 1}, testutil.IDs(result.Results))
}

func TestSearch_ReturnAllIgnoresPaging(t *testing.T) {
	s := testutil.NewPersonSearch()
	s.ReturnAllResults = true
	s.PageIndex = 9
	s.PageSize = 1

	result := search(t, s)
	assert.Equal(t, []int64{1, 2, 3, 4}, testutil.IDs(result.Results))
	require.NotNil(t, result.TotalCount)
	assert.Equal(t, 4, *result.TotalCount)
}

func TestSearch_TotalCountOnlyOnFirstPage(t *testing.T) {
	s := testutil.NewPersonSearch()
	s.PageSize = 1
	s.IncludeTotalCountWithResults = true
	s.Name = &criteria.StringCriterion{Comparison: criteria.StringStartsWith, Value: "a"}

	result := search(t, s)
	require.NotNil(t, result.TotalCount)
	assert.Equal(t, 3, *result.TotalCount)
	assert.Equal(t, []int64{1}, testutil.IDs(result.Results))

	s.PageIndex = 1
	result = search(t, s)
	assert.Nil(t, result.TotalCount)
	assert.Equal(t, []int64{2}, testutil.IDs(result.Results))
}

func TestSearch_MultiKeySort(t *testing.T) {
	s := testutil.NewPersonSearch()
	s.Active = &criteria.BooleanCriterion{Sort: criteria.Ascending, SortOrder: 0}
	s.Age = &criteria.IntegerCriterion{Sort: criteria.Descending, SortOrder: 1}

	// Active: nil(4) first, then false(2), then true(1, 3) by age desc.
	assert.Equal(t, []int64{4, 2, 3, 1}, testutil.IDs(search(t, s).Results))
}

func TestSearch_SortNullsLastDescending(t *testing.T) {
	s := testutil.NewPersonSearch()
	s.Name = &criteria.StringCriterion{Sort: criteria.Descending}

	assert.Equal(t, []int64{2, 4, 1, 3}, testutil.IDs(search(t, s).Results))
}

func TestSearch_SortOrderTieUsesPropertyOrder(t *testing.T) {
	s := testutil.NewPersonSearch()
	s.Active = &criteria.BooleanCriterion{Sort: criteria.Descending, SortOrder: 0}
	s.Balance = &criteria.DecimalCriterion{Sort: criteria.Descending, SortOrder: 0}

	// Balance is registered before Active, so it is the primary key.
	assert.Equal(t, []int64{4, 2, 1, 3}, testutil.IDs(search(t, s).Results))
}

func TestSearch_Errors(t *testing.T) {
	s := testutil.NewPersonSearch()
	s.PageSize = -1
	_, err := Search(testutil.People(), personProperties(), s)
	assert.Equal(t, criteria.ErrCodeInvalidPaging, criteria.ErrorCodeOf(err))

	s = testutil.NewPersonSearch()
	s.Age = &criteria.IntegerCriterion{Comparison: criteria.IntegerComparison(613)}
	_, err = Search(testutil.People(), personProperties(), s)
	assert.EqualError(t, err, "IntegerComparison with value 613 hasn't been implemented")
}
