// Package testutil holds the shared Person fixture used by the SQL, in-memory,
// and store tests.
package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/schema"
)

// Person is the fixture entity. Pointer fields may be nil (NULL).
type Person struct {
	ID      int64
	Name    *string
	Age     *int64
	Balance *apd.Decimal
	Born    *time.Time
	Seen    *time.Time
	Active  *bool
}

// PersonSearch is the criteria struct for Person.
type PersonSearch struct {
	criteria.Paging
	ID      *criteria.IntegerCriterion
	Name    *criteria.StringCriterion
	Age     *criteria.IntegerCriterion
	Balance *criteria.DecimalCriterion
	Born    *criteria.DateTimeCriterion
	Seen    *criteria.DateTimeOffsetCriterion
	Active  *criteria.BooleanCriterion
}

// Fields implements criteria.Criteria.
func (s *PersonSearch) Fields() []criteria.Field {
	return []criteria.Field{
		criteria.Integer("Id", s.ID),
		criteria.String("Name", s.Name),
		criteria.Integer("Age", s.Age),
		criteria.Decimal("Balance", s.Balance),
		criteria.DateTime("Born", s.Born),
		criteria.DateTimeOffset("Seen", s.Seen),
		criteria.Boolean("Active", s.Active),
	}
}

// NewPersonSearch returns an empty search with default paging.
func NewPersonSearch() *PersonSearch {
	return &PersonSearch{Paging: criteria.NewPaging()}
}

// PersonColumns maps Person onto the People table. Column names differ from
// property names so aliasing is visible.
func PersonColumns() *schema.EntityColumnMap {
	return &schema.EntityColumnMap{
		Entity:     "Person",
		Table:      "People",
		PrimaryKey: "id",
		Columns: []schema.Column{
			{Property: "Id", Name: "id", Type: criteria.ValueInteger},
			{Property: "Name", Name: "name", Type: criteria.ValueString},
			{Property: "Age", Name: "age", Type: criteria.ValueInteger},
			{Property: "Balance", Name: "balance", Type: criteria.ValueDecimal},
			{Property: "Born", Name: "born", Type: criteria.ValueDateTime},
			{Property: "Seen", Name: "seen", Type: criteria.ValueDateTimeOffset},
			{Property: "Active", Name: "active", Type: criteria.ValueBoolean},
		},
	}
}

// PeopleDDL creates the People table in SQLite.
const PeopleDDL = `CREATE TABLE People (
	id INTEGER PRIMARY KEY,
	name TEXT,
	age INTEGER,
	balance DECIMAL(10,2),
	born DATETIME,
	seen DATETIMEOFFSET,
	active BOOLEAN
)`

// People returns four rows:
//
//	id name age balance born       seen (UTC)        active
//	1  a    1   1.50    1990-05-01 2024-01-01 08:00  true
//	2  ab   2   2.75    1985-12-24 2024-01-02 08:00  false
//	3  nil  3   nil     2001-07-15 2024-01-03 08:00  true
//	4  aa   nil 10.00   nil        nil               nil
//
// Seen values carry non-UTC zones to exercise instant comparison.
func People() []Person {
	east := time.FixedZone("UTC+2", 2*60*60)
	west := time.FixedZone("UTC-5", -5*60*60)
	return []Person{
		{ID: 1, Name: Ptr("a"), Age: Ptr[int64](1), Balance: Dec("1.50"),
			Born: Ptr(Date(1990, 5, 1)), Seen: Ptr(time.Date(2024, 1, 1, 10, 0, 0, 0, east)), Active: Ptr(true)},
		{ID: 2, Name: Ptr("ab"), Age: Ptr[int64](2), Balance: Dec("2.75"),
			Born: Ptr(Date(1985, 12, 24)), Seen: Ptr(time.Date(2024, 1, 2, 3, 0, 0, 0, west)), Active: Ptr(false)},
		{ID: 3, Age: Ptr[int64](3),
			Born: Ptr(Date(2001, 7, 15)), Seen: Ptr(time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)), Active: Ptr(true)},
		{ID: 4, Name: Ptr("aa"), Balance: Dec("10.00")},
	}
}

// SeedPeople creates the People table in db and inserts People(). Offset
// timestamps are stored in UTC so text order matches time order.
func SeedPeople(t testing.TB, db *sql.DB) {
	t.Helper()

	_, err := db.Exec(PeopleDDL)
	require.NoError(t, err)

	for _, p := range People() {
		var seen any
		if p.Seen != nil {
			seen = p.Seen.UTC()
		}
		var balance any
		if p.Balance != nil {
			balance = p.Balance.String()
		}
		_, err := db.Exec(`INSERT INTO People (id, name, age, balance, born, seen, active) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, deref(p.Name), deref(p.Age), balance, deref(p.Born), seen, deref(p.Active))
		require.NoError(t, err)
	}
}

// IDs returns the ID of every person, in order. It is nil for no people.
func IDs(people []Person) []int64 {
	var ids []int64
	for _, p := range people {
		ids = append(ids, p.ID)
	}
	return ids
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Dec parses a decimal literal, panicking on bad input.
func Dec(s string) *apd.Decimal {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
