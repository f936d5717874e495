package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders the compiled SQL and the rows it returned. Both paths
// agree when the result passes, so only the SQL ids are recorded.
func Snapshot(result *Result) []byte {
	var b strings.Builder
	b.WriteString(result.SQL)
	fmt.Fprintf(&b, "-- ids: [%s]\n", strings.Join(result.SQLIDs, ", "))
	if result.SQLCount != nil {
		fmt.Fprintf(&b, "-- total_count: %d\n", *result.SQLCount)
	}
	return []byte(b.String())
}

// RunWithGolden executes a scenario, fails the test on any mismatch, and
// compares the compiled SQL against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, e)
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	if result.SQL == "" {
		return fmt.Errorf("scenario %q produced no SQL", scenarioName)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Snapshot(result))
	return nil
}
