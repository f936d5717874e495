package harness

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/schema"
)

// Scenario defines a conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Entity is the name searched for.
	Entity string `yaml:"entity"`

	// Schema is a CUE schema directory describing Entity. Mutually exclusive
	// with Columns. Relative paths are resolved against the scenario file.
	Schema string `yaml:"schema,omitempty"`

	// Table, PrimaryKey and Columns describe Entity inline.
	Table      string       `yaml:"table,omitempty"`
	PrimaryKey string       `yaml:"primary_key,omitempty"`
	Columns    []ColumnSpec `yaml:"columns,omitempty"`

	// Rows are keyed by property name.
	Rows []map[string]yaml.Node `yaml:"rows"`

	// Criteria is the search to run.
	Criteria criteria.Document `yaml:"criteria"`

	// Expect is what both paths must produce.
	Expect ExpectClause `yaml:"expect"`
}

// ColumnSpec is one inline column.
type ColumnSpec struct {
	Property string `yaml:"property"`
	Name     string `yaml:"name,omitempty"`
	Type     string `yaml:"type,omitempty"`
}

// ExpectClause is the expected search outcome.
type ExpectClause struct {
	// IDs are primary key values in result order.
	IDs []yaml.Node `yaml:"ids,omitempty"`

	// TotalCount is checked when set. Use -1 to require that no count is
	// returned.
	TotalCount *int `yaml:"total_count,omitempty"`

	// Error is a substring both paths must fail with.
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown keys are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(filepath.Dir(path), scenario.Schema)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and consistent.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Entity == "" {
		return fmt.Errorf("entity is required")
	}

	switch {
	case s.Schema != "" && len(s.Columns) > 0:
		return fmt.Errorf("schema and columns are mutually exclusive")
	case s.Schema == "" && len(s.Columns) == 0:
		return fmt.Errorf("either schema or columns is required")
	}

	if s.Schema != "" {
		if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
			return fmt.Errorf("schema directory not found: %s", s.Schema)
		}
	}

	for i, col := range s.Columns {
		if col.Property == "" {
			return fmt.Errorf("columns[%d]: property is required", i)
		}
		if _, err := criteria.ParseValueType(col.Type); err != nil {
			return fmt.Errorf("columns[%d]: %w", i, err)
		}
	}

	if s.Expect.Error != "" && (len(s.Expect.IDs) > 0 || s.Expect.TotalCount != nil) {
		return fmt.Errorf("expect: error excludes ids and total_count")
	}

	if _, err := s.Criteria.Set(); err != nil {
		return fmt.Errorf("criteria: %w", err)
	}

	return nil
}

// columnMap builds the entity's column map, from CUE or the inline columns.
// The schema qualifier is dropped because scenarios run against a single
// SQLite database.
func (s *Scenario) columnMap(ctx context.Context) (*schema.EntityColumnMap, error) {
	var m *schema.EntityColumnMap
	if s.Schema != "" {
		provider, err := schema.LoadCUE(s.Schema)
		if err != nil {
			return nil, err
		}
		resolved, err := provider.Resolve(ctx, s.Entity)
		if err != nil {
			return nil, err
		}
		m = resolved.Clone()
	} else {
		m = &schema.EntityColumnMap{
			Entity:     s.Entity,
			Table:      s.Table,
			PrimaryKey: s.PrimaryKey,
		}
		if m.Table == "" {
			m.Table = s.Entity
		}
		for _, spec := range s.Columns {
			t, err := criteria.ParseValueType(spec.Type)
			if err != nil {
				return nil, err
			}
			name := spec.Name
			if name == "" {
				name = spec.Property
			}
			m.Columns = append(m.Columns, schema.Column{Property: spec.Property, Name: name, Type: t})
		}
		if m.PrimaryKey == "" && len(m.Columns) > 0 {
			m.PrimaryKey = m.Columns[0].Name
		}
	}
	m.Schema = ""
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
