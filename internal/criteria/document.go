package criteria

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"gopkg.in/yaml.v3"
)

// Document is the YAML form of a criteria Set.
//
//	page_index: 0
//	page_size: 25
//	include_total_count: true
//	fields:
//	  - name: Name
//	    type: string
//	    comparison: StartsWith
//	    value: "a"
//	    sort: ascending
//	    sort_order: 0
type Document struct {
	Paging `yaml:",inline"`
	Fields []FieldSpec `yaml:"fields"`
}

// FieldSpec is one field of a Document. Comparison is a kind name
// ("StartsWith") or a raw ordinal.
type FieldSpec struct {
	Name       string    `yaml:"name"`
	Type       string    `yaml:"type"`
	Comparison yaml.Node `yaml:"comparison"`
	Value      yaml.Node `yaml:"value"`
	Sort       string    `yaml:"sort,omitempty"`
	SortOrder  int       `yaml:"sort_order,omitempty"`
}

// LoadDocument reads a criteria document from a YAML file.
func LoadDocument(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read criteria file: %w", err)
	}
	return DecodeDocument(bytes.NewReader(data))
}

// DecodeDocument parses a criteria document. Unknown keys are rejected.
func DecodeDocument(r io.Reader) (*Set, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse criteria YAML: %w", err)
	}
	return doc.Set()
}

// Set converts the document into a criteria Set.
func (d *Document) Set() (*Set, error) {
	set := &Set{Paging: d.Paging.Normalized()}
	for i, spec := range d.Fields {
		f, err := spec.Field()
		if err != nil {
			return nil, fmt.Errorf("fields[%d]: %w", i, err)
		}
		set.Entries = append(set.Entries, f)
	}
	return set, nil
}

// Field converts the FieldSpec into a Field.
func (s FieldSpec) Field() (Field, error) {
	if s.Name == "" {
		return Field{}, fmt.Errorf("name is required")
	}
	t, err := ParseValueType(s.Type)
	if err != nil {
		return Field{}, fmt.Errorf("field %q: %w", s.Name, err)
	}
	if t == ValueUnknown {
		return Field{}, fmt.Errorf("field %q: type is required", s.Name)
	}

	cmp, err := parseComparisonNode(t, s.Comparison)
	if err != nil {
		return Field{}, fmt.Errorf("field %q: %w", s.Name, err)
	}

	dir, err := ParseSortDirection(s.Sort)
	if err != nil {
		return Field{}, fmt.Errorf("field %q: %w", s.Name, err)
	}

	f := Field{
		Name:       s.Name,
		Type:       t,
		Comparison: cmp,
		Sort:       dir,
		SortOrder:  s.SortOrder,
		Present:    true,
	}

	if s.Value.Kind == 0 || s.Value.ShortTag() == "!!null" {
		if cmp.Ordinal() != 0 {
			return Field{}, fmt.Errorf("field %q: value is required for comparison %s", s.Name, cmp)
		}
		return f, nil
	}
	if s.Value.Kind != yaml.ScalarNode {
		return Field{}, fmt.Errorf("field %q: value must be a scalar", s.Name)
	}
	f.Value, err = ParseValue(t, s.Value.Value)
	if err != nil {
		return Field{}, fmt.Errorf("field %q: %w", s.Name, err)
	}
	return f, nil
}

func parseComparisonNode(t ValueType, node yaml.Node) (Comparison, error) {
	if node.Kind == 0 {
		return ComparisonOf(t, 0)
	}
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("comparison must be a name or number")
	}
	if n, err := strconv.Atoi(node.Value); err == nil {
		return ComparisonOf(t, n)
	}
	return ParseComparison(t, node.Value)
}

// ComparisonOf builds the kind with the given ordinal in t's vocabulary. The
// ordinal is not range-checked; out-of-range kinds fail when resolved.
func ComparisonOf(t ValueType, ordinal int) (Comparison, error) {
	switch t {
	case ValueString:
		return StringComparison(ordinal), nil
	case ValueInteger:
		return IntegerComparison(ordinal), nil
	case ValueDecimal:
		return DecimalComparison(ordinal), nil
	case ValueDateTime:
		return DateTimeComparison(ordinal), nil
	case ValueDateTimeOffset:
		return DateTimeOffsetComparison(ordinal), nil
	case ValueBoolean:
		return BooleanComparison(ordinal), nil
	default:
		return nil, fmt.Errorf("no comparison vocabulary for value type %s", t)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseValue parses the text form of a value of type t. Decimals become
// *apd.Decimal, timestamps time.Time (RFC 3339, or a bare date/time read as UTC).
func ParseValue(t ValueType, s string) (any, error) {
	switch t {
	case ValueString:
		return s, nil
	case ValueInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		return n, nil
	case ValueDecimal:
		d, _, err := apd.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q", s)
		}
		return d, nil
	case ValueDateTime, ValueDateTimeOffset:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
				return ts, nil
			}
		}
		return nil, fmt.Errorf("invalid timestamp %q", s)
	case ValueBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q", s)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("cannot parse value of type %s", t)
	}
}
