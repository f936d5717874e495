package criteria

import (
	"fmt"
	"strings"
)

// Operator is the shared comparison vocabulary.
//
// Every per-type comparison kind resolves to exactly one Operator. The SQL
// renderer and the in-memory renderer both switch on Operator only.
type Operator int

const (
	OpNone Operator = iota
	OpEqual
	OpNotEqual
	OpLess
	OpLessOrEqual
	OpGreaterOrEqual
	OpGreater
	OpStartsWith
	OpEndsWith
	OpContains
)

var operatorNames = [...]string{
	OpNone:           "none",
	OpEqual:          "equal",
	OpNotEqual:       "not-equal",
	OpLess:           "less",
	OpLessOrEqual:    "less-or-equal",
	OpGreaterOrEqual: "greater-or-equal",
	OpGreater:        "greater",
	OpStartsWith:     "starts-with",
	OpEndsWith:       "ends-with",
	OpContains:       "contains",
}

func (o Operator) String() string {
	if o >= 0 && int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// ValueType identifies the value type a field or column carries.
type ValueType int

const (
	// ValueUnknown disables type checks (e.g. columns whose type was not declared).
	ValueUnknown ValueType = iota
	ValueString
	ValueInteger
	ValueDecimal
	ValueDateTime
	ValueDateTimeOffset
	ValueBoolean
)

var valueTypeNames = [...]string{
	ValueUnknown:        "unknown",
	ValueString:         "string",
	ValueInteger:        "integer",
	ValueDecimal:        "decimal",
	ValueDateTime:       "datetime",
	ValueDateTimeOffset: "datetimeoffset",
	ValueBoolean:        "boolean",
}

func (t ValueType) String() string {
	if t >= 0 && int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// ParseValueType parses the lower-case names produced by ValueType.String.
// "int" and "bool" are accepted as shorthands.
func ParseValueType(s string) (ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "text":
		return ValueString, nil
	case "integer", "int":
		return ValueInteger, nil
	case "decimal":
		return ValueDecimal, nil
	case "datetime":
		return ValueDateTime, nil
	case "datetimeoffset":
		return ValueDateTimeOffset, nil
	case "boolean", "bool":
		return ValueBoolean, nil
	case "", "unknown":
		return ValueUnknown, nil
	}
	return ValueUnknown, fmt.Errorf("unknown value type %q", s)
}

// Comparison is implemented by every per-type comparison kind.
type Comparison interface {
	fmt.Stringer

	// Operator resolves the kind to the shared vocabulary. Kinds outside the
	// closed set return an *UnsupportedComparisonError.
	Operator() (Operator, error)

	// Ordinal is the numeric value of the kind.
	Ordinal() int

	// ValueType is the value type this vocabulary applies to.
	ValueType() ValueType
}

// vocabulary is the name and operator table of one comparison kind.
type vocabulary struct {
	kind  string
	names []string
	ops   []Operator
}

func (v vocabulary) operator(ordinal int) (Operator, error) {
	if ordinal < 0 || ordinal >= len(v.ops) {
		return OpNone, &UnsupportedComparisonError{Kind: v.kind, Value: ordinal}
	}
	return v.ops[ordinal], nil
}

func (v vocabulary) name(ordinal int) string {
	if ordinal < 0 || ordinal >= len(v.names) {
		return fmt.Sprintf("%s(%d)", v.kind, ordinal)
	}
	return v.names[ordinal]
}

func (v vocabulary) parse(s string) (int, error) {
	for i, n := range v.names {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q (valid: %s)", v.kind, s, strings.Join(v.names, ", "))
}

// Ordinals are wire values; do not reorder.
var (
	stringVocabulary = vocabulary{
		kind:  "StringComparison",
		names: []string{"None", "Equals", "DoesNotEqual", "StartsWith", "EndsWith", "Contains"},
		ops:   []Operator{OpNone, OpEqual, OpNotEqual, OpStartsWith, OpEndsWith, OpContains},
	}
	integerVocabulary = vocabulary{
		kind:  "IntegerComparison",
		names: []string{"None", "LessThan", "LessThanOrEquals", "Equals", "GreaterThanOrEquals", "GreaterThan", "DoesNotEqual"},
		ops:   []Operator{OpNone, OpLess, OpLessOrEqual, OpEqual, OpGreaterOrEqual, OpGreater, OpNotEqual},
	}
	decimalVocabulary = vocabulary{
		kind:  "DecimalComparison",
		names: integerVocabulary.names,
		ops:   integerVocabulary.ops,
	}
	dateTimeVocabulary = vocabulary{
		kind:  "DateTimeComparison",
		names: []string{"None", "Before", "BeforeOrEquals", "Equals", "AfterOrEquals", "After"},
		ops:   []Operator{OpNone, OpLess, OpLessOrEqual, OpEqual, OpGreaterOrEqual, OpGreater},
	}
	dateTimeOffsetVocabulary = vocabulary{
		kind:  "DateTimeOffsetComparison",
		names: dateTimeVocabulary.names,
		ops:   dateTimeVocabulary.ops,
	}
	booleanVocabulary = vocabulary{
		kind:  "BooleanComparison",
		names: []string{"None", "Equals", "DoesNotEqual"},
		ops:   []Operator{OpNone, OpEqual, OpNotEqual},
	}
)

// StringComparison selects how a string field is compared.
type StringComparison int

const (
	StringNone StringComparison = iota
	StringEquals
	StringDoesNotEqual
	StringStartsWith
	StringEndsWith
	StringContains
)

func (k StringComparison) String() string { return stringVocabulary.name(int(k)) }
func (k StringComparison) Operator() (Operator, error) { return stringVocabulary.operator(int(k)) }
func (k StringComparison) Ordinal() int { return int(k) }
func (k StringComparison) ValueType() ValueType { return ValueString }

// IntegerComparison selects how an integer field is compared.
type IntegerComparison int

const (
	IntegerNone IntegerComparison = iota
	IntegerLessThan
	IntegerLessThanOrEquals
	IntegerEquals
	IntegerGreaterThanOrEquals
	IntegerGreaterThan
	IntegerDoesNotEqual
)

func (k IntegerComparison) String() string { return integerVocabulary.name(int(k)) }
func (k IntegerComparison) Operator() (Operator, error) { return integerVocabulary.operator(int(k)) }
func (k IntegerComparison) Ordinal() int { return int(k) }
func (k IntegerComparison) ValueType() ValueType { return ValueInteger }

// DecimalComparison selects how a decimal field is compared.
type DecimalComparison int

const (
	DecimalNone DecimalComparison = iota
	DecimalLessThan
	DecimalLessThanOrEquals
	DecimalEquals
	DecimalGreaterThanOrEquals
	DecimalGreaterThan
	DecimalDoesNotEqual
)

func (k DecimalComparison) String() string { return decimalVocabulary.name(int(k)) }
func (k DecimalComparison) Operator() (Operator, error) { return decimalVocabulary.operator(int(k)) }
func (k DecimalComparison) Ordinal() int { return int(k) }
func (k DecimalComparison) ValueType() ValueType { return ValueDecimal }

// DateTimeComparison selects how a wall-clock timestamp field is compared.
type DateTimeComparison int

const (
	DateTimeNone DateTimeComparison = iota
	DateTimeBefore
	DateTimeBeforeOrEquals
	DateTimeEquals
	DateTimeAfterOrEquals
	DateTimeAfter
)

func (k DateTimeComparison) String() string { return dateTimeVocabulary.name(int(k)) }
func (k DateTimeComparison) Operator() (Operator, error) { return dateTimeVocabulary.operator(int(k)) }
func (k DateTimeComparison) Ordinal() int { return int(k) }
func (k DateTimeComparison) ValueType() ValueType { return ValueDateTime }

// DateTimeOffsetComparison selects how an absolute-instant field is compared.
type DateTimeOffsetComparison int

const (
	DateTimeOffsetNone DateTimeOffsetComparison = iota
	DateTimeOffsetBefore
	DateTimeOffsetBeforeOrEquals
	DateTimeOffsetEquals
	DateTimeOffsetAfterOrEquals
	DateTimeOffsetAfter
)

func (k DateTimeOffsetComparison) String() string { return dateTimeOffsetVocabulary.name(int(k)) }
func (k DateTimeOffsetComparison) Operator() (Operator, error) {
	return dateTimeOffsetVocabulary.operator(int(k))
}
func (k DateTimeOffsetComparison) Ordinal() int { return int(k) }
func (k DateTimeOffsetComparison) ValueType() ValueType { return ValueDateTimeOffset }

// BooleanComparison selects how a boolean field is compared.
type BooleanComparison int

const (
	BooleanNone BooleanComparison = iota
	BooleanEquals
	BooleanDoesNotEqual
)

func (k BooleanComparison) String() string { return booleanVocabulary.name(int(k)) }
func (k BooleanComparison) Operator() (Operator, error) { return booleanVocabulary.operator(int(k)) }
func (k BooleanComparison) Ordinal() int { return int(k) }
func (k BooleanComparison) ValueType() ValueType { return ValueBoolean }

// ParseComparison parses a comparison name (e.g. "StartsWith") in the
// vocabulary of the given value type. Matching is case-insensitive.
func ParseComparison(t ValueType, name string) (Comparison, error) {
	switch t {
	case ValueString:
		n, err := stringVocabulary.parse(name)
		return StringComparison(n), err
	case ValueInteger:
		n, err := integerVocabulary.parse(name)
		return IntegerComparison(n), err
	case ValueDecimal:
		n, err := decimalVocabulary.parse(name)
		return DecimalComparison(n), err
	case ValueDateTime:
		n, err := dateTimeVocabulary.parse(name)
		return DateTimeComparison(n), err
	case ValueDateTimeOffset:
		n, err := dateTimeOffsetVocabulary.parse(name)
		return DateTimeOffsetComparison(n), err
	case ValueBoolean:
		n, err := booleanVocabulary.parse(name)
		return BooleanComparison(n), err
	default:
		return nil, fmt.Errorf("no comparison vocabulary for value type %s", t)
	}
}
