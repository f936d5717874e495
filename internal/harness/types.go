package harness

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when both paths matched the expectation.
	Pass bool `json:"pass"`

	// SQL is the compiled results query followed by the count query, as
	// rendered by querysql.CompiledQuery.String. Empty when compilation failed.
	SQL string `json:"sql,omitempty"`

	// SQLIDs and MemoryIDs are the primary keys each path returned.
	SQLIDs    []string `json:"sql_ids"`
	MemoryIDs []string `json:"memory_ids"`

	// SQLCount and MemoryCount are the total counts, when computed.
	SQLCount    *int `json:"sql_count,omitempty"`
	MemoryCount *int `json:"memory_count,omitempty"`

	// Errors lists every mismatch. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		SQLIDs:    []string{},
		MemoryIDs: []string{},
		Errors:    []string{},
	}
}

// AddError records a mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
