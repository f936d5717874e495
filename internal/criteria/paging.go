package criteria

import (
	"fmt"
	"math"
)

// DefaultPageSize is used when PageSize is left at zero.
const DefaultPageSize = 10

// Paging is the paging envelope every criteria value carries.
type Paging struct {
	// PageIndex is the zero-based page to return. Ignored when ReturnAllResults is set.
	PageIndex int `yaml:"page_index" json:"page_index"`

	// PageSize is the maximum number of results per page. Zero means DefaultPageSize.
	// Ignored when ReturnAllResults is set.
	PageSize int `yaml:"page_size" json:"page_size"`

	// ReturnAllResults disables pagination entirely.
	ReturnAllResults bool `yaml:"return_all_results" json:"return_all_results"`

	// IncludeTotalCountWithResults requests a total count, but only on page 0.
	// Later pages never recompute the count.
	IncludeTotalCountWithResults bool `yaml:"include_total_count" json:"include_total_count"`
}

// NewPaging returns the default envelope: first page of DefaultPageSize rows.
func NewPaging() Paging {
	return Paging{PageSize: DefaultPageSize}
}

// Page returns the envelope itself. Criteria structs that embed Paging get
// this method promoted, which satisfies the Criteria interface.
func (p Paging) Page() Paging { return p }

// Normalized fills in defaults.
func (p Paging) Normalized() Paging {
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Validate rejects negative indexes and sizes, and pages whose offset does
// not fit in an int.
func (p Paging) Validate() error {
	if p.ReturnAllResults {
		return nil
	}
	if p.PageIndex < 0 {
		return &PagingError{Message: fmt.Sprintf("page index must not be negative, got %d", p.PageIndex)}
	}
	if p.PageSize < 0 {
		return &PagingError{Message: fmt.Sprintf("page size must not be negative, got %d", p.PageSize)}
	}
	if size := p.Normalized().PageSize; p.PageIndex > math.MaxInt/size {
		return &PagingError{Message: fmt.Sprintf("page index %d with page size %d is out of range", p.PageIndex, size)}
	}
	return nil
}

// Offset is the number of rows skipped before the requested page.
func (p Paging) Offset() int {
	p = p.Normalized()
	return p.PageIndex * p.PageSize
}

// WantsTotalCount reports whether a total count is computed alongside the
// results: always when returning everything, otherwise only when the count
// was requested on the first page.
func (p Paging) WantsTotalCount() bool {
	return p.ReturnAllResults || (p.IncludeTotalCountWithResults && p.PageIndex == 0)
}
