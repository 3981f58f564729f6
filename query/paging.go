package query

// Paging is an offset/limit window. A nil Limit means unbounded.
type Paging struct {
	Offset int  `json:"offset,omitempty"`
	Limit  *int `json:"limit,omitempty"`
}

// NewPaging returns a window of at most limit records starting at offset.
func NewPaging(offset, limit int) *Paging {
	return &Paging{Offset: offset, Limit: &limit}
}

// Validate rejects a negative offset or limit.
func (p *Paging) Validate() error {
	if p == nil {
		return nil
	}
	if p.Offset < 0 {
		return &InvalidArgumentError{Field: "offset", Value: p.Offset}
	}
	if p.Limit != nil && *p.Limit < 0 {
		return &InvalidArgumentError{Field: "limit", Value: *p.Limit}
	}
	return nil
}

// Clone returns a deep copy of p.
func (p *Paging) Clone() *Paging {
	if p == nil {
		return nil
	}
	c := &Paging{Offset: p.Offset}
	if p.Limit != nil {
		limit := *p.Limit
		c.Limit = &limit
	}
	return c
}

// bounds returns the [start, end) window of p over n records.
func (p *Paging) bounds(n int) (start, end int) {
	if p == nil {
		return 0, n
	}
	start = min(p.Offset, n)
	end = n
	if p.Limit != nil && *p.Limit < end-start {
		end = start + *p.Limit
	}
	return start, end
}

// ApplyPaging returns a new slice holding the records inside the window. An
// offset past the end yields an empty slice; a nil p keeps every record.
//
// Error conditions:
//   - Negative offset or limit (*InvalidArgumentError)
func ApplyPaging[R any](records []R, p *Paging) ([]R, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return page(records, p), nil
}

func page[R any](records []R, p *Paging) []R {
	start, end := p.bounds(len(records))
	out := make([]R, end-start)
	copy(out, records[start:end])
	return out
}
