package reconcile

import "github.com/tablewarden/tablewarden/pkg/tables"

// SheetRows is one sheet's worth of freshly fetched rows.
type SheetRows struct {
	Sheet string
	Rows  *tables.Table
}

// SheetResult summarizes what one sheet's reconciliation did.
type SheetResult struct {
	Sheet     string
	TotalRows int
	NewRows   int
	// Added holds the subset of rows whose unique keys were not in the
	// prior snapshot; empty for no-op and replacement outcomes.
	Added *tables.Table
}

// Result is the outcome of reconciling one source. It is exactly the
// payload a notification collaborator needs.
type Result struct {
	Source   string
	Tampered bool
	Sheets   []SheetResult
}

// TotalRows sums row counts across sheets.
func (r *Result) TotalRows() int {
	n := 0
	for _, s := range r.Sheets {
		n += s.TotalRows
	}
	return n
}

// NewRows sums newly added row counts across sheets.
func (r *Result) NewRows() int {
	n := 0
	for _, s := range r.Sheets {
		n += s.NewRows
	}
	return n
}

// HasNewRows reports whether any sheet gained rows.
func (r *Result) HasNewRows() bool {
	return r.NewRows() > 0
}
