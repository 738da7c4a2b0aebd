// Package integrity defines the Integrity Auditor's findings and report.
package integrity

import "time"

// OrphanPolicy controls how orphaned stock rows are repaired.
type OrphanPolicy string

const (
	// OrphanDelete removes orphaned stock rows.
	OrphanDelete OrphanPolicy = "delete"
	// OrphanReassign moves orphaned stock rows to the tenant's fallback
	// warehouse, merging quantities into any existing row there.
	OrphanReassign OrphanPolicy = "reassign"
)

// TableReport is the scan outcome for one table.
type TableReport struct {
	Table               string `json:"table"`
	DuplicatesFound     int    `json:"duplicates_found"`
	DuplicatesRepaired  int    `json:"duplicates_repaired"`
	OrphansFound        int    `json:"orphans_found"`
	OrphansRepaired     int    `json:"orphans_repaired"`
	OpenAssignmentFixes int    `json:"open_assignment_fixes,omitempty"`
}

// Report is the structured result of one auditor run. It is never silent:
// every finding is counted even when repair is a deletion.
type Report struct {
	StartedAt          time.Time     `json:"started_at"`
	FinishedAt         time.Time     `json:"finished_at"`
	DuplicatesFound    int           `json:"duplicates_found"`
	DuplicatesRepaired int           `json:"duplicates_repaired"`
	OrphansFound       int           `json:"orphans_found"`
	OrphansRepaired    int           `json:"orphans_repaired"`
	Tables             []TableReport `json:"tables,omitempty"`
}

// Clean reports whether the run found nothing to repair. Two successive
// runs with no intervening writes must make the second one Clean.
func (r *Report) Clean() bool {
	return r.DuplicatesFound == 0 && r.OrphansFound == 0
}

// Merge folds a table report into the totals.
func (r *Report) Merge(t TableReport) {
	r.DuplicatesFound += t.DuplicatesFound
	r.DuplicatesRepaired += t.DuplicatesRepaired
	r.OrphansFound += t.OrphansFound
	r.OrphansRepaired += t.OrphansRepaired
	r.Tables = append(r.Tables, t)
}
