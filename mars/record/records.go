package record

import "fmt"

// StoppingCondition names why the forward pass terminated.
type StoppingCondition int

const (
	// NotStopped marks a record entry for an iteration where the pass continues.
	NotStopped StoppingCondition = iota
	// ReachedMaxTerms: |Basis| reached max_terms.
	ReachedMaxTerms
	// ReachedMaxRSQ: RSQ > 1 - thresh.
	ReachedMaxRSQ
	// RSQImprovementBelowThresh: RSQ improvement vs. previous iteration < thresh.
	RSQImprovementBelowThresh
	// NoImprovement: no candidate improved RSS.
	NoImprovement
	// AllCollinear: every append attempt in the iteration was rejected as collinear.
	AllCollinear
)

// String renders the condition for summaries and logs.
func (s StoppingCondition) String() string {
	switch s {
	case NotStopped:
		return "not stopped"
	case ReachedMaxTerms:
		return "reached max_terms"
	case ReachedMaxRSQ:
		return "RSQ exceeded 1 - thresh"
	case RSQImprovementBelowThresh:
		return "RSQ improvement below thresh"
	case NoImprovement:
		return "no candidate improved RSS"
	case AllCollinear:
		return "all candidates rejected as collinear"
	default:
		return "unknown"
	}
}

// ForwardEntry is one iteration's metrics in the forward-pass trace.
type ForwardEntry struct {
	MSE         float64
	GCV         float64
	RSQ         float64
	GRSQ        float64
	Description string // e.g. "added hinge pair on feature 2 (parent 0) at knot 0.483"
	Stopping    StoppingCondition
}

// ForwardPassRecord is the append-only history of forward-pass iterations.
type ForwardPassRecord struct {
	entries []ForwardEntry
}

// NewForwardPassRecord returns an empty record.
func NewForwardPassRecord() *ForwardPassRecord { return &ForwardPassRecord{} }

// Append adds an iteration entry.
func (r *ForwardPassRecord) Append(e ForwardEntry) { r.entries = append(r.entries, e) }

// Len reports the number of recorded iterations.
func (r *ForwardPassRecord) Len() int { return len(r.entries) }

// At returns the i-th entry.
func (r *ForwardPassRecord) At(i int) (ForwardEntry, error) {
	if i < 0 || i >= len(r.entries) {
		return ForwardEntry{}, fmt.Errorf("ForwardPassRecord.At(%d): %w", i, ErrIndexOutOfRange)
	}

	return r.entries[i], nil
}

// StoppingCondition reports the final iteration's stopping reason, or
// NotStopped if the record is empty.
func (r *ForwardPassRecord) StoppingCondition() StoppingCondition {
	if len(r.entries) == 0 {
		return NotStopped
	}

	return r.entries[len(r.entries)-1].Stopping
}

// PruningEntry is one step's metrics in the pruning-pass trace.
type PruningEntry struct {
	RSS     float64
	GCV     float64
	RSQ     float64
	GRSQ    float64
	Removed int // index of the term removed at this step, -1 for the initial unpruned state
}

// PruningPassRecord is the append-only history of pruning-pass steps,
// plus the selected (minimum-GCV) step.
type PruningPassRecord struct {
	entries  []PruningEntry
	selected int
}

// NewPruningPassRecord returns an empty record with no selection made yet.
func NewPruningPassRecord() *PruningPassRecord { return &PruningPassRecord{selected: -1} }

// Append adds a pruning step entry.
func (r *PruningPassRecord) Append(e PruningEntry) { r.entries = append(r.entries, e) }

// Len reports the number of recorded steps (including the initial,
// unpruned state).
func (r *PruningPassRecord) Len() int { return len(r.entries) }

// At returns the i-th entry.
func (r *PruningPassRecord) At(i int) (PruningEntry, error) {
	if i < 0 || i >= len(r.entries) {
		return PruningEntry{}, fmt.Errorf("PruningPassRecord.At(%d): %w", i, ErrIndexOutOfRange)
	}

	return r.entries[i], nil
}

// SetSelected records which step index minimizes GCV across all steps.
func (r *PruningPassRecord) SetSelected(i int) error {
	if i < 0 || i >= len(r.entries) {
		return fmt.Errorf("PruningPassRecord.SetSelected(%d): %w", i, ErrIndexOutOfRange)
	}
	r.selected = i

	return nil
}

// Selected returns the argmin-GCV step index, or -1 if none was set.
func (r *PruningPassRecord) Selected() int { return r.selected }
