package stock

import "fmt"

// OverlapError reports two input footprints whose intersection has nonzero
// area. Footprints must only ever touch; a true overlap means the input is
// wrong and topology cannot be built, so the run aborts.
type OverlapError struct {
	IDA, IDB string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("footprints %s and %s overlap with nonzero area", e.IDA, e.IDB)
}

// InvalidInputGeometryError reports a footprint whose geometry is
// structurally malformed (not a simple closed ring, too few vertices, a
// multi-part polygon) before any processing begins. Only
// topologically-induced invalidity produced by simplification is repaired;
// malformed input is not.
type InvalidInputGeometryError struct {
	ID     string
	Reason error
}

func (e *InvalidInputGeometryError) Error() string {
	return fmt.Sprintf("footprint %s has invalid input geometry: %v", e.ID, e.Reason)
}

func (e *InvalidInputGeometryError) Unwrap() error {
	return e.Reason
}

// UnresolvedIslandError reports a surviving footprint that could not be
// assigned to any built island after the simplification fixpoint. This is
// an invariant violation rather than bad input: it implies a residual
// overlap that the fixpoint should have made impossible.
type UnresolvedIslandError struct {
	ID string
}

func (e *UnresolvedIslandError) Error() string {
	return fmt.Sprintf("footprint %s could not be resolved to a built island", e.ID)
}
