package corpus

import "errors"

// Error kinds surfaced by the engine. Configuration errors are
// returned before any state mutation; the others abort a run.
var (
	// ErrInvalidConfiguration covers fewer than three grains, a region
	// without area, degenerate column bounds, and a density function
	// that is not strictly positive.
	ErrInvalidConfiguration = errors.New("corpus: invalid configuration")

	// ErrDegenerateInput is returned when the triangulator rejects the
	// current positions (collinear or coincident points).
	ErrDegenerateInput = errors.New("corpus: degenerate input")

	// ErrRegionUnreachable marks a failed boundary projection. It
	// cannot occur for a valid region and is treated as a bug.
	ErrRegionUnreachable = errors.New("corpus: region unreachable")

	// ErrNumericalDivergence marks a non-finite position after
	// integration. It is treated as a bug, never a silent divergence.
	ErrNumericalDivergence = errors.New("corpus: numerical divergence")
)
