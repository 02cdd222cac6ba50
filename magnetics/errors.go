package magnetics

import "errors"

// Callers match these with errors.Is, returned errors wrap them with context.
var (
	// ErrConfiguration covers empty receiver lists, unknown model types and missing field parameters.
	ErrConfiguration = errors.New("magnetics: configuration error")

	// ErrDimension covers model, mask and receiver lengths that disagree with the survey or mesh.
	ErrDimension = errors.New("magnetics: dimension mismatch")

	// ErrGeometry covers degenerate (zero volume or non finite) cells.
	ErrGeometry = errors.New("magnetics: degenerate cell geometry")
)
