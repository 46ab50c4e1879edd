// Package apperr defines the small set of sentinel errors shared across
// agents, matching the error kinds in the error-handling design.
package apperr

import "errors"

var (
	// ErrInvalidInput is returned when a query fails boundary validation
	// (empty or over length) before it ever reaches the classifier.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownLocation is surfaced by an agent when a place name could
	// not be geocoded against the gazetteer.
	ErrUnknownLocation = errors.New("unknown_location")

	// ErrDegenerateFeatures marks a Mahalanobis anomaly pass skipped
	// because too few facilities carry complete feature vectors, or the
	// sample covariance matrix is singular.
	ErrDegenerateFeatures = errors.New("degenerate_features")

	// ErrIndexUnavailable is returned by the vector index client when the
	// remote index cannot be reached.
	ErrIndexUnavailable = errors.New("vector_index_unavailable")
)
