package proficiency

import "errors"

var (
	// ErrInvalidDifficulty means an explicitly supplied difficulty band was
	// outside [MinBand, MaxBand]. A missing band is not an error.
	ErrInvalidDifficulty = errors.New("difficulty band out of range")

	// ErrInvalidWeightConfiguration means the domain weights of a subject do
	// not sum to 1.0. Raised at hierarchy construction, never at scoring time.
	ErrInvalidWeightConfiguration = errors.New("domain weights do not sum to 1.0")
)
