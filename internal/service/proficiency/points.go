package proficiency

// Difficulty band bounds for SAT questions (College Board score bands).
const (
	MinBand = 1
	MaxBand = 7

	// DefaultBand is applied when a question carries no band at all.
	// The defaulting happens here and only here; callers pass the nullable
	// band through untouched.
	DefaultBand = 4
)

// PointsForAnswer converts a question's difficulty band and the answer's
// correctness into a skill score delta.
//
// A correct answer earns the band itself (1..7): harder questions earn more.
// An incorrect answer costs -(8-band) (-7..-1): missing an easy question
// costs more than missing a hard one.
//
// band == nil means the question has no band and scores as DefaultBand.
// A present band outside [MinBand, MaxBand] returns ErrInvalidDifficulty.
// Pure and safe for concurrent use.
func PointsForAnswer(band *int, isCorrect bool) (int, error) {
	b := DefaultBand
	if band != nil {
		if *band < MinBand || *band > MaxBand {
			return 0, ErrInvalidDifficulty
		}
		b = *band
	}

	if isCorrect {
		return b, nil
	}
	return -(MaxBand + 1 - b), nil
}
