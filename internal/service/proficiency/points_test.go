package proficiency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bandPtr(b int) *int { return &b }

// TestPointsForAnswer_LiteralFormulas pins the exact formulas rather than a
// symmetry that does not hold: points(5,true)=5 but points(5,false)=-3.
func TestPointsForAnswer_LiteralFormulas(t *testing.T) {
	tests := []struct {
		name      string
		band      int
		isCorrect bool
		want      int
	}{
		{"band 5 correct earns 5", 5, true, 5},
		{"band 5 incorrect costs 3", 5, false, -3},
		{"band 1 incorrect costs 7", 1, false, -7},
		{"band 7 incorrect costs 1", 7, false, -1},
		{"band 1 correct earns 1", 1, true, 1},
		{"band 7 correct earns 7", 7, true, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PointsForAnswer(bandPtr(tt.band), tt.isCorrect)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestPointsForAnswer_Ranges checks the delta range over every valid band.
func TestPointsForAnswer_Ranges(t *testing.T) {
	for band := MinBand; band <= MaxBand; band++ {
		correct, err := PointsForAnswer(bandPtr(band), true)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, correct, 1, "band %d correct", band)
		assert.LessOrEqual(t, correct, 7, "band %d correct", band)

		incorrect, err := PointsForAnswer(bandPtr(band), false)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, incorrect, -7, "band %d incorrect", band)
		assert.LessOrEqual(t, incorrect, -1, "band %d incorrect", band)
	}
}

// TestPointsForAnswer_MissingBandDefaults — a nil band is not an error, it
// scores as DefaultBand (4). This is the single place the default lives.
func TestPointsForAnswer_MissingBandDefaults(t *testing.T) {
	got, err := PointsForAnswer(nil, true)
	require.NoError(t, err)
	assert.Equal(t, DefaultBand, got)

	got, err = PointsForAnswer(nil, false)
	require.NoError(t, err)
	assert.Equal(t, -(MaxBand + 1 - DefaultBand), got)
}

// TestPointsForAnswer_OutOfRange — an explicitly supplied band outside 1..7
// is rejected, never silently defaulted.
func TestPointsForAnswer_OutOfRange(t *testing.T) {
	for _, band := range []int{0, 8, -3, 100} {
		_, err := PointsForAnswer(bandPtr(band), true)
		assert.ErrorIs(t, err, ErrInvalidDifficulty, "band %d must be rejected", band)
	}
}
