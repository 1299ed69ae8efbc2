package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuestion() *Question {
	return &Question{
		ID:      1,
		Subject: "math",
		Domain:  "algebra",
		Skill:   "linear-functions",
		Text:    "Which line has slope 2?",
		Options: AnswerOptions{
			{ID: "a", Content: "y = x + 2"},
			{ID: "b", Content: "y = 2x + 1"},
			{ID: "c", Content: "y = -2x"},
			{ID: "d", Content: "y = 2"},
		},
		CorrectAnswerID: "b",
	}
}

func TestQuestion_IsCorrect(t *testing.T) {
	question := sampleQuestion()

	assert.True(t, question.IsCorrect("b"))
	assert.False(t, question.IsCorrect("a"))
	assert.False(t, question.IsCorrect("z"))
}

func TestQuestion_IsCorrect_EmptyAnswerNeverMatches(t *testing.T) {
	// A skipped question must grade as incorrect even against corrupt bank
	// data with an empty correct answer id.
	question := &Question{CorrectAnswerID: ""}

	assert.False(t, question.IsCorrect(""))
}

func TestQuestion_IsValidOption(t *testing.T) {
	question := sampleQuestion()

	assert.True(t, question.IsValidOption("a"))
	assert.True(t, question.IsValidOption("d"))
	assert.False(t, question.IsValidOption("e"))
	assert.False(t, question.IsValidOption(""))
}

func TestAnswerOptions_ScanValueRoundTrip(t *testing.T) {
	options := AnswerOptions{
		{ID: "a", Content: "first"},
		{ID: "b", Content: "second"},
	}

	raw, err := options.Value()
	require.NoError(t, err)

	var decoded AnswerOptions
	require.NoError(t, decoded.Scan(raw))
	assert.Equal(t, options, decoded)
}

func TestAnswerOptions_ScanNil(t *testing.T) {
	var options AnswerOptions
	require.NoError(t, options.Scan(nil))
	assert.Empty(t, options)
}

func TestAnswerOptions_ValueEmptyIsJSONArray(t *testing.T) {
	raw, err := AnswerOptions{}.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), raw)
}
