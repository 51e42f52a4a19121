package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamAccumulator(t *testing.T) {
	acc := NewStreamAccumulator()
	assert.Equal(t, AwaitingAnswer, acc.Phase())

	acc.AddReasoning("let me think. ")
	acc.AddReasoning("the text mentions AI.")
	assert.Equal(t, AwaitingAnswer, acc.Phase())

	assert.False(t, acc.AddAnswer(""))
	assert.True(t, acc.AddAnswer(`{"contains_keywords": `))
	assert.False(t, acc.AddAnswer(`true}`))
	assert.Equal(t, Accumulating, acc.Phase())

	// late reasoning is kept apart from the answer
	acc.AddReasoning(" done")

	answer, err := acc.Finish()
	require.NoError(t, err)
	assert.Equal(t, `{"contains_keywords": true}`, answer)
	assert.Equal(t, "let me think. the text mentions AI. done", acc.Reasoning())
	assert.Equal(t, 2, acc.Fragments())
}

func TestStreamAccumulatorReasoningOnly(t *testing.T) {
	acc := NewStreamAccumulator()
	acc.AddReasoning("thinking")
	acc.AddAnswer("")

	_, err := acc.Finish()
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestStreamPhaseString(t *testing.T) {
	assert.Equal(t, "awaiting_answer", AwaitingAnswer.String())
	assert.Equal(t, "accumulating", Accumulating.String())
	assert.Equal(t, "unknown", StreamPhase(7).String())
}
