package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeOutcomeString(t *testing.T) {
	assert.Equal(t, "unset", OutcomeUnset.String())
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "skipped_visited", OutcomeSkippedVisited.String())
}

func TestNodeOutcomeIsValid(t *testing.T) {
	valid := []NodeOutcome{
		OutcomeSuccess, OutcomeHTTPError, OutcomeNonHTML, OutcomeTransportFailure,
		OutcomeSkippedDepth, OutcomeSkippedBudget, OutcomeSkippedVisited, OutcomeInvalidStart,
	}
	for _, o := range valid {
		assert.True(t, o.IsValid(), "expected %s to be valid", o)
	}
	assert.False(t, OutcomeUnset.IsValid())
	assert.False(t, NodeOutcome("bogus").IsValid())
}

func TestNodeOutcomeIsSkip(t *testing.T) {
	assert.True(t, OutcomeSkippedDepth.IsSkip())
	assert.True(t, OutcomeSkippedBudget.IsSkip())
	assert.True(t, OutcomeSkippedVisited.IsSkip())
	assert.False(t, OutcomeSuccess.IsSkip())
	assert.False(t, OutcomeTransportFailure.IsSkip())
}

func TestNodeOutcomeIsFetched(t *testing.T) {
	assert.True(t, OutcomeSuccess.IsFetched())
	assert.True(t, OutcomeHTTPError.IsFetched())
	assert.True(t, OutcomeNonHTML.IsFetched())
	assert.False(t, OutcomeTransportFailure.IsFetched())
	assert.False(t, OutcomeSkippedDepth.IsFetched())
}
