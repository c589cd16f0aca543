package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityIdentical(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("jane doe", "jane doe"))
}

func TestSimilarityEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("jane", ""))
}

func TestSimilarityDisjoint(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("xyz", "qwm"))
}

func TestSimilaritySymmetric(t *testing.T) {
	a, b := "jonathan smith", "jon smith"
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}

func TestSimilarityNearNames(t *testing.T) {
	// Close variants should clear the merge threshold, distinct names should not.
	assert.Greater(t, Similarity("jane doe", "jane m doe"), 0.6)
	assert.Less(t, Similarity("jane doe", "robert chen"), 0.3)
}
