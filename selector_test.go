package harvest_test

import (
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectContainer(t *testing.T) {
	t.Parallel()

	candidates := []harvest.CandidateContainer{
		{ParentID: 1, Signature: "div|card|aip", StructuralScore: 0.9, SupportCount: 6, Members: []int{2, 3}},
		{ParentID: 4, Signature: "li||a", StructuralScore: 0.5, SupportCount: 8, Members: []int{5, 6}},
		{ParentID: 7, Signature: "div|tile|ap", StructuralScore: 0.7, SupportCount: 3, Members: []int{8, 9}},
	}

	t.Run("no verdicts returns the top scoring candidate", func(t *testing.T) {
		t.Parallel()

		chosen, ok := harvest.SelectContainer(candidates, harvest.Validation{Status: harvest.ValidationUnavailable})

		require.True(t, ok)
		assert.Equal(t, candidates[0], chosen)
	})

	t.Run("no candidates returns none", func(t *testing.T) {
		t.Parallel()

		_, ok := harvest.SelectContainer(nil, harvest.Validation{Status: harvest.ValidationUnavailable})

		assert.False(t, ok)
	})

	t.Run("accepted candidate with highest score wins", func(t *testing.T) {
		t.Parallel()

		v := harvest.ClassifyVerdicts(len(candidates), []harvest.Verdict{
			{Candidate: 1, Accepted: true, Confidence: 0.9},
			{Candidate: 2, Accepted: true, Confidence: 0.6},
			{Candidate: 0, Accepted: false, Reason: "looks like navigation"},
		})
		require.Equal(t, harvest.ValidationAccepted, v.Status)

		chosen, ok := harvest.SelectContainer(candidates, v)

		require.True(t, ok)
		// Candidate 2 scores higher than candidate 1, despite the
		// validator listing 1 first.
		assert.Equal(t, candidates[2], chosen)
	})

	t.Run("all rejected returns none regardless of scores", func(t *testing.T) {
		t.Parallel()

		v := harvest.ClassifyVerdicts(len(candidates), []harvest.Verdict{
			{Candidate: 0, Accepted: false},
			{Candidate: 1, Accepted: false},
			{Candidate: 2, Accepted: false},
		})
		require.Equal(t, harvest.ValidationRejectedAll, v.Status)

		_, ok := harvest.SelectContainer(candidates, v)

		assert.False(t, ok)
	})
}

func TestClassifyVerdicts(t *testing.T) {
	t.Parallel()

	t.Run("empty verdict list is unavailable, not rejection", func(t *testing.T) {
		t.Parallel()

		v := harvest.ClassifyVerdicts(3, nil)

		assert.Equal(t, harvest.ValidationUnavailable, v.Status)
	})

	t.Run("verdicts for unknown candidates are ignored", func(t *testing.T) {
		t.Parallel()

		v := harvest.ClassifyVerdicts(2, []harvest.Verdict{
			{Candidate: 7, Accepted: true},
			{Candidate: -1, Accepted: true},
		})

		assert.Equal(t, harvest.ValidationUnavailable, v.Status)
		assert.Empty(t, v.Verdicts)
	})

	t.Run("a single rejection among unknowns is still a rejection", func(t *testing.T) {
		t.Parallel()

		v := harvest.ClassifyVerdicts(2, []harvest.Verdict{
			{Candidate: 9, Accepted: true},
			{Candidate: 0, Accepted: false},
		})

		assert.Equal(t, harvest.ValidationRejectedAll, v.Status)
	})
}
