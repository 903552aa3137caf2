package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitInsertsPendingPlaceholder(t *testing.T) {
	tr := NewTranscript()

	idx, err := tr.Submit("2+2?")

	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	entries := tr.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "2+2?", entries[0].Query)
	assert.Nil(t, entries[0].Answer)
	assert.Equal(t, 1, tr.Pending())
}

func TestSubmitRejectsBlankQuery(t *testing.T) {
	tr := NewTranscript()
	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := tr.Submit(q)
		assert.ErrorIs(t, err, ErrBlankQuery)
	}
	assert.Empty(t, tr.Entries())
}

func TestResolveFillsLastPendingPlaceholder(t *testing.T) {
	tr := NewTranscript()
	_, err := tr.Submit("A")
	require.NoError(t, err)
	_, err = tr.Submit("B")
	require.NoError(t, err)

	// B's answer arrives first; without correlation ids the most recently
	// inserted placeholder takes it.
	tr.Resolve("B", "x", "")

	entries := tr.Entries()
	assert.Nil(t, entries[0].Answer, "A stays pending")
	require.NotNil(t, entries[1].Answer)
	assert.Equal(t, "x", *entries[1].Answer)
}

func TestResolveLastPendingMisassignsWithoutCorrelation(t *testing.T) {
	// Documented failure mode of the fallback: A's answer arriving first
	// lands on B's placeholder.
	tr := NewTranscript()
	_, err := tr.Submit("A")
	require.NoError(t, err)
	_, err = tr.Submit("B")
	require.NoError(t, err)

	tr.Resolve("A", "answer-for-A", "")

	entries := tr.Entries()
	assert.Nil(t, entries[0].Answer)
	require.NotNil(t, entries[1].Answer)
	assert.Equal(t, "answer-for-A", *entries[1].Answer)
}

func TestResolveByCorrelationIDBeatsLastPending(t *testing.T) {
	tr := NewTranscript()
	idxA, err := tr.Submit("A")
	require.NoError(t, err)
	_, err = tr.Submit("B")
	require.NoError(t, err)
	tr.Tag(idxA, "corr-A")

	// A's answer arrives after B was submitted; the correlation id routes
	// it to the right placeholder despite an older insertion index.
	tr.Resolve("A", "answer-for-A", "corr-A")

	entries := tr.Entries()
	require.NotNil(t, entries[0].Answer)
	assert.Equal(t, "answer-for-A", *entries[0].Answer)
	assert.Nil(t, entries[1].Answer, "B stays pending")
}

func TestResolveFallbackPrefersUntaggedPending(t *testing.T) {
	tr := NewTranscript()
	_, err := tr.Submit("A") // A's direct reply still in flight, no tag yet
	require.NoError(t, err)
	idxB, err := tr.Submit("B")
	require.NoError(t, err)
	tr.Tag(idxB, "corr-B") // B's direct reply landed first

	// A's notification beats A's reply, so its id matches no placeholder.
	// B is already claimed by corr-B; the untagged A takes the answer even
	// though B was inserted later.
	tr.Resolve("A", "answer-for-A", "corr-A")

	entries := tr.Entries()
	require.NotNil(t, entries[0].Answer)
	assert.Equal(t, "answer-for-A", *entries[0].Answer)
	assert.Nil(t, entries[1].Answer, "B stays pending for its own notification")
}

func TestResolveFallsBackToTaggedPendingAsLastResort(t *testing.T) {
	tr := NewTranscript()
	idx, err := tr.Submit("A")
	require.NoError(t, err)
	tr.Tag(idx, "corr-A")

	// only a mismatched-tag placeholder is available
	tr.Resolve("A", "x", "corr-unseen")

	entries := tr.Entries()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Answer)
	assert.Equal(t, "x", *entries[0].Answer)
}

func TestResolveWithUnknownCorrelationFallsBack(t *testing.T) {
	tr := NewTranscript()
	_, err := tr.Submit("A")
	require.NoError(t, err)

	// notification beat the direct reply, so no placeholder carries the id
	tr.Resolve("A", "x", "corr-unseen")

	entries := tr.Entries()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Answer)
	assert.Equal(t, "x", *entries[0].Answer)
}

func TestResolveWithNoPendingAppends(t *testing.T) {
	tr := NewTranscript()

	tr.Resolve("external question", "external answer", "")

	entries := tr.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "external question", entries[0].Query)
	require.NotNil(t, entries[0].Answer)
	assert.Equal(t, "external answer", *entries[0].Answer)
}

func TestResolveDoesNotDoubleApply(t *testing.T) {
	tr := NewTranscript()
	idx, err := tr.Submit("A")
	require.NoError(t, err)
	tr.Tag(idx, "corr-A")

	tr.Resolve("A", "x", "corr-A")
	// duplicate delivery of the same notification
	tr.Resolve("A", "x", "corr-A")

	entries := tr.Entries()
	assert.Len(t, entries, 2, "duplicate resolves append rather than corrupt the placeholder")
	require.NotNil(t, entries[0].Answer)
	assert.Equal(t, "x", *entries[0].Answer)
}

func TestFailMarksPlaceholder(t *testing.T) {
	tr := NewTranscript()
	idx, err := tr.Submit("A")
	require.NoError(t, err)

	tr.Fail(idx)

	entries := tr.Entries()
	assert.True(t, entries[0].Failed)
	assert.Equal(t, 0, tr.Pending(), "failed placeholder is not left pending")

	// a later notification must not land on the failed row
	tr.Resolve("other", "x", "")
	entries = tr.Entries()
	assert.Nil(t, entries[0].Answer)
	require.Len(t, entries, 2)
	assert.Equal(t, "x", *entries[1].Answer)
}

func TestReplaceDropsStalePending(t *testing.T) {
	tr := NewTranscript()
	_, err := tr.Submit("stale")
	require.NoError(t, err)

	answer := "4"
	tr.Replace([]Entry{{Query: "2+2?", Answer: &answer}})

	entries := tr.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "2+2?", entries[0].Query)
	assert.Equal(t, 0, tr.Pending())
}
