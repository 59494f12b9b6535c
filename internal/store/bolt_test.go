package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojasmm/tilebot/internal/estimate"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEnqueueAndPendingInOrder(t *testing.T) {
	s := newTestStore(t)

	var ids []string
	for _, r := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		d, err := s.Enqueue(Delivery{Name: "n", Recipient: r})
		require.NoError(t, err)
		assert.NotEmpty(t, d.ID)
		assert.False(t, d.CreatedAt.IsZero())
		ids = append(ids, d.ID)
	}

	all, err := s.Pending(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, d := range all {
		assert.Equal(t, ids[i], d.ID)
	}

	two, err := s.Pending(2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
	assert.Equal(t, "a@example.com", two[0].Recipient)
}

func TestEstimateSurvivesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	est := &estimate.Result{TileCount: 64, BoxCount: 7, Area: "25 sq.m", Cost: 9600, CostText: "₹9,600"}

	_, err := s.Enqueue(Delivery{Name: "Asha", Recipient: "asha@example.com", Estimate: est, TileSize: "12x12 in"})
	require.NoError(t, err)

	got, err := s.Pending(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Estimate)
	assert.Equal(t, 64, got[0].Estimate.TileCount)
	assert.Equal(t, "₹9,600", got[0].Estimate.CostText)
	assert.Equal(t, "12x12 in", got[0].TileSize)
}

func TestMarkDelivered(t *testing.T) {
	s := newTestStore(t)
	d, err := s.Enqueue(Delivery{Recipient: "x@example.com"})
	require.NoError(t, err)

	require.NoError(t, s.MarkDelivered(d.ID))
	pending, err := s.Pending(0)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, s.MarkDelivered(d.ID), ErrNotFound)
}

func TestMarkFailedRetriesThenDeadLetters(t *testing.T) {
	s := newTestStore(t)
	d, err := s.Enqueue(Delivery{Recipient: "x@example.com"})
	require.NoError(t, err)

	dead, err := s.MarkFailed(d.ID, errors.New("provider down"), 2)
	require.NoError(t, err)
	assert.False(t, dead)

	pending, err := s.Pending(0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "provider down", pending[0].LastError)

	dead, err = s.MarkFailed(d.ID, errors.New("still down"), 2)
	require.NoError(t, err)
	assert.True(t, dead)

	pending, err = s.Pending(0)
	require.NoError(t, err)
	assert.Empty(t, pending)

	letters, err := s.DeadLetters()
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, 2, letters[0].Attempts)

	_, err = s.MarkFailed("missing", nil, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReopenKeepsOutbox(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	s, err := NewBoltStore(path)
	require.NoError(t, err)
	_, err = s.Enqueue(Delivery{Recipient: "keep@example.com"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	pending, err := s.Pending(0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "keep@example.com", pending[0].Recipient)
}
