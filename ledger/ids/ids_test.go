package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSourceIssuesSequentially(t *testing.T) {
	source := NewSource(1001)
	require.Equal(t, uint64(1001), source.Peek())
	require.Equal(t, uint64(1001), source.NewTokenNum())
	require.Equal(t, uint64(1002), source.NewTokenNum())
	require.Equal(t, uint64(1003), source.Peek())
}

func TestReclaimLastReleasesTheNumber(t *testing.T) {
	source := NewSource(1001)
	require.Equal(t, uint64(1001), source.NewTokenNum())
	source.ReclaimLast()
	require.Equal(t, uint64(1001), source.NewTokenNum())
}

func TestReclaimWithoutIssuancePanics(t *testing.T) {
	source := NewSource(1001)
	require.PanicsWithValue(t, ErrNothingToReclaim, func() {
		source.ReclaimLast()
	})

	// Reclaiming past the first issued number is equally invalid.
	source.NewTokenNum()
	source.ReclaimLast()
	require.PanicsWithValue(t, ErrNothingToReclaim, func() {
		source.ReclaimLast()
	})
}
