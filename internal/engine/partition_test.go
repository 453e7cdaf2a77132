package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionTruncateDropsRemainder(t *testing.T) {
	spans, skipped := Partition(10, 3, PartitionTruncate)
	want := []Span{{0, 3}, {3, 6}, {6, 9}}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Errorf("неверные отрезки (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, skipped)

	// клеток меньше, чем воркеров: все отрезки пустые
	spans, skipped = Partition(3, 8, PartitionTruncate)
	assert.Len(t, spans, 8)
	for _, s := range spans {
		assert.Zero(t, s.Len())
	}
	assert.Equal(t, 3, skipped)
}

func TestPartitionRedistributeCoversEverything(t *testing.T) {
	spans, skipped := Partition(10, 3, PartitionRedistribute)
	want := []Span{{0, 4}, {4, 7}, {7, 10}}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Errorf("неверные отрезки (-want +got):\n%s", diff)
	}
	assert.Zero(t, skipped)

	for cells := 1; cells <= 50; cells++ {
		for workers := 1; workers <= 12; workers++ {
			spans, skipped := Partition(cells, workers, PartitionRedistribute)
			require.Zero(t, skipped)
			next := 0
			for _, s := range spans {
				require.Equal(t, next, s.Start, "cells=%d workers=%d", cells, workers)
				require.Positive(t, s.Len())
				next = s.End
			}
			require.Equal(t, cells, next, "cells=%d workers=%d", cells, workers)
		}
	}
}

func TestPartitionEvenSplitIsIdenticalInBothModes(t *testing.T) {
	a, sa := Partition(12, 4, PartitionRedistribute)
	b, sb := Partition(12, 4, PartitionTruncate)
	assert.Equal(t, a, b)
	assert.Zero(t, sa)
	assert.Zero(t, sb)
}

func TestParsePartitionMode(t *testing.T) {
	m, err := ParsePartitionMode("")
	require.NoError(t, err)
	assert.Equal(t, PartitionRedistribute, m)

	m, err = ParsePartitionMode("Truncate")
	require.NoError(t, err)
	assert.Equal(t, PartitionTruncate, m)

	_, err = ParsePartitionMode("round-robin")
	assert.Error(t, err)
}
