package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/automata/internal/engine"
	"github.com/annel0/automata/internal/grid"
)

func TestTickMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewTickMetrics(reg)
	require.NoError(t, err)

	m.ObserveTick(engine.TickResult{
		Generation: 3,
		Diff:       engine.Diff{{Index: 1, State: 1}, {Index: 2, State: 0}},
		Skipped:    1,
		Workers:    4,
		Duration:   2 * time.Millisecond,
	})
	m.ObserveFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.changed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.generation))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.workers))

	count, err := testutil.GatherAndCount(reg, "automata_tick_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = NewTickMetrics(reg)
	assert.Error(t, err, "повторная регистрация должна завершиться ошибкой")
}

func TestTickMetricsAsRecorder(t *testing.T) {
	m, err := NewTickMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	g, err := grid.New(grid.Extent{X: 4, Y: 1, Z: 4}, grid.DenseStorage)
	require.NoError(t, err)
	g.SetIndex(0, 1)

	eng := engine.New(engine.Options{Workers: 3, Partition: engine.PartitionTruncate, Recorder: m})
	wipe := engine.NewRule(grid.VonNeumann, func(grid.State, grid.Neighborhood) grid.State { return 0 })
	_, err = eng.Tick(context.Background(), g, wipe)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.changed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generation))
}
