package grid

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/automata/internal/vec"
)

func TestNewGridRejectsInvalidExtent(t *testing.T) {
	_, err := New(Extent{X: 3, Y: 0, Z: 3}, DenseStorage)
	assert.ErrorIs(t, err, ErrInvalidExtent)
}

func TestGridGetSet(t *testing.T) {
	g, err := New(Extent{X: 3, Y: 1, Z: 3}, SparseStorage)
	require.NoError(t, err)

	p := vec.UVec3{X: 2, Z: 1}
	g.Set(p, 4)
	assert.Equal(t, State(4), g.Get(p))
	assert.Equal(t, State(4), g.GetIndex(5))
	assert.Equal(t, 1, g.LiveCount())

	assert.Panics(t, func() { g.Set(vec.UVec3{X: 3}, 1) })
	assert.Panics(t, func() { g.Get(vec.UVec3{Y: 1}) })

	g.Clear()
	assert.Equal(t, 0, g.LiveCount())
	assert.Equal(t, SparseStorage, g.Kind())
}

func TestAdvanceAppliesChanges(t *testing.T) {
	g, err := New(Extent{X: 2, Y: 2, Z: 2}, DenseStorage)
	require.NoError(t, err)

	gen, err := g.Advance(func(view View) ([]Change, error) {
		assert.Equal(t, 8, view.Len())
		return []Change{{Index: 1, State: 2}, {Index: 7, State: 1}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, State(2), g.GetIndex(1))
	assert.Equal(t, State(1), g.GetIndex(7))

	gen, err = g.Advance(func(View) ([]Change, error) { return nil, nil })
	require.NoError(t, err)
	assert.Equal(t, uint64(2), gen)
}

func TestAdvanceFailureLeavesGridUntouched(t *testing.T) {
	g, err := New(Extent{X: 2, Y: 1, Z: 2}, DenseStorage)
	require.NoError(t, err)
	g.SetIndex(0, 1)

	boom := errors.New("boom")
	gen, err := g.Advance(func(View) ([]Change, error) {
		return []Change{{Index: 0, State: 0}}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(0), gen)
	assert.Equal(t, uint64(0), g.Generation())
	assert.Equal(t, State(1), g.GetIndex(0))
}

func TestAdvanceComputeSeesFrozenView(t *testing.T) {
	g, err := New(Extent{X: 2, Y: 1, Z: 1}, DenseStorage)
	require.NoError(t, err)

	_, err = g.Advance(func(view View) ([]Change, error) {
		// запись в живую сетку во время вычисления не видна в снимке
		g.SetIndex(0, 9)
		assert.Equal(t, Empty, view.Get(0))
		return nil, nil
	})
	require.NoError(t, err)
}

func TestIterators(t *testing.T) {
	e := Extent{X: 2, Y: 2, Z: 1}
	g, err := New(e, DenseStorage)
	require.NoError(t, err)
	g.Set(vec.UVec3{X: 1, Y: 1}, 3)

	var states []State
	for s := range g.States() {
		states = append(states, s)
	}
	assert.Equal(t, []State{0, 0, 0, 3}, states)

	count := 0
	for p, s := range g.Cells() {
		assert.Equal(t, e.PointOf(count), p)
		assert.Equal(t, states[count], s)
		count++
	}
	assert.Equal(t, e.CellCount(), count)

	// повторный обход с ранним выходом
	seen := 0
	for range g.Cells() {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)

	coords := 0
	for range Coordinates(e) {
		coords++
	}
	assert.Equal(t, 4, coords)
}

// Чтение сетки из тела цикла не должно блокироваться тиком, ожидающим записи.
func TestIterationAllowsReadsDuringConcurrentAdvance(t *testing.T) {
	for _, kind := range []StorageKind{DenseStorage, SparseStorage} {
		g, err := New(Extent{X: 3, Y: 1, Z: 3}, kind)
		require.NoError(t, err)
		g.SetIndex(4, 2)

		finished := make(chan struct{})
		go func() {
			defer close(finished)
			first := true
			for p, s := range g.Cells() {
				if first {
					first = false
					advanced := make(chan error, 1)
					go func() {
						_, err := g.Advance(func(View) ([]Change, error) {
							return []Change{{Index: 4, State: 0}}, nil
						})
						advanced <- err
					}()
					select {
					case err := <-advanced:
						assert.NoError(t, err)
					case <-time.After(2 * time.Second):
						t.Errorf("%v: тик заблокирован обходом сетки", kind)
					}
				}
				_ = g.Get(p)
				_ = g.LiveCount()
				_ = g.NeighborhoodOf(p, Moore)
				if g.extent.MustIndexOf(p) == 4 {
					// обход видит поколение, с которого начался
					assert.Equal(t, State(2), s)
				}
			}
		}()

		select {
		case <-finished:
		case <-time.After(5 * time.Second):
			t.Fatalf("%v: обход сетки завис", kind)
		}
		assert.Equal(t, uint64(1), g.Generation())
		assert.Equal(t, Empty, g.GetIndex(4))
	}
}
