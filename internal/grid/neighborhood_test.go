package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/automata/internal/vec"
)

func TestTopologyCardinality(t *testing.T) {
	assert.Equal(t, 26, Moore.Size())
	assert.Equal(t, 6, VonNeumann.Size())
	assert.Equal(t, 8, MoorePlanar.Size())

	for _, e := range testExtents {
		for p := range Coordinates(e) {
			require.Len(t, e.Neighbors(p, Moore), 26)
			require.Len(t, e.Neighbors(p, VonNeumann), 6)
			require.Len(t, e.Neighbors(p, MoorePlanar), 8)
		}
	}
}

func TestTopologyOrder(t *testing.T) {
	moore := Moore.Offsets()
	assert.Equal(t, vec.Vec3{X: -1, Y: -1, Z: -1}, moore[0])
	assert.Equal(t, vec.Vec3{X: -1, Y: -1, Z: 0}, moore[1])
	assert.Equal(t, vec.Vec3{X: 0, Y: 0, Z: -1}, moore[12])
	assert.Equal(t, vec.Vec3{X: 0, Y: 0, Z: 1}, moore[13])
	assert.Equal(t, vec.Vec3{X: 1, Y: 1, Z: 1}, moore[25])

	assert.Equal(t, []vec.Vec3{
		{X: -1}, {X: 1}, {Y: -1}, {Y: 1}, {Z: -1}, {Z: 1},
	}, VonNeumann.Offsets())

	planar := MoorePlanar.Offsets()
	assert.Equal(t, vec.Vec3{X: -1, Z: -1}, planar[0])
	assert.Equal(t, vec.Vec3{X: 1, Z: 1}, planar[7])
	for _, d := range planar {
		assert.Zero(t, d.Y)
	}

	// копия не должна портить внутренний порядок
	moore[0] = vec.Vec3{}
	assert.Equal(t, vec.Vec3{X: -1, Y: -1, Z: -1}, Moore.Offsets()[0])
}

// На оси длины 1 или 2 разные смещения попадают в одну клетку;
// дубликаты сохраняются, поэтому счётчики соседей завышены.
func TestNeighborsAreNotDeduplicated(t *testing.T) {
	e := Extent{X: 1, Y: 1, Z: 1}
	for _, n := range e.Neighbors(vec.UVec3{}, Moore) {
		assert.Equal(t, vec.UVec3{}, n)
	}

	e = Extent{X: 2, Y: 1, Z: 1}
	nbs := e.Neighbors(vec.UVec3{}, VonNeumann)
	assert.Equal(t, []vec.UVec3{{X: 1}, {X: 1}, {}, {}, {}, {}}, nbs)
}

func TestNeighborhoodCounts(t *testing.T) {
	nb := NewNeighborhood(1, 0, 2, 1, 0)
	assert.Equal(t, 5, nb.Len())
	assert.Equal(t, 2, nb.CountOf(1))
	assert.Equal(t, 2, nb.CountOf(0))
	assert.Equal(t, 3, nb.CountNonzero())
	assert.Equal(t, 4, nb.Sum())
	assert.Equal(t, State(2), nb.At(2))
	assert.Panics(t, func() { nb.At(5) })

	assert.Panics(t, func() { NewNeighborhood(make([]State, MaxNeighbors+1)...) })
}

func TestGatherFollowsOffsetOrder(t *testing.T) {
	e := Extent{X: 3, Y: 3, Z: 3}
	g, err := New(e, DenseStorage)
	require.NoError(t, err)

	center := vec.UVec3{X: 1, Y: 1, Z: 1}
	g.Set(vec.UVec3{X: 0, Y: 1, Z: 1}, 5) // -x
	g.Set(vec.UVec3{X: 1, Y: 1, Z: 2}, 7) // +z

	nb := g.NeighborhoodOf(center, VonNeumann)
	assert.Equal(t, State(5), nb.At(0))
	assert.Equal(t, State(7), nb.At(5))
	assert.Equal(t, 2, nb.CountNonzero())

	moore := g.NeighborhoodOf(center, Moore)
	assert.Equal(t, 2, moore.CountNonzero())
	assert.Equal(t, 12, moore.Sum())
}

func TestParseTopology(t *testing.T) {
	for name, want := range map[string]Topology{
		"moore":        Moore,
		"Von_Neumann":  VonNeumann,
		"moore_planar": MoorePlanar,
	} {
		got, err := ParseTopology(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseTopology("hex")
	assert.Error(t, err)
}
