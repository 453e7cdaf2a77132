package grid

import (
	"fmt"
	"strings"

	"github.com/annel0/automata/internal/vec"
)

// MaxNeighbors максимальный размер окрестности (Мур в 3D)
const MaxNeighbors = 26

// Topology определяет способ перечисления соседей клетки
type Topology uint8

const (
	// Moore все клетки на расстоянии Чебышёва 1, кроме самой клетки (26 в 3D)
	Moore Topology = iota
	// VonNeumann шесть осевых соседей
	VonNeumann
	// MoorePlanar восемь соседей в плоскости XZ при фиксированном y
	MoorePlanar
)

// Порядок смещений фиксирован: от него зависят потребители, которые адресуют
// соседей по позиции (например, массивы источников света фиксированного размера).
var (
	// x внешний цикл, y средний, z внутренний; (0,0,0) пропускается
	mooreOffsets = func() []vec.Vec3 {
		out := make([]vec.Vec3, 0, MaxNeighbors)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					d := vec.Vec3{X: dx, Y: dy, Z: dz}
					if d.IsZero() {
						continue
					}
					out = append(out, d)
				}
			}
		}
		return out
	}()

	// -x, +x, -y, +y, -z, +z
	vonNeumannOffsets = []vec.Vec3{
		{X: -1}, {X: 1},
		{Y: -1}, {Y: 1},
		{Z: -1}, {Z: 1},
	}

	// x внешний цикл, z внутренний
	moorePlanarOffsets = func() []vec.Vec3 {
		out := make([]vec.Vec3, 0, 8)
		for dx := -1; dx <= 1; dx++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dz == 0 {
					continue
				}
				out = append(out, vec.Vec3{X: dx, Z: dz})
			}
		}
		return out
	}()
)

func (t Topology) offsets() []vec.Vec3 {
	switch t {
	case Moore:
		return mooreOffsets
	case VonNeumann:
		return vonNeumannOffsets
	case MoorePlanar:
		return moorePlanarOffsets
	default:
		panic(fmt.Sprintf("grid: unknown topology %d", t))
	}
}

// Offsets возвращает копию смещений топологии в фиксированном порядке
func (t Topology) Offsets() []vec.Vec3 {
	src := t.offsets()
	out := make([]vec.Vec3, len(src))
	copy(out, src)
	return out
}

// Size возвращает количество смещений (26, 6 или 8)
func (t Topology) Size() int {
	return len(t.offsets())
}

func (t Topology) String() string {
	switch t {
	case Moore:
		return "moore"
	case VonNeumann:
		return "von_neumann"
	case MoorePlanar:
		return "moore_planar"
	default:
		return "unknown"
	}
}

// ParseTopology разбирает имя топологии из конфигурации
func ParseTopology(name string) (Topology, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "moore":
		return Moore, nil
	case "von_neumann", "vonneumann", "von-neumann":
		return VonNeumann, nil
	case "moore_planar", "planar":
		return MoorePlanar, nil
	default:
		return 0, fmt.Errorf("grid: unknown topology %q", name)
	}
}

// Neighbors возвращает координаты соседей клетки p.
// Дубликаты не удаляются: при длине оси 1 или 2 разные смещения
// могут завернуться в одну и ту же клетку, и она будет посчитана несколько раз.
func (e Extent) Neighbors(p vec.UVec3, topo Topology) []vec.UVec3 {
	return e.AppendNeighbors(make([]vec.UVec3, 0, topo.Size()), p, topo)
}

// AppendNeighbors добавляет координаты соседей p в dst и возвращает расширенный срез
func (e Extent) AppendNeighbors(dst []vec.UVec3, p vec.UVec3, topo Topology) []vec.UVec3 {
	for _, d := range topo.offsets() {
		dst = append(dst, e.Wrap(p.Offset(d)))
	}
	return dst
}

// Neighborhood упорядоченный набор состояний соседей фиксированной ёмкости.
// Значение живёт на стеке: строится для каждой клетки на каждом тике.
type Neighborhood struct {
	states [MaxNeighbors]State
	n      uint8
}

// NewNeighborhood собирает окрестность из явного списка состояний.
// Паникует, если состояний больше MaxNeighbors.
func NewNeighborhood(states ...State) Neighborhood {
	if len(states) > MaxNeighbors {
		panic(fmt.Sprintf("grid: neighborhood of %d states exceeds %d", len(states), MaxNeighbors))
	}
	var nb Neighborhood
	for _, s := range states {
		nb.push(s)
	}
	return nb
}

func (nb *Neighborhood) push(s State) {
	nb.states[nb.n] = s
	nb.n++
}

// Len количество соседей
func (nb Neighborhood) Len() int { return int(nb.n) }

// At состояние i-го соседа в порядке смещений топологии
func (nb Neighborhood) At(i int) State {
	if i < 0 || i >= int(nb.n) {
		panic(fmt.Sprintf("grid: neighbor %d out of %d", i, nb.n))
	}
	return nb.states[i]
}

// CountOf количество соседей в состоянии s
func (nb Neighborhood) CountOf(s State) int {
	c := 0
	for _, v := range nb.states[:nb.n] {
		if v == s {
			c++
		}
	}
	return c
}

// CountNonzero количество соседей в ненулевом состоянии
func (nb Neighborhood) CountNonzero() int {
	c := 0
	for _, v := range nb.states[:nb.n] {
		if v != Empty {
			c++
		}
	}
	return c
}

// Sum сумма состояний соседей
func (nb Neighborhood) Sum() int {
	sum := 0
	for _, v := range nb.states[:nb.n] {
		sum += int(v)
	}
	return sum
}

// Gather строит окрестность клетки p по представлению view.
// view должен покрывать всю сетку e.
func Gather(view View, e Extent, p vec.UVec3, topo Topology) Neighborhood {
	var nb Neighborhood
	for _, d := range topo.offsets() {
		nb.push(view.Get(e.index(e.Wrap(p.Offset(d)))))
	}
	return nb
}
