package grid

import (
	"sync"

	"github.com/annel0/automata/internal/vec"
)

// State дискретное состояние клетки. Смысл значений знает только правило перехода.
type State uint8

// Empty фоновое состояние по умолчанию
const Empty State = 0

// Change новое состояние клетки с индексом Index
type Change struct {
	Index int
	State State
}

// Grid связывает размеры сетки с хранилищем состояний.
//
// Состояние меняется только через Advance (один писатель после барьера)
// или через прямые записи при начальном заполнении до первого тика.
type Grid struct {
	extent  Extent
	storage Storage

	tickMu     sync.Mutex   // сериализует тики
	mu         sync.RWMutex // защищает storage и generation
	generation uint64
}

// New создаёт сетку, заполненную Empty
func New(e Extent, kind StorageKind) (*Grid, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &Grid{extent: e, storage: NewStorage(e, kind)}, nil
}

// Extent размеры сетки
func (g *Grid) Extent() Extent { return g.extent }

// Kind тип хранилища
func (g *Grid) Kind() StorageKind { return g.storage.Kind() }

// Generation номер текущего поколения (количество успешных тиков)
func (g *Grid) Generation() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.generation
}

// Get состояние клетки p; паникует, если p вне сетки
func (g *Grid) Get(p vec.UVec3) State {
	return g.GetIndex(g.extent.MustIndexOf(p))
}

// Set записывает состояние клетки p; паникует, если p вне сетки
func (g *Grid) Set(p vec.UVec3, s State) {
	g.SetIndex(g.extent.MustIndexOf(p), s)
}

// GetIndex состояние клетки по линейному индексу
func (g *Grid) GetIndex(i int) State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.storage.Get(i)
}

// SetIndex записывает состояние клетки по линейному индексу
func (g *Grid) SetIndex(i int, s State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.storage.Set(i, s)
}

// Clear сбрасывает все клетки в Empty
func (g *Grid) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.storage = NewStorage(g.extent, g.storage.Kind())
}

// Snapshot неизменяемая копия текущего поколения
func (g *Grid) Snapshot() View {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.storage.Snapshot()
}

// LiveCount количество клеток в ненулевом состоянии
func (g *Grid) LiveCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if sp, ok := g.storage.(*Sparse); ok {
		return sp.Active()
	}
	n := 0
	for i := 0; i < g.storage.Len(); i++ {
		if g.storage.Get(i) != Empty {
			n++
		}
	}
	return n
}

// Advance выполняет одно поколение в три фазы с барьерами между ними:
//
//  1. снимок текущего поколения под блокировкой на чтение;
//  2. compute над снимком без блокировок (читатели сетки не ждут);
//  3. применение изменений под блокировкой на запись и увеличение номера поколения.
//
// Если compute вернул ошибку, хранилище и номер поколения не меняются.
// Одновременно выполняется не больше одного Advance.
func (g *Grid) Advance(compute func(view View) ([]Change, error)) (uint64, error) {
	g.tickMu.Lock()
	defer g.tickMu.Unlock()

	view := g.Snapshot()

	changes, err := compute(view)
	if err != nil {
		return g.Generation(), err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range changes {
		g.storage.Set(c.Index, c.State)
	}
	g.generation++
	return g.generation, nil
}

// NeighborhoodOf окрестность клетки p в текущем поколении
func (g *Grid) NeighborhoodOf(p vec.UVec3, topo Topology) Neighborhood {
	g.extent.MustIndexOf(p)
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Gather(g.storage, g.extent, p, topo)
}
