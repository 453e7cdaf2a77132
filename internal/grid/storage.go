package grid

import (
	"fmt"
	"strings"

	"github.com/annel0/automata/internal/vec"
)

// View представление состояния только для чтения
type View interface {
	// Get возвращает состояние клетки с линейным индексом i
	Get(i int) State
	// Len возвращает количество клеток
	Len() int
}

// Storage хранит состояния клеток. Движок не знает, какая реализация используется.
type Storage interface {
	View
	// Set записывает состояние клетки; индекс вне сетки - ошибка программиста (паника)
	Set(i int, s State)
	// Snapshot возвращает неизменяемую копию текущего поколения
	Snapshot() View
	// Kind возвращает тип хранилища
	Kind() StorageKind
}

// StorageKind тип представления хранилища
type StorageKind uint8

const (
	// DenseStorage массив на всю сетку
	DenseStorage StorageKind = iota
	// SparseStorage карта только ненулевых клеток
	SparseStorage
)

func (k StorageKind) String() string {
	switch k {
	case DenseStorage:
		return "dense"
	case SparseStorage:
		return "sparse"
	default:
		return "unknown"
	}
}

// ParseStorageKind разбирает имя хранилища из конфигурации
func ParseStorageKind(name string) (StorageKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "dense":
		return DenseStorage, nil
	case "sparse":
		return SparseStorage, nil
	default:
		return 0, fmt.Errorf("grid: unknown storage kind %q", name)
	}
}

// NewStorage создаёт пустое хранилище нужного типа
func NewStorage(e Extent, kind StorageKind) Storage {
	if kind == SparseStorage {
		return NewSparse(e)
	}
	return NewDense(e)
}

// Dense хранит все клетки в одном срезе
type Dense struct {
	cells []State
}

// NewDense создаёт плотное хранилище, заполненное нулями
func NewDense(e Extent) *Dense {
	return &Dense{cells: make([]State, e.CellCount())}
}

func (d *Dense) Get(i int) State    { return d.cells[i] }
func (d *Dense) Set(i int, s State) { d.cells[i] = s }
func (d *Dense) Len() int           { return len(d.cells) }
func (d *Dense) Kind() StorageKind  { return DenseStorage }

// Snapshot копирует срез целиком
func (d *Dense) Snapshot() View {
	cp := make([]State, len(d.cells))
	copy(cp, d.cells)
	return denseView(cp)
}

type denseView []State

func (v denseView) Get(i int) State { return v[i] }
func (v denseView) Len() int        { return len(v) }

// Sparse хранит только клетки с ненулевым состоянием.
// Отсутствующий ключ означает состояние Empty.
type Sparse struct {
	extent Extent
	cells  map[vec.UVec3]State
}

// NewSparse создаёт пустое разреженное хранилище
func NewSparse(e Extent) *Sparse {
	return &Sparse{extent: e, cells: make(map[vec.UVec3]State)}
}

// Get возвращает состояние клетки; PointOf паникует на индексе вне сетки
func (s *Sparse) Get(i int) State {
	return s.cells[s.extent.PointOf(i)]
}

// Set вставляет или перезаписывает состояние; Empty удаляет ключ
func (s *Sparse) Set(i int, st State) {
	p := s.extent.PointOf(i)
	if st == Empty {
		delete(s.cells, p)
		return
	}
	s.cells[p] = st
}

func (s *Sparse) Len() int          { return s.extent.CellCount() }
func (s *Sparse) Kind() StorageKind { return SparseStorage }

// Active количество ненулевых клеток
func (s *Sparse) Active() int { return len(s.cells) }

// Snapshot копирует карту
func (s *Sparse) Snapshot() View {
	cp := make(map[vec.UVec3]State, len(s.cells))
	for p, st := range s.cells {
		cp[p] = st
	}
	return &sparseView{extent: s.extent, cells: cp}
}

type sparseView struct {
	extent Extent
	cells  map[vec.UVec3]State
}

func (v *sparseView) Get(i int) State { return v.cells[v.extent.PointOf(i)] }
func (v *sparseView) Len() int        { return v.extent.CellCount() }
