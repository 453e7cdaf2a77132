package grid

import (
	"errors"
	"fmt"

	"github.com/annel0/automata/internal/vec"
)

var (
	// ErrInvalidExtent возвращается при попытке создать сетку с нулевой или отрицательной осью
	ErrInvalidExtent = errors.New("grid: invalid extent")
	// ErrOutOfRange возвращается при обращении к координате за пределами сетки
	ErrOutOfRange = errors.New("grid: coordinate out of range")
)

// Extent задаёт размеры сетки по трём осям. Размеры фиксируются на всё время жизни сетки.
//
// Порядок линеаризации закреплён и используется всем пакетом:
//
//	index = x + z*X + y*X*Z
//
// то есть x меняется быстрее всего, затем z, затем y (послойно по высоте).
type Extent struct {
	X int
	Y int
	Z int
}

// NewExtent создаёт Extent, проверяя, что все оси положительны
func NewExtent(x, y, z int) (Extent, error) {
	e := Extent{X: x, Y: y, Z: z}
	if err := e.Validate(); err != nil {
		return Extent{}, err
	}
	return e, nil
}

// Validate проверяет, что все три размера больше нуля
func (e Extent) Validate() error {
	if e.X <= 0 || e.Y <= 0 || e.Z <= 0 {
		return fmt.Errorf("%w: %dx%dx%d", ErrInvalidExtent, e.X, e.Y, e.Z)
	}
	return nil
}

// CellCount возвращает количество клеток X*Y*Z
func (e Extent) CellCount() int {
	return e.X * e.Y * e.Z
}

// Contains сообщает, лежит ли координата внутри сетки
func (e Extent) Contains(p vec.UVec3) bool {
	return p.X < uint(e.X) && p.Y < uint(e.Y) && p.Z < uint(e.Z)
}

// IndexOf переводит координату клетки в линейный индекс.
// Возвращает ErrOutOfRange, если хотя бы одна ось выходит за пределы.
func (e Extent) IndexOf(p vec.UVec3) (int, error) {
	if !e.Contains(p) {
		return 0, fmt.Errorf("%w: %v in %v", ErrOutOfRange, p, e)
	}
	return e.index(p), nil
}

// MustIndexOf то же, что IndexOf, но паникует на координате вне сетки
func (e Extent) MustIndexOf(p vec.UVec3) int {
	i, err := e.IndexOf(p)
	if err != nil {
		panic(err)
	}
	return i
}

func (e Extent) index(p vec.UVec3) int {
	return int(p.X) + int(p.Z)*e.X + int(p.Y)*e.X*e.Z
}

// PointOf переводит линейный индекс обратно в координату.
// Определён для 0 <= i < CellCount(); иначе паникует.
func (e Extent) PointOf(i int) vec.UVec3 {
	if i < 0 || i >= e.CellCount() {
		panic(fmt.Errorf("%w: index %d in %v", ErrOutOfRange, i, e))
	}
	layer := e.X * e.Z
	y := i / layer
	rest := i - y*layer
	return vec.UVec3{
		X: uint(rest % e.X),
		Y: uint(y),
		Z: uint(rest / e.X),
	}
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%dx%d", e.X, e.Y, e.Z)
}
