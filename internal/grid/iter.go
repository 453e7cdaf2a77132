package grid

import (
	"iter"

	"github.com/annel0/automata/internal/vec"
)

// Coordinates перечисляет все координаты сетки в порядке линеаризации.
// Последовательность ленивая и может обходиться повторно.
func Coordinates(e Extent) iter.Seq[vec.UVec3] {
	return func(yield func(vec.UVec3) bool) {
		for i := 0; i < e.CellCount(); i++ {
			if !yield(e.PointOf(i)) {
				return
			}
		}
	}
}

// States перечисляет состояния клеток в порядке линеаризации.
// Обход идёт по снимку поколения, взятому при первом шаге, поэтому блокировки
// на время тела цикла не удерживаются: из цикла можно читать сетку и
// параллельно выполнять тики.
func (g *Grid) States() iter.Seq[State] {
	return func(yield func(State) bool) {
		view := g.Snapshot()
		for i := 0; i < view.Len(); i++ {
			if !yield(view.Get(i)) {
				return
			}
		}
	}
}

// Cells перечисляет пары (координата, состояние) в порядке линеаризации.
// Семантика снимка та же, что у States.
func (g *Grid) Cells() iter.Seq2[vec.UVec3, State] {
	return func(yield func(vec.UVec3, State) bool) {
		view := g.Snapshot()
		for i := 0; i < view.Len(); i++ {
			if !yield(g.extent.PointOf(i), view.Get(i)) {
				return
			}
		}
	}
}
