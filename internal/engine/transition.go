package engine

import "github.com/annel0/automata/internal/grid"

// Diff изменения одного тика: только клетки, чьё состояние изменилось.
// Пустой Diff означает устойчивое состояние.
type Diff []grid.Change

// evaluate применяет правило ко всем клеткам отрезка span, читая только
// снимок view, и дописывает изменившиеся клетки в dst.
func evaluate(view grid.View, e grid.Extent, rule Rule, span Span, dst Diff) Diff {
	topo := rule.Topology()
	for i := span.Start; i < span.End; i++ {
		cur := view.Get(i)
		next := rule.Next(cur, grid.Gather(view, e, e.PointOf(i), topo))
		if next != cur {
			dst = append(dst, grid.Change{Index: i, State: next})
		}
	}
	return dst
}
