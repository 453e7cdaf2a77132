package engine

import "github.com/annel0/automata/internal/grid"

// Rule правило перехода клетки.
//
// Next вызывается конкурентно из нескольких воркеров, поэтому реализация
// должна быть чистой: результат зависит только от аргументов, без побочных
// эффектов и изменяемого захваченного состояния.
type Rule interface {
	// Topology окрестность, которую ожидает правило
	Topology() grid.Topology
	// Next состояние клетки в следующем поколении
	Next(own grid.State, nb grid.Neighborhood) grid.State
}

// TransitionFunc сигнатура функции перехода
type TransitionFunc func(own grid.State, nb grid.Neighborhood) grid.State

type funcRule struct {
	topo grid.Topology
	fn   TransitionFunc
}

func (r funcRule) Topology() grid.Topology { return r.topo }

func (r funcRule) Next(own grid.State, nb grid.Neighborhood) grid.State {
	return r.fn(own, nb)
}

// NewRule оборачивает функцию перехода в Rule
func NewRule(topo grid.Topology, fn TransitionFunc) Rule {
	return funcRule{topo: topo, fn: fn}
}
