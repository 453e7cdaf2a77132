// Package rules содержит готовые правила перехода и реестр правил по имени.
package rules

import (
	"github.com/annel0/automata/internal/engine"
	"github.com/annel0/automata/internal/grid"
)

// Range включающий диапазон количества соседей [Min, Max]
type Range struct {
	Min int
	Max int
}

// Contains проверяет попадание n в диапазон
func (r Range) Contains(n int) bool { return n >= r.Min && n <= r.Max }

// Stateful правило сообщает количество используемых состояний (включая Empty).
// Используется для случайного заполнения сетки.
type Stateful interface {
	States() int
}

// Life классическая игра «Жизнь» B3/S23 в плоскости XZ.
// Сетка обычно имеет высоту 1; соседи по y не учитываются.
type Life struct{}

var _ engine.Rule = Life{}

func (Life) Topology() grid.Topology { return grid.MoorePlanar }
func (Life) States() int             { return 2 }

func (Life) Next(own grid.State, nb grid.Neighborhood) grid.State {
	n := nb.CountNonzero()
	if own != grid.Empty {
		if n == 2 || n == 3 {
			return 1
		}
		return 0
	}
	if n == 3 {
		return 1
	}
	return 0
}

// Life3D трёхмерный вариант: живая клетка выживает при сумме соседей 1 или 10,
// мёртвая рождается при 4 или 9.
type Life3D struct {
	Neighbors grid.Topology // по умолчанию Moore
}

var _ engine.Rule = Life3D{}

func (r Life3D) Topology() grid.Topology { return r.Neighbors }
func (Life3D) States() int               { return 2 }

func (Life3D) Next(own grid.State, nb grid.Neighborhood) grid.State {
	sum := nb.Sum()
	if own == 1 {
		if sum == 1 || sum == 10 {
			return 1
		}
		return 0
	}
	if sum == 4 || sum == 9 {
		return 1
	}
	return 0
}

// Состояния WireWorld
const (
	WireEmpty     grid.State = 0
	WireConductor grid.State = 1
	WireHead      grid.State = 2
	WireTail      grid.State = 3
)

// WireWorld проводник становится головой электрона, если среди соседей
// одна или две головы; голова превращается в хвост, хвост в проводник.
type WireWorld struct{}

var _ engine.Rule = WireWorld{}

func (WireWorld) Topology() grid.Topology { return grid.Moore }
func (WireWorld) States() int             { return 4 }

func (WireWorld) Next(own grid.State, nb grid.Neighborhood) grid.State {
	switch own {
	case WireConductor:
		if heads := nb.CountOf(WireHead); heads == 1 || heads == 2 {
			return WireHead
		}
		return WireConductor
	case WireHead:
		return WireTail
	case WireTail:
		return WireConductor
	default:
		return own
	}
}

// SurviveBirthDecay правило с затуханием: состояние 1 живое, 0 пустое,
// остальные состояния угасают на единицу за тик. Родившаяся клетка получает
// состояние Decay-1 и доходит до 1 через Decay-2 тиков.
type SurviveBirthDecay struct {
	Survive   Range
	Birth     Range
	Decay     grid.State
	Neighbors grid.Topology // по умолчанию Moore
}

var _ engine.Rule = SurviveBirthDecay{}

func (r SurviveBirthDecay) Topology() grid.Topology { return r.Neighbors }
func (r SurviveBirthDecay) States() int             { return int(r.Decay) }

func (r SurviveBirthDecay) Next(own grid.State, nb grid.Neighborhood) grid.State {
	n := nb.CountNonzero()
	switch own {
	case 1:
		if r.Survive.Contains(n) {
			return 1
		}
		return 0
	case 0:
		if r.Birth.Contains(n) {
			return r.Decay - 1
		}
		return 0
	default:
		return own - 1
	}
}
