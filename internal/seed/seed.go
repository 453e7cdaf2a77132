// Package seed заполняет сетку начальными состояниями перед первым тиком.
package seed

import (
	"fmt"
	"math/rand/v2"

	"github.com/aquilax/go-perlin"

	"github.com/annel0/automata/internal/grid"
	"github.com/annel0/automata/internal/vec"
)

// NewRand детерминированный генератор с заданным сидом
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// Uniform записывает в каждую клетку равномерно случайное состояние из [0, states)
func Uniform(g *grid.Grid, r *rand.Rand, states int) error {
	if states < 1 || states > 256 {
		return fmt.Errorf("seed: states must be in [1, 256], got %d", states)
	}
	for i := 0; i < g.Extent().CellCount(); i++ {
		g.SetIndex(i, grid.State(r.IntN(states)))
	}
	return nil
}

// Density с вероятностью p делает клетку активной со случайным состоянием
// из [1, states); остальные клетки не трогает.
func Density(g *grid.Grid, r *rand.Rand, p float64, states int) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("seed: density must be in [0, 1], got %v", p)
	}
	if states < 2 || states > 256 {
		return fmt.Errorf("seed: states must be in [2, 256], got %d", states)
	}
	for i := 0; i < g.Extent().CellCount(); i++ {
		if r.Float64() < p {
			g.SetIndex(i, grid.State(1+r.IntN(states-1)))
		}
	}
	return nil
}

// AroundCenter с вероятностью p записывает state в соседей центральной клетки
func AroundCenter(g *grid.Grid, r *rand.Rand, p float64, state grid.State, topo grid.Topology) {
	e := g.Extent()
	center := vec.UVec3{X: uint(e.X / 2), Y: uint(e.Y / 2), Z: uint(e.Z / 2)}
	for _, n := range e.Neighbors(center, topo) {
		if r.Float64() < p {
			g.Set(n, state)
		}
	}
}

// PerlinParams параметры заполнения шумом Перлина
type PerlinParams struct {
	Alpha     float64 // сглаживание шума
	Beta      float64 // частота шума
	Octaves   int32
	Seed      int64
	Scale     float64    // шаг выборки на клетку
	Threshold float64    // порог в диапазоне [0, 1]
	State     grid.State // состояние клеток выше порога
}

// DefaultPerlinParams значения по умолчанию
func DefaultPerlinParams() PerlinParams {
	return PerlinParams{Alpha: 2.0, Beta: 2.0, Octaves: 3, Scale: 0.1, Threshold: 0.55, State: 1}
}

// Perlin записывает p.State во все клетки, где нормированный шум выше порога
func Perlin(g *grid.Grid, p PerlinParams) error {
	if p.Threshold < 0 || p.Threshold > 1 {
		return fmt.Errorf("seed: perlin threshold must be in [0, 1], got %v", p.Threshold)
	}
	if p.Scale <= 0 {
		return fmt.Errorf("seed: perlin scale must be positive, got %v", p.Scale)
	}
	noise := perlin.NewPerlin(p.Alpha, p.Beta, p.Octaves, p.Seed)
	e := g.Extent()
	for i := 0; i < e.CellCount(); i++ {
		pt := e.PointOf(i)
		// шум в [-1, 1] переводим в [0, 1]
		v := (noise.Noise3D(float64(pt.X)*p.Scale, float64(pt.Y)*p.Scale, float64(pt.Z)*p.Scale) + 1) / 2
		if v > p.Threshold {
			g.SetIndex(i, p.State)
		}
	}
	return nil
}
