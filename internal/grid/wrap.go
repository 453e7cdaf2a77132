package grid

import "github.com/annel0/automata/internal/vec"

// Wrap заворачивает произвольную координату обратно в сетку (тороидальная топология).
// Используется только при поиске соседей, никогда для прямой адресации.
// Работает для смещений любой величины, а не только ±1.
func (e Extent) Wrap(v vec.Vec3) vec.UVec3 {
	return vec.UVec3{
		X: uint(floorMod(v.X, e.X)),
		Y: uint(floorMod(v.Y, e.Y)),
		Z: uint(floorMod(v.Z, e.Z)),
	}
}

// floorMod возвращает математический остаток в [0, n)
func floorMod(v, n int) int {
	m := v % n
	if m < 0 {
		m += n
	}
	return m
}
