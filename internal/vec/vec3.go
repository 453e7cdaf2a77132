package vec

import "fmt"

// Vec3 представляет трехмерный вектор со знаковыми координатами.
// Используется для смещений соседей до применения тороидального заворачивания,
// поэтому компоненты могут быть отрицательными или выходить за размеры сетки.
type Vec3 struct {
	X int
	Y int
	Z int
}

// UVec3 представляет беззнаковую координату клетки внутри сетки.
// Валидна только в пределах [0, len) по каждой оси.
type UVec3 struct {
	X uint
	Y uint
	Z uint
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// IsZero сообщает, является ли вектор нулевым смещением
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

// Signed переводит координату клетки в знаковый вектор для вычисления смещений
func (u UVec3) Signed() Vec3 {
	return Vec3{X: int(u.X), Y: int(u.Y), Z: int(u.Z)}
}

// Offset возвращает координату, сдвинутую на d. Результат может выйти за пределы сетки.
func (u UVec3) Offset(d Vec3) Vec3 {
	return u.Signed().Add(d)
}

func (u UVec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", u.X, u.Y, u.Z)
}
