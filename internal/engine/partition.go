package engine

import (
	"fmt"
	"strings"
)

// PartitionMode определяет, что делать с остатком cellCount % workers
type PartitionMode uint8

const (
	// PartitionRedistribute раздаёт остаток первым отрезкам по одной клетке;
	// каждая клетка вычисляется ровно один раз.
	PartitionRedistribute PartitionMode = iota
	// PartitionTruncate делит на отрезки длины cellCount/workers, а последние
	// cellCount%workers клеток в этом тике не вычисляются и сохраняют состояние.
	PartitionTruncate
)

func (m PartitionMode) String() string {
	switch m {
	case PartitionRedistribute:
		return "redistribute"
	case PartitionTruncate:
		return "truncate"
	default:
		return "unknown"
	}
}

// ParsePartitionMode разбирает режим из конфигурации
func ParsePartitionMode(s string) (PartitionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "redistribute":
		return PartitionRedistribute, nil
	case "truncate":
		return PartitionTruncate, nil
	default:
		return 0, fmt.Errorf("engine: unknown partition mode %q", s)
	}
}

// Span полуинтервал индексов [Start, End), обрабатываемый одним воркером
type Span struct {
	Start int
	End   int
}

// Len длина отрезка
func (s Span) Len() int { return s.End - s.Start }

// Partition делит [0, cells) на непрерывные отрезки и возвращает их вместе
// с количеством клеток, не попавших ни в один отрезок.
func Partition(cells, workers int, mode PartitionMode) ([]Span, int) {
	if workers < 1 {
		workers = 1
	}
	if cells <= 0 {
		return nil, 0
	}

	if mode == PartitionTruncate {
		size := cells / workers
		spans := make([]Span, workers)
		for t := range spans {
			spans[t] = Span{Start: size * t, End: size * (t + 1)}
		}
		return spans, cells - size*workers
	}

	if workers > cells {
		workers = cells
	}
	size, rem := cells/workers, cells%workers
	spans := make([]Span, workers)
	start := 0
	for t := range spans {
		n := size
		if t < rem {
			n++
		}
		spans[t] = Span{Start: start, End: start + n}
		start += n
	}
	return spans, 0
}
