package rules

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/annel0/automata/internal/engine"
	"github.com/annel0/automata/internal/grid"
)

// ErrUnknownRule правило с таким именем не зарегистрировано
var ErrUnknownRule = errors.New("rules: unknown rule")

// Params числовые параметры правила из конфигурации
type Params map[string]int

// Int возвращает параметр key или def, если он не задан
func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Factory создаёт правило по параметрам
type Factory func(params Params) (engine.Rule, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register добавляет фабрику правила под именем name.
// Пустое имя или nil-фабрика игнорируются.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Lookup создаёт правило по имени
func Lookup(name string, params Params) (engine.Rule, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
	}
	return f(params)
}

// Names отсортированный список зарегистрированных правил
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewSurviveBirthDecay собирает правило затухания из параметров
// survive_min/survive_max/birth_min/birth_max/decay (по умолчанию S4/B3, затухание 20).
func NewSurviveBirthDecay(params Params) (engine.Rule, error) {
	decay := params.Int("decay", 20)
	if decay < 2 || decay > 255 {
		return nil, fmt.Errorf("rules: decay must be in [2, 255], got %d", decay)
	}
	return SurviveBirthDecay{
		Survive: Range{Min: params.Int("survive_min", 4), Max: params.Int("survive_max", 4)},
		Birth:   Range{Min: params.Int("birth_min", 3), Max: params.Int("birth_max", 3)},
		Decay:   grid.State(decay),
	}, nil
}

// WithTopology возвращает правило с окрестностью topo. Окрестность настраивается
// у Life3D и SurviveBirthDecay; для остальных правил topo должна совпадать с их
// собственной.
func WithTopology(r engine.Rule, topo grid.Topology) (engine.Rule, error) {
	switch v := r.(type) {
	case Life3D:
		v.Neighbors = topo
		return v, nil
	case SurviveBirthDecay:
		v.Neighbors = topo
		return v, nil
	}
	if r.Topology() != topo {
		return nil, fmt.Errorf("rules: %T uses fixed topology %v, got %v", r, r.Topology(), topo)
	}
	return r, nil
}

func init() {
	Register("life", func(Params) (engine.Rule, error) { return Life{}, nil })
	Register("life3d", func(Params) (engine.Rule, error) { return Life3D{}, nil })
	Register("wireworld", func(Params) (engine.Rule, error) { return WireWorld{}, nil })
	Register("sbd", NewSurviveBirthDecay)
}
