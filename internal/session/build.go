package session

import (
	"fmt"

	"github.com/annel0/automata/internal/config"
	"github.com/annel0/automata/internal/engine"
	"github.com/annel0/automata/internal/grid"
	"github.com/annel0/automata/internal/rules"
	"github.com/annel0/automata/internal/seed"
	"github.com/annel0/automata/internal/snapshot"
)

// FromConfig собирает сессию по конфигурации: правило из реестра, сетку
// из снимка или заполненную выбранным способом, движок с recorder (может быть nil).
func FromConfig(cfg *config.Config, rec engine.Recorder) (*Session, error) {
	rule, err := rules.Lookup(cfg.Rule.Name, rules.Params(cfg.Rule.Params))
	if err != nil {
		return nil, err
	}
	if topo, ok, err := cfg.RuleTopology(); err != nil {
		return nil, err
	} else if ok {
		if rule, err = rules.WithTopology(rule, topo); err != nil {
			return nil, err
		}
	}

	kind, err := grid.ParseStorageKind(cfg.Grid.Storage)
	if err != nil {
		return nil, err
	}

	g, err := buildGrid(cfg, kind, rule)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	opts.Recorder = rec

	return New(g, engine.New(opts), rule, Options{
		TPS:           cfg.Session.GetTPS(),
		MaxTicks:      cfg.Session.MaxTicks,
		StopOnSteady:  cfg.Session.StopOnSteady,
		AutosaveEvery: cfg.Session.AutosaveEvery,
		SnapshotDir:   cfg.Session.SnapshotDir,
		Compress:      cfg.Session.Compress,
	}), nil
}

func buildGrid(cfg *config.Config, kind grid.StorageKind, rule engine.Rule) (*grid.Grid, error) {
	if cfg.Seed.Snapshot != "" {
		return snapshot.LoadFile(cfg.Seed.Snapshot, kind)
	}

	e, err := cfg.Extent()
	if err != nil {
		return nil, err
	}
	g, err := grid.New(e, kind)
	if err != nil {
		return nil, err
	}

	states := cfg.Seed.States
	if states <= 0 {
		states = statesOf(rule)
	}

	// режимы center и perlin записывают одно «живое» состояние
	const live grid.State = 1
	r := seed.NewRand(cfg.Seed.Seed)
	switch cfg.Seed.Mode {
	case "", "none":
	case "uniform":
		err = seed.Uniform(g, r, states)
	case "density":
		err = seed.Density(g, r, cfg.Seed.Density, states)
	case "center":
		seed.AroundCenter(g, r, cfg.Seed.Density, live, rule.Topology())
	case "perlin":
		p := seed.DefaultPerlinParams()
		p.Seed = cfg.Seed.Seed
		if cfg.Seed.Scale > 0 {
			p.Scale = cfg.Seed.Scale
		}
		if cfg.Seed.Threshold > 0 {
			p.Threshold = cfg.Seed.Threshold
		}
		p.State = live
		err = seed.Perlin(g, p)
	default:
		err = fmt.Errorf("session: unknown seed mode %q", cfg.Seed.Mode)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// statesOf количество состояний правила; для правил без rules.Stateful - 2
func statesOf(rule engine.Rule) int {
	if st, ok := rule.(rules.Stateful); ok && st.States() >= 2 {
		return st.States()
	}
	return 2
}
