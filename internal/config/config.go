package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/annel0/automata/internal/engine"
	"github.com/annel0/automata/internal/grid"
	"github.com/annel0/automata/internal/snapshot"
)

// Config корневая структура конфигурации симуляции
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Engine    EngineConfig    `yaml:"engine"`
	Rule      RuleConfig      `yaml:"rule"`
	Seed      SeedConfig      `yaml:"seed"`
	Session   SessionConfig   `yaml:"session"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

type GridConfig struct {
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Z       int    `yaml:"z"`
	Storage string `yaml:"storage"` // dense | sparse
}

type EngineConfig struct {
	Workers   int    `yaml:"workers"`   // 0 - по числу CPU
	Partition string `yaml:"partition"` // redistribute | truncate
}

type RuleConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]int `yaml:"params"`
	// Topology окрестность правила; пусто - собственная окрестность правила
	Topology string `yaml:"topology"`
}

type SeedConfig struct {
	Mode      string  `yaml:"mode"` // none | uniform | density | center | perlin
	Seed      int64   `yaml:"seed"`
	States    int     `yaml:"states"` // 0 - по правилу
	Density   float64 `yaml:"density"`
	Scale     float64 `yaml:"scale"`
	Threshold float64 `yaml:"threshold"`
	// Snapshot если задан, сетка загружается из снимка вместо заполнения
	Snapshot string `yaml:"snapshot"`
}

type SessionConfig struct {
	// TPS -1 - без пауз между тиками
	TPS int `yaml:"tps"`
	// MaxTicks 0 - без ограничения
	MaxTicks     uint64 `yaml:"max_ticks"`
	StopOnSteady bool   `yaml:"stop_on_steady"`
	// AutosaveEvery 0 - без автосохранения
	AutosaveEvery uint64 `yaml:"autosave_every"`
	SnapshotDir   string `yaml:"snapshot_dir"`
	Compress      bool   `yaml:"compress"`
}

type MetricsConfig struct {
	Port int `yaml:"port"` // 0 - по умолчанию, -1 - выключено
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default конфигурация по умолчанию: «Жизнь» на поле 64x1x64
func Default() *Config {
	return &Config{
		Grid:   GridConfig{X: 64, Y: 1, Z: 64, Storage: "dense"},
		Engine: EngineConfig{Partition: "redistribute"},
		Rule:   RuleConfig{Name: "life"},
		Seed: SeedConfig{
			Mode:      "density",
			Seed:      1,
			Density:   0.5,
			Scale:     0.1,
			Threshold: 0.55,
		},
		Session:   SessionConfig{TPS: 10, SnapshotDir: "snapshots"},
		Telemetry: TelemetryConfig{ServiceName: "automata"},
		Log:       LogConfig{Level: "info"},
	}
}

// GetWorkers возвращает количество воркеров с поддержкой fallback значений
func (e *EngineConfig) GetWorkers() int {
	return getIntWithEnvFallback(e.Workers, "AUTOMATA_WORKERS", engine.DefaultWorkers())
}

// GetTPS возвращает частоту тиков с поддержкой fallback значений;
// отрицательное значение в конфиге означает работу без пауз (0)
func (s *SessionConfig) GetTPS() int {
	if s.TPS < 0 {
		return 0
	}
	return getIntWithEnvFallback(s.TPS, "AUTOMATA_TPS", 10)
}

// GetPort возвращает порт Prometheus метрик; -1 означает, что метрики выключены
func (m *MetricsConfig) GetPort() int {
	if m.Port < 0 {
		return -1
	}
	return getIntWithEnvFallback(m.Port, "AUTOMATA_METRICS_PORT", 2112)
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	if configValue > 0 {
		return configValue
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	return defaultValue
}

// Extent размеры сетки
func (c *Config) Extent() (grid.Extent, error) {
	return grid.NewExtent(c.Grid.X, c.Grid.Y, c.Grid.Z)
}

// EngineOptions настройки движка (без Recorder)
func (c *Config) EngineOptions() (engine.Options, error) {
	mode, err := engine.ParsePartitionMode(c.Engine.Partition)
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{Workers: c.Engine.GetWorkers(), Partition: mode}, nil
}

// RuleTopology разбирает rule.topology; ok == false, если окрестность не задана
func (c *Config) RuleTopology() (topo grid.Topology, ok bool, err error) {
	if c.Rule.Topology == "" {
		return grid.Moore, false, nil
	}
	topo, err = grid.ParseTopology(c.Rule.Topology)
	if err != nil {
		return grid.Moore, false, err
	}
	return topo, true, nil
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	e, err := c.Extent()
	if err != nil {
		return fmt.Errorf("config: grid: %w", err)
	}
	if _, err := grid.ParseStorageKind(c.Grid.Storage); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := engine.ParsePartitionMode(c.Engine.Partition); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("config: engine.workers must not be negative")
	}
	if c.Rule.Name == "" {
		return fmt.Errorf("config: rule.name is required")
	}
	if _, _, err := c.RuleTopology(); err != nil {
		return fmt.Errorf("config: rule.topology: %w", err)
	}
	switch c.Seed.Mode {
	case "", "none", "uniform", "density", "center", "perlin":
	default:
		return fmt.Errorf("config: unknown seed mode %q", c.Seed.Mode)
	}
	if c.Seed.Density < 0 || c.Seed.Density > 1 {
		return fmt.Errorf("config: seed.density must be in [0, 1]")
	}
	if c.Session.AutosaveEvery > 0 && (e.X > snapshot.MaxAxis || e.Y > snapshot.MaxAxis || e.Z > snapshot.MaxAxis) {
		return fmt.Errorf("config: autosave needs every axis <= %d, got %v", snapshot.MaxAxis, e)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV AUTOMATA_CONFIG; если и он не задан,
// возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("AUTOMATA_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
