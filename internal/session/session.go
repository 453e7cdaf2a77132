// Package session крутит движок с фиксированной частотой тиков,
// уведомляет наблюдателей и периодически сохраняет снимки сетки.
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/automata/internal/engine"
	"github.com/annel0/automata/internal/grid"
	"github.com/annel0/automata/internal/logging"
	"github.com/annel0/automata/internal/snapshot"
)

// Observer получает результат каждого успешного тика.
// Вызывается синхронно из цикла сессии, сетка уже в новом поколении.
type Observer interface {
	OnTick(res engine.TickResult, g *grid.Grid)
}

// ObserverFunc адаптер функции к Observer
type ObserverFunc func(res engine.TickResult, g *grid.Grid)

func (f ObserverFunc) OnTick(res engine.TickResult, g *grid.Grid) { f(res, g) }

// Options параметры цикла
type Options struct {
	TPS           int    // тиков в секунду; <= 0 - без пауз
	MaxTicks      uint64 // 0 - без ограничения
	StopOnSteady  bool   // остановиться, когда тик ничего не изменил
	AutosaveEvery uint64 // 0 - без автосохранения
	SnapshotDir   string
	Compress      bool // сохранять снимки в .zst
}

// StopReason причина завершения Run
type StopReason int

const (
	StopCancelled StopReason = iota
	StopMaxTicks
	StopSteady
	StopFailed
)

func (r StopReason) String() string {
	switch r {
	case StopCancelled:
		return "cancelled"
	case StopMaxTicks:
		return "max_ticks"
	case StopSteady:
		return "steady"
	case StopFailed:
		return "failed"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// Session связывает сетку, движок и правило
type Session struct {
	id     uuid.UUID
	grid   *grid.Grid
	engine *engine.Engine
	rule   engine.Rule
	opts   Options
	log    *logging.Logger

	mu        sync.RWMutex
	observers []Observer

	ticks   atomic.Uint64
	running atomic.Bool
}

// New создаёт сессию с новым идентификатором
func New(g *grid.Grid, eng *engine.Engine, rule engine.Rule, opts Options) *Session {
	id := uuid.New()
	return &Session{
		id:     id,
		grid:   g,
		engine: eng,
		rule:   rule,
		opts:   opts,
		log:    logging.GetSessionLogger().With("session", id.String()),
	}
}

func (s *Session) ID() uuid.UUID          { return s.id }
func (s *Session) Grid() *grid.Grid       { return s.grid }
func (s *Session) Engine() *engine.Engine { return s.engine }
func (s *Session) Rule() engine.Rule      { return s.rule }
func (s *Session) Options() Options       { return s.opts }

// Ticks количество успешных тиков, выполненных этой сессией
func (s *Session) Ticks() uint64 { return s.ticks.Load() }

// AddObserver подписывает наблюдателя на тики
func (s *Session) AddObserver(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Step выполняет один тик синхронно: вычисление, уведомление наблюдателей,
// автосохранение по расписанию.
func (s *Session) Step(ctx context.Context) (engine.TickResult, error) {
	res, err := s.engine.Tick(ctx, s.grid, s.rule)
	if err != nil {
		return res, err
	}
	n := s.ticks.Add(1)

	s.mu.RLock()
	observers := s.observers
	s.mu.RUnlock()
	for _, o := range observers {
		o.OnTick(res, s.grid)
	}

	if s.opts.AutosaveEvery > 0 && n%s.opts.AutosaveEvery == 0 {
		if _, err := s.Save(); err != nil {
			s.log.Error("Автосохранение не выполнено: %v", err)
		}
	}
	return res, nil
}

// Run выполняет тики с частотой TPS до отмены ctx, достижения MaxTicks,
// устойчивого состояния (если StopOnSteady) или ошибки тика.
// Повторный вызов, пока сессия уже работает, возвращает ошибку.
func (s *Session) Run(ctx context.Context) (StopReason, error) {
	if !s.running.CompareAndSwap(false, true) {
		return StopFailed, fmt.Errorf("session %s: already running", s.id)
	}
	defer s.running.Store(false)

	var tick <-chan time.Time
	if s.opts.TPS > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(s.opts.TPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	s.log.Info("▶️ Сессия запущена: %v, правило %T, TPS=%d", s.grid.Extent(), s.rule, s.opts.TPS)
	for {
		if s.opts.MaxTicks > 0 && s.ticks.Load() >= s.opts.MaxTicks {
			return s.stop(StopMaxTicks), nil
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return s.stop(StopCancelled), nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return s.stop(StopCancelled), nil
		}

		res, err := s.Step(ctx)
		if err != nil {
			s.stop(StopFailed)
			return StopFailed, err
		}
		if s.opts.StopOnSteady && res.Steady() {
			return s.stop(StopSteady), nil
		}
	}
}

func (s *Session) stop(reason StopReason) StopReason {
	s.log.Info("⏹️ Сессия остановлена (%s) на поколении %d, тиков %d",
		reason, s.grid.Generation(), s.ticks.Load())
	return reason
}

// SnapshotPath путь снимка для поколения gen
func (s *Session) SnapshotPath(gen uint64) string {
	name := fmt.Sprintf("%s_%08d%s", s.id.String()[:8], gen, snapshot.Ext)
	if s.opts.Compress {
		name += snapshot.CompressedExt
	}
	return filepath.Join(s.opts.SnapshotDir, name)
}

// Save сохраняет снимок текущего поколения в SnapshotDir и возвращает путь
func (s *Session) Save() (string, error) {
	if s.opts.SnapshotDir != "" {
		if err := os.MkdirAll(s.opts.SnapshotDir, 0o755); err != nil {
			return "", fmt.Errorf("session: snapshot dir: %w", err)
		}
	}
	path := s.SnapshotPath(s.grid.Generation())
	if err := snapshot.SaveFile(path, s.grid); err != nil {
		return "", err
	}
	s.log.Info("💾 Снимок сохранён: %s", path)
	return path, nil
}
