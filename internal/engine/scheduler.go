package engine

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/annel0/automata/internal/grid"
	"github.com/annel0/automata/internal/logging"
)

const tracerName = "github.com/annel0/automata/internal/engine"

// Options настройки планировщика
type Options struct {
	// Workers количество воркеров; <= 0 означает DefaultWorkers()
	Workers int
	// Partition режим обработки остатка при делении на отрезки
	Partition PartitionMode
	// Recorder получает результат каждого тика (метрики); может быть nil
	Recorder Recorder
}

// Recorder принимает статистику тиков
type Recorder interface {
	ObserveTick(res TickResult)
	ObserveFailure()
}

// TickResult итог одного тика
type TickResult struct {
	Generation uint64
	Diff       Diff
	Evaluated  int // клеток вычислено
	Skipped    int // клеток пропущено из-за остатка (только PartitionTruncate)
	Workers    int // запущено воркеров
	Duration   time.Duration
}

// Steady сообщает, что тик ничего не изменил
func (r TickResult) Steady() bool { return len(r.Diff) == 0 }

// Engine вычисляет поколения сетки по схеме fork-join:
// на каждый тик запускаются короткоживущие горутины, по одной на отрезок индексов,
// все читают общий снимок, а изменения применяются одним писателем после join.
type Engine struct {
	workers  int
	mode     PartitionMode
	recorder Recorder
	log      *logging.Logger
	tracer   trace.Tracer
}

// New создаёт движок
func New(opts Options) *Engine {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	return &Engine{
		workers:  workers,
		mode:     opts.Partition,
		recorder: opts.Recorder,
		log:      logging.GetEngineLogger(),
		tracer:   otel.Tracer(tracerName),
	}
}

// DefaultWorkers количество логических CPU, но не больше GOMAXPROCS
// (он учитывает affinity и лимиты cgroup), минимум 1
func DefaultWorkers() int {
	n := runtime.GOMAXPROCS(0)
	if c, err := cpu.Counts(true); err == nil && c > 0 && c < n {
		n = c
	}
	return max(n, 1)
}

// Workers настроенное количество воркеров
func (e *Engine) Workers() int { return e.workers }

// Partition режим деления на отрезки
func (e *Engine) Partition() PartitionMode { return e.mode }

// Tick вычисляет одно поколение g по правилу rule.
//
// Вызов синхронный: возвращается после того, как все воркеры завершились и
// изменения применены. Если хотя бы один воркер упал, возвращается ошибка,
// а сетка остаётся в предыдущем поколении. ctx используется только для
// трассировки: начатый тик всегда выполняется до конца.
func (e *Engine) Tick(ctx context.Context, g *grid.Grid, rule Rule) (TickResult, error) {
	if rule == nil {
		return TickResult{}, ErrNilRule
	}

	start := time.Now()
	extent := g.Extent()
	spans, skipped := Partition(extent.CellCount(), e.workers, e.mode)

	ctx, span := e.tracer.Start(ctx, "automata.tick", trace.WithAttributes(
		attribute.String("grid.extent", extent.String()),
		attribute.String("grid.topology", rule.Topology().String()),
		attribute.Int("engine.workers", len(spans)),
		attribute.String("engine.partition", e.mode.String()),
	))
	defer span.End()

	res := TickResult{Skipped: skipped}
	for _, s := range spans {
		if s.Len() > 0 {
			res.Workers++
			res.Evaluated += s.Len()
		}
	}

	// snapshot длится до вызова compute, apply - от готового diff до возврата Advance
	_, snapSpan := e.tracer.Start(ctx, "automata.snapshot")
	var applySpan trace.Span
	gen, err := g.Advance(func(view grid.View) ([]grid.Change, error) {
		snapSpan.End()
		diff, err := e.compute(ctx, view, extent, rule, spans)
		if err != nil {
			return nil, err
		}
		res.Diff = diff
		_, applySpan = e.tracer.Start(ctx, "automata.apply", trace.WithAttributes(
			attribute.Int("tick.changed", len(diff)),
		))
		return diff, nil
	})
	if applySpan != nil {
		applySpan.End()
	}
	res.Generation = gen
	res.Duration = time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.log.Error("Тик %d не выполнен, сетка осталась в поколении %d: %v", gen+1, gen, err)
		if e.recorder != nil {
			e.recorder.ObserveFailure()
		}
		return res, err
	}

	span.SetAttributes(attribute.Int("tick.changed", len(res.Diff)), attribute.Int("tick.skipped", skipped))
	e.log.Trace("Тик %d: изменено %d, пропущено %d, воркеров %d, %v",
		gen, len(res.Diff), skipped, res.Workers, res.Duration)
	if e.recorder != nil {
		e.recorder.ObserveTick(res)
	}
	return res, nil
}

// compute запускает по воркеру на каждый непустой отрезок и склеивает
// их изменения в порядке отрезков. Индексы отрезков не пересекаются,
// поэтому конфликтующих записей быть не может.
func (e *Engine) compute(ctx context.Context, view grid.View, extent grid.Extent, rule Rule, spans []Span) (Diff, error) {
	_, span := e.tracer.Start(ctx, "automata.compute")
	defer span.End()

	parts := make([]Diff, len(spans))
	var eg errgroup.Group
	for w, s := range spans {
		if s.Len() == 0 {
			continue
		}
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &WorkerError{Worker: w, Span: s, Value: r, Stack: debug.Stack()}
				}
			}()
			parts[w] = evaluate(view, extent, rule, s, nil)
			return nil
		})
	}
	// барьер: ни одно изменение не применяется, пока не завершились все воркеры
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	diff := make(Diff, 0, total)
	for _, p := range parts {
		diff = append(diff, p...)
	}
	return diff, nil
}
