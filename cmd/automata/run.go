package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/annel0/automata/internal/config"
	"github.com/annel0/automata/internal/engine"
	"github.com/annel0/automata/internal/grid"
	"github.com/annel0/automata/internal/logging"
	"github.com/annel0/automata/internal/metrics"
	"github.com/annel0/automata/internal/observability"
	"github.com/annel0/automata/internal/session"
	"github.com/annel0/automata/internal/snapshot"
)

// runFlags флаги команды run; заданные явно перекрывают файл конфигурации
type runFlags struct {
	configPath  string
	rule        string
	topology    string
	storage     string
	workers     int
	partition   string
	ticks       uint64
	tps         int
	steady      bool
	seed        int64
	seedMode    string
	density     float64
	load        string
	autosave    uint64
	snapshotDir string
	compress    bool
	out         string
	metricsPort int
	telemetry   bool
	logLevel    string
	reportEvery uint64
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		Long:  "Seed a grid, then tick it at a fixed rate until cancelled, a tick limit, a steady state or a worker failure.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			// логи в stderr, итог запуска в stdout
			logging.SetOutput(cmd.ErrOrStderr())
			return runSimulation(ctx, cfg, f, cmd.OutOrStdout())
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML config file (default $AUTOMATA_CONFIG)")
	fl.StringVar(&f.rule, "rule", "", "Rule name, see `automata rules`")
	fl.StringVar(&f.topology, "topology", "", "Neighborhood for life3d and sbd: moore, von_neumann or moore_planar")
	fl.StringVar(&f.storage, "storage", "", "Grid storage: dense or sparse")
	fl.IntVar(&f.workers, "workers", 0, "Worker count (0 = logical CPUs)")
	fl.StringVar(&f.partition, "partition", "", "Remainder handling: redistribute or truncate")
	fl.Uint64Var(&f.ticks, "ticks", 0, "Stop after this many ticks (0 = unlimited)")
	fl.IntVar(&f.tps, "tps", 0, "Ticks per second (-1 = as fast as possible)")
	fl.BoolVar(&f.steady, "stop-on-steady", false, "Stop when a tick changes nothing")
	fl.Int64Var(&f.seed, "seed", 0, "Random seed")
	fl.StringVar(&f.seedMode, "seed-mode", "", "Seeding: none, uniform, density, center or perlin")
	fl.Float64Var(&f.density, "density", 0, "Seeding probability for density and center modes")
	fl.StringVar(&f.load, "load", "", "Start from a snapshot file instead of seeding")
	fl.Uint64Var(&f.autosave, "autosave", 0, "Save a snapshot every N ticks (0 = off)")
	fl.StringVar(&f.snapshotDir, "snapshot-dir", "", "Directory for autosaved snapshots")
	fl.BoolVar(&f.compress, "compress", false, "Compress snapshots with zstd")
	fl.StringVarP(&f.out, "out", "o", "", "Write the final generation to this snapshot file")
	fl.IntVar(&f.metricsPort, "metrics-port", 0, "Prometheus port (-1 = off)")
	fl.BoolVar(&f.telemetry, "telemetry", false, "Export tick traces over OTLP/HTTP")
	fl.StringVar(&f.logLevel, "log", "", "Log level: trace, debug, info, warn, error")
	fl.Uint64Var(&f.reportEvery, "report-every", 0, "Log progress every N ticks (0 = off)")
	return cmd
}

// apply переносит явно заданные флаги в конфигурацию
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("rule") {
		cfg.Rule = config.RuleConfig{Name: f.rule}
	}
	if changed("topology") {
		cfg.Rule.Topology = f.topology
	}
	if changed("storage") {
		cfg.Grid.Storage = f.storage
	}
	if changed("workers") {
		cfg.Engine.Workers = f.workers
	}
	if changed("partition") {
		cfg.Engine.Partition = f.partition
	}
	if changed("ticks") {
		cfg.Session.MaxTicks = f.ticks
	}
	if changed("tps") {
		cfg.Session.TPS = f.tps
	}
	if changed("stop-on-steady") {
		cfg.Session.StopOnSteady = f.steady
	}
	if changed("seed") {
		cfg.Seed.Seed = f.seed
	}
	if changed("seed-mode") {
		cfg.Seed.Mode = f.seedMode
	}
	if changed("density") {
		cfg.Seed.Density = f.density
	}
	if changed("load") {
		cfg.Seed.Snapshot = f.load
	}
	if changed("autosave") {
		cfg.Session.AutosaveEvery = f.autosave
	}
	if changed("snapshot-dir") {
		cfg.Session.SnapshotDir = f.snapshotDir
	}
	if changed("compress") {
		cfg.Session.Compress = f.compress
	}
	if changed("metrics-port") {
		cfg.Metrics.Port = f.metricsPort
	}
	if changed("telemetry") {
		cfg.Telemetry.Enabled = f.telemetry
	}
	if changed("log") {
		cfg.Log.Level = f.logLevel
	}
}

func runSimulation(ctx context.Context, cfg *config.Config, f *runFlags, out io.Writer) error {
	if err := logging.Init(cfg.Log.Level, cfg.Log.Dir); err != nil {
		return err
	}
	defer logging.Close()

	shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled)
	if err != nil {
		logging.Warn("⚠️ OpenTelemetry не инициализирован: %v", err)
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
			}
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	tm, err := metrics.NewTickMetrics(reg)
	if err != nil {
		return err
	}
	if port := cfg.Metrics.GetPort(); port > 0 {
		srv := metrics.Serve(fmt.Sprintf(":%d", port), reg)
		defer srv.Close()
	}

	sess, err := session.FromConfig(cfg, tm)
	if err != nil {
		return err
	}
	if f.reportEvery > 0 {
		sess.AddObserver(progressReporter(f.reportEvery))
	}

	logging.Info("🧬 Сессия %s: правило %q, сетка %v (%s), воркеров %d, режим %s",
		sess.ID(), cfg.Rule.Name, sess.Grid().Extent(), sess.Grid().Kind(),
		sess.Engine().Workers(), sess.Engine().Partition())

	reason, runErr := sess.Run(ctx)

	if f.out != "" {
		if err := snapshot.SaveFile(f.out, sess.Grid()); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "session %s stopped: %s, generation %d, live %d\n",
		sess.ID(), reason, sess.Grid().Generation(), sess.Grid().LiveCount())
	return runErr
}

// progressReporter пишет в лог краткую сводку каждые every тиков
func progressReporter(every uint64) session.Observer {
	return session.ObserverFunc(func(res engine.TickResult, g *grid.Grid) {
		if res.Generation%every != 0 {
			return
		}
		logging.Info("Поколение %d: живых %d, изменено %d, %v",
			res.Generation, g.LiveCount(), len(res.Diff), res.Duration)
	})
}
