package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/alivechess/server/internal/config"
	coresys "github.com/alivechess/server/internal/core/system"
	"github.com/alivechess/server/internal/data"
	"github.com/alivechess/server/internal/event"
	"github.com/alivechess/server/internal/observability"
	"github.com/alivechess/server/internal/persist"
	"github.com/alivechess/server/internal/scripting"
	"github.com/alivechess/server/internal/store"
	"github.com/alivechess/server/internal/system"
	"github.com/alivechess/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Config and logger
	cfg, err := config.Load(config.Path("config/server.toml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	log = log.With(zap.String("instance", observability.InstanceID))
	if cfg.Logging.Format != "json" {
		printBanner(cfg.Server.Name, observability.InstanceID)
	}
	log.Info("starting", zap.String("server", cfg.Server.Name), zap.String("store", cfg.Store.Backend))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, log)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(shutdownTracing, log)

	// 2. Metrics
	var metrics *observability.Collector
	if cfg.Metrics.Enabled {
		metrics, err = observability.NewCollector(nil)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	// 3. Layout
	layout, err := loadLayout(cfg.World)
	if err != nil {
		return err
	}

	// 4. Level
	var lvl *scripting.Level
	if cfg.World.LevelScript != "" {
		lvl, err = scripting.LoadLevel(cfg.World.LevelScript, log)
		if err != nil {
			return fmt.Errorf("level: %w", err)
		}
		defer lvl.Close()
	}

	// 5. World
	bus := event.NewBus()
	if metrics != nil {
		defer metrics.Observe(bus)()
	}
	w := world.New(cfg.World.ID, world.WithLogger(log), world.WithBus(bus))

	var saver system.Saver
	switch cfg.Store.Backend {
	case config.BackendMemory:
		if err := layout.Apply(w, world.NewFactory(bus)); err != nil {
			return fmt.Errorf("apply layout: %w", err)
		}

	case config.BackendBolt:
		b, err := store.Open(cfg.Store.BoltPath, log)
		if err != nil {
			return fmt.Errorf("bolt: %w", err)
		}
		defer b.Close()
		f := world.NewFactory(bus, world.WithLoaders(metrics.WrapLoaders(b)))
		if err := layout.Apply(w, f); err != nil {
			return fmt.Errorf("apply layout: %w", err)
		}
		saver = system.SaverFunc(func(_ context.Context, w *world.World) (int, error) {
			return b.Snapshot(w)
		})
		if _, err := b.Snapshot(w); err != nil {
			return fmt.Errorf("bolt snapshot: %w", err)
		}

	case config.BackendPostgres:
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		if _, err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		repo := persist.NewEntityRepo(db, log)
		if err := loadFromDatabase(ctx, w, bus, layout, lvl, db, repo, metrics, cfg.Store, log); err != nil {
			return err
		}
		saver = repo
	}

	if lvl != nil {
		w.SetLevel(lvl)
	}

	delivered := bus.Flush()
	metrics.Sync(w)
	if cfg.Logging.Format != "json" {
		printWorld(w)
	}
	log.Info("world ready",
		zap.Int32("world", w.ID()),
		zap.Int("width", w.Width()),
		zap.Int("height", w.Height()),
		zap.Int("observers", w.ObserverCount()),
		zap.Int("events", delivered),
	)

	// 6. Tick systems
	tick := cfg.Server.FlushInterval
	runner := coresys.NewRunner()
	runner.Register(system.NewEventSystem(bus, log))
	if metrics != nil {
		runner.Register(system.NewMetricsSystem(metrics, w, ticksIn(10*time.Second, tick)))
	}
	var persistence *system.PersistenceSystem
	if saver != nil {
		persistence = system.NewPersistenceSystem(w, saver, log, ticksIn(cfg.Server.SaveInterval, tick), saveTimeout)
		if cfg.Server.SaveInterval > 0 {
			runner.Register(persistence)
		}
	}

	// 7. Run until signalled
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				runner.Tick(tick)
			case <-gctx.Done():
				runner.TickPhase(coresys.PhaseEvents, tick)
				return nil
			}
		}
	})
	if metrics != nil {
		srv := &http.Server{Addr: cfg.Metrics.BindAddress, Handler: metricsMux(metrics)}
		g.Go(func() error {
			log.Info("metrics listening", zap.String("addr", cfg.Metrics.BindAddress))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	err = g.Wait()
	log.Info("shutting down")
	if persistence != nil {
		if serr := persistence.SaveNow(); serr != nil {
			log.Error("final save failed", zap.Error(serr))
		}
	}
	return err
}

const saveTimeout = 30 * time.Second

// ticksIn converts a period to a whole number of ticks, at least one.
func ticksIn(d, tick time.Duration) int {
	n := int(d / tick)
	if n < 1 {
		return 1
	}
	return n
}

func levelName(l *scripting.Level) string {
	if l == nil {
		return ""
	}
	return l.Name()
}

func metricsMux(c *observability.Collector) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return mux
}

// loadLayout reads the configured layout, or builds a plain grid of the
// configured size when there is none.
func loadLayout(cfg config.WorldConfig) (*data.Layout, error) {
	if cfg.Layout == "" {
		return &data.Layout{
			Width:   cfg.Width,
			Height:  cfg.Height,
			Base:    data.Terrain{Type: "plain", Cost: 1},
			Borders: data.BorderDef{Auto: true, FirstID: 1},
		}, nil
	}
	l, err := data.LoadLayout(cfg.Layout)
	if err != nil {
		return nil, fmt.Errorf("load layout: %w", err)
	}
	return l, nil
}

// loadFromDatabase restores the world's entities from PostgreSQL. A world
// with no stored header is built from the layout and saved.
func loadFromDatabase(ctx context.Context, w *world.World, bus *event.Bus, layout *data.Layout,
	lvl *scripting.Level, db *persist.DB, repo *persist.EntityRepo, metrics *observability.Collector,
	cfg config.StoreConfig, log *zap.Logger,
) error {
	worlds := persist.NewWorldRepo(db)
	digest := layout.Digest()

	h, err := worlds.LoadHeader(ctx, w.ID())
	switch {
	case errors.Is(err, persist.ErrWorldNotFound):
		if err := layout.Apply(w, world.NewFactory(bus)); err != nil {
			return fmt.Errorf("apply layout: %w", err)
		}
		if err := worlds.SaveHeader(ctx, persist.WorldHeader{
			ID:           w.ID(),
			Width:        int32(layout.Width),
			Height:       int32(layout.Height),
			LayoutDigest: digest[:],
			LevelName:    levelName(lvl),
		}); err != nil {
			return err
		}
		_, err := repo.SaveWorld(ctx, w)
		return err

	case err != nil:
		return err
	}

	if int(h.Width) != layout.Width || int(h.Height) != layout.Height {
		return fmt.Errorf("stored world %d is %dx%d, layout is %dx%d",
			h.ID, h.Width, h.Height, layout.Width, layout.Height)
	}
	if string(h.LayoutDigest) != string(digest[:]) {
		log.Warn("layout changed since the world was saved", zap.Int32("world", h.ID))
	}
	if name := levelName(lvl); h.LevelName != name {
		log.Warn("level differs from the saved world",
			zap.String("saved", h.LevelName), zap.String("configured", name))
	}
	if err := layout.ApplyGrid(w); err != nil {
		return fmt.Errorf("apply grid: %w", err)
	}
	loaders := metrics.WrapLoaders(persist.NewLoader(db, cfg.LoadTimeout, log))
	_, err = repo.LoadInto(ctx, w, loaders)
	return err
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
