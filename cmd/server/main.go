package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"evogrid.ai/internal/persistence/indexdb"
	"evogrid.ai/internal/persistence/runlog"
	"evogrid.ai/internal/sim/tuning"
	"evogrid.ai/internal/sim/world"
	"evogrid.ai/internal/transport/observer"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 1337, "world seed")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite tick index")
		disableLog = flag.Bool("disable_runlog", false, "disable the compressed tick log")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	cfg := world.WorldConfig{
		ID:                 *worldID,
		Seed:               *seed,
		TickRateHz:         tune.TickRateHz,
		W:                  tune.WorldW,
		H:                  tune.WorldH,
		NodeMaxAge:         tune.NodeMaxAge,
		NodeMaxEnergy:      tune.NodeMaxEnergy,
		NodeMaxMinerals:    tune.NodeMaxMinerals,
		MineralEnergy:      tune.MineralEnergy,
		SunAmount:          tune.SunAmount,
		SunLevelHeight:     tune.SunLevelHeight,
		MineralAmount:      tune.MineralAmount,
		MineralLevelHeight: tune.MineralLevelHeight,
		RelativeThreshold:  tune.RelativeThreshold,
		ReproductionCost:   tune.ReproductionCost,
		MutationRatePct:    tune.MutationRatePct,
		StartNodeNum:       tune.StartNodeNum,
		StartEnergy:        tune.StartEnergy,
		FoodEnergy:         tune.FoodEnergy,
	}

	w, err := world.New(cfg)
	if err != nil {
		logger.Fatalf("create world: %v", err)
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)

	var tickLog *runlog.Writer
	if !*disableLog {
		tickLog = runlog.New(filepath.Join(worldDir, "ticks"))
		defer tickLog.Close()
	}

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, "index.db"))
		if err != nil {
			logger.Fatalf("open tick index: %v", err)
		}
		defer idx.Close()
	}

	if tickLog != nil || idx != nil {
		w.SetTickSink(func(e world.TickLogEntry) {
			if tickLog != nil {
				if err := tickLog.WriteTick(e); err != nil {
					logger.Printf("runlog write: %v", err)
				}
			}
			if idx != nil {
				idx.WriteTick(e)
			}
		})
	}

	obs := observer.NewServer(w, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/observer/bootstrap", obs.BootstrapHandler())
	mux.HandleFunc("/v1/observer/stream", obs.StreamHandler())
	mux.HandleFunc("/v1/cell", obs.CellHandler())
	mux.HandleFunc("/v1/config", obs.ConfigHandler())
	mux.HandleFunc("/v1/metrics", obs.MetricsHandler())

	httpServer := &http.Server{Addr: *addr, Handler: mux}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Printf("listening on %s (world=%s seed=%d size=%dx%d tick=%dHz)",
			*addr, *worldID, *seed, cfg.W, cfg.H, cfg.TickRateHz)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("http: %v", err)
			cancel()
		}
	}()

	go func() {
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Printf("world loop: %v", err)
		}
		cancel()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
		logger.Printf("shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	w.Stop()
}
