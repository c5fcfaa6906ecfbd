package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/feralcats/config"
	"github.com/pthm-cable/feralcats/game"
	"github.com/pthm-cable/feralcats/mapio"
	"github.com/pthm-cable/feralcats/sim"
	"github.com/pthm-cable/feralcats/stream"
	"github.com/pthm-cable/feralcats/tui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, else time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = until prey are gone)")
	flag.IntVar(maxTicks, "steps", 0, "Alias for -max-ticks")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call")
	cats := flag.Int("cats", 0, "Initial cat count (overrides config)")
	prey := flag.Int("prey", 0, "Initial prey count (overrides config)")
	width := flag.Int("width", 0, "Grid width (overrides config)")
	height := flag.Int("height", 0, "Grid height (overrides config)")
	pb := flag.Float64("pb", 0, "Base predation probability (overrides config)")
	pc := flag.Float64("pc", 0, "Predation vegetation coefficient (overrides config)")
	pf := flag.Float64("pf", 0, "Prey flee probability (overrides config)")
	vegMap := flag.String("veg-map", "", "Vegetation CSV map (rows = y)")
	barrierMap := flag.String("barrier-map", "", "Barrier CSV map (rows = y, non-zero = barrier)")
	exportMaps := flag.String("export-maps", "", "Write veg.csv and river.csv for the initial world to this directory and exit")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, summary and config snapshot")
	plot := flag.Bool("plot", false, "Render population.png into -output-dir at the end of the run")
	dbPath := flag.String("db", "", "SQLite file to archive the run in")
	serve := flag.String("serve", "", "Serve a websocket frame stream on this address, e.g. :8080")
	useTUI := flag.Bool("tui", false, "Show the simulation in the terminal")
	fps := flag.Int("fps", 10, "Terminal frames per second")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg().Clone()

	// Explicit flags override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			if *seed != 0 {
				cfg.WithSeed(*seed)
			}
		case "cats":
			cfg.Population.Cats = *cats
		case "prey":
			cfg.Population.Prey = *prey
		case "width":
			cfg.World.Width = *width
		case "height":
			cfg.World.Height = *height
		case "pb":
			cfg.Predation.Base = *pb
		case "pc":
			cfg.Predation.Coef = *pc
		case "pf":
			cfg.Prey.FleeProb = *pf
		}
	})

	// Set up seed
	if cfg.Seed == nil {
		cfg.WithSeed(time.Now().UnixNano())
	}

	if err := loadMaps(cfg, *vegMap, *barrierMap); err != nil {
		slog.Error("failed to load map", "error", err)
		os.Exit(1)
	}

	if *exportMaps != "" {
		if err := writeMaps(cfg, *exportMaps); err != nil {
			slog.Error("failed to export maps", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := game.Options{
		Config:         cfg,
		LogStats:       *logStats,
		OutputDir:      *outputDir,
		Plot:           *plot,
		DBPath:         *dbPath,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *serve != "" {
		opts.Hub = stream.NewHub(cfg.World.Width, cfg.World.Height, *cfg.Seed)
		go opts.Hub.Run(ctx)

		mux := http.NewServeMux()
		mux.Handle("/ws", opts.Hub)
		srv := &http.Server{Addr: *serve, Handler: mux}
		go func() {
			slog.Info("serving frame stream", "addr", *serve)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("stream server failed", "error", err)
			}
		}()
		defer srv.Close()
	}

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	if *useTUI {
		screen, err := tcell.NewScreen()
		if err != nil {
			slog.Error("failed to create screen", "error", err)
			return
		}
		if err := screen.Init(); err != nil {
			slog.Error("failed to init screen", "error", err)
			return
		}
		tui.Run(screen, g, *fps)
		screen.Fini()
		return
	}

	slog.Info("starting headless simulation",
		"seed", g.Simulation().Seed(),
		"max_ticks", *maxTicks,
		"steps_per_update", *stepsPerUpdate,
	)

	for g.Running() {
		if ctx.Err() != nil {
			slog.Info("interrupted", "tick", g.Tick())
			return
		}
		g.Update()

		if *maxTicks > 0 && g.Tick() >= *maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return
		}
	}
	slog.Info("prey extinct", "tick", g.Tick())
}

// loadMaps reads the optional map files into cfg.
func loadMaps(cfg *config.Config, vegPath, barrierPath string) error {
	if vegPath != "" {
		grid, err := mapio.LoadVegetationCSV(vegPath)
		if err != nil {
			return err
		}
		cfg.Vegetation.Grid = grid
	} else if cfg.Vegetation.File != "" {
		grid, err := mapio.LoadVegetationCSV(cfg.Vegetation.File)
		if err != nil {
			return err
		}
		cfg.Vegetation.Grid = grid
	}

	if barrierPath != "" {
		mask, err := mapio.LoadBarrierCSV(barrierPath)
		if err != nil {
			return err
		}
		cfg.Barrier.Grid = mask
	} else if cfg.Barrier.File != "" {
		mask, err := mapio.LoadBarrierCSV(cfg.Barrier.File)
		if err != nil {
			return err
		}
		cfg.Barrier.Grid = mask
	}
	return nil
}

// writeMaps builds the initial world from cfg and saves its maps.
func writeMaps(cfg *config.Config, dir string) error {
	s, err := sim.New(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f := s.FieldSnapshot()
	veg := make([][]int, f.Width)
	river := make([][]bool, f.Width)
	for x := 0; x < f.Width; x++ {
		veg[x] = make([]int, f.Height)
		river[x] = make([]bool, f.Height)
		for y := 0; y < f.Height; y++ {
			veg[x][y] = f.VegetationAt(x, y)
			river[x][y] = f.BarrierAt(x, y)
		}
	}

	if err := mapio.SaveVegetationCSV(filepath.Join(dir, "veg.csv"), veg); err != nil {
		return err
	}
	if err := mapio.SaveBarrierCSV(filepath.Join(dir, "river.csv"), river); err != nil {
		return err
	}
	slog.Info("maps written", "dir", dir, "seed", s.Seed())
	return nil
}
