package cmd

import (
	"fmt"
	"math"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/coverflow/internal/carousel"
	"github.com/olivier-w/coverflow/internal/catalog"
	"github.com/olivier-w/coverflow/internal/config"
	"github.com/olivier-w/coverflow/internal/input"
	"github.com/olivier-w/coverflow/internal/logging"
	"github.com/olivier-w/coverflow/internal/motion"
	"github.com/olivier-w/coverflow/internal/playback"
	"github.com/olivier-w/coverflow/internal/player"
	"github.com/olivier-w/coverflow/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type flags struct {
	configPath string
	coverSize  float64
	gap        float64
	easing     string
	lerp       float64
	snap       string
	volume     float64
	logLevel   string
	logPath    string
}

// NewRootCommand builds the coverflow command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(run)
}

func newRootCommand(runner func(*config.Config, []string) error) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "coverflow [catalog.yaml | playlist | audio file | directory]",
		Short: "Scroll a cover carousel in the terminal and play the track it lands on.",
		Long: `coverflow shows the tracks of a catalog as a vertical ring of covers.
Scroll with the mouse wheel, drag the covers, or use the keys; the carousel
snaps to a cover and plays it.

With no argument the catalog from the config file is used, or the built-in one.
The built-in catalog reads its audio from musics/ and covers/ under the current
working directory, so run coverflow from the directory holding them.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runner(cfg, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "path to a YAML config file")
	fl.Float64Var(&f.coverSize, "cover-size", 0, "cover height in rows")
	fl.Float64Var(&f.gap, "gap", 0, "rows between covers")
	fl.StringVar(&f.easing, "easing", "", "carousel easing: lerp or spring")
	fl.Float64Var(&f.lerp, "lerp", 0, "fraction of the remaining distance covered per frame")
	fl.StringVar(&f.snap, "snap", "", "which offset picks the active track: target or live")
	fl.Float64Var(&f.volume, "volume", 0, "initial volume, 0.0 to 1.0")
	fl.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fl.StringVar(&f.logPath, "log-file", "", "log file path")
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies the flags that were
// set explicitly on top of it.
func loadConfig(cmd *cobra.Command, f flags) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("cover-size") {
		cfg.Carousel.CoverSize = f.coverSize
	}
	if changed("gap") {
		cfg.Carousel.Gap = f.gap
	}
	if changed("easing") {
		cfg.Carousel.Easing = f.easing
	}
	if changed("lerp") {
		cfg.Carousel.LerpFactor = f.lerp
	}
	if changed("snap") {
		cfg.Carousel.SnapPolicy = f.snap
	}
	if changed("volume") {
		cfg.Volume = f.volume
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-file") {
		cfg.Log.Path = f.logPath
	}
	return cfg, cfg.Validate()
}

func run(cfg *config.Config, args []string) error {
	log, err := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Path:       cfg.Log.Path,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	cat, start, err := openCatalog(cfg, args)
	if err != nil {
		return err
	}
	log.Info("catalog loaded", zap.Int("tracks", cat.Len()), zap.Int("start", start))

	engine := player.NewEngine(cfg.Volume)
	model, err := build(cfg, cat, start, engine, engine, log)
	if err != nil {
		engine.Close()
		return err
	}

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

func openCatalog(cfg *config.Config, args []string) (*catalog.Catalog, int, error) {
	path := cfg.Catalog
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return catalog.Default(), 0, nil
	}
	return catalog.Open(path)
}

// build wires the carousel, input and playback into the UI model.
func build(cfg *config.Config, cat *catalog.Catalog, start int, out playback.Output, meter ui.Meter, log *zap.Logger) (ui.Model, error) {
	geom, err := carousel.NewGeometry(cfg.Carousel.CoverSize, cfg.Carousel.Gap, cat.Len())
	if err != nil {
		return ui.Model{}, err
	}
	policy, ok := carousel.ParseSnapPolicy(cfg.Carousel.SnapPolicy)
	if !ok {
		return ui.Model{}, fmt.Errorf("unknown snap policy %q", cfg.Carousel.SnapPolicy)
	}

	ctl := playback.New(cat, out, log.Named("playback"))
	// A track that fails to load is logged and shown; the carousel still opens.
	ctl.LoadTrack(start)

	car := carousel.New(geom,
		carousel.WithEaser(newEaser(cfg)),
		carousel.WithSnapPolicy(policy),
		carousel.WithStart(start),
	)
	agg := input.New(car, input.Options{
		IdleDelay:  cfg.Wheel.IdleDelay,
		Threshold:  cfg.Wheel.Threshold,
		WheelScale: cfg.Wheel.Scale,
	}, log.Named("input"))

	return ui.New(cat, ctl, car, agg, meter, ui.Options{
		CoverRows: int(math.Round(cfg.Carousel.CoverSize)),
		FPS:       cfg.Carousel.FPS,
	}, log.Named("ui")), nil
}

func newEaser(cfg *config.Config) motion.Easer {
	if cfg.Carousel.Easing == "spring" {
		return motion.NewSpring(cfg.Carousel.FPS, cfg.Carousel.SpringFrequency, cfg.Carousel.SpringDamping)
	}
	return motion.NewLerp(cfg.Carousel.LerpFactor)
}
