package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-numerals/internal/board"
	"github.com/coreman2200/funtimes-numerals/internal/config"
	"github.com/coreman2200/funtimes-numerals/internal/dispatch"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		simOnly    = flag.Bool("sim-only", false, "no hardware: sim pins, log display, console matrix, stdin as USB")
		usbPort    = flag.String("usb-port", "", "serial device for the USB link, or \"auto\"")
		brightness = flag.Float64("brightness", 0, "matrix brightness 0..1 (0 keeps config)")
		logLevel   = flag.String("log-level", "", "zerolog level (debug, info, warn...)")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	log.Logger = log.Output(console)

	// ---- Config: defaults, then config.yaml, then flags ----
	cfg := config.Default()
	if c, err := config.Load(*configPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatal().Err(err).Str("path", *configPath).Msg("bad config")
		}
		log.Warn().Str("path", *configPath).Msg("no config file; using defaults")
	} else {
		cfg = c
	}
	if *simOnly {
		cfg.GPIO.Backend = "sim"
		cfg.Display.Driver = "log"
		cfg.Matrix.Driver = "console"
		cfg.USB.Driver = "stdin"
	}
	if *usbPort != "" {
		cfg.USB.Port = *usbPort
	}
	if *brightness > 0 {
		cfg.Matrix.Brightness = float32(*brightness)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("bad config")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn().Err(err).Str("level", cfg.Log.Level).Msg("unknown log level; using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// ---- Board ----
	b, err := board.Open(log.Logger, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("board bring-up failed")
	}

	logger := log.Logger
	if cfg.Log.MirrorUSB && cfg.USB.Driver == "serial" {
		logger = zerolog.New(zerolog.MultiLevelWriter(console, b.Link)).With().Timestamp().Logger()
	}

	t := dispatch.Timing{
		Loop:            cfg.Timing.Loop,
		Debounce:        cfg.Timing.Debounce,
		ReleasePoll:     cfg.Timing.ReleasePoll,
		DisplaySettle:   cfg.Timing.DisplaySettle,
		DebounceTimeout: cfg.Timing.DebounceTimeout,
	}
	looper := dispatch.NewLooper(logger, b.Hardware(), t, b.TextOrigin(), dispatch.RealClock)

	// trap Ctrl+C and call cancel on the context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = looper.Run(ctx)
	if cerr := b.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("board shutdown")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("hardware fault")
	}
	log.Info().Msg("shutting down")
}
