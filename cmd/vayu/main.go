// Package main provides the vayu command, the air quality dashboard's
// data core driven from the command line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/vayuair/vayuair/internal/airquality"
	"github.com/vayuair/vayuair/internal/airquality/aqicn"
	aqmeteo "github.com/vayuair/vayuair/internal/airquality/openmeteo"
	"github.com/vayuair/vayuair/internal/assistant"
	"github.com/vayuair/vayuair/internal/assistant/gemini"
	"github.com/vayuair/vayuair/internal/cache"
	"github.com/vayuair/vayuair/internal/cache/prefs"
	"github.com/vayuair/vayuair/internal/config"
	"github.com/vayuair/vayuair/internal/forecast"
	"github.com/vayuair/vayuair/internal/geo"
	"github.com/vayuair/vayuair/internal/geo/nominatim"
	"github.com/vayuair/vayuair/internal/provider/resilience"
	"github.com/vayuair/vayuair/internal/stations"
	"github.com/vayuair/vayuair/internal/telemetry"
	"github.com/vayuair/vayuair/internal/weather"
	wxmeteo "github.com/vayuair/vayuair/internal/weather/openmeteo"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "vayu"

	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	var (
		city     = flag.String("city", "", "city name, station id, or lat,lon")
		refresh  = flag.Bool("refresh", false, "bypass the cache for this fetch")
		question = flag.String("ask", "", "ask the assistant about current conditions")
		language = flag.String("lang", "", "assistant response language (en, hi, mr, ta, te)")
		search   = flag.String("search", "", "search stations and places instead of fetching")
		clear    = flag.Bool("clear-cache", false, "drop cached readings and exit")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log = log.Level(level)

	cfg := config.FromEnv()
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	metrics, err := telemetry.NewMetrics(tp.Meter)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create metrics")
	}

	app, err := buildApp(cfg, log, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build services")
	}
	defer app.Close()

	if err := run(ctx, app, cfg, runOptions{
		city:     *city,
		refresh:  *refresh,
		question: *question,
		language: *language,
		search:   *search,
		clear:    *clear,
	}); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

// app bundles the wired services.
type app struct {
	store     cache.Store
	prefs     *prefs.Prefs
	fetcher   *airquality.Service
	stations  *stations.Service
	assistant *assistant.Service
	log       zerolog.Logger
}

func (a *app) Close() {
	if closer, ok := a.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.log.Warn().Err(err).Msg("cache store close failed")
		}
	}
}

func buildApp(cfg config.Config, log zerolog.Logger, metrics *telemetry.Metrics) (*app, error) {
	var store cache.Store
	if cfg.CachePath != "" {
		sqliteStore, err := cache.OpenSQLite(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open cache store: %w", err)
		}
		store = sqliteStore
	} else {
		store = cache.NewMemoryStore()
	}

	dataCache := cache.New(cache.Config{
		Store:   store,
		Logger:  log.With().Str("component", "cache").Logger(),
		Metrics: metrics,
	})

	registry := resilience.NewRegistry()

	geocoder := nominatim.NewClient(nominatim.ClientConfig{
		Registry: registry,
	})
	resolver := geo.NewResolver(geocoder, log.With().Str("component", "resolver").Logger())

	station := aqicn.NewClient(aqicn.ClientConfig{
		Token:    cfg.AQICNToken,
		BaseURL:  cfg.AQICNBaseURL,
		Registry: registry,
	})
	model := aqmeteo.NewClient(aqmeteo.ClientConfig{
		BaseURL:  cfg.OpenMeteoBaseURL,
		Registry: registry,
	})

	forecaster := forecast.NewService(forecast.ServiceConfig{
		Provider: model,
		Logger:   log.With().Str("component", "forecast").Logger(),
	})

	weatherSvc := weather.NewService(weather.ServiceConfig{
		Provider: wxmeteo.NewClient(wxmeteo.ClientConfig{Registry: registry}),
		Cache:    dataCache,
		Logger:   log.With().Str("component", "weather").Logger(),
	})

	fetcher := airquality.NewService(airquality.ServiceConfig{
		Primary:         station,
		Secondary:       model,
		Forecaster:      forecaster,
		Weather:         weatherSvc,
		ReverseGeocoder: geocoder,
		Health:          registry,
		Cache:           dataCache,
		CacheTTL:        cfg.AQITTL,
		Logger:          log.With().Str("component", "airquality").Logger(),
		Observer:        metrics,
		Resolver:        resolver,
	})

	stationSvc := stations.NewService(stations.ServiceConfig{
		Finder:   station,
		Geocoder: geocoder,
		Logger:   log.With().Str("component", "stations").Logger(),
	})

	var advisor *assistant.Service
	if cfg.GeminiAPIKey != "" {
		advisor = assistant.NewService(assistant.ServiceConfig{
			Model: gemini.NewClient(gemini.ClientConfig{
				APIKey:   cfg.GeminiAPIKey,
				Model:    cfg.GeminiModel,
				Registry: registry,
			}),
			Cache:  dataCache,
			TTL:    cfg.AssistantTTL,
			Logger: log.With().Str("component", "assistant").Logger(),
		})
	}

	return &app{
		store:     store,
		prefs:     prefs.New(store, log.With().Str("component", "prefs").Logger()),
		fetcher:   fetcher,
		stations:  stationSvc,
		assistant: advisor,
		log:       log,
	}, nil
}

type runOptions struct {
	city     string
	refresh  bool
	question string
	language string
	search   string
	clear    bool
}

func run(ctx context.Context, a *app, cfg config.Config, opts runOptions) error {
	if opts.clear {
		a.fetcher.ClearCache(ctx)
		fmt.Println("cache cleared")
		return nil
	}

	if opts.search != "" {
		candidates, err := a.stations.SearchByText(ctx, opts.search)
		if err != nil {
			return err
		}
		return printJSON(candidates)
	}

	identifier := opts.city
	if identifier == "" {
		identifier = a.prefs.SelectedCity(ctx)
	}
	if identifier == "" {
		identifier = cfg.DefaultCity
	}

	snap, err := a.fetcher.Fetch(ctx, identifier, opts.refresh)
	if err != nil {
		return err
	}

	a.prefs.SetSelectedCity(ctx, identifier)
	a.prefs.AddRecentCity(ctx, identifier)

	if err := printJSON(snap); err != nil {
		return err
	}

	if opts.question == "" {
		return nil
	}
	if a.assistant == nil {
		return fmt.Errorf("assistant not configured, set GEMINI_API_KEY")
	}

	language := opts.language
	if language == "" {
		language = a.prefs.Language(ctx)
	}
	if language == "" {
		language = cfg.Language
	}
	a.prefs.SetLanguage(ctx, language)

	advice, err := a.assistant.Advise(ctx, assistant.Request{
		Snapshot: snap,
		Question: opts.question,
		Language: language,
	})
	if err != nil {
		return err
	}
	return printJSON(advice)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
