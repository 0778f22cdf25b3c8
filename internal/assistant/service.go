// Package assistant turns air quality snapshots into localized health
// guidance through a generative model.
package assistant

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vayuair/vayuair/internal/airquality"
	"github.com/vayuair/vayuair/internal/cache"
	"github.com/vayuair/vayuair/internal/fault"
)

// Model generates text from a prompt.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Request asks for guidance about a snapshot. Question may be empty,
// which requests a general briefing.
type Request struct {
	Snapshot *airquality.Snapshot
	Question string
	Language string
}

// Advice is a generated answer.
type Advice struct {
	Text        string    `json:"text"`
	Language    string    `json:"language"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generatedAt"`

	// ServedFromCache is set per delivery, never persisted.
	ServedFromCache bool `json:"-"`
}

// ServiceConfig holds configuration for the assistant service.
type ServiceConfig struct {
	Model Model

	// Cache is optional; without one every request hits the model.
	Cache *cache.Cache

	// TTL overrides the default answer lifetime (one hour). Answers
	// age slower than readings, so their window is wider than the AQI
	// cache's.
	TTL time.Duration

	Logger zerolog.Logger

	Now func() time.Time
}

// Service generates and caches guidance.
type Service struct {
	model  Model
	cache  *cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates an assistant service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = cache.DefaultAssistantTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		model:  cfg.Model,
		cache:  cfg.Cache,
		ttl:    ttl,
		logger: cfg.Logger,
		now:    now,
	}
}

// Advise answers a request, serving a cached answer when the same
// snapshot, language, and question were asked recently.
func (s *Service) Advise(ctx context.Context, req Request) (*Advice, error) {
	const op = "assistant.advise"

	if req.Snapshot == nil {
		return nil, fault.New(fault.KindUnknown, op, "request carries no snapshot")
	}

	language := strings.ToLower(req.Language)
	if _, ok := languages[language]; !ok {
		language = DefaultLanguage
	}

	requestID := uuid.NewString()
	key := adviceKey(req.Snapshot, language, req.Question)
	logger := s.logger.With().Str("request_id", requestID).Str("key", key).Logger()

	if s.cache != nil {
		if advice, ok := cache.Get[Advice](ctx, s.cache, key); ok {
			advice.ServedFromCache = true
			logger.Debug().Msg("advice served from cache")
			return &advice, nil
		}
	}

	prompt := buildPrompt(req.Snapshot, req.Question, language)

	start := s.now()
	text, err := s.model.Generate(ctx, prompt)
	if err != nil {
		logger.Warn().Err(err).Msg("model generation failed")
		return nil, err
	}
	logger.Info().
		Dur("elapsed", s.now().Sub(start)).
		Str("model", s.model.Name()).
		Msg("advice generated")

	advice := Advice{
		Text:        strings.TrimSpace(text),
		Language:    language,
		Model:       s.model.Name(),
		GeneratedAt: s.now(),
	}

	if s.cache != nil {
		if err := cache.Put(ctx, s.cache, key, advice, s.ttl); err != nil {
			logger.Warn().Err(err).Msg("advice cache write rejected")
		}
	}
	return &advice, nil
}

// adviceKey identifies an answer by location, reading, language, and
// question. A new reading or a rephrased question misses on purpose.
func adviceKey(snap *airquality.Snapshot, language, question string) string {
	city := strings.ToLower(strings.TrimSpace(snap.LocationLabel))
	if city == "" {
		city = snap.Coordinates.String()
	}

	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(question))))
	return fmt.Sprintf("ai:%s:%d:%s:%08x", city, snap.AQI, language, h.Sum32())
}
