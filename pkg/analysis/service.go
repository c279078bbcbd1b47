package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"mercator-hq/feedback/pkg/cache"
	"mercator-hq/feedback/pkg/limits"
	"mercator-hq/feedback/pkg/storage"
	"mercator-hq/feedback/pkg/telemetry/metrics"
	"mercator-hq/feedback/pkg/telemetry/tracing"
)

// Defaults applied to zero Config fields.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultMinTextLength = 5
	DefaultMaxTextLength = 5000
)

// Outcome labels reported in metrics and spans.
const (
	OutcomeCacheHit = "cache_hit"
	OutcomeParsed   = "parsed"
	OutcomeFallback = "fallback"
)

// Config bounds one analysis.
type Config struct {
	// Timeout bounds the external call.
	Timeout time.Duration

	// MinTextLength and MaxTextLength bound the text, in characters.
	MinTextLength int
	MaxTextLength int
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MinTextLength <= 0 {
		c.MinTextLength = DefaultMinTextLength
	}
	if c.MaxTextLength <= 0 {
		c.MaxTextLength = DefaultMaxTextLength
	}
	return c
}

// RecordSaver persists an analysis record together with the usage
// increment of its account. storage.Store implements it.
type RecordSaver interface {
	SaveAnalysis(ctx context.Context, record *storage.AnalysisRecord) (int, error)
}

// Outcome is the result of one completed analysis request.
type Outcome struct {
	RecordID     string
	Payload      cache.Payload
	CacheHit     bool
	Fallback     bool
	RequestsUsed int
}

// Service orchestrates cache, model call, and persistence.
type Service struct {
	analyzer Analyzer
	cache    cache.Cache
	store    RecordSaver
	config   Config

	// flights collapses concurrent misses for one fingerprint into a
	// single model call.
	flights singleflight.Group

	now     func() time.Time
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewService creates the orchestrator. collector may be nil.
func NewService(analyzer Analyzer, c cache.Cache, store RecordSaver, config Config, collector *metrics.Collector) *Service {
	return &Service{
		analyzer: analyzer,
		cache:    c,
		store:    store,
		config:   config.withDefaults(),
		now:      time.Now,
		metrics:  collector,
		logger:   slog.Default().With("component", "analysis"),
	}
}

// Analyze runs one analysis for an already admitted account.
//
// It returns ErrInvalidInput for out-of-bounds text, an error matching
// limits.ErrQuotaExceeded if the quota ran out between admission and
// commit, and ErrPersistence if the record could not be saved. Failures of
// the external call are not errors: they produce a fallback outcome.
func (s *Service) Analyze(ctx context.Context, account *storage.Account, text string) (*Outcome, error) {
	ctx, span := tracing.Start(ctx, "analysis.analyze")
	defer span.End()
	tracing.SetAccountAttribute(span, account.ID)

	start := s.now()

	if err := s.validate(text); err != nil {
		s.metrics.RecordAnalysisFailure("invalid_input")
		tracing.SetErrorAttributes(span, err, "invalid_input")
		return nil, err
	}

	fingerprint := cache.Fingerprint(text)
	payload, hit := s.cache.Get(ctx, fingerprint)
	tracing.SetCacheAttributes(span, hit, fingerprint)

	outcome := OutcomeCacheHit
	if !hit {
		payload, hit, outcome = s.resolve(ctx, fingerprint, text)
	}

	record := &storage.AnalysisRecord{
		ID:          uuid.NewString(),
		AccountID:   account.ID,
		Text:        text,
		Sentiment:   payload.Sentiment,
		Score:       payload.Score,
		Suggestions: payload.Suggestions,
		Summary:     payload.Summary,
		Cached:      hit,
		Fallback:    payload.Fallback,
		CreatedAt:   s.now().UTC(),
	}

	used, err := s.store.SaveAnalysis(ctx, record)
	if err != nil {
		if errors.Is(err, storage.ErrQuotaExhausted) {
			s.metrics.RecordAnalysisFailure("quota")
			err = limits.NewQuotaError(account.ID, account.RequestsLimit, account.RequestsLimit)
		} else {
			s.metrics.RecordAnalysisFailure("persistence")
			err = fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		tracing.SetErrorAttributes(span, err, "persistence")
		return nil, err
	}

	duration := s.now().Sub(start)
	s.metrics.RecordAnalysis(outcome, duration)
	tracing.SetAnalysisAttributes(span, outcome, payload.Sentiment, payload.Score)
	tracing.SetStatus(span, nil)

	s.logger.DebugContext(ctx, "analysis completed",
		"record_id", record.ID,
		"account_id", account.ID,
		"outcome", outcome,
		"sentiment", payload.Sentiment,
		"score", payload.Score,
		"duration", duration,
	)

	return &Outcome{
		RecordID:     record.ID,
		Payload:      payload,
		CacheHit:     hit,
		Fallback:     payload.Fallback,
		RequestsUsed: used,
	}, nil
}

// flightResult is what one model call hands to every caller that waited
// on it.
type flightResult struct {
	payload cache.Payload
	kind    Kind
	hit     bool
}

// resolve produces the payload for a cache miss. Callers missing on the
// same fingerprint while a call is in flight share that call's result,
// fallback included. A caller arriving after the flight finished starts a
// new one, which first rechecks the cache, so only parsed results are ever
// reused across flights.
func (s *Service) resolve(ctx context.Context, fingerprint, text string) (cache.Payload, bool, string) {
	v, _, shared := s.flights.Do(fingerprint, func() (any, error) {
		// The call outlives any single waiter; the configured timeout
		// still bounds it.
		flightCtx := context.WithoutCancel(ctx)

		if payload, ok := s.cache.Get(flightCtx, fingerprint); ok {
			return flightResult{payload: payload, hit: true}, nil
		}

		result := s.complete(flightCtx, text)
		if result.Kind == KindParsed {
			if err := s.cache.Set(flightCtx, fingerprint, result.Payload); err != nil {
				s.logger.WarnContext(ctx, "failed to cache analysis", "error", err)
			}
		}
		return flightResult{payload: result.Payload, kind: result.Kind}, nil
	})

	fr := v.(flightResult)
	payload := fr.payload
	payload.Suggestions = slices.Clone(payload.Suggestions)

	if fr.hit {
		return payload, true, OutcomeCacheHit
	}
	if shared {
		s.logger.DebugContext(ctx, "joined in-flight analysis", "fingerprint", fingerprint)
	}
	return payload, false, fr.kind.String()
}

func (s *Service) validate(text string) error {
	n := utf8.RuneCountInString(text)
	if n < s.config.MinTextLength || n > s.config.MaxTextLength {
		return fmt.Errorf("%w: text must be between %d and %d characters, got %d",
			ErrInvalidInput, s.config.MinTextLength, s.config.MaxTextLength, n)
	}
	return nil
}

// complete calls the model and interprets the reply. It never fails:
// errors and unusable replies become the fallback.
func (s *Service) complete(ctx context.Context, text string) Result {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	raw, err := s.analyzer.Analyze(ctx, BuildPrompt(text))
	if err != nil {
		s.logger.WarnContext(ctx, "analysis call failed, using fallback",
			"error", err,
			"error_type", metrics.ErrorType(err),
		)
		return Fallback()
	}

	result := Parse(raw)
	if result.Kind == KindFallback {
		s.logger.WarnContext(ctx, "model reply held no JSON object, using fallback",
			"reply_bytes", len(raw),
		)
	}
	return result
}
