package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"FuelPricer/internal/domain/models"
	domrepo "FuelPricer/internal/domain/repository"
	domsvc "FuelPricer/internal/domain/service"
	"FuelPricer/internal/pricing"
	"FuelPricer/internal/services/features"
	"FuelPricer/pkg/cache"
	applogger "FuelPricer/pkg/logger"
	"FuelPricer/pkg/util"
)

// artifacts is one immutable snapshot of everything a recommendation
// needs besides the request itself. Snapshots are swapped atomically on
// refresh so in-flight requests always see a consistent history.
type artifacts struct {
	history    []models.FeatureRow
	refreshed  time.Time
	sourceRows int
}

// Recommender is the application service behind the recommend endpoints.
// It owns the engineered history snapshot and coordinates the pricing
// engine, the demand model, the cache and the audit trail.
type Recommender struct {
	engine      *pricing.Engine
	model       domsvc.DemandModel
	store       domrepo.HistoryStore
	cache       cache.Service
	cacheTTL    time.Duration
	audit       domrepo.AuditPublisher
	metrics     domrepo.Metrics
	l           *applogger.Logger
	featureCols []string

	snapshot atomic.Pointer[artifacts]
}

func NewRecommender(
	engine *pricing.Engine,
	model domsvc.DemandModel,
	store domrepo.HistoryStore,
	cacheSvc cache.Service,
	cacheTTL time.Duration,
	audit domrepo.AuditPublisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	featureCols []string,
) *Recommender {
	return &Recommender{
		engine:      engine,
		model:       model,
		store:       store,
		cache:       cacheSvc,
		cacheTTL:    cacheTTL,
		audit:       audit,
		metrics:     metrics,
		l:           l,
		featureCols: featureCols,
	}
}

// Refresh reloads raw history from the store, rebuilds the feature table
// and atomically swaps it in. The previous snapshot stays live for any
// request already holding it.
func (r *Recommender) Refresh(ctx context.Context) error {
	start := time.Now()

	raw, err := r.store.LoadHistory(ctx)
	if err != nil {
		r.metrics.RecordError("history_load")
		return fmt.Errorf("load history: %w", err)
	}

	cleaned := features.Clean(raw)
	table := features.BuildFeatureTable(cleaned)
	if len(table) == 0 {
		r.metrics.RecordError("history_empty")
		return fmt.Errorf("%w: %d raw rows produced no feature rows", pricing.ErrInsufficientHistory, len(raw))
	}

	r.snapshot.Store(&artifacts{
		history:    table,
		refreshed:  time.Now(),
		sourceRows: len(raw),
	})

	r.l.Info("history snapshot refreshed",
		applogger.Int("raw_rows", len(raw)),
		applogger.Int("feature_rows", len(table)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	r.metrics.RecordLatency("history_refresh", time.Since(start).Seconds())
	return nil
}

// Ready reports whether a history snapshot has been loaded.
func (r *Recommender) Ready() bool {
	return r.snapshot.Load() != nil
}

// Rules exposes the engine's business constraints.
func (r *Recommender) Rules() pricing.Rules {
	return r.engine.Rules()
}

// RecommendToday prices one day from a validated request. Identical
// requests within the cache TTL are served from cache; fresh decisions
// go through the engine and are published to the audit trail.
func (r *Recommender) RecommendToday(ctx context.Context, req *models.RecommendRequest) (models.Recommendation, error) {
	start := time.Now()

	today, err := r.buildContext(req)
	if err != nil {
		r.metrics.RecordError("invalid_request")
		return models.Recommendation{}, err
	}

	snap := r.snapshot.Load()
	if snap == nil {
		r.metrics.RecordError("no_snapshot")
		return models.Recommendation{}, pricing.ErrInsufficientHistory
	}

	key := r.cacheKey(req, snap)
	var cached models.Recommendation
	if err := r.cache.Get(ctx, key, &cached); err == nil {
		r.metrics.RecordRecommendation("cache", cached.RecommendedPrice, cached.ExpectedProfit, cached.NumCandidatesEvaluated, cached.ConstraintsRelaxed)
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		r.l.Warn("recommendation cache read failed", applogger.Error(err))
	}

	rec, err := r.engine.Recommend(ctx, today, snap.history, r.model, r.featureCols)
	if err != nil {
		r.metrics.RecordError(errorKind(err))
		return models.Recommendation{}, err
	}

	if err := r.cache.Set(ctx, key, rec, r.cacheTTL); err != nil {
		r.l.Warn("recommendation cache write failed", applogger.Error(err))
	}

	// The decision stands even if the audit trail is down.
	if err := r.audit.PublishRecommendation(ctx, req.Date, rec); err != nil {
		r.metrics.RecordError("audit_publish")
		r.l.Error("audit publish failed", applogger.String("date", req.Date), applogger.Error(err))
	}

	r.metrics.RecordRecommendation("engine", rec.RecommendedPrice, rec.ExpectedProfit, rec.NumCandidatesEvaluated, rec.ConstraintsRelaxed)
	r.metrics.RecordLatency("recommend", time.Since(start).Seconds())

	r.l.Info("price recommended",
		applogger.String("date", req.Date),
		applogger.Float64("price", rec.RecommendedPrice),
		applogger.Float64("expected_profit", rec.ExpectedProfit),
		applogger.Int("candidates", rec.NumCandidatesEvaluated),
		applogger.Bool("constraints_relaxed", rec.ConstraintsRelaxed),
	)
	return rec, nil
}

func (r *Recommender) buildContext(req *models.RecommendRequest) (models.TodayContext, error) {
	date, ok := util.ParseDate(req.Date)
	if !ok {
		return models.TodayContext{}, fmt.Errorf("%w: unparseable date %q", pricing.ErrInvalidInput, req.Date)
	}
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"price", req.Price},
		{"cost", req.Cost},
		{"comp1_price", req.Comp1Price},
		{"comp2_price", req.Comp2Price},
		{"comp3_price", req.Comp3Price},
	} {
		if f.v == nil || *f.v <= 0 {
			return models.TodayContext{}, fmt.Errorf("%w: %s must be a positive number", pricing.ErrInvalidInput, f.name)
		}
	}
	return models.TodayContext{
		Date:       date,
		Price:      *req.Price,
		Cost:       *req.Cost,
		Comp1Price: *req.Comp1Price,
		Comp2Price: *req.Comp2Price,
		Comp3Price: *req.Comp3Price,
	}, nil
}

// cacheKey covers the full decision context plus the snapshot refresh
// time, so a history refresh naturally invalidates prior entries.
func (r *Recommender) cacheKey(req *models.RecommendRequest, snap *artifacts) string {
	raw := fmt.Sprintf("%s|%v|%v|%v|%v|%v|%d",
		req.Date, *req.Price, *req.Cost, *req.Comp1Price, *req.Comp2Price, *req.Comp3Price,
		snap.refreshed.UnixNano(),
	)
	return cache.GenerateKey("recommend", cache.HashKey(raw))
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, pricing.ErrInvalidInput):
		return "invalid_request"
	case errors.Is(err, pricing.ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, pricing.ErrNoCandidates):
		return "no_candidates"
	case errors.Is(err, pricing.ErrModelInference):
		return "model_inference"
	default:
		return "internal"
	}
}
