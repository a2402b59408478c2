// Package app ties the generator, the analyzer and the notifiers together
// behind the operations the web pages, the JSON API and the CLI share.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lrchart/chartai/internal/analysis"
	"github.com/lrchart/chartai/internal/api/job"
	"github.com/lrchart/chartai/internal/broadcast"
	"github.com/lrchart/chartai/internal/catalog"
	"github.com/lrchart/chartai/internal/config"
	"github.com/lrchart/chartai/internal/core"
	"github.com/lrchart/chartai/internal/generator"
	"github.com/lrchart/chartai/internal/notifier"
	"github.com/lrchart/chartai/internal/report"
	"github.com/lrchart/chartai/internal/storage/batch"
	"github.com/lrchart/chartai/internal/ui"
)

// Generator produces synthetic signals.
type Generator interface {
	NextMinute(pair, timeframe string) core.FutureSignal
	Future() []core.FutureSignal
}

// Recorder receives signal, timeout and delivery counts.
type Recorder interface {
	RecordSignal(kind, direction string)
	RecordAnalysisTimeout(kind string)
	RecordNotification(notifier, status string)
}

type nopRecorder struct{}

func (nopRecorder) RecordSignal(string, string)       {}
func (nopRecorder) RecordAnalysisTimeout(string)      {}
func (nopRecorder) RecordNotification(string, string) {}

// Deps are the collaborators of an App. Nil fields get in-memory defaults,
// except Analyzer: without one the AI operations fail with ErrConfigMissing.
type Deps struct {
	Catalog   *catalog.Catalog
	Generator Generator
	Analyzer  analysis.Analyzer
	Jobs      *job.Store
	Batches   batch.Store
	Notifiers *notifier.Registry
	Recorder  Recorder
}

// TimeoutError is returned when the caller's wait for an analysis ran out.
// The job keeps running and can be polled by JobID.
type TimeoutError struct {
	JobID string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s (job %s)", core.ErrAnalysisTimeout.Message, e.JobID)
}

// Is matches core.ErrAnalysisTimeout.
func (e *TimeoutError) Is(target error) bool {
	return errors.Is(core.ErrAnalysisTimeout, target)
}

// Forecast is the outcome of an AI forecast, recorded as a batch.
type Forecast struct {
	Pair    string              `json:"pair"`
	Signals []core.FutureSignal `json:"signals"`
	BatchID string              `json:"batch_id"`
}

// ChartVerdict is the outcome of a single chart analysis.
type ChartVerdict struct {
	core.AnalysisResult
	BatchID string `json:"batch_id"`
}

// App is the main application service.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	catalog   *catalog.Catalog
	generator Generator
	analyzer  analysis.Analyzer
	jobs      *job.Store
	batches   batch.Store
	notifiers *notifier.Registry
	recorder  Recorder
	labels    report.Labels
	location  *time.Location
	now       func() time.Time

	broadcaster *broadcast.Broadcaster

	mu      sync.RWMutex
	running bool
}

// New creates a new App instance.
func New(cfg *config.Config, deps Deps, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Signals.LoadLocation()
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("signals.location: %w", err))
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		catalog:   deps.Catalog,
		generator: deps.Generator,
		analyzer:  deps.Analyzer,
		jobs:      deps.Jobs,
		batches:   deps.Batches,
		notifiers: deps.Notifiers,
		recorder:  deps.Recorder,
		labels:    report.Labels{UTC: cfg.UI.UTCLabel, Zone: cfg.UI.ZoneLabel},
		location:  loc,
		now:       time.Now,
	}
	if a.labels.UTC == "" && a.labels.Zone == "" {
		a.labels = report.DefaultLabels()
	}
	if a.catalog == nil {
		a.catalog = catalog.Default()
	}
	if a.generator == nil {
		gen, err := generator.New(a.catalog.Pairs(),
			generator.WithLocation(loc),
			generator.WithMaxRedraws(cfg.Signals.MaxRedraws))
		if err != nil {
			return nil, err
		}
		a.generator = gen
	}
	if a.jobs == nil {
		a.jobs = job.NewStore(cfg.Server.MaxJobs, time.Duration(cfg.Server.JobTTLHours)*time.Hour)
	}
	if a.batches == nil {
		a.batches = batch.NewMemoryStore(cfg.Server.MaxBatches)
	}
	if a.notifiers == nil {
		a.notifiers = notifier.NewRegistry()
	}
	if a.recorder == nil {
		a.recorder = nopRecorder{}
	}

	if cfg.Broadcast.Enabled {
		b, err := broadcast.New(broadcast.Options{
			Schedule:  cfg.Broadcast.Schedule,
			Location:  loc,
			Labels:    a.labels,
			Timeout:   cfg.Analysis.RequestTimeout,
			Generator: a.generator,
			Batches:   a.batches,
			Publisher: a.notifiers,
			Recorder:  a.recorder,
			Logger:    logger.Named("broadcast"),
		})
		if err != nil {
			return nil, err
		}
		a.broadcaster = b
	}

	return a, nil
}

// Start starts background work. It does not block.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return fmt.Errorf("app already running")
	}
	a.running = true

	if a.broadcaster != nil {
		a.broadcaster.Start()
	}
	a.logger.Info("LR - CHART AI started",
		zap.Int("pairs", a.catalog.Len()),
		zap.Int("notifiers", a.notifiers.Len()),
		zap.Bool("broadcast", a.broadcaster != nil))
	return nil
}

// Stop stops background work, waiting for a running broadcast until ctx is
// done.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return nil
	}
	a.running = false
	if a.broadcaster != nil {
		return a.broadcaster.Stop(ctx)
	}
	return nil
}

// DefaultPair is the pair preselected in pair pickers.
func (a *App) DefaultPair() string { return a.catalog.First() }

// Labels returns the report captions.
func (a *App) Labels() report.Labels { return a.labels }

// Timeframes lists the selectable expiries, default first.
func (a *App) Timeframes() []string {
	return slices.Clone(a.cfg.Signals.Timeframes)
}

// DefaultTimeframe is the expiry preselected on the generator page.
func (a *App) DefaultTimeframe() string {
	return a.cfg.Signals.DefaultTimeframe
}

// Pairs returns catalog pairs matching term; an empty term returns all.
func (a *App) Pairs(term string) []string {
	return a.catalog.Search(term)
}

func (a *App) checkPair(pair string) error {
	if pair == "" {
		return core.ErrPairRequired
	}
	if !a.catalog.Contains(pair) {
		return core.WrapError(core.ErrPairNotFound, fmt.Errorf("%q", pair))
	}
	return nil
}

// NextSignal draws the signal for the next minute on pair. An empty
// timeframe selects the configured default.
func (a *App) NextSignal(ctx context.Context, pair, timeframe string) (core.Batch, error) {
	if err := a.checkPair(pair); err != nil {
		return core.Batch{}, err
	}
	if timeframe == "" {
		timeframe = a.cfg.Signals.DefaultTimeframe
	}
	if !slices.Contains(a.cfg.Signals.Timeframes, timeframe) {
		return core.Batch{}, core.WrapError(core.ErrUnknownTimeframe, fmt.Errorf("%q", timeframe))
	}

	sig := a.generator.NextMinute(pair, timeframe)
	a.recorder.RecordSignal(string(core.BatchNextMinute), string(sig.Direction))

	return a.batches.Save(ctx, core.Batch{
		Kind:      core.BatchNextMinute,
		Pair:      pair,
		Timeframe: timeframe,
		Signals:   []core.FutureSignal{sig},
	})
}

// FutureList generates a list of 1-minute future signals.
func (a *App) FutureList(ctx context.Context) (core.Batch, error) {
	signals := a.generator.Future()
	for _, s := range signals {
		a.recorder.RecordSignal(string(core.BatchFutureList), string(s.Direction))
	}

	b, err := a.batches.Save(ctx, core.Batch{
		Kind:      core.BatchFutureList,
		Timeframe: "1 Min",
		Signals:   signals,
	})
	if err != nil {
		return core.Batch{}, err
	}
	a.logger.Debug("future list generated", zap.String("batch_id", b.ID), zap.Int("signals", len(signals)))
	return b, nil
}

// AnalyzeChart runs a single chart analysis as a job and waits up to the
// UI timeout for it. The returned job id is set whenever a job was started.
func (a *App) AnalyzeChart(ctx context.Context, image []byte, mimeType string) (*ChartVerdict, string, error) {
	if a.analyzer == nil {
		return nil, "", core.WrapError(core.ErrConfigMissing, errors.New("no analyzer configured"))
	}
	if err := analysis.CheckImage(image, mimeType); err != nil {
		return nil, "", err
	}

	j, out := a.jobs.Go(ctx, analysis.KindChart, "", a.cfg.Analysis.RequestTimeout, func(ctx context.Context) (any, error) {
		res, err := a.analyzer.AnalyzeChart(ctx, image, mimeType)
		if err != nil {
			return nil, err
		}
		b, err := a.batches.Save(ctx, core.Batch{
			Kind:      core.BatchAIChart,
			Timeframe: "1 Min",
			Signals: []core.FutureSignal{{
				Time:      a.now().In(a.location).Format(generator.TimeFormat),
				Direction: res.Signal,
				Reason:    res.Reason,
			}},
		})
		if err != nil {
			return nil, err
		}
		return &ChartVerdict{AnalysisResult: *res, BatchID: b.ID}, nil
	})

	o, err := a.wait(ctx, analysis.KindChart, j.ID, out)
	if err != nil {
		return nil, j.ID, err
	}
	return o.Result.(*ChartVerdict), j.ID, nil
}

// Forecast runs an AI forecast for pair as a job and waits up to the UI
// timeout for it.
func (a *App) Forecast(ctx context.Context, image []byte, mimeType, pair string) (*Forecast, string, error) {
	if a.analyzer == nil {
		return nil, "", core.WrapError(core.ErrConfigMissing, errors.New("no analyzer configured"))
	}
	if err := analysis.CheckImage(image, mimeType); err != nil {
		return nil, "", err
	}
	if err := a.checkPair(pair); err != nil {
		return nil, "", err
	}

	j, out := a.jobs.Go(ctx, analysis.KindForecast, pair, a.cfg.Analysis.RequestTimeout, func(ctx context.Context) (any, error) {
		res, err := a.analyzer.AnalyzeForFutureSignals(ctx, image, mimeType, pair)
		if err != nil {
			return nil, err
		}
		signals := res.Signals
		if signals == nil {
			signals = []core.FutureSignal{}
		}
		b, err := a.batches.Save(ctx, core.Batch{
			Kind:    core.BatchAIForecast,
			Pair:    pair,
			Signals: signals,
		})
		if err != nil {
			return nil, err
		}
		return &Forecast{Pair: pair, Signals: signals, BatchID: b.ID}, nil
	})

	o, err := a.wait(ctx, analysis.KindForecast, j.ID, out)
	if err != nil {
		return nil, j.ID, err
	}
	return o.Result.(*Forecast), j.ID, nil
}

func (a *App) wait(ctx context.Context, kind, jobID string, out <-chan job.Outcome) (job.Outcome, error) {
	o, ok := job.Wait(ctx, out, a.cfg.Analysis.UITimeout)
	if !ok {
		if ctx.Err() != nil {
			return o, ctx.Err()
		}
		a.recorder.RecordAnalysisTimeout(kind)
		a.logger.Warn("analysis still running after ui timeout",
			zap.String("kind", kind),
			zap.String("job_id", jobID),
			zap.Duration("ui_timeout", a.cfg.Analysis.UITimeout))
		return o, &TimeoutError{JobID: jobID}
	}
	if o.Err != nil {
		a.logger.Warn("analysis failed",
			zap.String("kind", kind),
			zap.String("job_id", jobID),
			zap.Error(o.Err))
		return o, o.Err
	}
	return o, nil
}

// Job returns an analysis job.
func (a *App) Job(id string) (*job.Job, error) {
	j, err := a.jobs.Get(id)
	if err != nil {
		return nil, core.WrapError(core.ErrNotFound, fmt.Errorf("job %s", id))
	}
	return j, nil
}

// Batches lists recent batches, newest first, with the total matching.
func (a *App) Batches(ctx context.Context, filter batch.ListFilter) ([]core.Batch, int, error) {
	total, err := a.batches.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items, err := a.batches.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Batch returns one recent batch.
func (a *App) Batch(ctx context.Context, id string) (*core.Batch, error) {
	b, err := a.batches.GetByID(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.WrapError(core.ErrNotFound, fmt.Errorf("batch %s", id))
	}
	return b, err
}

// Title is the heading a batch is published under.
func Title(kind core.BatchKind) string {
	switch kind {
	case core.BatchNextMinute:
		return ui.Generator1M.Title()
	case core.BatchAIChart:
		return ui.ChartAnalyzer.Title()
	case core.BatchAIForecast:
		return ui.FutureAI.Title()
	default:
		return ui.FutureList1M.Title()
	}
}

// Render formats a batch as clipboard text.
func (a *App) Render(b core.Batch) string {
	switch b.Kind {
	case core.BatchNextMinute:
		if len(b.Signals) == 0 {
			return ""
		}
		return report.NextSignal(b.Signals[0], b.Timeframe)
	case core.BatchAIChart:
		if len(b.Signals) == 0 {
			return ""
		}
		s := b.Signals[0]
		return report.ChartAnalysis(core.AnalysisResult{Signal: s.Direction, Reason: s.Reason})
	case core.BatchAIForecast:
		return report.AIForecast(b.Pair, b.Signals, a.labels)
	default:
		return report.FutureList(b.Signals, a.labels)
	}
}

// Report renders a stored batch.
func (a *App) Report(ctx context.Context, id string) (string, error) {
	b, err := a.Batch(ctx, id)
	if err != nil {
		return "", err
	}
	return a.Render(*b), nil
}

// Publish sends a batch report to the named notifiers, or to all of them
// when names is empty. The map holds one error per failed notifier.
func (a *App) Publish(ctx context.Context, id string, names []string) (map[string]error, error) {
	if a.notifiers.Len() == 0 {
		return nil, core.WrapError(core.ErrBadRequest, errors.New("no notifiers configured"))
	}
	b, err := a.Batch(ctx, id)
	if err != nil {
		return nil, err
	}
	text := a.Render(*b)
	if text == "" {
		return nil, core.WrapError(core.ErrBadRequest, errors.New("batch has no signals"))
	}

	msg := notifier.FromBatch(*b, Title(b.Kind), text)
	var errs map[string]error
	if len(names) == 0 {
		errs = a.notifiers.PublishAll(ctx, msg)
		names = a.notifiers.Names()
	} else {
		errs = a.notifiers.PublishTo(ctx, names, msg)
	}

	for _, name := range names {
		status := "success"
		if err, failed := errs[name]; failed {
			status = "error"
			a.logger.Warn("publish failed", zap.String("notifier", name), zap.String("batch_id", id), zap.Error(err))
		}
		a.recorder.RecordNotification(name, status)
	}
	a.logger.Info("batch published",
		zap.String("batch_id", id),
		zap.Int("notifiers", len(names)),
		zap.Int("failed", len(errs)))
	return errs, nil
}

// GetStats returns application statistics.
func (a *App) GetStats(ctx context.Context) map[string]any {
	a.mu.RLock()
	running := a.running
	a.mu.RUnlock()

	batches, _ := a.batches.Count(ctx, batch.ListFilter{})

	return map[string]any{
		"running":   running,
		"pairs":     a.catalog.Len(),
		"batches":   batches,
		"jobs":      len(a.jobs.List()),
		"notifiers": a.notifiers.Names(),
		"analyzer":  a.analyzer != nil,
		"broadcast": a.broadcaster != nil,
	}
}
