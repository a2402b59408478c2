// Package broadcast periodically generates a future signal list and
// publishes its report to every configured notifier.
package broadcast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/lrchart/chartai/internal/core"
	"github.com/lrchart/chartai/internal/notifier"
	"github.com/lrchart/chartai/internal/report"
)

// Title is the heading of broadcast messages.
const Title = "Future Signals 1M"

// Generator produces a future signal list.
type Generator interface {
	Future() []core.FutureSignal
}

// BatchSaver records generated lists.
type BatchSaver interface {
	Save(ctx context.Context, b core.Batch) (core.Batch, error)
}

// Publisher fans a message out to notifiers.
type Publisher interface {
	Names() []string
	PublishAll(ctx context.Context, msg notifier.Message) map[string]error
}

// Recorder counts generated signals and deliveries per notifier.
type Recorder interface {
	RecordSignal(kind, direction string)
	RecordNotification(notifier, status string)
}

// Options configures a Broadcaster.
type Options struct {
	Schedule  string
	Location  *time.Location
	Labels    report.Labels
	Timeout   time.Duration
	Generator Generator
	Batches   BatchSaver
	Publisher Publisher
	Recorder  Recorder
	Logger    *zap.Logger
}

// Broadcaster runs the schedule.
type Broadcaster struct {
	opts     Options
	schedule cron.Schedule
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// New validates the schedule and builds a Broadcaster. It does not start it.
func New(opts Options) (*Broadcaster, error) {
	if opts.Generator == nil || opts.Publisher == nil {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("broadcast needs a generator and a publisher"))
	}
	schedule, err := parser.Parse(opts.Schedule)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("broadcast schedule %q: %w", opts.Schedule, err))
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}

	b := &Broadcaster{opts: opts, schedule: schedule}
	b.cron = cron.New(cron.WithLocation(opts.Location), cron.WithParser(parser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	b.cron.Schedule(schedule, cron.FuncJob(b.tick))
	return b, nil
}

// Next returns the first run after t.
func (b *Broadcaster) Next(t time.Time) time.Time {
	return b.schedule.Next(t.In(b.opts.Location))
}

// Start begins running the schedule in the background.
func (b *Broadcaster) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return
	}
	b.running = true
	b.cron.Start()
	b.opts.Logger.Info("broadcast scheduled",
		zap.String("schedule", b.opts.Schedule),
		zap.String("location", b.opts.Location.String()),
		zap.Time("next", b.Next(time.Now())))
}

// Stop halts the schedule and waits for a running broadcast or ctx.
func (b *Broadcaster) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	b.mu.Unlock()

	select {
	case <-b.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Broadcaster) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), b.opts.Timeout)
	defer cancel()

	if _, _, err := b.RunOnce(ctx); err != nil {
		b.opts.Logger.Error("broadcast failed", zap.Error(err))
	}
}

// RunOnce generates one list, stores it and publishes its report. It
// returns the batch and any per-notifier errors.
func (b *Broadcaster) RunOnce(ctx context.Context) (core.Batch, map[string]error, error) {
	batch := core.Batch{
		Kind:      core.BatchFutureList,
		Timeframe: "1 Min",
		Signals:   b.opts.Generator.Future(),
	}
	if b.opts.Recorder != nil {
		for _, s := range batch.Signals {
			b.opts.Recorder.RecordSignal(string(batch.Kind), string(s.Direction))
		}
	}
	if b.opts.Batches != nil {
		saved, err := b.opts.Batches.Save(ctx, batch)
		if err != nil {
			return batch, nil, fmt.Errorf("saving broadcast batch: %w", err)
		}
		batch = saved
	}

	text := report.FutureList(batch.Signals, b.opts.Labels)
	errs := b.opts.Publisher.PublishAll(ctx, notifier.FromBatch(batch, Title, text))

	for _, name := range b.opts.Publisher.Names() {
		status := "success"
		if err, failed := errs[name]; failed {
			status = "error"
			b.opts.Logger.Warn("broadcast delivery failed", zap.String("notifier", name), zap.Error(err))
		}
		if b.opts.Recorder != nil {
			b.opts.Recorder.RecordNotification(name, status)
		}
	}

	b.opts.Logger.Info("broadcast published",
		zap.String("batch_id", batch.ID),
		zap.Int("signals", len(batch.Signals)),
		zap.Int("failed", len(errs)))
	return batch, errs, nil
}
