// Package generator produces synthetic trading signals. The output is random
// placeholder data shaped to look non-degenerate: pairs do not cluster and
// directions lean slightly towards CALL.
package generator

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/lrchart/chartai/internal/core"
)

const (
	// CallProbability is the chance a future-list signal is CALL.
	CallProbability = 0.52

	// MinFutureCount and MaxFutureCount bound the length of a future list.
	MinFutureCount = 10
	MaxFutureCount = 15

	// DiversityWindow is how many recently emitted pairs a new pair must
	// differ from.
	DiversityWindow = 5

	// DefaultMaxRedraws caps re-sampling per pair before the diversity rule
	// is waived for that draw.
	DefaultMaxRedraws = 1000

	// TimeFormat is the 24-hour display format of signal times.
	TimeFormat = "15:04"
)

// stepMinutes are the possible gaps between consecutive future signals.
var stepMinutes = [...]int{3, 4, 5}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithRand sets the random source. The generator serializes access to it.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithLocation sets the time zone used to format display times.
func WithLocation(loc *time.Location) Option {
	return func(g *Generator) { g.loc = loc }
}

// WithMaxRedraws overrides DefaultMaxRedraws. Values below zero are treated
// as zero.
func WithMaxRedraws(n int) Option {
	return func(g *Generator) { g.maxRedraws = max(n, 0) }
}

// WithWaiverHook registers fn to be called each time the diversity rule is
// waived for a draw.
func WithWaiverHook(fn func()) Option {
	return func(g *Generator) { g.onWaive = fn }
}

// Generator draws synthetic signals from a fixed pair list.
// It is safe for concurrent use.
type Generator struct {
	pairs      []string
	now        func() time.Time
	loc        *time.Location
	maxRedraws int
	onWaive    func()

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a generator over pairs.
func New(pairs []string, opts ...Option) (*Generator, error) {
	if len(pairs) == 0 {
		return nil, core.WrapError(core.ErrCatalogInvalid, errors.New("generator needs at least one pair"))
	}

	g := &Generator{
		pairs:      slices.Clone(pairs),
		now:        time.Now,
		loc:        time.Local,
		maxRedraws: DefaultMaxRedraws,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g, nil
}

// NextMinute returns a signal for pair one minute from now with an even
// chance of CALL or PUT. timeframe does not influence the draw.
func (g *Generator) NextMinute(pair, timeframe string) core.FutureSignal {
	at := g.now().Add(time.Minute)

	g.mu.Lock()
	dir := core.DirectionPut
	if g.rng.IntN(2) == 0 {
		dir = core.DirectionCall
	}
	g.mu.Unlock()

	return core.FutureSignal{
		Pair:      pair,
		Time:      g.format(at),
		Direction: dir,
	}
}

// Future returns between MinFutureCount and MaxFutureCount signals spaced
// 3 to 5 minutes apart, starting from now. Times wrap at midnight without
// any date handling.
func (g *Generator) Future() []core.FutureSignal {
	g.mu.Lock()
	defer g.mu.Unlock()

	count := MinFutureCount + g.rng.IntN(MaxFutureCount-MinFutureCount+1)
	clock := g.now()
	recent := make([]string, 0, count)
	out := make([]core.FutureSignal, 0, count)

	for range count {
		clock = clock.Add(time.Duration(stepMinutes[g.rng.IntN(len(stepMinutes))]) * time.Minute)

		window := recent[max(len(recent)-DiversityWindow, 0):]
		pair := g.drawPair(window)
		recent = append(recent, pair)

		dir := core.DirectionPut
		if g.rng.Float64() < CallProbability {
			dir = core.DirectionCall
		}

		out = append(out, core.FutureSignal{
			Pair:      pair,
			Time:      g.format(clock),
			Direction: dir,
		})
	}
	return out
}

// drawPair picks a pair not present in window. Caller holds g.mu.
func (g *Generator) drawPair(window []string) string {
	pair := g.pairs[g.rng.IntN(len(g.pairs))]
	if !slices.Contains(window, pair) {
		return pair
	}
	// Every pair is in the window; no redraw can succeed.
	if distinct(window) >= len(g.pairs) {
		g.waive()
		return pair
	}
	for range g.maxRedraws {
		pair = g.pairs[g.rng.IntN(len(g.pairs))]
		if !slices.Contains(window, pair) {
			return pair
		}
	}
	g.waive()
	return pair
}

func (g *Generator) waive() {
	if g.onWaive != nil {
		g.onWaive()
	}
}

func (g *Generator) format(t time.Time) string {
	return t.In(g.loc).Format(TimeFormat)
}

func distinct(s []string) int {
	seen := make(map[string]struct{}, len(s))
	for _, v := range s {
		seen[v] = struct{}{}
	}
	return len(seen)
}
