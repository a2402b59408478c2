package generator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lrchart/chartai/internal/core"
)

var sixPairs = []string{"A", "B", "C", "D", "E", "F"}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestGenerator(t *testing.T, pairs []string, seed uint64, opts ...Option) *Generator {
	t.Helper()
	base := []Option{
		WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))),
		WithLocation(time.UTC),
		WithClock(fixedClock(time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC))),
	}
	g, err := New(pairs, append(base, opts...)...)
	require.NoError(t, err)
	return g
}

func parseClock(t *testing.T, s string) int {
	t.Helper()
	tm, err := time.Parse(TimeFormat, s)
	require.NoError(t, err)
	return tm.Hour()*60 + tm.Minute()
}

func TestNew_EmptyCatalog(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrCatalogInvalid)
}

func TestNextMinute_TimeIsNowPlusOneMinute(t *testing.T) {
	tests := []struct {
		now  time.Time
		want string
	}{
		{time.Date(2025, 1, 1, 9, 5, 30, 0, time.UTC), "09:06"},
		{time.Date(2025, 1, 1, 13, 59, 0, 0, time.UTC), "14:00"},
		{time.Date(2025, 1, 1, 23, 59, 59, 0, time.UTC), "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			g := newTestGenerator(t, sixPairs, 1, WithClock(fixedClock(tt.now)))
			s := g.NextMinute("EUR/USD (OTC)", "1 Min")
			assert.Equal(t, tt.want, s.Time)
			assert.Equal(t, "EUR/USD (OTC)", s.Pair)
			assert.Empty(t, s.Reason)
			assert.True(t, s.Direction.IsValid())
		})
	}
}

func TestNextMinute_UsesLocation(t *testing.T) {
	loc := time.FixedZone("PKT", 5*60*60)
	g := newTestGenerator(t, sixPairs, 1,
		WithLocation(loc),
		WithClock(fixedClock(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))))

	assert.Equal(t, "15:01", g.NextMinute("A", "1 Min").Time)
}

func TestNextMinute_RoughlyEven(t *testing.T) {
	g := newTestGenerator(t, sixPairs, 7)
	const n = 20000
	calls := 0
	for range n {
		if g.NextMinute("A", "5 Sec").Direction == core.DirectionCall {
			calls++
		}
	}
	assert.InDelta(t, 0.5, float64(calls)/n, 0.02)
}

func TestFuture_CountInRange(t *testing.T) {
	g := newTestGenerator(t, sixPairs, 42)
	seen := map[int]bool{}
	for range 2000 {
		n := len(g.Future())
		require.GreaterOrEqual(t, n, MinFutureCount)
		require.LessOrEqual(t, n, MaxFutureCount)
		seen[n] = true
	}
	assert.Len(t, seen, MaxFutureCount-MinFutureCount+1, "every count in range should occur")
}

func TestFuture_TimeDeltas(t *testing.T) {
	start := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	g := newTestGenerator(t, sixPairs, 3, WithClock(fixedClock(start)))

	for range 500 {
		signals := g.Future()
		prev := parseClock(t, start.Format(TimeFormat))
		for _, s := range signals {
			cur := parseClock(t, s.Time)
			delta := cur - prev
			assert.Contains(t, []int{3, 4, 5}, delta, "delta from %d to %s", prev, s.Time)
			prev = cur
		}
	}
}

func TestFuture_MidnightWrapIsFormattingOnly(t *testing.T) {
	start := time.Date(2025, 3, 14, 23, 50, 0, 0, time.UTC)
	g := newTestGenerator(t, sixPairs, 11, WithClock(fixedClock(start)))

	signals := g.Future()
	prev := 23*60 + 50
	wrapped := false
	for _, s := range signals {
		cur := parseClock(t, s.Time)
		delta := cur - prev
		if delta < 0 {
			delta += 24 * 60
			wrapped = true
		}
		assert.Contains(t, []int{3, 4, 5}, delta)
		prev = cur
	}
	assert.True(t, wrapped, "a list starting at 23:50 must cross midnight")
}

func assertWindowRule(t *testing.T, signals []core.FutureSignal) {
	t.Helper()
	for i, s := range signals {
		for j := max(i-DiversityWindow, 0); j < i; j++ {
			assert.NotEqual(t, signals[j].Pair, s.Pair, "pair %q repeats at %d and %d", s.Pair, j, i)
		}
	}
}

func TestFuture_DiversityWindowSixPairs(t *testing.T) {
	waivers := 0
	g := newTestGenerator(t, sixPairs, 99, WithWaiverHook(func() { waivers++ }))

	for run := range 50 {
		t.Run(fmt.Sprintf("run-%d", run), func(t *testing.T) {
			assertWindowRule(t, g.Future())
		})
	}
	assert.Zero(t, waivers)
}

func TestFuture_DiversityWindowDefaultSizedCatalog(t *testing.T) {
	pairs := make([]string, 40)
	for i := range pairs {
		pairs[i] = fmt.Sprintf("P%02d", i)
	}
	g := newTestGenerator(t, pairs, 5)
	for range 200 {
		assertWindowRule(t, g.Future())
	}
}

func TestFuture_SmallCatalogTerminates(t *testing.T) {
	tests := []struct {
		name  string
		pairs []string
	}{
		{"single", []string{"A"}},
		{"three", []string{"A", "B", "C"}},
		{"five", []string{"A", "B", "C", "D", "E"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			waivers := 0
			g := newTestGenerator(t, tt.pairs, 8, WithWaiverHook(func() { waivers++ }))

			done := make(chan []core.FutureSignal, 1)
			go func() { done <- g.Future() }()

			select {
			case signals := <-done:
				assert.GreaterOrEqual(t, len(signals), MinFutureCount)
				assert.Positive(t, waivers)
				for _, s := range signals {
					assert.Contains(t, tt.pairs, s.Pair)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("Future did not terminate")
			}
		})
	}
}

func TestFuture_MaxRedrawsZeroWaivesImmediately(t *testing.T) {
	waivers := 0
	g := newTestGenerator(t, []string{"A", "B"}, 2,
		WithMaxRedraws(0),
		WithWaiverHook(func() { waivers++ }))

	signals := g.Future()
	assert.NotEmpty(t, signals)
	assert.Positive(t, waivers)
}

func TestFuture_CallFrequency(t *testing.T) {
	g := newTestGenerator(t, sixPairs, 2024)

	const target = 100000
	calls, total := 0, 0
	for total < target {
		for _, s := range g.Future() {
			require.True(t, s.Direction.IsValid())
			if s.Direction == core.DirectionCall {
				calls++
			}
			total++
		}
	}

	freq := float64(calls) / float64(total)
	// Five standard deviations at n=100k is about 0.008.
	assert.InDelta(t, CallProbability, freq, 0.008, "CALL frequency %.4f", freq)
	assert.Greater(t, math.Abs(freq-0.5), 0.005, "bias towards CALL should be visible")
}

func TestFuture_NoReason(t *testing.T) {
	g := newTestGenerator(t, sixPairs, 1)
	for _, s := range g.Future() {
		assert.Empty(t, s.Reason)
	}
}

func TestGenerator_ConcurrentUse(t *testing.T) {
	g := newTestGenerator(t, sixPairs, 17)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assertWindowRule(t, g.Future())
				g.NextMinute("A", "1 Min")
			}
		}()
	}
	wg.Wait()
}

func TestConstants(t *testing.T) {
	assert.Equal(t, 0.52, CallProbability)
	assert.Equal(t, 10, MinFutureCount)
	assert.Equal(t, 15, MaxFutureCount)
	assert.Equal(t, 5, DiversityWindow)
	assert.Equal(t, [3]int{3, 4, 5}, stepMinutes)
}
