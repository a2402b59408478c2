package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lrchart/chartai/internal/core"
)

func TestFutureList(t *testing.T) {
	signals := []core.FutureSignal{
		{Pair: "EUR/USD (OTC)", Time: "14:05", Direction: core.DirectionCall},
		{Pair: "Gold (OTC)", Time: "14:09", Direction: core.DirectionPut},
	}

	want := "LOSS RECOVERY ⦿ FUTURE BOT\nUTC; +5:00\nPAKISTAN TIME ZONE\nLIST ------\n" +
		"1 MIN ➡ EUR/USD (OTC) ➡ 14:05 ➡ CALL\n" +
		"1 MIN ➡ Gold (OTC) ➡ 14:09 ➡ PUT"
	assert.Equal(t, want, FutureList(signals, DefaultLabels()))
}

func TestFutureList_CustomLabels(t *testing.T) {
	signals := []core.FutureSignal{{Pair: "A", Time: "00:01", Direction: core.DirectionCall}}

	got := FutureList(signals, Labels{UTC: "+0:00", Zone: "LONDON"})
	assert.True(t, strings.HasPrefix(got, "LOSS RECOVERY ⦿ FUTURE BOT\nUTC; +0:00\nLONDON\nLIST ------\n"))
}

func TestAIForecast(t *testing.T) {
	signals := []core.FutureSignal{
		{Pair: "EUR/USD (OTC)", Time: "14:05", Direction: core.DirectionCall, Reason: "support bounce"},
		{Pair: "EUR/USD (OTC)", Time: "14:10", Direction: core.DirectionPut, Reason: "double top"},
	}

	want := "LR - CHART AI ⦿ AI Future Signals\nUTC: +5:00\nPAIR: EUR/USD (OTC)\n--------------------\n" +
		"TIME: 14:05 ➡ DIRECTION: CALL \nREASON: support bounce\n\n" +
		"TIME: 14:10 ➡ DIRECTION: PUT \nREASON: double top"
	assert.Equal(t, want, AIForecast("EUR/USD (OTC)", signals, DefaultLabels()))
}

func TestEmptyListsProduceEmptyReports(t *testing.T) {
	assert.Empty(t, FutureList(nil, DefaultLabels()))
	assert.Empty(t, AIForecast("Gold (OTC)", []core.FutureSignal{}, DefaultLabels()))
}

func TestTable(t *testing.T) {
	got := Table([]core.FutureSignal{{Pair: "USD/PKR (OTC)", Time: "09:30", Direction: core.DirectionPut}})

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	assert.Equal(t, []string{
		TableHeader,
		Separator,
		"1 MIN ➡ USD/PKR (OTC)      ➡ 09:30 ➡ PUT",
	}, lines)
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", PadRight("ab", 4))
	assert.Equal(t, "abcdef", PadRight("abcdef", 4))
	assert.Equal(t, "➡  ", PadRight("➡", 3))
}

func TestNextSignal(t *testing.T) {
	got := NextSignal(core.FutureSignal{Pair: "EUR/USD (OTC)", Time: "10:01", Direction: core.DirectionPut}, "5 Sec")
	assert.Equal(t, "EUR/USD (OTC) @ 10:01\nPUT\nFor 5 Sec expiry", got)
}

func TestChartAnalysis(t *testing.T) {
	got := ChartAnalysis(core.AnalysisResult{Signal: core.DirectionCall, Reason: "Bullish engulfing."})
	assert.Equal(t, "LR - CHART AI ⦿ AI Chart Analyzer\nSIGNAL: CALL\nREASON: Bullish engulfing.", got)
}
