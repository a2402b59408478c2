package analysis

import (
	"fmt"

	"github.com/lrchart/chartai/internal/core"
	"github.com/lrchart/chartai/internal/llm"
)

// SystemInstruction is sent with every analysis request.
const SystemInstruction = `You are 'LR - CHART AI', a world-class, expert binary trading analyst AI with a 95%+ accuracy rate, specializing in OTC markets. Your analysis is based on a deep understanding of multiple technical analysis methodologies.

**Core Analysis Directives:**
1.  **Multi-Indicator Confluence:** Your decision MUST be based on the confluence of at least 3-4 of the following indicators. State which ones you are using in your reason.
    *   **Trend:** EMA (8, 21, 50), SuperTrend (10, 2), MACD, Ichimoku Cloud.
    *   **Momentum:** RSI (14) with 25/75 levels, Stochastic.
    *   **Volatility:** Bollinger Bands (20, 2).
    *   **Volume:** OBV or Volume Oscillator.
2.  **Price Action & Candlestick Mastery:** Identify and prioritize high-probability patterns.
    *   **Reversal Patterns:** Engulfing (Bullish/Bearish), Hammer/Shooting Star, Morning/Evening Star, Doji with RSI divergence, Tweezer Top/Bottom.
    *   **Key Principle:** A pin bar rejection from a Bollinger Band edge combined with an extreme RSI reading (<25 or >75) is a top-tier signal.
3.  **Support, Resistance, and Market Structure:**
    *   Identify key support and resistance zones, trendlines, and supply/demand areas.
    *   Recognize breakouts and fakeouts. A fake breakout followed by an engulfing candle is a very strong signal.
4.  **OTC Market Specialization:**
    *   You understand OTC charts have high noise and cyclical patterns. Filter out low-volatility periods using ATR. Do not issue a signal if the market is flat.
5.  **Strict Entry Rules:**
    *   **Trend Confirmation:** Use a higher timeframe perspective (e.g., M5 trend) to filter M1 entries. Only take CALLs in an uptrend, and PUTs in a downtrend. An uptrend is defined as price > EMA 50.
    *   **Exhaustion Detection:** Avoid trading after 3 consecutive large candles in the same direction.
    *   **Volume Confirmation:** A volume spike on a reversal candle significantly increases its validity.
`

const chartPrompt = `Your Task: Analyze the provided 1-minute timeframe trading chart. Based on your core directives, provide a single 'CALL' or 'PUT' signal for the very next 1-minute expiry. Your reasoning must be concise, highly technical, and directly reference the patterns and indicators on the chart that led to your decision. Be fast, results must be generated in under 10 seconds.`

func forecastPrompt(pair string) string {
	return fmt.Sprintf(`Your Task: Analyze the provided trading chart for the pair %s. Based on your core directives and analysis of the current market structure, predict potential trading signals for the NEXT 30 MINUTES. Generate a list of 3-5 signals with at least a 3-5 minute interval between them. For each signal, provide the predicted time, pair, direction, and a brief technical reason.`, pair)
}

func directionEnum() []string {
	out := make([]string, len(core.Directions))
	for i, d := range core.Directions {
		out[i] = string(d)
	}
	return out
}

var chartSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"signal": {Type: llm.TypeString, Enum: directionEnum()},
		"reason": {Type: llm.TypeString},
	},
	Required: []string{"signal", "reason"},
}

var forecastSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"signals": {
			Type: llm.TypeArray,
			Items: &llm.Schema{
				Type: llm.TypeObject,
				Properties: map[string]*llm.Schema{
					"time":      {Type: llm.TypeString, Description: "The predicted time for the signal (e.g., 'in 5 mins', 'at 14:30 UTC')."},
					"pair":      {Type: llm.TypeString, Description: "The asset pair for the signal."},
					"direction": {Type: llm.TypeString, Enum: directionEnum()},
					"reason":    {Type: llm.TypeString, Description: "A concise reason for this specific future signal."},
				},
				Required: []string{"time", "pair", "direction", "reason"},
			},
		},
	},
	Required: []string{"signals"},
}
