package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lrchart/chartai/internal/core"
)

// Pointer fields distinguish a missing key from an empty string.
type chartPayload struct {
	Signal *string `json:"signal"`
	Reason *string `json:"reason"`
}

type forecastPayload struct {
	Signals *[]forecastEntry `json:"signals"`
}

type forecastEntry struct {
	Time      *string `json:"time"`
	Pair      *string `json:"pair"`
	Direction *string `json:"direction"`
	Reason    *string `json:"reason"`
}

func invalid(format string, args ...any) error {
	return core.WrapError(core.ErrInvalidResponse, fmt.Errorf(format, args...))
}

// stripFences removes surrounding whitespace and a Markdown code fence, which
// some models add even in JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.HasPrefix(strings.TrimSpace(s[:nl]), "{") {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func parseChart(text string) (*core.AnalysisResult, error) {
	var p chartPayload
	if err := json.Unmarshal([]byte(stripFences(text)), &p); err != nil {
		return nil, invalid("decoding chart analysis: %w", err)
	}
	if p.Signal == nil {
		return nil, invalid("missing signal")
	}
	dir, err := core.ParseDirection(*p.Signal)
	if err != nil {
		return nil, invalid("signal: %w", err)
	}
	if p.Reason == nil {
		return nil, invalid("missing reason")
	}
	return &core.AnalysisResult{Signal: dir, Reason: *p.Reason}, nil
}

func parseForecast(text string) (*core.AIFutureSignalResult, error) {
	var p forecastPayload
	if err := json.Unmarshal([]byte(stripFences(text)), &p); err != nil {
		return nil, invalid("decoding forecast: %w", err)
	}
	if p.Signals == nil {
		return nil, invalid("signals is not an array")
	}

	out := &core.AIFutureSignalResult{Signals: make([]core.FutureSignal, 0, len(*p.Signals))}
	for i, e := range *p.Signals {
		switch {
		case e.Time == nil:
			return nil, invalid("signals[%d]: missing time", i)
		case e.Pair == nil:
			return nil, invalid("signals[%d]: missing pair", i)
		case e.Direction == nil:
			return nil, invalid("signals[%d]: missing direction", i)
		case e.Reason == nil:
			return nil, invalid("signals[%d]: missing reason", i)
		}
		dir, err := core.ParseDirection(*e.Direction)
		if err != nil {
			return nil, invalid("signals[%d]: %w", i, err)
		}
		out.Signals = append(out.Signals, core.FutureSignal{
			Pair:      *e.Pair,
			Time:      *e.Time,
			Direction: dir,
			Reason:    *e.Reason,
		})
	}
	return out, nil
}
