package core

import (
	"fmt"
	"time"
)

// Direction is a binary-option trade direction.
type Direction string

const (
	DirectionCall Direction = "CALL"
	DirectionPut  Direction = "PUT"
)

// Directions lists every accepted direction, in display order.
var Directions = []Direction{DirectionCall, DirectionPut}

// IsValid reports whether d is CALL or PUT.
func (d Direction) IsValid() bool {
	return d == DirectionCall || d == DirectionPut
}

// ParseDirection accepts exactly "CALL" or "PUT". Anything else, including a
// different letter case, is rejected.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.IsValid() {
		return "", fmt.Errorf("unknown direction %q", s)
	}
	return d, nil
}

// FutureSignal is a single recommendation for a pair at a display time.
type FutureSignal struct {
	Pair      string    `json:"pair"`
	Time      string    `json:"time"`
	Direction Direction `json:"direction"`
	Reason    string    `json:"reason,omitempty"`
}

// AnalysisResult is the outcome of analyzing one chart image.
type AnalysisResult struct {
	Signal Direction `json:"signal"`
	Reason string    `json:"reason"`
}

// AIFutureSignalResult is a model forecast for the next 30 minutes.
type AIFutureSignalResult struct {
	Signals []FutureSignal `json:"signals"`
}

// BatchKind identifies what produced a batch of signals.
type BatchKind string

const (
	BatchNextMinute BatchKind = "next_minute"
	BatchFutureList BatchKind = "future_list"
	BatchAIChart    BatchKind = "ai_chart"
	BatchAIForecast BatchKind = "ai_forecast"
)

// Batch is one generation held in transient memory.
type Batch struct {
	ID        string         `json:"id"`
	Kind      BatchKind      `json:"kind"`
	Pair      string         `json:"pair,omitempty"`
	Timeframe string         `json:"timeframe,omitempty"`
	Signals   []FutureSignal `json:"signals"`
	CreatedAt time.Time      `json:"created_at"`
}
