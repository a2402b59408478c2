package ui

import "github.com/lrchart/chartai/internal/core"

// Action is an event that moves a page from one state to the next.
type Action interface {
	action()
}

// Shared actions.
type (
	// ImageSelected replaces the uploaded chart. A fresh image clears any
	// earlier result or error.
	ImageSelected struct {
		Data     []byte
		MIMEType string
	}
	// ImageCleared drops the uploaded chart.
	ImageCleared struct{}
	// ImageRejected is an upload that arrived but could not be read.
	ImageRejected struct{}
	// PairSelected picks a pair and clears the search box.
	PairSelected struct{ Pair string }
	// SearchChanged filters the pair list.
	SearchChanged struct{ Term string }
	// Submitted is a click on the page's main button.
	Submitted struct{}
	// Failed ends a request with an error.
	Failed struct{}
	// TimedOut ends the wait for a request that is still running as JobID.
	TimedOut struct{ JobID string }
)

// Page specific outcomes.
type (
	ChartAnalyzed     struct{ Result core.AnalysisResult }
	ForecastReceived  struct{ Signals []core.FutureSignal }
	TimeframeSelected struct{ Timeframe string }
	SignalGenerated   struct{ Signal core.FutureSignal }
	ListGenerated     struct{ Signals []core.FutureSignal }
	// BatchStored records the id a generated list was kept under.
	BatchStored       struct{ ID string }
)

func (ImageSelected) action()     {}
func (ImageCleared) action()      {}
func (ImageRejected) action()     {}
func (PairSelected) action()      {}
func (SearchChanged) action()     {}
func (Submitted) action()         {}
func (Failed) action()            {}
func (TimedOut) action()          {}
func (ChartAnalyzed) action()     {}
func (ForecastReceived) action()  {}
func (TimeframeSelected) action() {}
func (SignalGenerated) action()   {}
func (ListGenerated) action()     {}
func (BatchStored) action()       {}

// Fold applies actions to s in order.
func Fold[S any](s S, reduce func(S, Action) S, actions ...Action) S {
	for _, a := range actions {
		s = reduce(s, a)
	}
	return s
}

// ChartState is the AI Chart Analyzer page.
type ChartState struct {
	Image    []byte
	MIMEType string
	Loading  bool
	Result   *core.AnalysisResult
	Error    string
	JobID    string
}

// HasImage reports whether a chart has been uploaded.
func (s ChartState) HasImage() bool { return len(s.Image) > 0 }

// ReduceChart is the state machine of the AI Chart Analyzer page.
func ReduceChart(s ChartState, a Action) ChartState {
	switch a := a.(type) {
	case ImageSelected:
		return ChartState{Image: a.Data, MIMEType: a.MIMEType}
	case ImageCleared:
		return ChartState{}
	case ImageRejected:
		return ChartState{Error: MsgUploadBroken}
	case Submitted:
		if !s.HasImage() {
			s.Error = MsgUploadFirst
			return s
		}
		s.Loading, s.Error, s.Result, s.JobID = true, "", nil, ""
	case ChartAnalyzed:
		r := a.Result
		s.Loading, s.Result = false, &r
	case Failed:
		s.Loading, s.Error = false, MsgChartFailed
	case TimedOut:
		s.Loading, s.Error, s.JobID = false, MsgTimeout, a.JobID
	}
	return s
}

// ForecastState is the AI Future Signals page.
type ForecastState struct {
	Pair     string
	Search   string
	Image    []byte
	MIMEType string
	Loading  bool
	Result   *core.AIFutureSignalResult
	Error    string
	JobID    string
}

// HasImage reports whether a chart has been uploaded.
func (s ForecastState) HasImage() bool { return len(s.Image) > 0 }

// NoSignals reports a completed forecast that found nothing.
func (s ForecastState) NoSignals() bool { return s.Result != nil && len(s.Result.Signals) == 0 }

// ReduceForecast is the state machine of the AI Future Signals page.
func ReduceForecast(s ForecastState, a Action) ForecastState {
	switch a := a.(type) {
	case PairSelected:
		s.Pair, s.Search = a.Pair, ""
	case SearchChanged:
		s.Search = a.Term
	case ImageSelected:
		s.Image, s.MIMEType = a.Data, a.MIMEType
		s.Result, s.Error, s.JobID = nil, "", ""
	case ImageCleared:
		s.Image, s.MIMEType = nil, ""
	case ImageRejected:
		s.Image, s.MIMEType = nil, ""
		s.Loading, s.Result, s.JobID, s.Error = false, nil, "", MsgUploadBroken
	case Submitted:
		switch {
		case !s.HasImage():
			s.Error = MsgUploadFirst
			return s
		case s.Pair == "":
			s.Error = MsgSelectPair
			return s
		}
		s.Loading, s.Error, s.Result, s.JobID = true, "", nil, ""
	case ForecastReceived:
		s.Loading = false
		s.Result = &core.AIFutureSignalResult{Signals: a.Signals}
		if s.Result.Signals == nil {
			s.Result.Signals = []core.FutureSignal{}
		}
	case Failed:
		s.Loading, s.Error = false, MsgForecastFailed
	case TimedOut:
		s.Loading, s.Error, s.JobID = false, MsgTimeout, a.JobID
	}
	return s
}

// GeneratorState is the Signal Generator 1M page.
type GeneratorState struct {
	Pair      string
	Search    string
	Timeframe string
	Loading   bool
	Signal    *core.FutureSignal
	Error     string
}

// ReduceGenerator is the state machine of the Signal Generator 1M page.
func ReduceGenerator(s GeneratorState, a Action) GeneratorState {
	switch a := a.(type) {
	case PairSelected:
		s.Pair, s.Search = a.Pair, ""
	case SearchChanged:
		s.Search = a.Term
	case TimeframeSelected:
		s.Timeframe = a.Timeframe
	case Submitted:
		if s.Pair == "" {
			s.Error = MsgSelectPair
			return s
		}
		s.Loading, s.Signal, s.Error = true, nil, ""
	case SignalGenerated:
		sig := a.Signal
		s.Loading, s.Signal = false, &sig
	case Failed:
		s.Loading = false
	}
	return s
}

// FutureListState is the Future Signals 1M page.
type FutureListState struct {
	Loading bool
	Signals []core.FutureSignal
	BatchID string
}

// ReduceFutureList is the state machine of the Future Signals 1M page.
func ReduceFutureList(s FutureListState, a Action) FutureListState {
	switch a := a.(type) {
	case Submitted:
		s.Loading, s.Signals, s.BatchID = true, nil, ""
	case ListGenerated:
		s.Loading, s.Signals = false, a.Signals
	case Failed:
		s.Loading = false
	case BatchStored:
		s.BatchID = a.ID
	}
	return s
}
