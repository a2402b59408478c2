package web

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/lrchart/chartai/internal/analysis"
	"github.com/lrchart/chartai/internal/api/job"
	"github.com/lrchart/chartai/internal/app"
	"github.com/lrchart/chartai/internal/report"
	"github.com/lrchart/chartai/internal/ui"
)

// ForecastView is the content of the AI Future Signals page.
type ForecastView struct {
	State      ui.ForecastState
	Picker     PairPicker
	Upload     Upload
	Report     string
	NoSignals  string
	Button     string
	BusyButton string
}

func (h *Handler) forecastView(s ui.ForecastState) ForecastView {
	v := ForecastView{
		State:      s,
		Picker:     h.picker(s.Search, s.Pair),
		Upload:     upload(s.Image, s.MIMEType),
		NoSignals:  ui.MsgNoSignals,
		Button:     ui.ButtonForecast,
		BusyButton: ui.ButtonForecasting,
	}
	if s.Result != nil {
		v.Report = report.AIForecast(s.Pair, s.Result.Signals, h.app.Labels())
	}
	return v
}

func (h *Handler) defaultPair() ui.Action {
	return ui.PairSelected{Pair: h.app.DefaultPair()}
}

// ForecastPage renders the forecast form. ?q= filters the pair list,
// ?pair= selects one and ?job= shows where a forecast stands.
func (h *Handler) ForecastPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	as := []ui.Action{h.defaultPair()}
	if pair := q.Get("pair"); pair != "" {
		as = append(as, ui.PairSelected{Pair: pair})
	}
	if term := q.Get("q"); term != "" {
		as = append(as, ui.SearchChanged{Term: term})
	}
	if id := q.Get("job"); id != "" {
		as = append(as, h.forecastJob(id)...)
	}

	s := ui.Fold(ui.ForecastState{}, ui.ReduceForecast, actions(as...)...)
	h.render(w, ui.FutureAI, h.forecastView(s))
}

func (h *Handler) forecastJob(id string) []ui.Action {
	j, err := h.app.Job(id)
	if err != nil || j.Type != analysis.KindForecast {
		return []ui.Action{ui.Failed{}}
	}
	switch j.Status {
	case job.StatusComplete:
		if f, ok := j.Result.(*app.Forecast); ok {
			return []ui.Action{ui.PairSelected{Pair: f.Pair}, ui.ForecastReceived{Signals: f.Signals}}
		}
		return []ui.Action{ui.Failed{}}
	case job.StatusFailed:
		return []ui.Action{ui.Failed{}}
	default:
		return []ui.Action{ui.PairSelected{Pair: j.Pair}, ui.TimedOut{JobID: id}}
	}
}

// Forecast handles the forecast form.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	s := ui.ForecastState{}
	if err := h.parseForm(w, r); err != nil {
		h.opts.Logger.Debug("forecast form rejected", zap.Error(err))
		h.render(w, ui.FutureAI, h.forecastView(ui.Fold(s, ui.ReduceForecast, actions(h.defaultPair(), ui.Failed{})...)))
		return
	}

	var pair, search ui.Action
	if p := r.FormValue("pair"); p != "" {
		pair = ui.PairSelected{Pair: p}
	}
	if term := r.FormValue("q"); term != "" {
		search = ui.SearchChanged{Term: term}
	}
	s = ui.Fold(s, ui.ReduceForecast, submit(pair, search, h.imageAction(r))...)
	if s.Loading {
		f, _, err := h.app.Forecast(r.Context(), s.Image, s.MIMEType, s.Pair)
		s = ui.ReduceForecast(s, h.outcome(err, func() ui.Action {
			return ui.ForecastReceived{Signals: f.Signals}
		}))
	}
	h.render(w, ui.FutureAI, h.forecastView(s))
}
