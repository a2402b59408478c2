package web

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/lrchart/chartai/internal/analysis"
	"github.com/lrchart/chartai/internal/api/job"
	"github.com/lrchart/chartai/internal/app"
	"github.com/lrchart/chartai/internal/ui"
)

// ChartView is the content of the AI Chart Analyzer page.
type ChartView struct {
	State      ui.ChartState
	Upload     Upload
	Button     string
	BusyButton string
}

func (h *Handler) chartView(s ui.ChartState) ChartView {
	return ChartView{
		State:      s,
		Upload:     upload(s.Image, s.MIMEType),
		Button:     ui.ButtonAnalyze,
		BusyButton: ui.ButtonAnalyzing,
	}
}

// ChartPage renders the analyzer. With ?job= it shows where that analysis
// stands.
func (h *Handler) ChartPage(w http.ResponseWriter, r *http.Request) {
	s := ui.ChartState{}
	if id := r.URL.Query().Get("job"); id != "" {
		s = ui.Fold(s, ui.ReduceChart, h.chartJob(id))
	}
	h.render(w, ui.ChartAnalyzer, h.chartView(s))
}

func (h *Handler) chartJob(id string) ui.Action {
	j, err := h.app.Job(id)
	if err != nil || j.Type != analysis.KindChart {
		return ui.Failed{}
	}
	switch j.Status {
	case job.StatusComplete:
		if v, ok := j.Result.(*app.ChartVerdict); ok {
			return ui.ChartAnalyzed{Result: v.AnalysisResult}
		}
		return ui.Failed{}
	case job.StatusFailed:
		return ui.Failed{}
	default:
		return ui.TimedOut{JobID: id}
	}
}

// AnalyzeChart handles the analyzer form.
func (h *Handler) AnalyzeChart(w http.ResponseWriter, r *http.Request) {
	s := ui.ChartState{}
	if err := h.parseForm(w, r); err != nil {
		h.opts.Logger.Debug("chart form rejected", zap.Error(err))
		h.render(w, ui.ChartAnalyzer, h.chartView(ui.ReduceChart(s, ui.Failed{})))
		return
	}

	s = ui.Fold(s, ui.ReduceChart, submit(h.imageAction(r))...)
	if s.Loading {
		v, _, err := h.app.AnalyzeChart(r.Context(), s.Image, s.MIMEType)
		s = ui.ReduceChart(s, h.outcome(err, func() ui.Action {
			return ui.ChartAnalyzed{Result: v.AnalysisResult}
		}))
	}
	h.render(w, ui.ChartAnalyzer, h.chartView(s))
}
