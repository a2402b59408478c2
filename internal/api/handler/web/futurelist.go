package web

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/lrchart/chartai/internal/core"
	"github.com/lrchart/chartai/internal/report"
	"github.com/lrchart/chartai/internal/ui"
)

// ListRow is one line of the on-screen table.
type ListRow struct {
	Pair      string
	Time      string
	Direction core.Direction
}

// IsCall reports whether the row is a CALL.
func (r ListRow) IsCall() bool { return r.Direction == core.DirectionCall }

// FutureListView is the content of the Future Signals 1M page.
type FutureListView struct {
	State      ui.FutureListState
	Header     string
	Separator  string
	Rows       []ListRow
	Report     string
	Rules      []string
	Button     string
	BusyButton string
}

func (h *Handler) futureListView(s ui.FutureListState) FutureListView {
	v := FutureListView{
		State:      s,
		Header:     report.TableHeader,
		Separator:  report.Separator,
		Rules:      ui.Rules,
		Button:     ui.ButtonFutureList,
		BusyButton: ui.ButtonGeneratingList,
		Report:     report.FutureList(s.Signals, h.app.Labels()),
	}
	for _, sig := range s.Signals {
		v.Rows = append(v.Rows, ListRow{
			Pair:      report.PadRight(sig.Pair, report.PairWidth),
			Time:      sig.Time,
			Direction: sig.Direction,
		})
	}
	return v
}

// FutureListPage renders the empty list page.
func (h *Handler) FutureListPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, ui.FutureList1M, h.futureListView(ui.FutureListState{}))
}

// GenerateList handles the list form. The answer is held back by the
// configured delay.
func (h *Handler) GenerateList(w http.ResponseWriter, r *http.Request) {
	s := ui.ReduceFutureList(ui.FutureListState{}, ui.Submitted{})
	if err := pause(r.Context(), h.opts.FutureListDelay); err != nil {
		return
	}

	b, err := h.app.FutureList(r.Context())
	if err != nil {
		h.opts.Logger.Warn("future list failed", zap.Error(err))
		s = ui.ReduceFutureList(s, ui.Failed{})
		h.render(w, ui.FutureList1M, h.futureListView(s))
		return
	}
	s = ui.Fold(s, ui.ReduceFutureList, ui.ListGenerated{Signals: b.Signals}, ui.BatchStored{ID: b.ID})
	h.render(w, ui.FutureList1M, h.futureListView(s))
}
