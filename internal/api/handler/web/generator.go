package web

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lrchart/chartai/internal/core"
	"github.com/lrchart/chartai/internal/ui"
)

// GeneratorView is the content of the Signal Generator 1M page.
type GeneratorView struct {
	State      ui.GeneratorState
	Picker     PairPicker
	Timeframes []string
	Button     string
	BusyButton string
}

func (h *Handler) generatorView(s ui.GeneratorState) GeneratorView {
	return GeneratorView{
		State:      s,
		Picker:     h.picker(s.Search, s.Pair),
		Timeframes: h.app.Timeframes(),
		Button:     ui.ButtonNextSignal,
		BusyButton: ui.ButtonGenerating,
	}
}

func (h *Handler) generatorState(values func(string) string) ui.GeneratorState {
	as := []ui.Action{h.defaultPair(), ui.TimeframeSelected{Timeframe: h.app.DefaultTimeframe()}}
	if p := values("pair"); p != "" {
		as = append(as, ui.PairSelected{Pair: p})
	}
	if tf := values("timeframe"); tf != "" {
		as = append(as, ui.TimeframeSelected{Timeframe: tf})
	}
	if term := values("q"); term != "" {
		as = append(as, ui.SearchChanged{Term: term})
	}
	return ui.Fold(ui.GeneratorState{}, ui.ReduceGenerator, actions(as...)...)
}

// GeneratorPage renders the generator form.
func (h *Handler) GeneratorPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, ui.Generator1M, h.generatorView(h.generatorState(r.URL.Query().Get)))
}

// Generate handles the generator form. The answer is held back by the
// configured delay.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	s := ui.ReduceGenerator(h.generatorState(r.PostFormValue), ui.Submitted{})
	if !s.Loading {
		h.render(w, ui.Generator1M, h.generatorView(s))
		return
	}
	if err := pause(r.Context(), h.opts.NextSignalDelay); err != nil {
		return
	}

	b, err := h.app.NextSignal(r.Context(), s.Pair, s.Timeframe)
	if err != nil {
		h.opts.Logger.Debug("next signal rejected", zap.Error(err))
		s = ui.ReduceGenerator(s, ui.Failed{})
		s.Error = generatorError(err)
		h.render(w, ui.Generator1M, h.generatorView(s))
		return
	}
	s = ui.ReduceGenerator(s, ui.SignalGenerated{Signal: b.Signals[0]})
	h.render(w, ui.Generator1M, h.generatorView(s))
}

func generatorError(err error) string {
	var ce *core.Error
	switch {
	case errors.Is(err, core.ErrPairRequired), errors.Is(err, core.ErrPairNotFound):
		return ui.MsgSelectPair
	case errors.Is(err, core.ErrUnknownTimeframe):
		return ui.MsgPickTimeframe
	case errors.As(err, &ce):
		return ce.Message
	default:
		return err.Error()
	}
}
