package web

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"slices"

	"go.uber.org/zap"

	"github.com/lrchart/chartai/internal/analysis"
	"github.com/lrchart/chartai/internal/app"
	"github.com/lrchart/chartai/internal/ui"
)

// Form fields of the upload pages.
const (
	fieldChart = "chart"
	fieldImage = "image"
)

// parseForm reads a urlencoded or multipart form, bounded by the upload
// limit.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		return r.ParseMultipartForm(h.opts.MaxUploadBytes)
	}
	return r.ParseForm()
}

// readImage returns the chart sent with the form: a new file wins over the
// base64 copy of an earlier upload. Data is empty when there is neither.
func readImage(r *http.Request) ([]byte, error) {
	if file, _, err := r.FormFile(fieldChart); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s upload: %w", fieldChart, err)
		}
		if len(data) > 0 {
			return data, nil
		}
	}
	b64 := r.FormValue(fieldImage)
	if b64 == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decoding %s field: %w", fieldImage, err)
	}
	return data, nil
}

// imageAction turns the uploaded chart into an action. It is nil when no
// chart was sent.
func (h *Handler) imageAction(r *http.Request) ui.Action {
	data, err := readImage(r)
	if err != nil {
		h.opts.Logger.Warn("chart upload rejected", zap.Error(err))
		return ui.ImageRejected{}
	}
	if len(data) == 0 {
		return nil
	}
	return ui.ImageSelected{Data: data, MIMEType: analysis.DetectMIME(data)}
}

// submit appends the button click to as unless an upload was rejected.
func submit(as ...ui.Action) []ui.Action {
	for _, a := range as {
		if _, ok := a.(ui.ImageRejected); ok {
			return actions(as...)
		}
	}
	return actions(append(as, ui.Submitted{})...)
}

// Upload is the preview and carried-over copy of a chart.
type Upload struct {
	Preview template.URL
	Base64  string
}

// upload builds the view of an image. Only supported formats are echoed
// back as a data URL.
func upload(data []byte, mimeType string) Upload {
	if len(data) == 0 || !slices.Contains(analysis.SupportedMIMETypes, mimeType) {
		return Upload{}
	}
	b64 := base64.StdEncoding.EncodeToString(data)
	return Upload{
		Preview: template.URL("data:" + mimeType + ";base64," + b64),
		Base64:  b64,
	}
}

// PairPicker is the searchable pair list of a form.
type PairPicker struct {
	Search   string
	Selected string
	Pairs    []string
}

// Hidden reports whether the selected pair is filtered out of the list and
// has to be carried in a hidden field.
func (p PairPicker) Hidden() bool {
	return p.Selected != "" && !slices.Contains(p.Pairs, p.Selected)
}

func (h *Handler) picker(search, selected string) PairPicker {
	return PairPicker{Search: search, Selected: selected, Pairs: h.app.Pairs(search)}
}

// outcome turns an analysis error into the action that ends the wait.
func (h *Handler) outcome(err error, success func() ui.Action) ui.Action {
	var te *app.TimeoutError
	switch {
	case err == nil:
		return success()
	case errors.As(err, &te):
		return ui.TimedOut{JobID: te.JobID}
	default:
		h.opts.Logger.Debug("analysis request failed", zap.Error(err))
		return ui.Failed{}
	}
}

func actions(as ...ui.Action) []ui.Action {
	out := as[:0]
	for _, a := range as {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}
