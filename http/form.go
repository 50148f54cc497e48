package http

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"stockpredictor/ml"
	"stockpredictor/monitoring"
)

//go:embed web
var webFS embed.FS

var pageTemplate = template.Must(template.ParseFS(webFS, "web/index.html"))

const pageTitle = "Netflix Stock Price Prediction"

// fieldLabels names the stock inputs. Other schema features use their raw name.
var fieldLabels = map[string]string{
	ml.FeatureOpen:   "Open Price",
	ml.FeatureHigh:   "High Price",
	ml.FeatureLow:    "Low Price",
	ml.FeatureClose:  "Close Price",
	ml.FeatureVolume: "Volume",
}

func fieldLabel(name string) string {
	if label, ok := fieldLabels[name]; ok {
		return label
	}
	return name
}

type pageField struct {
	Name  string
	Label string
	Value string
}

type pageData struct {
	Title      string
	Fields     []pageField
	Prediction string
	Error      string
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// newPage lays out one input per schema feature, in schema order.
func newPage(features []string, values map[string]string) pageData {
	data := pageData{Title: pageTitle}
	for _, name := range features {
		value, ok := values[name]
		if !ok {
			value = "0"
		}
		data.Fields = append(data.Fields, pageField{Name: name, Label: fieldLabel(name), Value: value})
	}
	return data
}

func (h *Handlers) handleForm(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, http.StatusOK, newPage(h.predictor.Schema().Features, nil))
}

func (h *Handlers) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderPage(w, http.StatusBadRequest, pageData{Title: pageTitle, Error: "invalid form: " + err.Error()})
		return
	}

	features := h.predictor.Schema().Features
	entered := make(map[string]string, len(features))
	for _, name := range features {
		entered[name] = strings.TrimSpace(r.PostForm.Get(name))
	}
	page := newPage(features, entered)

	record, err := parseFormRecord(features, entered)
	if err != nil {
		h.metrics.RecordPrediction(channelForm, monitoring.OutcomeInvalidInput, 0)
		page.Error = err.Error()
		h.renderPage(w, http.StatusBadRequest, page)
		return
	}

	status, resp := h.predict(r.Context(), channelForm, record, printerFor(r))
	if resp.Error != "" {
		page.Error = "Prediction failed: " + resp.Error
	} else {
		page.Prediction = resp.Text
	}
	h.renderPage(w, status, page)
}

// parseFormRecord turns the inputs into a record. Blank inputs count as 0.
func parseFormRecord(features []string, values map[string]string) (ml.Record, error) {
	record := make(ml.Record, len(features))
	for _, name := range features {
		text := values[name]
		if text == "" {
			record[name] = 0
			continue
		}
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", fieldLabel(name), text)
		}
		record[name] = value
	}
	return record, nil
}

func (h *Handlers) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("render page", zap.Error(err))
	}
}
