package http

import (
	"math"
	"net/http"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var displayLanguages = []language.Tag{
	language.English, // first entry is the fallback
	language.German,
	language.French,
	language.Japanese,
	language.SimplifiedChinese,
}

var languageMatcher = language.NewMatcher(displayLanguages)

// printerFor picks the number format from the request's Accept-Language.
func printerFor(r *http.Request) *message.Printer {
	tags, _, _ := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	_, index, _ := languageMatcher.Match(tags...)
	return message.NewPrinter(displayLanguages[index])
}

func formatPrediction(p *message.Printer, value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'g', -1, 64)
	}
	return p.Sprintf("%.4f", value)
}
