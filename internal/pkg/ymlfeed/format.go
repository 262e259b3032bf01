package ymlfeed

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// groupSep is what ru-RU number formatting puts between digit groups.
const groupSep = "\u00a0"

// FormatRU formats n like ru-RU locale output: digit groups separated by a
// no-break space, comma as decimal mark, at most three fraction digits.
func FormatRU(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}

	s := strconv.FormatFloat(n, 'f', 3, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")

	var b strings.Builder
	if neg && (intPart != "0" || frac != "") {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(groupSep)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}

// plainNumber renders n the way a JavaScript template literal would:
// integers without a fraction, others with the shortest exact form.
func plainNumber(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "0"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ISOTime formats t in UTC with millisecond precision, e.g.
// 2024-03-01T09:30:00.000Z.
func ISOTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// FileName is the download name of the catalog generated at now.
func FileName(now time.Time) string {
	return "adenatrans-catalog-" + now.UTC().Format("2006-01-02") + ".yml"
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeXML replaces the five reserved XML characters with entities.
func EscapeXML(s string) string {
	if s == "" {
		return ""
	}
	return xmlEscaper.Replace(s)
}
