package taskscript

import (
	"strings"

	"github.com/ettle/strcase"
)

// Field is one "Label: value" line of the questions section.
type Field struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Required bool   `json:"required"`
	Filled   bool   `json:"filled"`
}

// Form is the ordered set of fields extracted from a description.
type Form struct {
	Fields []Field `json:"fields"`
}

var sectionMarkers = []string{"что узнать", "что нужно узнать", "what to find out"}

var requiredMarkers = []string{"(обязательно)", "(обяз.)", "(required)"}

// labelKeys maps whole normalized labels to keys. Inflected and longer
// forms used in scripts are listed explicitly.
var labelKeys = map[string]string{
	"имя":                     "name",
	"имя клиента":             "name",
	"фио":                     "name",
	"телефон":                 "phone",
	"номер телефона":          "phone",
	"телефон клиента":         "phone",
	"email":                   "email",
	"e-mail":                  "email",
	"почта":                   "email",
	"электронная почта":       "email",
	"бюджет":                  "budget",
	"город":                   "city",
	"регион":                  "region",
	"срок":                    "timeline",
	"сроки":                   "timeline",
	"сроки покупки":           "timeline",
	"когда планирует покупку": "timeline",
	"марка":                   "preferredBrands",
	"марки":                   "preferredBrands",
	"марка авто":              "preferredBrands",
	"марка автомобиля":        "preferredBrands",
	"предпочитаемые марки":    "preferredBrands",
	"модель":                  "preferredModels",
	"модели":                  "preferredModels",
	"модель авто":             "preferredModels",
	"модель автомобиля":       "preferredModels",
	"год":                     "year",
	"год выпуска":             "year",
	"пробег":                  "mileage",
	"коробка":                 "gearbox",
	"коробка передач":         "gearbox",
	"кпп":                     "gearbox",
	"привод":                  "drive",
	"топливо":                 "fuel",
	"тип топлива":             "fuel",
	"кузов":                   "bodyType",
	"тип кузова":              "bodyType",
	"цвет":                    "color",
	"цвет кузова":             "color",
	"возражения":              "objections",
	"trade-in":                "tradeIn",
	"трейд-ин":                "tradeIn",
	"кредит":                  "credit",
	"telegram":                "telegramUsername",
	"телеграм":                "telegramUsername",
	"способ связи":            "contactMethod",
	"комментарий":             "comment",
}

// normalizeLabel lower-cases the label, drops parenthesized hints and
// collapses whitespace.
func normalizeLabel(label string) string {
	norm := strings.ToLower(stripParens(label))
	norm = strings.Join(strings.Fields(norm), " ")
	return strings.TrimRight(norm, "?.")
}

// KeyForLabel maps a Russian label to its camelCase key. Labels outside the
// dictionary are camel-cased as is.
func KeyForLabel(label string) string {
	norm := normalizeLabel(label)
	if key, ok := labelKeys[norm]; ok {
		return key
	}
	return strcase.ToCamel(norm)
}

func stripParens(s string) string {
	for {
		open := strings.Index(s, "(")
		if open < 0 {
			return s
		}
		end := strings.Index(s[open:], ")")
		if end < 0 {
			return s[:open]
		}
		s = s[:open] + s[open+end+1:]
	}
}

// IsPlaceholder reports whether v is an unfilled template value.
func IsPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	switch v {
	case "", "...", "…", "—", "–", "-", "?", "[...]":
		return true
	}
	return strings.Trim(v, "_") == ""
}

func isSectionStart(line string) bool {
	lower := strings.ToLower(line)
	for _, m := range sectionMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func parseLabel(raw string) (label string, required bool) {
	label = strings.TrimSpace(raw)
	lower := strings.ToLower(label)
	for _, m := range requiredMarkers {
		if idx := strings.Index(lower, m); idx >= 0 {
			label = strings.TrimSpace(label[:idx] + label[idx+len(m):])
			lower = strings.ToLower(label)
			required = true
		}
	}
	if strings.HasSuffix(label, "*") {
		label = strings.TrimSpace(strings.TrimRight(label, "*"))
		required = true
	}
	return label, required
}

func splitPair(line string) (string, string, bool) {
	idx := strings.IndexAny(line, ":：")
	if idx <= 0 {
		return "", "", false
	}
	sep := 1
	if strings.HasPrefix(line[idx:], "：") {
		sep = len("：")
	}
	return line[:idx], strings.TrimSpace(line[idx+sep:]), true
}

// ExtractFields scans the "what to find out" section for Label: value lines.
// The section ends at the next header, a separator or end of input. A
// description without that section yields an empty form.
func ExtractFields(desc string) Form {
	form := Form{Fields: []Field{}}
	index := map[string]int{}

	inSection := false
	for _, raw := range strings.Split(desc, "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))

		if !inSection {
			if isSectionStart(line) {
				inSection = true
			}
			continue
		}

		if IsSeparator(line) {
			break
		}
		if _, ok := HeaderKind(line); ok {
			break
		}
		if line == "" {
			continue
		}

		line, _ = trimBullet(line)
		line = strings.ReplaceAll(line, "**", "")
		rawLabel, value, ok := splitPair(line)
		if !ok {
			continue
		}
		label, required := parseLabel(rawLabel)
		if label == "" {
			continue
		}

		filled := !IsPlaceholder(value)
		if !filled {
			value = ""
		}

		key := KeyForLabel(label)
		if i, dup := index[key]; dup {
			existing := &form.Fields[i]
			existing.Required = existing.Required || required
			if !existing.Filled && filled {
				existing.Value = value
				existing.Filled = true
			}
			continue
		}

		index[key] = len(form.Fields)
		form.Fields = append(form.Fields, Field{
			Key:      key,
			Label:    label,
			Value:    value,
			Required: required,
			Filled:   filled,
		})
	}

	return form
}

// Set fills the field with key. It returns false if the form has no such field.
func (f *Form) Set(key, value string) bool {
	for i := range f.Fields {
		if f.Fields[i].Key != key {
			continue
		}
		if IsPlaceholder(value) {
			f.Fields[i].Value = ""
			f.Fields[i].Filled = false
		} else {
			f.Fields[i].Value = strings.TrimSpace(value)
			f.Fields[i].Filled = true
		}
		return true
	}
	return false
}

// Apply sets every known key from values and ignores the rest.
func (f *Form) Apply(values map[string]string) {
	for k, v := range values {
		f.Set(k, v)
	}
}

// Values returns the filled fields keyed by camelCase key.
func (f Form) Values() map[string]string {
	out := make(map[string]string, len(f.Fields))
	for _, fld := range f.Fields {
		if fld.Filled {
			out[fld.Key] = fld.Value
		}
	}
	return out
}

// Missing lists the keys of required fields that are still empty.
func (f Form) Missing() []string {
	var out []string
	for _, fld := range f.Fields {
		if fld.Required && !fld.Filled {
			out = append(out, fld.Key)
		}
	}
	return out
}

// CanComplete is true once every required field has a real value.
func (f Form) CanComplete() bool {
	return len(f.Missing()) == 0
}
