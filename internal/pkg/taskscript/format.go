// Package taskscript turns templated call-script descriptions of lead tasks
// into HTML blocks and form fields.
package taskscript

import (
	"html"
	"regexp"
	"strings"
)

// SectionKind names a block opened by an emoji header.
type SectionKind string

const (
	SectionGoal      SectionKind = "goal"
	SectionScript    SectionKind = "script"
	SectionChecklist SectionKind = "checklist"
	SectionDeadline  SectionKind = "deadline"
)

var headerPrefixes = []struct {
	prefix string
	kind   SectionKind
}{
	{"🎯", SectionGoal},
	{"💬", SectionScript},
	{"📋", SectionChecklist},
	{"⏰", SectionDeadline},
	{"⏳", SectionDeadline},
	{"📅", SectionDeadline},
}

// status markers get bolded when they start a line
var statusEmoji = []string{"✅", "❌", "💡", "⚡", "📝", "📞"}

const variationSelector = "\ufe0f"

var bulletPrefixes = []string{"- ", "• ", "▪ ", "– "}

var boldRe = regexp.MustCompile(`\*\*(.+?)\*\*`)

// HeaderKind reports whether line opens a section.
func HeaderKind(line string) (SectionKind, bool) {
	line = strings.TrimSpace(line)
	for _, h := range headerPrefixes {
		if strings.HasPrefix(line, h.prefix) {
			return h.kind, true
		}
	}
	return "", false
}

// IsSeparator reports whether line is a horizontal rule such as "━━━" or "---".
func IsSeparator(line string) bool {
	line = strings.TrimSpace(line)
	runes := []rune(line)
	if len(runes) < 3 {
		return false
	}
	first := runes[0]
	switch first {
	case '━', '─', '-', '=', '—':
	default:
		return false
	}
	for _, r := range runes {
		if r != first {
			return false
		}
	}
	return true
}

func trimBullet(line string) (string, bool) {
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(line, p) {
			return strings.TrimSpace(strings.TrimPrefix(line, p)), true
		}
	}
	return line, false
}

func renderText(s string) string {
	return boldRe.ReplaceAllString(html.EscapeString(s), "<strong>$1</strong>")
}

func renderLine(s string) string {
	for _, e := range statusEmoji {
		if strings.HasPrefix(s, e) {
			rest := strings.TrimPrefix(s, e)
			// keep the variation selector with the emoji
			if strings.HasPrefix(rest, variationSelector) {
				e += variationSelector
				rest = strings.TrimPrefix(rest, variationSelector)
			}
			return "<strong>" + e + "</strong>" + renderText(rest)
		}
	}
	return renderText(s)
}

type formatter struct {
	out   strings.Builder
	open  bool
	kind  SectionKind
	items []string
	list  []string
}

func (f *formatter) flushList() {
	if len(f.list) == 0 {
		return
	}
	f.items = append(f.items, "<ul><li>"+strings.Join(f.list, "</li><li>")+"</li></ul>")
	f.list = nil
}

func (f *formatter) closeBlock() {
	f.flushList()
	body := strings.Join(f.items, "<br>")
	if f.open {
		f.out.WriteString(`<div class="task-section task-section--` + string(f.kind) + `">`)
		f.out.WriteString(body)
		f.out.WriteString("</div>")
	} else {
		f.out.WriteString(body)
	}
	f.items = nil
	f.open = false
	f.kind = ""
}

// Format renders a task description as HTML. Header lines open a section
// block; the block closes on the next header, a separator or end of input.
// Text is HTML-escaped before markup is applied.
func Format(desc string) string {
	if strings.TrimSpace(desc) == "" {
		return ""
	}

	f := &formatter{}
	for _, raw := range strings.Split(desc, "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))

		if IsSeparator(line) {
			f.closeBlock()
			f.out.WriteString("<hr>")
			continue
		}

		if kind, ok := HeaderKind(line); ok {
			f.closeBlock()
			f.open = true
			f.kind = kind
			f.items = append(f.items, "<strong>"+renderText(line)+"</strong>")
			continue
		}

		if line == "" {
			f.flushList()
			continue
		}

		if item, ok := trimBullet(line); ok {
			f.list = append(f.list, renderLine(item))
			continue
		}

		f.flushList()
		f.items = append(f.items, renderLine(line))
	}
	f.closeBlock()

	return f.out.String()
}
