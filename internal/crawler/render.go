package crawler

import (
	"html"
	"strings"
)

// Render returns the notification body of an item: one line per present
// field, in declared order, with URLs turned into links. The body doubles as
// the item's identity in the seen cache.
func Render(item Item) string {
	return render(item, func(s string) string { return s })
}

// RenderHTML lays the item out like Render but escapes every value, so the
// body is valid markup for channels that parse HTML.
func RenderHTML(item Item) string {
	return render(item, html.EscapeString)
}

func render(item Item, escape func(string) string) string {
	var b strings.Builder
	for _, field := range item.Fields() {
		if field.Value == nil {
			continue
		}
		value := *field.Value
		if strings.HasPrefix(value, "http") {
			b.WriteString(`<a href="` + escape(value) + `">link</a>`)
		} else {
			b.WriteString(escape(value))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
