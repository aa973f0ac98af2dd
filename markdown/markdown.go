// Package markdown renders the small Markdown subset allowed in content
// prose (best-of intros, comparison verdicts, guide tips): paragraphs,
// bullet and numbered lists, third-level headings, quotes, links, bold and
// italic. Everything else is escaped text.
package markdown

import (
	"context"
	"html"
	"html/template"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold        = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic      = regexp.MustCompile(`\*([^*]+)\*`)
	reLink        = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	reOrderedList = regexp.MustCompile(`^\d+\.\s`)
)

// HTML renders md for use inside an html/template.
func HTML(md string) template.HTML {
	return template.HTML(Render(md))
}

// Component returns a templ.Component that renders md.
func Component(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, Render(md))
		return err
	})
}

type block int

const (
	none block = iota
	para
	list
	ordered
	quote
)

var closers = map[block]string{para: "</p>", list: "</ul>", ordered: "</ol>", quote: "</blockquote>"}

// Render returns the HTML for md. All text is escaped before formatting.
func Render(md string) string {
	var b strings.Builder
	open := none
	enter := func(next block, tag string) {
		if open == next {
			return
		}
		b.WriteString(closers[open])
		b.WriteString(tag)
		open = next
	}
	closeBlock := func() {
		b.WriteString(closers[open])
		open = none
	}

	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		switch {
		case line == "":
			closeBlock()
		case strings.HasPrefix(line, "### "):
			closeBlock()
			b.WriteString("<h3>" + Inline(line[4:]) + "</h3>")
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			enter(list, "<ul>")
			b.WriteString("<li>" + Inline(line[2:]) + "</li>")
		case reOrderedList.MatchString(line):
			enter(ordered, "<ol>")
			b.WriteString("<li>" + Inline(reOrderedList.ReplaceAllString(line, "")) + "</li>")
		case strings.HasPrefix(line, "> "):
			if open == quote {
				b.WriteString(" ")
			}
			enter(quote, "<blockquote>")
			b.WriteString(Inline(line[2:]))
		default:
			if open == para {
				b.WriteString(" ")
			}
			enter(para, "<p>")
			b.WriteString(Inline(line))
		}
	}
	closeBlock()
	return b.String()
}

// Inline escapes s and applies links, bold and italic. Off-site links open
// in a new tab.
func Inline(s string) string {
	escaped := html.EscapeString(strings.TrimSpace(s))
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := ""
		if strings.HasPrefix(href, "http") {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + match[1] + `</a>`
	})
	return outsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		return reItalic.ReplaceAllString(seg, "<em>$1</em>")
	})
}

// outsideTags applies fn to the text between tags only, so formatting never
// touches an href.
func outsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		buf.WriteString(fn(s[:lt]))
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// SafeURL returns raw escaped for an attribute when it is site-relative or
// uses http, https, mailto or tel; otherwise "".
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if (strings.HasPrefix(val, "/") && !strings.HasPrefix(val, "//")) || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
