package views

import (
	"fmt"
	"html/template"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/eringen/portaransas/content"
	"github.com/eringen/portaransas/markdown"
)

var funcs = template.FuncMap{
	"join":         strings.Join,
	"title":        CategoryTitle,
	"jsonld":       func(s string) template.JS { return template.JS(s) },
	"md":           markdown.HTML,
	"mdInline":     func(s string) template.HTML { return template.HTML(markdown.Inline(s)) },
	"propertyPath": func(p content.Property) string { return content.KindProperty.Path(p.EntityKey()) },
	"activityPath": func(a content.Activity) string { return content.KindActivity.Path(a.EntityKey()) },
	"eventPath":    func(e content.Event) string { return content.KindEvent.Path(e.EntityKey()) },
	"placePath":    func(p content.Place) string { return content.KindPlace.Path(p.EntityKey()) },
	"itemPath":     itemPath,
	"categoryPath": func(c string) string { return "/places/" + url.PathEscape(c) + "/" },
	"eventDates":   eventDates,
	"comma":        comma,
	"ago":          humanize.Time,
	"status":       statusLabel,
	"absURL":       buildURL,
	"pair": func(a, b content.ComparisonOption) []content.ComparisonOption {
		return []content.ComparisonOption{a, b}
	},
}

func comma(v any) string {
	switch n := v.(type) {
	case int:
		return humanize.Comma(int64(n))
	case int64:
		return humanize.Comma(n)
	}
	return fmt.Sprint(v)
}

func itemPath(i content.RankedItem) string {
	if k, ok := i.PlaceKey(); ok {
		return content.KindPlace.Path(k)
	}
	return ""
}

// buildURL joins a root-relative path onto a base URL.
func buildURL(base, p string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + p
	}
	trailing := strings.HasSuffix(p, "/")
	u.Path = path.Join(u.Path, p)
	if trailing && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// CategoryTitle turns a place category slug into a heading.
func CategoryTitle(c string) string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(c[:1]) + strings.ReplaceAll(c[1:], "-", " ")
}

func statusLabel(s string) string {
	switch s {
	case content.StatusPending:
		return "Pending"
	case content.StatusSold:
		return "Sold"
	default:
		return "For Sale"
	}
}

// eventDates formats an event's date range, e.g. "Apr 17 – 19, 2026".
func eventDates(e content.Event) string {
	start, err := time.Parse(content.DateLayout, e.StartDate)
	if err != nil {
		return e.StartDate
	}
	if e.EndDate == "" || e.EndDate == e.StartDate {
		return start.Format("Jan 2, 2006")
	}
	end, err := time.Parse(content.DateLayout, e.EndDate)
	if err != nil {
		return start.Format("Jan 2, 2006")
	}
	if start.Month() == end.Month() && start.Year() == end.Year() {
		return start.Format("Jan 2") + " – " + end.Format("2, 2006")
	}
	return start.Format("Jan 2") + " – " + end.Format("Jan 2, 2006")
}
