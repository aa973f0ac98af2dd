package seo

import (
	"slices"
	"strings"

	"github.com/eringen/portaransas/content"
)

func metaFor(kind content.Kind) KindMeta {
	if m, ok := Kinds[kind]; ok {
		return m
	}
	return KindMeta{Label: "Page", Suffix: "%s", OGType: TypeWebsite}
}

// NotFound returns the fallback record for a kind whose lookup missed:
// only the title is set.
func NotFound(site content.Site, kind content.Kind) Metadata {
	return Metadata{Title: metaFor(kind).Label + " Not Found | " + site.Name}
}

// Synthesize builds the metadata for a resolved entity. A nil entity is
// treated as absent.
func Synthesize(site content.Site, kind content.Kind, e content.Entity) Metadata {
	if e == nil {
		return NotFound(site, kind)
	}
	m := metaFor(kind)
	title := e.DisplayName() + " | " + strings.ReplaceAll(m.Suffix, "%s", site.Name)
	return Metadata{
		Title:       title,
		Description: e.Summary(),
		Keywords:    slices.Clone(e.Keywords()),
		OpenGraph: &OpenGraph{
			Title:       title,
			Description: e.Summary(),
			Type:        m.OGType,
		},
	}
}

// For is Synthesize for a (value, ok) lookup result.
func For[T content.Entity](site content.Site, kind content.Kind, e T, ok bool) Metadata {
	if !ok {
		return NotFound(site, kind)
	}
	return Synthesize(site, kind, e)
}

// Page returns metadata for a static page such as the home page or a listing.
func Page(site content.Site, title, description string) Metadata {
	full := site.Name
	if title != "" {
		full = title + " | " + site.Name
	}
	return Metadata{
		Title:       full,
		Description: description,
		OpenGraph: &OpenGraph{
			Title:       full,
			Description: description,
			Type:        TypeWebsite,
		},
	}
}

// WithURL sets the canonical URL and og:url. Not-found records are returned
// unchanged so they keep their title-only shape.
func (m Metadata) WithURL(u string) Metadata {
	if m.OpenGraph == nil {
		return m
	}
	og := *m.OpenGraph
	og.URL = u
	m.OpenGraph = &og
	m.Canonical = u
	return m
}

// WithImage sets og:image on a resolved record.
func (m Metadata) WithImage(src string) Metadata {
	if m.OpenGraph == nil || src == "" {
		return m
	}
	og := *m.OpenGraph
	og.Image = src
	m.OpenGraph = &og
	return m
}

// Found reports whether m describes a resolved page.
func (m Metadata) Found() bool {
	return m.OpenGraph != nil
}
