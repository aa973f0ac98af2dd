// Package seo derives page metadata (title, description, keywords and
// OpenGraph fields) from resolved content.
package seo

import (
	"github.com/eringen/portaransas/content"
)

// OpenGraph types.
const (
	TypeWebsite = "website"
	TypeArticle = "article"
)

// Metadata carries per-page SEO fields into the <head> template.
type Metadata struct {
	Title       string
	Description string
	Keywords    []string
	Canonical   string
	OpenGraph   *OpenGraph
}

// OpenGraph holds the og:* tags.
type OpenGraph struct {
	Title       string
	Description string
	Type        string
	URL         string
	Image       string
}

// KindMeta is the fixed per-kind metadata mapping.
type KindMeta struct {
	Label  string // used in the not-found title, e.g. "Comparison Not Found"
	Suffix string // title suffix; %s is replaced by the site name
	OGType string
}

// Kinds is the per-kind table. Existing indexed pages depend on these values;
// change them only together with a redirect plan.
var Kinds = map[content.Kind]KindMeta{
	content.KindProperty:     {Label: "Property", Suffix: "%s Real Estate", OGType: TypeWebsite},
	content.KindActivity:     {Label: "Activity", Suffix: "%s Activities", OGType: TypeWebsite},
	content.KindEvent:        {Label: "Event", Suffix: "%s Events", OGType: TypeArticle},
	content.KindComparison:   {Label: "Comparison", Suffix: "%s Comparisons", OGType: TypeArticle},
	content.KindBestOf:       {Label: "List", Suffix: "Best of %s", OGType: TypeArticle},
	content.KindMonthlyGuide: {Label: "Guide", Suffix: "%s Monthly Guide", OGType: TypeArticle},
	content.KindLifestyle:    {Label: "Lifestyle", Suffix: "%s Lifestyle", OGType: TypeArticle},
	content.KindPlace:        {Label: "Place", Suffix: "%s Local Guide", OGType: TypeWebsite},
}
