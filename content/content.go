// Package content holds the site's typed entities and the read-only resolver
// over them.
//
// A Snapshot is built once from YAML at startup (or at export time) and is
// never mutated afterwards. Every lookup is an exact, byte-for-byte key match;
// a miss is reported with an ok=false result, never an error.
package content

import (
	"net/url"
	"strings"
)

// Kind identifies one partition of the content store.
type Kind int

const (
	KindProperty Kind = iota + 1
	KindActivity
	KindEvent
	KindComparison
	KindBestOf
	KindMonthlyGuide
	KindLifestyle
	KindPlace
)

type kindInfo struct {
	name   string
	prefix string // URL prefix, also the echo route prefix
	param  string // name of the path parameter holding the slug
}

var kinds = map[Kind]kindInfo{
	KindProperty:     {name: "property", prefix: "properties", param: "slug"},
	KindActivity:     {name: "activity", prefix: "activities", param: "slug"},
	KindEvent:        {name: "event", prefix: "events", param: "slug"},
	KindComparison:   {name: "comparison", prefix: "compare", param: "slug"},
	KindBestOf:       {name: "best_of", prefix: "best", param: "topic"},
	KindMonthlyGuide: {name: "monthly_guide", prefix: "guides", param: "month"},
	KindLifestyle:    {name: "lifestyle", prefix: "lifestyle", param: "scenario"},
	KindPlace:        {name: "place", prefix: "places", param: "slug"},
}

// Kinds returns every kind in a fixed order.
func Kinds() []Kind {
	return []Kind{
		KindProperty, KindActivity, KindEvent, KindComparison,
		KindBestOf, KindMonthlyGuide, KindLifestyle, KindPlace,
	}
}

// String returns the kind's stable machine name (used in logs and metrics).
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "unknown"
}

// Param is the name of the route parameter carrying the slug for this kind.
func (k Kind) Param() string {
	return kinds[k].param
}

// Route returns the echo route pattern serving a single entity of this kind.
func (k Kind) Route() string {
	info := kinds[k]
	if k == KindPlace {
		return "/" + info.prefix + "/:category/:" + info.param + "/"
	}
	return "/" + info.prefix + "/:" + info.param + "/"
}

// Path returns the site-relative URL path of the entity with the given key.
func (k Kind) Path(key Key) string {
	info := kinds[k]
	var b strings.Builder
	b.WriteString("/")
	b.WriteString(info.prefix)
	b.WriteString("/")
	if k == KindPlace {
		b.WriteString(url.PathEscape(key.Category))
		b.WriteString("/")
	}
	b.WriteString(url.PathEscape(key.Slug))
	b.WriteString("/")
	return b.String()
}

// Key identifies an entity within its kind. Category is only set for places.
type Key struct {
	Category string
	Slug     string
}

func (k Key) String() string {
	if k.Category == "" {
		return k.Slug
	}
	return k.Category + "/" + k.Slug
}

// Entity is implemented by every content kind.
type Entity interface {
	EntityKey() Key
	DisplayName() string
	Summary() string
	Keywords() []string
}
