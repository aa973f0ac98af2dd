package portaransas

import (
	"net/http"
	"net/url"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/portaransas/content"
	"github.com/eringen/portaransas/observability"
	"github.com/eringen/portaransas/seo"
	"github.com/eringen/portaransas/views"
)

// keyFromParams maps a request's route parameters onto a lookup key. echo
// routes on the decoded path unless the request carries a RawPath, so params
// are unescaped only in that case. Undecodable escapes yield a key that
// matches nothing.
func keyFromParams(c echo.Context, kind content.Kind) content.Key {
	raw := c.Request().URL.RawPath != ""
	unescape := func(s string) string {
		if !raw {
			return s
		}
		v, err := url.PathUnescape(s)
		if err != nil {
			return "\x00"
		}
		return v
	}
	key := content.Key{Slug: unescape(c.Param(kind.Param()))}
	if kind == content.KindPlace {
		key.Category = unescape(c.Param("category"))
	}
	return key
}

// resolve serves one entity page. The metadata phase and the body phase
// each look the key up in coll; the snapshot is immutable so both observe
// the same result. A miss renders the kind's not-found page with a 404.
func resolve[T content.Entity](a *App, c echo.Context, kind content.Kind, coll *content.Collection[T], body func(views.Page, T) templ.Component) error {
	key := keyFromParams(c, kind)
	site := a.Snapshot.Site

	found, ok := coll.Lookup(key)
	meta := seo.For(site, kind, found, ok)
	if ok {
		meta = meta.WithURL(a.BuildURL(kind.Path(found.EntityKey())))
	}

	entity, ok := coll.Lookup(key)
	observability.ObserveLookup(kind.String(), ok)
	if !ok {
		p := a.page(c, meta)
		p.NoIndex = true
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(p))
	}
	return Render(c, body(a.page(c, meta), entity))
}

func (a *App) contentRoutes() {
	e, s := a.Echo, a.Snapshot

	e.GET(content.KindProperty.Route(), func(c echo.Context) error {
		return resolve(a, c, content.KindProperty, s.Properties, func(p views.Page, prop content.Property) templ.Component {
			if len(prop.Images) > 0 {
				p.Meta = p.Meta.WithImage(a.BuildURL(prop.Images[0].Src))
			}
			p.JSONLD = seo.ListingJSONLD(s.Site, prop, p.Meta.Canonical)
			return a.Views.Property(p, prop)
		})
	})
	e.GET(content.KindActivity.Route(), func(c echo.Context) error {
		return resolve(a, c, content.KindActivity, s.Activities, a.Views.Activity)
	})
	e.GET(content.KindEvent.Route(), func(c echo.Context) error {
		return resolve(a, c, content.KindEvent, s.Events, func(p views.Page, ev content.Event) templ.Component {
			p.JSONLD = seo.EventJSONLD(ev, p.Meta.Canonical)
			return a.Views.Event(p, ev)
		})
	})
	e.GET(content.KindComparison.Route(), func(c echo.Context) error {
		return resolve(a, c, content.KindComparison, s.Comparisons, a.Views.Comparison)
	})
	e.GET(content.KindBestOf.Route(), func(c echo.Context) error {
		return resolve(a, c, content.KindBestOf, s.BestOf, a.Views.BestOf)
	})
	e.GET(content.KindMonthlyGuide.Route(), func(c echo.Context) error {
		return resolve(a, c, content.KindMonthlyGuide, s.Months, func(p views.Page, m content.MonthlyGuide) templ.Component {
			return a.Views.Guide(p, m, s.EventsFor(m.Events))
		})
	})
	e.GET(content.KindLifestyle.Route(), func(c echo.Context) error {
		return resolve(a, c, content.KindLifestyle, s.Lifestyle, func(p views.Page, sc content.LifestyleScenario) templ.Component {
			return a.Views.Lifestyle(p, sc, s.PropertiesFor(sc.Properties), s.ActivitiesFor(sc.Activities))
		})
	})
	e.GET("/places/:category/", a.handlePlaceCategory)
	e.GET(content.KindPlace.Route(), func(c echo.Context) error {
		return resolve(a, c, content.KindPlace, s.Places, func(p views.Page, pl content.Place) templ.Component {
			p.JSONLD = seo.PlaceJSONLD(pl, p.Meta.Canonical)
			return a.Views.Place(p, pl)
		})
	})
}

func (a *App) handleHome(c echo.Context) error {
	s := a.Snapshot
	meta := seo.Page(s.Site, "", s.Site.Tagline).WithURL(a.BuildURL("/"))
	p := a.page(c, meta)
	p.JSONLD = seo.WebsiteJSONLD(s.Site, a.BuildURL("/"))
	return Render(c, a.Views.Home(p, s.FeaturedProperties(), a.upcomingEvents(time.Now()), s.Activities.All()))
}

// upcomingEvents returns events that have not ended as of now, in content order.
func (a *App) upcomingEvents(now time.Time) []content.Event {
	today := now.Format(content.DateLayout)
	var out []content.Event
	for _, ev := range a.Snapshot.Events.All() {
		end := ev.EndDate
		if end == "" {
			end = ev.StartDate
		}
		// dates are validated YYYY-MM-DD, so string order is date order
		if end >= today {
			out = append(out, ev)
		}
	}
	return out
}

func (a *App) handleProperties(c echo.Context) error {
	s := a.Snapshot
	meta := seo.Page(s.Site, "Homes for Sale", "Beach houses, condos and canal-front homes for sale in "+s.Site.Name+".").
		WithURL(a.BuildURL("/properties/"))
	return Render(c, a.Views.Properties(a.page(c, meta), s.Properties.All()))
}

func (a *App) handlePlaceCategory(c echo.Context) error {
	category, err := url.PathUnescape(c.Param("category"))
	places := a.Snapshot.PlacesInCategory(category)
	if err != nil || len(places) == 0 {
		return echo.ErrNotFound
	}
	title := views.CategoryTitle(category)
	meta := seo.Page(a.Snapshot.Site, title, title+" in "+a.Snapshot.Site.Name+", picked by locals.").
		WithURL(a.BuildURL("/places/" + url.PathEscape(category) + "/"))
	return Render(c, a.Views.PlaceCategory(a.page(c, meta), category, places))
}
