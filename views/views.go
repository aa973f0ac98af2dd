// Package views holds the site's default page templates. Each page is
// exposed as a templ.Component so callers can swap any of them for their
// own components.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/a-h/templ"

	"github.com/eringen/portaransas/analytics"
	"github.com/eringen/portaransas/content"
	"github.com/eringen/portaransas/leads"
	"github.com/eringen/portaransas/seo"
)

//go:embed templates/*.html
var templateFS embed.FS

// Assets holds the stylesheet and scripts served under /public/.
//
//go:embed public/*
var assetFS embed.FS

// Assets returns the static asset tree rooted at public/.
func Assets() fs.FS {
	sub, err := fs.Sub(assetFS, "public")
	if err != nil {
		panic(err)
	}
	return sub
}

// Page is the data every template receives.
type Page struct {
	Site             content.Site
	Meta             seo.Metadata
	SiteURL          string
	Path             string
	JSONLD           string
	CSRF             string
	NoIndex          bool
	ChatEnabled      bool
	AnalyticsEnabled bool
	Year             int
}

var pages = map[string]*template.Template{}

func init() {
	layout := template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html"))
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}
	for _, name := range names {
		if name == "templates/layout.html" {
			continue
		}
		t := template.Must(template.Must(layout.Clone()).ParseFS(templateFS, name))
		pages[name[len("templates/"):len(name)-len(".html")]] = t
	}
}

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := pages[name]
		if !ok {
			return fmt.Errorf("views: no template %q", name)
		}
		return t.ExecuteTemplate(w, "layout", data)
	})
}

// Home renders the landing page with featured listings and upcoming events.
func Home(p Page, featured []content.Property, events []content.Event, activities []content.Activity) templ.Component {
	return render("home", struct {
		Page
		Featured   []content.Property
		Events     []content.Event
		Activities []content.Activity
	}{p, featured, events, activities})
}

// Properties renders the listings index.
func Properties(p Page, props []content.Property) templ.Component {
	return render("properties", struct {
		Page
		Properties []content.Property
	}{p, props})
}

// Property renders a single listing.
func Property(p Page, prop content.Property) templ.Component {
	return render("property", struct {
		Page
		Property content.Property
	}{p, prop})
}

// Activity renders one thing to do on the island.
func Activity(p Page, a content.Activity) templ.Component {
	return render("activity", struct {
		Page
		Activity content.Activity
	}{p, a})
}

// Event renders a dated local event.
func Event(p Page, e content.Event) templ.Component {
	return render("event", struct {
		Page
		Event content.Event
	}{p, e})
}

// Comparison renders a town-versus-town comparison and its verdict.
func Comparison(p Page, c content.Comparison) templ.Component {
	return render("comparison", struct {
		Page
		Comparison content.Comparison
	}{p, c})
}

// BestOf renders a ranked best-of list.
func BestOf(p Page, l content.BestOfList) templ.Component {
	return render("best_of", struct {
		Page
		List content.BestOfList
	}{p, l})
}

// Guide renders a monthly guide with the events falling in that month.
func Guide(p Page, m content.MonthlyGuide, events []content.Event) templ.Component {
	return render("guide", struct {
		Page
		Guide  content.MonthlyGuide
		Events []content.Event
	}{p, m, events})
}

// Lifestyle renders a scenario page with the listings and activities it links.
func Lifestyle(p Page, s content.LifestyleScenario, props []content.Property, acts []content.Activity) templ.Component {
	return render("lifestyle", struct {
		Page
		Scenario   content.LifestyleScenario
		Properties []content.Property
		Activities []content.Activity
	}{p, s, props, acts})
}

// PlaceCategory lists the places in one category.
func PlaceCategory(p Page, category string, places []content.Place) templ.Component {
	return render("place_category", struct {
		Page
		Category string
		Places   []content.Place
	}{p, category, places})
}

// Place renders a single business or spot.
func Place(p Page, pl content.Place) templ.Component {
	return render("place", struct {
		Page
		Place content.Place
	}{p, pl})
}

// Contact renders the lead form. sent shows the thank-you state instead.
func Contact(p Page, form leads.Form, errs leads.ValidationErrors, sent bool) templ.Component {
	return render("contact", struct {
		Page
		Form   leads.Form
		Errors leads.ValidationErrors
		Sent   bool
	}{p, form, errs, sent})
}

// AdminLogin renders the password form.
func AdminLogin(p Page, showError bool) templ.Component {
	return render("admin_login", struct {
		Page
		ShowError bool
	}{p, showError})
}

// AdminDashboard lists leads. summary is nil when analytics is disabled.
func AdminDashboard(p Page, all []leads.Lead, summary *analytics.Summary, message string) templ.Component {
	return render("admin_dashboard", struct {
		Page
		Leads   []leads.Lead
		Summary *analytics.Summary
		Message string
	}{p, all, summary, message})
}

// NotFound renders the 404 page; p.Meta carries the kind-specific title.
func NotFound(p Page) templ.Component {
	return render("not_found", p)
}

// ServerError renders the 500 page.
func ServerError(p Page) templ.Component {
	return render("server_error", p)
}
