package portaransas

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portaransas/analytics"
	"github.com/eringen/portaransas/leads"
	"github.com/eringen/portaransas/observability"
	"github.com/eringen/portaransas/seo"
	"github.com/eringen/portaransas/views"
)

func (a *App) contactPage(c echo.Context) views.Page {
	site := a.Snapshot.Site
	meta := seo.Page(site, "Contact", "Talk to a local agent at "+site.Brokerage+" about buying or renting in "+site.Name+".").
		WithURL(a.BuildURL("/contact/"))
	return a.page(c, meta)
}

func (a *App) knownProperty(slug string) bool {
	_, ok := a.Snapshot.Properties.BySlug(slug)
	return ok
}

func (a *App) handleContact(c echo.Context) error {
	form := leads.Form{Source: c.QueryParam("from")}
	if slug := c.QueryParam("property"); a.knownProperty(slug) {
		form.Property = slug
	}
	return Render(c, a.Views.Contact(a.contactPage(c), form, nil, false))
}

func (a *App) handleContactSubmit(c echo.Context) error {
	if a.Leads == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "lead capture is unavailable")
	}
	ip := c.RealIP()
	if !a.leadLimiter.Allow(ip) {
		observability.ObserveLead("limited")
		return c.String(http.StatusTooManyRequests, "Too many submissions. Please call us instead.")
	}

	var form leads.Form
	if err := c.Bind(&form); err != nil {
		observability.ObserveLead("invalid")
		return echo.ErrBadRequest
	}
	form = form.Normalize()
	if errs := leads.Validate(form, a.knownProperty); errs != nil {
		observability.ObserveLead("invalid")
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.Contact(a.contactPage(c), form, errs, false))
	}

	ctx := c.Request().Context()
	lead, err := a.Leads.Save(ctx, leads.Lead{Form: form, IPHash: a.hashIP(ip)})
	if err != nil {
		observability.ObserveLead("error")
		return err
	}
	observability.ObserveLead("saved")
	a.Log.Info().
		Str("lead", lead.ID).
		Str("property", form.Property).
		Str("source", form.Source).
		Msg("lead captured")

	if a.analytics != nil {
		path := form.Source
		if analytics.CheckPath(path) != nil {
			path = "/contact/"
		}
		a.analytics.Record(ctx, analytics.LeadSubmit, path, ip, c.Request())
	}
	return Render(c, a.Views.Contact(a.contactPage(c), form, nil, true))
}

// hashIP keeps raw client addresses out of the lead table. Without the
// analytics salt no address is stored at all.
func (a *App) hashIP(ip string) string {
	if a.analyticsStore == nil {
		return ""
	}
	return a.analyticsStore.VisitorID(ip, "lead")
}
