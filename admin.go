package portaransas

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/portaransas/analytics"
	"github.com/eringen/portaransas/leads"
	"github.com/eringen/portaransas/seo"
	"github.com/eringen/portaransas/views"
)

// summaryWindow is the period shown on the dashboard.
const summaryWindow = 30 * 24 * time.Hour

func (a *App) adminPage(c echo.Context) views.Page {
	p := a.page(c, seo.Metadata{Title: "Admin | " + a.Snapshot.Site.Name})
	p.NoIndex = true
	return p
}

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(a.adminPage(c), false))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		a.Log.Info().Str("remote", ip).Msg("admin login")
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Log.Warn().Str("remote", ip).Msg("admin login failed")
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(a.adminPage(c), true))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminDeleteLead(c echo.Context) error {
	if !IsAdmin(c) {
		return c.NoContent(http.StatusUnauthorized)
	}
	id := c.Param("id")
	if err := a.Leads.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, leads.ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	a.Log.Info().Str("lead", id).Msg("lead deleted")
	return c.NoContent(http.StatusNoContent)
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	ctx := c.Request().Context()
	all, err := a.Leads.List(ctx)
	if err != nil {
		return err
	}
	var summary *analytics.Summary
	if a.analyticsStore != nil {
		s, err := a.analyticsStore.Summarize(ctx, time.Now().Add(-summaryWindow))
		if err != nil {
			a.Log.Error().Err(err).Msg("analytics summary")
		} else {
			summary = &s
		}
	}
	return Render(c, a.Views.AdminDashboard(a.adminPage(c), all, summary, msg))
}
