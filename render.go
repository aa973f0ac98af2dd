package portaransas

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/portaransas/seo"
	"github.com/eringen/portaransas/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// page builds the per-request template data around meta.
func (a *App) page(c echo.Context, meta seo.Metadata) views.Page {
	return views.Page{
		Site:             a.Snapshot.Site,
		Meta:             meta,
		SiteURL:          a.Config.URL,
		Path:             c.Request().URL.Path,
		CSRF:             CsrfToken(c),
		ChatEnabled:      a.ChatEnabled(),
		AnalyticsEnabled: a.analytics != nil,
		Year:             time.Now().Year(),
	}
}

// BuildURL joins an escaped root-relative path, as returned by Kind.Path,
// onto the configured base URL without escaping it a second time.
func (a *App) BuildURL(p string) string {
	u, err := url.Parse(a.Config.URL)
	if err != nil {
		return strings.TrimRight(a.Config.URL, "/") + p
	}
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return strings.TrimRight(a.Config.URL, "/") + p
	}
	base := strings.TrimRight(u.EscapedPath(), "/")
	u.Path = strings.TrimRight(u.Path, "/") + decoded
	u.RawPath = base + p
	return u.String()
}

func (a *App) siteNotFound() seo.Metadata {
	return seo.Metadata{Title: "Page Not Found | " + a.Snapshot.Site.Name}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		p := a.page(c, a.siteNotFound())
		p.NoIndex = true
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(p))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		p := a.page(c, seo.Metadata{Title: "Server Error | " + a.Snapshot.Site.Name})
		p.NoIndex = true
		_ = RenderStatus(c, code, a.Views.ServerError(p))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
