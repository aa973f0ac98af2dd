package portaransas

import (
	"encoding/xml"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// Paths lists every public page path: the fixed pages, each place
// category directory and every entity key of every kind. Export and the
// sitemap both use it, so neither can drift from the resolver.
func (a *App) Paths() []string {
	paths := []string{"/", "/properties/", "/contact/"}
	for _, cat := range a.Snapshot.PlaceCategories() {
		paths = append(paths, "/places/"+url.PathEscape(cat)+"/")
	}
	return append(paths, a.Snapshot.EntityPaths()...)
}

func (a *App) handleSitemap(c echo.Context) error {
	paths := a.Paths()
	urls := make([]sitemapURL, 0, len(paths))
	for _, p := range paths {
		if p == "/contact/" {
			continue
		}
		urls = append(urls, sitemapURL{Loc: a.BuildURL(p)})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Disallow: /admin/\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("\nSitemap: " + a.BuildURL("/sitemap.xml") + "\n")
	return c.String(http.StatusOK, b.String())
}
