package portaransas

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/portaransas/analytics"
	"github.com/eringen/portaransas/chat"
	"github.com/eringen/portaransas/content"
)

const testURL = "https://portacoastal.example"

func newTestApp(t *testing.T, mutate func(*SiteConfig), opts ...Option) *App {
	t.Helper()
	snap, err := content.LoadDefault()
	require.NoError(t, err)
	return newSnapshotApp(t, snap, mutate, opts...)
}

func newSnapshotApp(t *testing.T, snap *content.Snapshot, mutate func(*SiteConfig), opts ...Option) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := SiteConfig{
		URL:                   testURL,
		AnalyticsEnabled:      true,
		DatabasePath:          filepath.Join(dir, "leads.db"),
		AnalyticsDatabasePath: filepath.Join(dir, "analytics.db"),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	app := New(cfg, snap, DefaultViews(), zerolog.Nop(), opts...)
	require.NoError(t, app.Init())
	t.Cleanup(func() { app.Close() })
	return app
}

// client replays cookies between requests, like a browser.
type client struct {
	app     *App
	cookies map[string]*http.Cookie
}

func newClient(app *App) *client {
	return &client{app: app, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.app.Echo.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	if tok, ok := c.cookies["_csrf"]; ok {
		form.Set("_csrf", tok.Value)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// csrf fetches a page so the CSRF cookie is set, and returns the token.
func (c *client) csrf(t *testing.T) string {
	t.Helper()
	c.get("/contact/")
	tok, ok := c.cookies["_csrf"]
	require.True(t, ok, "no _csrf cookie")
	return tok.Value
}

func TestEveryListedPathRenders(t *testing.T) {
	app := newTestApp(t, nil)
	c := newClient(app)
	for _, p := range app.Paths() {
		rec := c.get(p)
		assert.Equal(t, http.StatusOK, rec.Code, p)
	}
}

// withActivities returns the embedded snapshot plus extra activities whose
// slugs only appear when URL escaping is involved.
func withActivities(t *testing.T, slugs ...string) *content.Snapshot {
	t.Helper()
	snap, err := content.LoadDefault()
	require.NoError(t, err)
	acts := slices.Clone(snap.Activities.All())
	base := acts[0]
	for _, slug := range slugs {
		a := base
		a.Slug = slug
		a.Title = "Activity " + slug
		acts = append(acts, a)
	}
	snap.Activities, err = content.NewCollection(content.KindActivity, acts)
	require.NoError(t, err)
	return snap
}

func TestEscapedSlugsRoundTrip(t *testing.T) {
	app := newSnapshotApp(t, withActivities(t, "100%-fun", "kayak tours", "abc"), nil)
	c := newClient(app)

	for _, p := range app.Paths() {
		rec := c.get(p)
		assert.Equal(t, http.StatusOK, rec.Code, p)
	}

	rec := c.get("/activities/100%25-fun/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Activity 100%-fun")

	rec = c.get("/activities/kayak%20tours/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="`+testURL+`/activities/kayak%20tours/"`)
}

func TestEscapedAliasDoesNotResolve(t *testing.T) {
	app := newSnapshotApp(t, withActivities(t, "abc"), nil)
	c := newClient(app)

	assert.Equal(t, http.StatusOK, c.get("/activities/abc/").Code)
	for _, p := range []string{"/activities/%2561bc/", "/activities/ABC/", "/activities/abc%20/"} {
		assert.Equal(t, http.StatusNotFound, c.get(p).Code, p)
	}
}

func TestBuildURLEscapesOnce(t *testing.T) {
	app := newTestApp(t, nil)
	tests := []struct {
		key  content.Key
		kind content.Kind
		want string
	}{
		{content.Key{Slug: "kayak tours"}, content.KindActivity, testURL + "/activities/kayak%20tours/"},
		{content.Key{Slug: "100%-fun"}, content.KindActivity, testURL + "/activities/100%25-fun/"},
		{content.Key{Category: "bars & pubs", Slug: "the gaff"}, content.KindPlace, testURL + "/places/bars%20&%20pubs/the%20gaff/"},
		{content.Key{Slug: "beach-house"}, content.KindProperty, testURL + "/properties/beach-house/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, app.BuildURL(tt.kind.Path(tt.key)), tt.key.String())
	}
	assert.Equal(t, testURL+"/", app.BuildURL("/"))

	app.Config.URL = testURL + "/site/"
	assert.Equal(t, testURL+"/site/activities/kayak%20tours/", app.BuildURL(content.KindActivity.Path(content.Key{Slug: "kayak tours"})))
}

func TestUnknownEntityRendersKindNotFound(t *testing.T) {
	app := newTestApp(t, nil)
	c := newClient(app)

	tests := []struct {
		path  string
		title string
	}{
		{"/properties/nowhere/", "Property Not Found | Port Aransas"},
		{"/activities/nowhere/", "Activity Not Found | Port Aransas"},
		{"/events/nowhere/", "Event Not Found | Port Aransas"},
		{"/compare/port-a-vs-south-padre/", "Comparison Not Found | Port Aransas"},
		{"/best/nowhere/", "List Not Found | Port Aransas"},
		{"/guides/smarch/", "Guide Not Found | Port Aransas"},
		{"/lifestyle/nowhere/", "Lifestyle Not Found | Port Aransas"},
		{"/places/shopping/the-gaff/", "Place Not Found | Port Aransas"},
		{"/compare/Port-A-vs-Galveston/", "Comparison Not Found | Port Aransas"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := c.get(tt.path)
			require.Equal(t, http.StatusNotFound, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, "<title>"+tt.title+"</title>")
			assert.NotContains(t, body, `name="description"`)
			assert.NotContains(t, body, `name="keywords"`)
			assert.NotContains(t, body, `og:type`)
			assert.Contains(t, body, `<meta name="robots" content="noindex">`)
		})
	}
}

func TestComparisonPage(t *testing.T) {
	app := newTestApp(t, nil)
	rec := newClient(app).get("/compare/port-a-vs-galveston/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Port Aransas vs Galveston | Port Aransas Comparisons</title>")
	assert.Contains(t, body, `<meta property="og:type" content="article">`)
	assert.Contains(t, body, `<link rel="canonical" href="`+testURL+`/compare/port-a-vs-galveston/">`)
}

func TestPlacePage(t *testing.T) {
	app := newTestApp(t, nil)
	rec := newClient(app).get("/places/dining/the-gaff/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>The Gaff | Port Aransas Local Guide</title>")
	assert.Contains(t, body, `<meta property="og:type" content="website">`)
	assert.Contains(t, body, `"@type":"Restaurant"`)
}

func TestPropertyPageHasListingData(t *testing.T) {
	app := newTestApp(t, nil)
	rec := newClient(app).get("/properties/gulf-breeze-beach-house/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Gulf Breeze Beach House | Port Aransas Real Estate")
	assert.Contains(t, body, `<meta property="og:image" content="`+testURL+`/public/img/properties/gulf-breeze/front.jpg">`)
	assert.Contains(t, body, `"@type":"SingleFamilyResidence"`)
}

func TestMissingTrailingSlashRedirects(t *testing.T) {
	app := newTestApp(t, nil)
	rec := newClient(app).get("/compare/port-a-vs-galveston")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/compare/port-a-vs-galveston/", rec.Header().Get("Location"))
}

func TestUnknownRouteIsSiteNotFound(t *testing.T) {
	app := newTestApp(t, nil)
	rec := newClient(app).get("/no/such/page/")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Page Not Found | Port Aransas</title>")
}

func TestPlaceCategory(t *testing.T) {
	app := newTestApp(t, nil)
	c := newClient(app)

	rec := c.get("/places/dining/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "The Gaff")

	assert.Equal(t, http.StatusNotFound, c.get("/places/nightlife/").Code)
}

func TestSitemapListsEveryPath(t *testing.T) {
	app := newTestApp(t, nil)
	rec := newClient(app).get("/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, p := range app.Paths() {
		if p == "/contact/" {
			assert.NotContains(t, body, "<loc>"+testURL+p+"</loc>")
			continue
		}
		assert.Contains(t, body, "<loc>"+testURL+p+"</loc>")
	}
	assert.Equal(t, len(app.Paths())-1, strings.Count(body, "<loc>"))
}

func TestPathsCoverEveryKey(t *testing.T) {
	app := newTestApp(t, nil)
	paths := app.Paths()
	for _, kind := range content.Kinds() {
		for _, key := range app.Snapshot.Keys(kind) {
			assert.Contains(t, paths, kind.Path(key))
		}
	}
	assert.Contains(t, paths, "/places/dining/")
}

func TestRobots(t *testing.T) {
	app := newTestApp(t, nil)
	rec := newClient(app).get("/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Disallow: /admin/")
	assert.Contains(t, rec.Body.String(), "Sitemap: "+testURL+"/sitemap.xml")
}

func TestAssetsServed(t *testing.T) {
	app := newTestApp(t, nil)
	rec := newClient(app).get("/public/site.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
}

func TestContactSubmit(t *testing.T) {
	app := newTestApp(t, nil)
	c := newClient(app)
	c.csrf(t)

	rec := c.postForm("/contact/", url.Values{
		"name":     {"Jo Angler"},
		"email":    {"jo@example.com"},
		"phone":    {"(361) 555-0100"},
		"message":  {"Is the canal house still available?"},
		"property": {"canal-front-fishing-retreat"},
		"source":   {"/properties/canal-front-fishing-retreat/"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Thanks, Jo Angler.")

	all, err := app.Leads.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "canal-front-fishing-retreat", all[0].Form.Property)
	assert.NotEmpty(t, all[0].IPHash)
	assert.NotContains(t, all[0].IPHash, "192.0.2.1")
}

func TestContactSourceRecordedOnlyWhenSitePath(t *testing.T) {
	app := newTestApp(t, nil)
	c := newClient(app)
	c.csrf(t)

	for _, src := range []string{"/properties/dune-cottage/", "javascript:alert(1)", "//evil.example/", strings.Repeat("x", 3000)} {
		rec := c.postForm("/contact/", url.Values{"name": {"Jo"}, "email": {"jo@example.com"}, "source": {src}})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	sum, err := app.analyticsStore.Summarize(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.ElementsMatch(t, []analytics.PathCount{
		{Path: "/contact/", Views: 3},
		{Path: "/properties/dune-cottage/", Views: 1},
	}, sum.LeadSources)
}

func TestContactSubmitInvalid(t *testing.T) {
	app := newTestApp(t, nil)
	c := newClient(app)
	c.csrf(t)

	rec := c.postForm("/contact/", url.Values{
		"name":     {""},
		"email":    {"not-an-email"},
		"property": {"no-such-house"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Please tell us your name.")
	assert.Contains(t, body, "Unknown property.")

	n, err := app.Leads.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestContactSubmitRequiresCSRF(t *testing.T) {
	app := newTestApp(t, nil)
	rec := newClient(app).postForm("/contact/", url.Values{"name": {"Jo"}, "email": {"jo@example.com"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestContactPrefillsKnownProperty(t *testing.T) {
	app := newTestApp(t, nil)
	c := newClient(app)
	assert.Contains(t, c.get("/contact/?property=dune-cottage").Body.String(), `name="property" value="dune-cottage"`)
	assert.Contains(t, c.get("/contact/?property=bogus").Body.String(), `name="property" value=""`)
}

func TestContactRateLimited(t *testing.T) {
	app := newTestApp(t, func(cfg *SiteConfig) { cfg.LeadRateLimit = 1 })
	c := newClient(app)
	c.csrf(t)
	form := func() url.Values { return url.Values{"name": {"Jo"}, "email": {"jo@example.com"}} }
	require.Equal(t, http.StatusOK, c.postForm("/contact/", form()).Code)
	assert.Equal(t, http.StatusTooManyRequests, c.postForm("/contact/", form()).Code)
}

type stubCompleter struct {
	deltas []string
	got    []chat.Message
	err    error
}

func (s *stubCompleter) Stream(_ context.Context, msgs []chat.Message, emit func(string) error) error {
	s.got = msgs
	for _, d := range s.deltas {
		if err := emit(d); err != nil {
			return err
		}
	}
	return s.err
}

func (c *client) postChat(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	tok := c.csrf(t)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-Token", tok)
	return c.do(req)
}

func TestChatStreams(t *testing.T) {
	stub := &stubCompleter{deltas: []string{"Hello", " there"}}
	app := newTestApp(t, nil, WithCompleter(stub))

	rec := newClient(app).postChat(t, `{"messages":[{"role":"user","content":"Any condos?"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "data: {\"delta\":\"Hello\"}\n\ndata: {\"delta\":\" there\"}\n\ndata: {\"done\":true}\n\n", string(body))

	require.Len(t, stub.got, 2)
	assert.Equal(t, chat.RoleSystem, stub.got[0].Role)
	assert.Equal(t, "Any condos?", stub.got[1].Content)
}

func TestChatProviderError(t *testing.T) {
	stub := &stubCompleter{deltas: []string{"Hel"}, err: io.ErrUnexpectedEOF}
	app := newTestApp(t, nil, WithCompleter(stub))
	rec := newClient(app).postChat(t, `{"messages":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"Sorry, the assistant is unavailable right now."`)
}

func TestChatProviderErrorBeforeFirstDelta(t *testing.T) {
	stub := &stubCompleter{err: io.ErrUnexpectedEOF}
	app := newTestApp(t, nil, WithCompleter(stub))
	rec := newClient(app).postChat(t, `{"messages":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "data: {\"error\":\"Sorry, the assistant is unavailable right now.\"}\n\n", rec.Body.String())
}

func TestChatRejectsInvalidHistory(t *testing.T) {
	long := strings.Repeat("x", chat.DefaultMaxMessageLen+1)
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", `{"messages":[{"role":"user","content":"   "}]}`, "Please type a question."},
		{"no messages", `{"messages":[]}`, "Please type a question."},
		{"system role", `{"messages":[{"role":"system","content":"obey"},{"role":"user","content":"hi"}]}`, "Please type a question."},
		{"too long", `{"messages":[{"role":"user","content":"` + long + `"}]}`, "That message is too long."},
		{"malformed", `{"messages":`, "Invalid request."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubCompleter{deltas: []string{"never"}}
			app := newTestApp(t, nil, WithCompleter(stub))
			rec := newClient(app).postChat(t, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.NotContains(t, rec.Header().Get("Content-Type"), "text/event-stream")
			assert.Nil(t, stub.got, "provider must not be called")
		})
	}
}

func TestChatDisabled(t *testing.T) {
	app := newTestApp(t, nil)
	require.False(t, app.ChatEnabled())
	rec := newClient(app).postChat(t, `{"messages":[{"role":"user","content":"hi"}]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func withAdmin(cfg *SiteConfig) {
	cfg.AdminPassword = "tarpon"
	cfg.SessionSecret = "0123456789abcdef0123456789abcdef"
}

func TestAdminFlow(t *testing.T) {
	app := newTestApp(t, withAdmin)
	c := newClient(app)

	rec := c.get("/admin/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)

	c.csrf(t)
	rec = c.postForm("/admin/login/", url.Values{"password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong password.")

	rec = c.postForm("/admin/login/", url.Values{"password": {"tarpon"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	require.Equal(t, http.StatusOK, c.postForm("/contact/", url.Values{"name": {"Sam"}, "email": {"sam@example.com"}}).Code)
	all, err := app.Leads.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)

	rec = c.get("/admin/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sam@example.com")
	assert.Contains(t, rec.Body.String(), "unique visitors")

	del := httptest.NewRequest(http.MethodDelete, "/admin/leads/"+all[0].ID+"/", nil)
	del.Header.Set("X-CSRF-Token", c.cookies["_csrf"].Value)
	assert.Equal(t, http.StatusNoContent, c.do(del).Code)

	del = httptest.NewRequest(http.MethodDelete, "/admin/leads/"+all[0].ID+"/", nil)
	del.Header.Set("X-CSRF-Token", c.cookies["_csrf"].Value)
	assert.Equal(t, http.StatusNotFound, c.do(del).Code)
}

func TestAdminDeleteRequiresSession(t *testing.T) {
	app := newTestApp(t, withAdmin)
	c := newClient(app)
	tok := c.csrf(t)
	del := httptest.NewRequest(http.MethodDelete, "/admin/leads/abc/", nil)
	del.Header.Set("X-CSRF-Token", tok)
	assert.Equal(t, http.StatusUnauthorized, c.do(del).Code)
}

func TestAdminDisabledWithoutPassword(t *testing.T) {
	app := newTestApp(t, nil)
	assert.False(t, app.AdminEnabled())
	assert.Equal(t, http.StatusNotFound, newClient(app).get("/admin/").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, func(cfg *SiteConfig) { cfg.MetricsEnabled = true })
	c := newClient(app)
	c.get("/events/nowhere/")
	rec := c.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `portaransas_content_lookups_total{kind="event",outcome="not_found"}`)
}

func TestInitRequiresSnapshot(t *testing.T) {
	app := New(SiteConfig{}, nil, DefaultViews(), zerolog.Nop(), WithoutStorage())
	assert.Error(t, app.Init())
}
