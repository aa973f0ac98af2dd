// Package portaransas serves the marketing site of a coastal real estate
// brokerage: SEO landing pages resolved from an immutable content snapshot,
// a property catalog, lead capture, an AI chat assistant, analytics and an
// admin dashboard, plus static export of every content page.
//
// Templates are provided through ViewFuncs; DefaultViews wires the bundled
// ones from the views package.
package portaransas

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/eringen/portaransas/analytics"
	"github.com/eringen/portaransas/chat"
	"github.com/eringen/portaransas/content"
	"github.com/eringen/portaransas/leads"
	"github.com/eringen/portaransas/observability"
	"github.com/eringen/portaransas/views"
)

// ViewFuncs holds the templ components the handlers render.
type ViewFuncs struct {
	Home           func(p views.Page, featured []content.Property, events []content.Event, activities []content.Activity) templ.Component
	Properties     func(p views.Page, props []content.Property) templ.Component
	Property       func(p views.Page, prop content.Property) templ.Component
	Activity       func(p views.Page, a content.Activity) templ.Component
	Event          func(p views.Page, e content.Event) templ.Component
	Comparison     func(p views.Page, c content.Comparison) templ.Component
	BestOf         func(p views.Page, l content.BestOfList) templ.Component
	Guide          func(p views.Page, m content.MonthlyGuide, events []content.Event) templ.Component
	Lifestyle      func(p views.Page, s content.LifestyleScenario, props []content.Property, acts []content.Activity) templ.Component
	PlaceCategory  func(p views.Page, category string, places []content.Place) templ.Component
	Place          func(p views.Page, pl content.Place) templ.Component
	Contact        func(p views.Page, form leads.Form, errs leads.ValidationErrors, sent bool) templ.Component
	AdminLogin     func(p views.Page, showError bool) templ.Component
	AdminDashboard func(p views.Page, all []leads.Lead, summary *analytics.Summary, message string) templ.Component
	NotFound       func(p views.Page) templ.Component
	ServerError    func(p views.Page) templ.Component
}

// DefaultViews returns the bundled templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:           views.Home,
		Properties:     views.Properties,
		Property:       views.Property,
		Activity:       views.Activity,
		Event:          views.Event,
		Comparison:     views.Comparison,
		BestOf:         views.BestOf,
		Guide:          views.Guide,
		Lifestyle:      views.Lifestyle,
		PlaceCategory:  views.PlaceCategory,
		Place:          views.Place,
		Contact:        views.Contact,
		AdminLogin:     views.AdminLogin,
		AdminDashboard: views.AdminDashboard,
		NotFound:       views.NotFound,
		ServerError:    views.ServerError,
	}
}

// App wires the content snapshot, stores, handlers, middleware and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Snapshot *content.Snapshot
	Views    ViewFuncs
	Leads    *leads.Store
	Log      zerolog.Logger

	analyticsStore *analytics.Store
	analytics      *analytics.Handler
	assistant      *chat.Assistant
	completer      chat.Completer
	registry       *prometheus.Registry

	loginLimiter   *IPLimiter
	leadLimiter    *IPLimiter
	chatLimiter    *IPLimiter
	collectLimiter *IPLimiter

	customRoutes []func(*App)
	staticDir    string
	noStorage    bool
	initialized  bool
	stopCleanup  func()
}

// New creates an App serving snap. Call Init (or Start) before use.
func New(cfg SiteConfig, snap *content.Snapshot, v ViewFuncs, logger zerolog.Logger, opts ...Option) *App {
	cfg.setDefaults()
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config:   cfg,
		Echo:     e,
		Snapshot: snap,
		Views:    v,
		Log:      logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AdminEnabled reports whether the admin dashboard is served.
func (a *App) AdminEnabled() bool {
	return a.Config.AdminPassword != "" && a.Leads != nil
}

// ChatEnabled reports whether the chat assistant is configured.
func (a *App) ChatEnabled() bool {
	return a.assistant != nil
}

// Init opens the stores, installs middleware and registers routes.
// It is idempotent.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Snapshot == nil {
		return errors.New("portaransas: content snapshot is required")
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}

	if !a.noStorage {
		store, err := leads.NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("portaransas: init lead store: %w", err)
		}
		a.Leads = store

		if a.Config.AnalyticsEnabled {
			as, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
			if err != nil {
				a.Close()
				return fmt.Errorf("portaransas: init analytics: %w", err)
			}
			a.analyticsStore = as
			a.collectLimiter = NewIPLimiter(60, time.Minute)
			a.analytics = analytics.NewHandler(as, a.collectLimiter, a.Log)
			a.stopCleanup = as.StartCleanupScheduler(a.Log, a.Config.AnalyticsRetention, 24*time.Hour)
		}
	}

	if a.completer == nil && a.Config.OpenAIKey != "" {
		c, err := chat.NewOpenAI(a.Config.OpenAIKey, a.Config.ChatModel, a.Config.OpenAIBaseURL)
		if err != nil {
			a.Close()
			return fmt.Errorf("portaransas: init chat: %w", err)
		}
		a.completer = c
	}
	if a.completer != nil {
		a.assistant = chat.NewAssistant(a.completer, a.Snapshot)
	}

	a.loginLimiter = NewIPLimiter(5, time.Minute)
	a.leadLimiter = NewIPLimiter(a.Config.LeadRateLimit, time.Hour)
	a.chatLimiter = NewIPLimiter(a.Config.ChatRateLimit, time.Minute)

	if a.Config.MetricsEnabled {
		a.registry = observability.InitRegistry()
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the app and serves until the server is closed.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Log.Info().
		Str("addr", a.Config.Addr).
		Str("url", a.Config.URL).
		Bool("admin", a.AdminEnabled()).
		Bool("chat", a.ChatEnabled()).
		Bool("analytics", a.analyticsStore != nil).
		Msg("listening")
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	a.mountAssets()
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	if a.registry != nil {
		e.GET("/metrics", echo.WrapHandler(observability.MetricsHandler(a.registry)))
	}

	e.GET("/", a.handleHome)
	e.GET("/properties/", a.handleProperties)
	a.contentRoutes()

	e.GET("/contact/", a.handleContact)
	e.POST("/contact/", a.handleContactSubmit)
	e.POST("/api/chat", a.handleChat)

	if a.analytics != nil {
		a.analytics.RegisterRoutes(e)
	}

	if a.AdminEnabled() {
		e.GET("/admin/", a.handleAdmin)
		e.POST("/admin/login/", a.handleAdminLogin)
		e.POST("/admin/logout/", handleAdminLogout)
		e.DELETE("/admin/leads/:id/", a.handleAdminDeleteLead)
	}
}

// Close stops background work and closes the databases.
func (a *App) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
		a.stopCleanup = nil
	}
	var errs []error
	if a.Leads != nil {
		errs = append(errs, a.Leads.Close())
		a.Leads = nil
	}
	if a.analyticsStore != nil {
		errs = append(errs, a.analyticsStore.Close())
		a.analyticsStore = nil
	}
	return errors.Join(errs...)
}
