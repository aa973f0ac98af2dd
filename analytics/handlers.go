package analytics

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Limiter decides whether a request keyed by client IP may proceed.
type Limiter interface {
	Allow(key string) bool
}

// Handler serves the collect beacon and records server-side events.
type Handler struct {
	store   *Store
	limiter Limiter
	log     zerolog.Logger
}

// NewHandler creates a handler. limiter may be nil to disable rate limiting.
func NewHandler(store *Store, limiter Limiter, logger zerolog.Logger) *Handler {
	return &Handler{store: store, limiter: limiter, log: logger}
}

// CollectRequest is the body accepted by the collect endpoint.
type CollectRequest struct {
	Event     string `json:"event"`
	Path      string `json:"path"`
	Referrer  string `json:"referrer"`
	UserAgent string `json:"user_agent"`
}

const (
	maxPathLen      = 2048
	maxReferrerLen  = 2048
	maxUserAgentLen = 512
)

// CheckPath reports whether p may be recorded as an event path: it must be
// site-relative and at most maxPathLen bytes.
func CheckPath(p string) error {
	if p == "" || p[0] != '/' || strings.HasPrefix(p, "//") {
		return fmt.Errorf("path must start with /")
	}
	if len(p) > maxPathLen {
		return fmt.Errorf("path exceeds maximum length of %d", maxPathLen)
	}
	return nil
}

func validateCollectRequest(req *CollectRequest) error {
	if req.Event == "" {
		req.Event = PageView
	}
	if !ValidName(req.Event) {
		return fmt.Errorf("unknown event %q", req.Event)
	}
	if err := CheckPath(req.Path); err != nil {
		return err
	}
	if len(req.Referrer) > maxReferrerLen {
		return fmt.Errorf("referrer exceeds maximum length of %d", maxReferrerLen)
	}
	if len(req.UserAgent) > maxUserAgentLen {
		return fmt.Errorf("user_agent exceeds maximum length of %d", maxUserAgentLen)
	}
	return nil
}

// RegisterRoutes mounts the public collect endpoint.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/analytics/collect", h.Collect)
}

// Collect handles beacons sent by the site's script.
func (h *Handler) Collect(c echo.Context) error {
	if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
		return c.NoContent(http.StatusTooManyRequests)
	}
	if c.Request().Header.Get("DNT") == "1" {
		return c.NoContent(http.StatusNoContent)
	}

	var req CollectRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}
	if err := validateCollectRequest(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = c.Request().UserAgent()
	}
	if IsBot(userAgent) {
		return c.NoContent(http.StatusNoContent)
	}
	if err := h.store.Save(c.Request().Context(), h.event(req.Event, req.Path, req.Referrer, c.RealIP(), userAgent)); err != nil {
		h.log.Error().Err(err).Str("event", req.Event).Msg("save analytics event")
	}
	return c.NoContent(http.StatusNoContent)
}

// Record stores a server-side event for the request r, applying the same
// bot and Do-Not-Track rules as the beacon. Failures are logged, not returned.
func (h *Handler) Record(ctx context.Context, name, path, ip string, r *http.Request) {
	if r.Header.Get("DNT") == "1" || IsBot(r.UserAgent()) {
		return
	}
	if err := h.store.Save(ctx, h.event(name, path, r.Referer(), ip, r.UserAgent())); err != nil {
		h.log.Error().Err(err).Str("event", name).Msg("record analytics event")
	}
}

func (h *Handler) event(name, path, referrer, ip, userAgent string) Event {
	browser, os, device := ParseUserAgent(userAgent)
	return Event{
		Name:      name,
		Path:      path,
		Referrer:  CleanReferrer(referrer),
		VisitorID: h.store.VisitorID(ip, userAgent),
		Browser:   browser,
		OS:        os,
		Device:    device,
		Timestamp: time.Now().UTC(),
	}
}
