// Package analytics provides privacy-first event collection for the site:
// page views, lead submissions and chat usage are stored without raw IPs,
// bots are dropped and Do-Not-Track is honoured.
package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"slices"
	"strings"
	"time"
)

// Event names accepted by the collector.
const (
	PageView        = "page_view"
	LeadSubmit      = "lead_submit"
	ChatOpen        = "chat_open"
	ChatMessage     = "chat_message"
	PropertyGallery = "property_gallery"
	PhoneClick      = "phone_click"
)

var eventNames = []string{PageView, LeadSubmit, ChatOpen, ChatMessage, PropertyGallery, PhoneClick}

// EventNames returns every accepted event name in display order.
func EventNames() []string { return slices.Clone(eventNames) }

// ValidName reports whether name is an accepted event name.
func ValidName(name string) bool { return slices.Contains(eventNames, name) }

// Event is a single recorded interaction.
type Event struct {
	ID        int64     `json:"-"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Referrer  string    `json:"referrer"`
	VisitorID string    `json:"visitor_id"` // salted hash of IP and user agent
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Device    string    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}

// EventCount is the number of events with one name.
type EventCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PathCount is the number of page views for one path.
type PathCount struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

func newSalt() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hash(salt string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(salt + strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ParseUserAgent extracts browser, OS, and device from a User-Agent string.
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)

	// more specific patterns first: Edge and Opera UAs also contain "chrome"
	switch {
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr"):
		browser = "Opera"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Other"
	}

	// Android before Linux
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	default:
		os = "Other"
	}

	// iPad UAs contain "mobile"
	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		device = "Tablet"
	case strings.Contains(ua, "mobile"):
		device = "Mobile"
	default:
		device = "Desktop"
	}
	return
}

var botMarkers = []string{
	"bot", "crawler", "spider", "crawl", "slurp", "scrape",
	"yandex", "baidu", "facebookexternalhit", "headlesschrome",
}

// IsBot checks if the User-Agent is likely a bot or crawler.
func IsBot(ua string) bool {
	ua = strings.ToLower(ua)
	for _, bot := range botMarkers {
		if strings.Contains(ua, bot) {
			return true
		}
	}
	return false
}

var referrerDomainRegex = regexp.MustCompile(`^https?://(?:www\.)?([^/:]+)`)

// CleanReferrer reduces a referrer URL to a source label.
func CleanReferrer(ref string) string {
	if ref == "" {
		return "Direct"
	}
	lower := strings.ToLower(ref)
	for _, engine := range []struct{ marker, name string }{
		{"google.", "Google"},
		{"bing.", "Bing"},
		{"duckduckgo.", "DuckDuckGo"},
		{"facebook.", "Facebook"},
		{"zillow.", "Zillow"},
		{"realtor.", "Realtor.com"},
	} {
		if strings.Contains(lower, engine.marker) {
			return engine.name
		}
	}
	if m := referrerDomainRegex.FindStringSubmatch(ref); len(m) > 1 {
		return m[1]
	}
	return "Other"
}
