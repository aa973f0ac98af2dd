package content

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Site is the immutable site-wide configuration: branding, contact details
// and navigation. It is loaded with the content and passed explicitly to the
// metadata synthesizer and templates.
type Site struct {
	Name      string    `yaml:"name"`
	Brokerage string    `yaml:"brokerage"`
	Tagline   string    `yaml:"tagline"`
	Phone     string    `yaml:"phone"`
	Email     string    `yaml:"email"`
	Office    string    `yaml:"office"`
	Nav       []NavLink `yaml:"nav"`
}

// NavLink is one entry of the primary navigation.
type NavLink struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// Image is a picture attached to a listing.
type Image struct {
	Src string `yaml:"src"`
	Alt string `yaml:"alt"`
}

// Property is a listing in the brokerage catalog.
type Property struct {
	Slug        string          `yaml:"slug"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	SEOKeywords []string        `yaml:"seo_keywords"`
	Featured    bool            `yaml:"featured"`
	Location    Location        `yaml:"location"`
	Specs       Specs           `yaml:"specs"`
	Pricing     Pricing         `yaml:"pricing"`
	Features    []string        `yaml:"features"`
	Images      []Image         `yaml:"images"`
	Details     PropertyDetails `yaml:"details"`
}

type Location struct {
	Address      string  `yaml:"address"`
	City         string  `yaml:"city"`
	State        string  `yaml:"state"`
	Zip          string  `yaml:"zip"`
	Neighborhood string  `yaml:"neighborhood"`
	Lat          float64 `yaml:"lat"`
	Lng          float64 `yaml:"lng"`
}

// Line returns the one-line postal address.
func (l Location) Line() string {
	return fmt.Sprintf("%s, %s, %s %s", l.Address, l.City, l.State, l.Zip)
}

type Specs struct {
	Bedrooms   int     `yaml:"bedrooms"`
	Bathrooms  float64 `yaml:"bathrooms"`
	SquareFeet int     `yaml:"square_feet"`
	LotSize    string  `yaml:"lot_size"`
	YearBuilt  int     `yaml:"year_built"`
}

// Listing statuses.
const (
	StatusForSale = "for-sale"
	StatusPending = "pending"
	StatusSold    = "sold"
)

type Pricing struct {
	ListPrice      int64  `yaml:"list_price"`
	Status         string `yaml:"status"`
	HOAMonthly     int64  `yaml:"hoa_monthly"`
	RentalEstimate string `yaml:"rental_estimate"`
}

// Display formats the list price, e.g. "$1,250,000".
func (p Pricing) Display() string {
	if p.ListPrice <= 0 {
		return "Price on request"
	}
	return "$" + humanize.Comma(p.ListPrice)
}

type PropertyDetails struct {
	Type       string `yaml:"type"`
	View       string `yaml:"view"`
	Parking    string `yaml:"parking"`
	Waterfront bool   `yaml:"waterfront"`
	GolfCart   bool   `yaml:"golf_cart_friendly"`
}

func (p Property) EntityKey() Key      { return Key{Slug: p.Slug} }
func (p Property) DisplayName() string { return p.Name }
func (p Property) Summary() string     { return p.Description }
func (p Property) Keywords() []string  { return p.SEOKeywords }

// Activity is a "things to do" landing page.
type Activity struct {
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	SEOKeywords []string `yaml:"seo_keywords"`
	Category    string   `yaml:"category"`
	Season      string   `yaml:"season"`
	Duration    string   `yaml:"duration"`
	Highlights  []string `yaml:"highlights"`
	Tips        []string `yaml:"tips"`
}

func (a Activity) EntityKey() Key      { return Key{Slug: a.Slug} }
func (a Activity) DisplayName() string { return a.Title }
func (a Activity) Summary() string     { return a.Description }
func (a Activity) Keywords() []string  { return a.SEOKeywords }

// Event is a recurring or dated island event.
type Event struct {
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	SEOKeywords []string `yaml:"seo_keywords"`
	StartDate   string   `yaml:"start_date"`
	EndDate     string   `yaml:"end_date"`
	Venue       string   `yaml:"venue"`
	Recurrence  string   `yaml:"recurrence"`
	Website     string   `yaml:"website"`
	Highlights  []string `yaml:"highlights"`
}

// DateLayout is the layout of every date field in the content files.
const DateLayout = "2006-01-02"

// Start parses StartDate. The loader rejects unparsable dates, so the error
// only surfaces for hand-built values.
func (e Event) Start() (time.Time, error) {
	return time.Parse(DateLayout, e.StartDate)
}

func (e Event) EntityKey() Key      { return Key{Slug: e.Slug} }
func (e Event) DisplayName() string { return e.Title }
func (e Event) Summary() string     { return e.Description }
func (e Event) Keywords() []string  { return e.SEOKeywords }

// Comparison is a head-to-head "X vs Y" page.
type Comparison struct {
	Slug        string           `yaml:"slug"`
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	SEOKeywords []string         `yaml:"seo_keywords"`
	OptionA     ComparisonOption `yaml:"option_a"`
	OptionB     ComparisonOption `yaml:"option_b"`
	Rows        []ComparisonRow  `yaml:"rows"`
	Verdict     string           `yaml:"verdict"`
}

type ComparisonOption struct {
	Name    string   `yaml:"name"`
	Summary string   `yaml:"summary"`
	Pros    []string `yaml:"pros"`
	Cons    []string `yaml:"cons"`
}

type ComparisonRow struct {
	Aspect string `yaml:"aspect"`
	A      string `yaml:"a"`
	B      string `yaml:"b"`
}

func (c Comparison) EntityKey() Key      { return Key{Slug: c.Slug} }
func (c Comparison) DisplayName() string { return c.Title }
func (c Comparison) Summary() string     { return c.Description }
func (c Comparison) Keywords() []string  { return c.SEOKeywords }

// BestOfList is a ranked "best of" page. Its slug is the topic route segment.
type BestOfList struct {
	Slug        string       `yaml:"slug"`
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	SEOKeywords []string     `yaml:"seo_keywords"`
	Intro       string       `yaml:"intro"`
	Items       []RankedItem `yaml:"items"`
}

// RankedItem is one entry of a best-of list, optionally linked to a place.
type RankedItem struct {
	Name          string `yaml:"name"`
	Blurb         string `yaml:"blurb"`
	PlaceCategory string `yaml:"place_category"`
	PlaceSlug     string `yaml:"place_slug"`
}

// PlaceKey returns the linked place key, if any.
func (r RankedItem) PlaceKey() (Key, bool) {
	if r.PlaceSlug == "" {
		return Key{}, false
	}
	return Key{Category: r.PlaceCategory, Slug: r.PlaceSlug}, true
}

func (b BestOfList) EntityKey() Key      { return Key{Slug: b.Slug} }
func (b BestOfList) DisplayName() string { return b.Title }
func (b BestOfList) Summary() string     { return b.Description }
func (b BestOfList) Keywords() []string  { return b.SEOKeywords }

// MonthlyGuide describes the island in one month. Its slug is the month name.
type MonthlyGuide struct {
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	SEOKeywords []string `yaml:"seo_keywords"`
	Weather     Weather  `yaml:"weather"`
	Highlights  []string `yaml:"highlights"`
	Events      []string `yaml:"events"`
	Tips        []string `yaml:"tips"`
}

type Weather struct {
	AvgHighF   int    `yaml:"avg_high_f"`
	AvgLowF    int    `yaml:"avg_low_f"`
	WaterTempF int    `yaml:"water_temp_f"`
	Rainfall   string `yaml:"rainfall"`
}

func (m MonthlyGuide) EntityKey() Key      { return Key{Slug: m.Slug} }
func (m MonthlyGuide) DisplayName() string { return m.Title }
func (m MonthlyGuide) Summary() string     { return m.Description }
func (m MonthlyGuide) Keywords() []string  { return m.SEOKeywords }

// LifestyleScenario is a "living in Port A as ..." page.
type LifestyleScenario struct {
	Slug        string         `yaml:"slug"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	SEOKeywords []string       `yaml:"seo_keywords"`
	Persona     string         `yaml:"persona"`
	Day         []ScheduleItem `yaml:"day"`
	Properties  []string       `yaml:"properties"`
	Activities  []string       `yaml:"activities"`
}

type ScheduleItem struct {
	Time     string `yaml:"time"`
	Activity string `yaml:"activity"`
}

func (l LifestyleScenario) EntityKey() Key      { return Key{Slug: l.Slug} }
func (l LifestyleScenario) DisplayName() string { return l.Title }
func (l LifestyleScenario) Summary() string     { return l.Description }
func (l LifestyleScenario) Keywords() []string  { return l.SEOKeywords }

// Place is a directory entry, keyed by (category, slug).
type Place struct {
	Category    string   `yaml:"category"`
	Slug        string   `yaml:"slug"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	SEOKeywords []string `yaml:"seo_keywords"`
	Address     string   `yaml:"address"`
	Phone       string   `yaml:"phone"`
	Website     string   `yaml:"website"`
	Hours       string   `yaml:"hours"`
	PriceRange  string   `yaml:"price_range"`
	Tags        []string `yaml:"tags"`
}

func (p Place) EntityKey() Key      { return Key{Category: p.Category, Slug: p.Slug} }
func (p Place) DisplayName() string { return p.Name }
func (p Place) Summary() string     { return p.Description }
func (p Place) Keywords() []string  { return p.SEOKeywords }
