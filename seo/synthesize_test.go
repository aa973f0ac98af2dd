package seo

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/portaransas/content"
)

var site = content.Site{Name: "Port Aransas", Brokerage: "Mustang Island Coastal Realty"}

var galveston = content.Comparison{
	Slug:        "port-a-vs-galveston",
	Title:       "Port Aransas vs Galveston",
	Description: "Two Texas islands side by side.",
	SEOKeywords: []string{"port aransas vs galveston", "texas beach towns"},
	OptionA:     content.ComparisonOption{Name: "Port Aransas"},
	OptionB:     content.ComparisonOption{Name: "Galveston"},
}

func TestNotFoundTitles(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Za-z]+ Not Found \| Port Aransas$`)
	want := map[content.Kind]string{
		content.KindProperty:     "Property Not Found | Port Aransas",
		content.KindActivity:     "Activity Not Found | Port Aransas",
		content.KindEvent:        "Event Not Found | Port Aransas",
		content.KindComparison:   "Comparison Not Found | Port Aransas",
		content.KindBestOf:       "List Not Found | Port Aransas",
		content.KindMonthlyGuide: "Guide Not Found | Port Aransas",
		content.KindLifestyle:    "Lifestyle Not Found | Port Aransas",
		content.KindPlace:        "Place Not Found | Port Aransas",
	}
	for _, kind := range content.Kinds() {
		m := Synthesize(site, kind, nil)
		assert.Regexp(t, pattern, m.Title)
		if diff := cmp.Diff(Metadata{Title: want[kind]}, m); diff != "" {
			t.Errorf("%s not-found metadata mismatch (-want +got):\n%s", kind, diff)
		}
		assert.False(t, m.Found())
	}
}

func TestForAbsentMatchesNotFound(t *testing.T) {
	var zero content.Place
	got := For(site, content.KindPlace, zero, false)
	assert.Equal(t, NotFound(site, content.KindPlace), got)
	assert.Empty(t, got.Description)
	assert.Nil(t, got.Keywords)
	assert.Nil(t, got.OpenGraph)
}

func TestSynthesizeComparison(t *testing.T) {
	got := For(site, content.KindComparison, galveston, true)
	want := Metadata{
		Title:       "Port Aransas vs Galveston | Port Aransas Comparisons",
		Description: "Two Texas islands side by side.",
		Keywords:    []string{"port aransas vs galveston", "texas beach towns"},
		OpenGraph: &OpenGraph{
			Title:       "Port Aransas vs Galveston | Port Aransas Comparisons",
			Description: "Two Texas islands side by side.",
			Type:        TypeArticle,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeIsPure(t *testing.T) {
	copyOf := galveston
	copyOf.SEOKeywords = append([]string(nil), galveston.SEOKeywords...)

	first := Synthesize(site, content.KindComparison, galveston)
	second := Synthesize(site, content.KindComparison, copyOf)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("equal inputs gave different metadata:\n%s", diff)
	}

	// The record does not alias the entity's keyword slice.
	first.Keywords[0] = "mutated"
	assert.Equal(t, "port aransas vs galveston", galveston.SEOKeywords[0])
}

func TestOpenGraphTypePerKind(t *testing.T) {
	entities := map[content.Kind]content.Entity{
		content.KindProperty:     content.Property{Slug: "p", Name: "Beach House", Description: "d"},
		content.KindActivity:     content.Activity{Slug: "a", Title: "Fishing", Description: "d"},
		content.KindEvent:        content.Event{Slug: "e", Title: "SandFest", Description: "d"},
		content.KindComparison:   galveston,
		content.KindBestOf:       content.BestOfList{Slug: "b", Title: "Best Beaches", Description: "d"},
		content.KindMonthlyGuide: content.MonthlyGuide{Slug: "july", Title: "July", Description: "d"},
		content.KindLifestyle:    content.LifestyleScenario{Slug: "l", Title: "Retire", Description: "d"},
		content.KindPlace:        content.Place{Category: "dining", Slug: "the-gaff", Name: "The Gaff", Description: "d"},
	}
	wantType := map[content.Kind]string{
		content.KindProperty:     TypeWebsite,
		content.KindActivity:     TypeWebsite,
		content.KindPlace:        TypeWebsite,
		content.KindEvent:        TypeArticle,
		content.KindComparison:   TypeArticle,
		content.KindMonthlyGuide: TypeArticle,
		content.KindLifestyle:    TypeArticle,
		content.KindBestOf:       TypeArticle,
	}
	wantTitle := map[content.Kind]string{
		content.KindProperty:     "Beach House | Port Aransas Real Estate",
		content.KindActivity:     "Fishing | Port Aransas Activities",
		content.KindEvent:        "SandFest | Port Aransas Events",
		content.KindComparison:   "Port Aransas vs Galveston | Port Aransas Comparisons",
		content.KindBestOf:       "Best Beaches | Best of Port Aransas",
		content.KindMonthlyGuide: "July | Port Aransas Monthly Guide",
		content.KindLifestyle:    "Retire | Port Aransas Lifestyle",
		content.KindPlace:        "The Gaff | Port Aransas Local Guide",
	}
	for _, kind := range content.Kinds() {
		m := Synthesize(site, kind, entities[kind])
		require.NotNil(t, m.OpenGraph, kind.String())
		assert.Equal(t, wantType[kind], m.OpenGraph.Type, kind.String())
		assert.Equal(t, wantTitle[kind], m.Title, kind.String())
		assert.Equal(t, m.Title, m.OpenGraph.Title)
	}
}

func TestWithURL(t *testing.T) {
	m := Synthesize(site, content.KindComparison, galveston).WithURL("https://example.com/compare/port-a-vs-galveston/")
	assert.Equal(t, "https://example.com/compare/port-a-vs-galveston/", m.Canonical)
	assert.Equal(t, m.Canonical, m.OpenGraph.URL)

	nf := NotFound(site, content.KindComparison).WithURL("https://example.com/x/")
	assert.Equal(t, NotFound(site, content.KindComparison), nf)
}

func TestWithURLDoesNotShareOpenGraph(t *testing.T) {
	base := Synthesize(site, content.KindComparison, galveston)
	_ = base.WithURL("https://example.com/a/").WithImage("/img.jpg")
	assert.Empty(t, base.OpenGraph.URL)
	assert.Empty(t, base.OpenGraph.Image)
}

func TestPage(t *testing.T) {
	m := Page(site, "Properties", "Homes for sale.")
	assert.Equal(t, "Properties | Port Aransas", m.Title)
	assert.Equal(t, TypeWebsite, m.OpenGraph.Type)
	assert.Equal(t, "Port Aransas", Page(site, "", "").Title)
}

func TestListingJSONLD(t *testing.T) {
	p := content.Property{
		Slug:        "dune-cottage",
		Name:        "Dune Cottage",
		Description: "Cozy.",
		Location:    content.Location{Address: "57 Seagrass Ln", City: "Port Aransas", State: "TX", Zip: "78373"},
		Specs:       content.Specs{Bedrooms: 1, SquareFeet: 640},
		Pricing:     content.Pricing{ListPrice: 315000, Status: content.StatusForSale},
	}
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(ListingJSONLD(site, p, "https://example.com/properties/dune-cottage/")), &data))
	assert.Equal(t, "SingleFamilyResidence", data["@type"])
	offers, ok := data["offers"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(315000), offers["price"])

	p.Pricing.Status = content.StatusSold
	data = nil
	require.NoError(t, json.Unmarshal([]byte(ListingJSONLD(site, p, "")), &data))
	assert.NotContains(t, data, "offers")
}

func TestPlaceJSONLD(t *testing.T) {
	var data map[string]interface{}
	p := content.Place{Category: "dining", Slug: "the-gaff", Name: "The Gaff", Description: "Bar.", Tags: []string{"bar", "pizza"}}
	require.NoError(t, json.Unmarshal([]byte(PlaceJSONLD(p, "u")), &data))
	assert.Equal(t, "Restaurant", data["@type"])
	assert.Equal(t, "bar, pizza", data["keywords"])
}
