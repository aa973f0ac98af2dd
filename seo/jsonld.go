package seo

import (
	"encoding/json"
	"strings"

	"github.com/eringen/portaransas/content"
)

func marshalLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// WebsiteJSONLD produces a Schema.org RealEstateAgent block for the home page.
func WebsiteJSONLD(site content.Site, siteURL string) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "RealEstateAgent",
		"name":     site.Brokerage,
		"url":      siteURL,
	}
	if site.Tagline != "" {
		data["description"] = site.Tagline
	}
	if site.Phone != "" {
		data["telephone"] = site.Phone
	}
	if site.Office != "" {
		data["address"] = site.Office
	}
	return marshalLD(data)
}

// ListingJSONLD produces a Schema.org SingleFamilyResidence/Offer block.
func ListingJSONLD(site content.Site, p content.Property, pageURL string) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "SingleFamilyResidence",
		"name":        p.Name,
		"description": p.Description,
		"url":         pageURL,
		"address": map[string]string{
			"@type":           "PostalAddress",
			"streetAddress":   p.Location.Address,
			"addressLocality": p.Location.City,
			"addressRegion":   p.Location.State,
			"postalCode":      p.Location.Zip,
		},
		"numberOfRooms": p.Specs.Bedrooms,
	}
	if p.Specs.SquareFeet > 0 {
		data["floorSize"] = map[string]interface{}{
			"@type":    "QuantitativeValue",
			"value":    p.Specs.SquareFeet,
			"unitCode": "FTK",
		}
	}
	if p.Pricing.ListPrice > 0 && p.Pricing.Status != content.StatusSold {
		data["offers"] = map[string]interface{}{
			"@type":         "Offer",
			"price":         p.Pricing.ListPrice,
			"priceCurrency": "USD",
			"seller": map[string]string{
				"@type": "RealEstateAgent",
				"name":  site.Brokerage,
			},
		}
	}
	if len(p.Images) > 0 {
		data["image"] = p.Images[0].Src
	}
	return marshalLD(data)
}

// EventJSONLD produces a Schema.org Event block.
func EventJSONLD(e content.Event, pageURL string) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "Event",
		"name":        e.Title,
		"description": e.Description,
		"startDate":   e.StartDate,
		"url":         pageURL,
		"location": map[string]string{
			"@type": "Place",
			"name":  e.Venue,
		},
	}
	if e.EndDate != "" {
		data["endDate"] = e.EndDate
	}
	return marshalLD(data)
}

// PlaceJSONLD produces a Schema.org LocalBusiness (or Restaurant) block.
func PlaceJSONLD(p content.Place, pageURL string) string {
	typ := "LocalBusiness"
	if p.Category == "dining" {
		typ = "Restaurant"
	}
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       typ,
		"name":        p.Name,
		"description": p.Description,
		"url":         pageURL,
	}
	if p.Address != "" {
		data["address"] = p.Address
	}
	if p.Phone != "" {
		data["telephone"] = p.Phone
	}
	if p.PriceRange != "" {
		data["priceRange"] = p.PriceRange
	}
	if p.Hours != "" {
		data["openingHours"] = p.Hours
	}
	if len(p.Tags) > 0 {
		data["keywords"] = strings.Join(p.Tags, ", ")
	}
	return marshalLD(data)
}
