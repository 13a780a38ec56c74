// Package seo builds the public metadata served alongside the pages:
// JSON-LD documents, robots.txt and sitemap.xml.
package seo

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html/template"
	"strings"
	"time"

	"coinhub/internal/domain"
)

const (
	SiteName       = "CoinHub"
	DefaultSiteURL = "http://localhost:8080"

	// SitemapCoinLimit is how many top coins get a sitemap entry.
	SitemapCoinLimit = 100

	schemaContext = "https://schema.org"
)

// Document is a JSON-LD object.
type Document map[string]any

// SiteURL trims whitespace and a single trailing slash, falling back to the
// local default when raw is empty.
func SiteURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSiteURL
	}
	return strings.TrimSuffix(raw, "/")
}

func WebSite(siteURL string) Document {
	return Document{
		"@context": schemaContext,
		"@type":    "WebSite",
		"name":     SiteName,
		"url":      siteURL,
		"potentialAction": Document{
			"@type":       "SearchAction",
			"target":      siteURL + "/coins?search={search_term_string}",
			"query-input": "required name=search_term_string",
		},
	}
}

func WebPage(siteURL, path, name, description string) Document {
	return Document{
		"@context":    schemaContext,
		"@type":       "WebPage",
		"name":        name,
		"description": description,
		"url":         siteURL + path,
		"isPartOf": Document{
			"@type": "WebSite",
			"name":  SiteName,
			"url":   siteURL,
		},
	}
}

// FinancialProduct describes a single coin page.
func FinancialProduct(siteURL string, coin *domain.CoinDetails) Document {
	doc := Document{
		"@context":     schemaContext,
		"@type":        "FinancialProduct",
		"name":         coin.Name,
		"tickerSymbol": strings.ToUpper(coin.Symbol),
		"identifier":   coin.ID,
		"offers": Document{
			"@type":         "Offer",
			"priceCurrency": "USD",
			"price":         coin.MarketData.CurrentPrice.USD(),
		},
		"additionalProperty": []Document{{
			"@type": "PropertyValue",
			"name":  "Market Cap",
			"value": coin.MarketData.MarketCap.USD(),
		}},
		"mainEntityOfPage": siteURL + "/coins/" + coin.ID,
	}
	if coin.Image.Large != "" {
		doc["image"] = coin.Image.Large
	}
	return doc
}

// Script renders a document for a <script type="application/ld+json"> tag.
func Script(doc Document) (template.JS, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal json-ld: %w", err)
	}
	return template.JS(raw), nil
}

// Robots returns the robots.txt body. API routes are never crawled.
func Robots(siteURL string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("\n")
	b.WriteString("Sitemap: " + siteURL + "/sitemap.xml\n")
	return b.String()
}

type URL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// SitemapEntries lists the static routes followed by one entry per coin.
// A nil coins slice yields the static routes only.
func SitemapEntries(siteURL string, coins []domain.MarketCoin, now time.Time) []URL {
	lastMod := now.UTC().Format(time.RFC3339)
	entries := []URL{
		{Loc: siteURL + "/", LastMod: lastMod, ChangeFreq: "daily", Priority: 1},
		{Loc: siteURL + "/coins", LastMod: lastMod, ChangeFreq: "daily", Priority: 0.9},
		{Loc: siteURL + "/predictions", LastMod: lastMod, ChangeFreq: "daily", Priority: 0.8},
	}
	for i, coin := range coins {
		if i == SitemapCoinLimit {
			break
		}
		if !domain.ValidCoinID(coin.ID) {
			continue
		}
		entries = append(entries, URL{
			Loc:        siteURL + "/coins/" + coin.ID,
			LastMod:    lastMod,
			ChangeFreq: "hourly",
			Priority:   0.7,
		})
	}
	return entries
}

func Sitemap(entries []URL) ([]byte, error) {
	body, err := xml.MarshalIndent(URLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  entries,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
