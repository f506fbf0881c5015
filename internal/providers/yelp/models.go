package yelp

import (
	"sort"
	"strings"
)

// SearchParams mirrors the business search query surface. Zero values mean
// "not set" and are omitted from the request.
type SearchParams struct {
	Location   string
	Term       string
	Categories []string
	Price      []int // 1..4
	Radius     int   // meters
	Limit      int
	SortBy     string // best_match, rating, review_count, distance
	OpenNow    bool
}

const (
	maxRadiusMeters = 40000
	maxLimit        = 50
	defaultLimit    = 10
)

// normalize clamps parameters to the ranges the API accepts instead of
// letting the request bounce with a 400.
func (p *SearchParams) normalize() {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Radius > maxRadiusMeters {
		p.Radius = maxRadiusMeters
	}
	if p.Radius < 0 {
		p.Radius = 0
	}

	var prices []int
	for _, v := range p.Price {
		if v >= 1 && v <= 4 {
			prices = append(prices, v)
		}
	}
	sort.Ints(prices)
	p.Price = prices
}

// rawBusiness is the wire shape; Business below is the token-lean view that
// actually reaches the reasoning engine.
type rawBusiness struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Rating     float64 `json:"rating"`
	ReviewCnt  int     `json:"review_count"`
	Price      string  `json:"price"`
	IsClosed   bool    `json:"is_closed"`
	URL        string  `json:"url"`
	Distance   float64 `json:"distance"`
	Categories []struct {
		Alias string `json:"alias"`
		Title string `json:"title"`
	} `json:"categories"`
	Location struct {
		DisplayAddress []string `json:"display_address"`
	} `json:"location"`
}

type rawSearchResponse struct {
	Total      int           `json:"total"`
	Businesses []rawBusiness `json:"businesses"`
}

// Business is a trimmed venue record: just the fields a recommendation
// needs, cheap to serialize into a model context.
type Business struct {
	Name        string   `json:"name"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	Price       string   `json:"price,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Address     string   `json:"address,omitempty"`
	DistanceM   int      `json:"distance_m,omitempty"`
	Open        bool     `json:"open"`
}

type SearchResult struct {
	Total      int        `json:"total"`
	Businesses []Business `json:"businesses"`
}

func (r rawSearchResponse) trim() SearchResult {
	out := SearchResult{Total: r.Total, Businesses: make([]Business, 0, len(r.Businesses))}
	for _, b := range r.Businesses {
		categories := make([]string, 0, len(b.Categories))
		for _, c := range b.Categories {
			categories = append(categories, c.Title)
		}
		out.Businesses = append(out.Businesses, Business{
			Name:        b.Name,
			Rating:      b.Rating,
			ReviewCount: b.ReviewCnt,
			Price:       b.Price,
			Categories:  categories,
			Address:     strings.Join(b.Location.DisplayAddress, ", "),
			DistanceM:   int(b.Distance),
			Open:        !b.IsClosed,
		})
	}
	return out
}
