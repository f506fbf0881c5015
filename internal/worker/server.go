package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/venuebot/internal/core"
	"github.com/sandevgo/venuebot/internal/providers/yelp"
	"github.com/sandevgo/venuebot/pkg/log"
)

// Server is the tool worker process: it owns the venue search backend and
// exposes it over stdio. Nothing but protocol frames may touch stdout, so
// all logging in this process goes to stderr.
type Server struct {
	venues *yelp.Client
	mcp    *server.MCPServer
}

func NewServer(venues *yelp.Client) *Server {
	s := &Server{venues: venues}

	s.mcp = server.NewMCPServer(core.AppName+"-worker", core.AppVersion,
		server.WithToolCapabilities(false),
	)
	s.mcp.AddTool(searchVenuesTool(), s.handleSearchVenues)

	return s
}

// Serve blocks reading protocol frames from stdin until EOF.
func (s *Server) Serve(ctx context.Context) error {
	log.FromCtx(ctx).Debug().Msg("tool worker serving on stdio")
	return server.ServeStdio(s.mcp)
}

func searchVenuesTool() mcp.Tool {
	return mcp.NewTool("search_venues",
		mcp.WithDescription("Search for restaurants, cafes, bars and other venues near a location. Returns up to `limit` venues with name, rating, price level, categories and address."),
		mcp.WithString("location",
			mcp.Required(),
			mcp.Description("Where to search, e.g. a neighborhood, address or city ('Shoreditch, London')."),
		),
		mcp.WithString("term",
			mcp.Description("Free-text search term, e.g. 'ramen' or 'cocktail bar'."),
		),
		mcp.WithString("categories",
			mcp.Description("Comma-separated category filters, e.g. 'vegan,italian'."),
		),
		mcp.WithString("price",
			mcp.Description("Comma-separated price levels from 1 (cheap) to 4 (splurge), e.g. '1,2'."),
		),
		mcp.WithNumber("radius",
			mcp.Description("Search radius in meters, capped at 40000."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum venues to return, capped at 50. Defaults to 10."),
		),
		mcp.WithString("sort_by",
			mcp.Description("Sort order: best_match, rating, review_count or distance."),
			mcp.Enum("best_match", "rating", "review_count", "distance"),
		),
		mcp.WithBoolean("open_now",
			mcp.Description("Only return venues that are open right now."),
		),
	)
}

func (s *Server) handleSearchVenues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location, err := request.RequireString("location")
	if err != nil {
		return failureResult(core.NewFailure(core.FailureInvalidParams, "location is required")), nil
	}

	params := yelp.SearchParams{
		Location: location,
		Term:     request.GetString("term", ""),
		Radius:   request.GetInt("radius", 0),
		Limit:    request.GetInt("limit", 0),
		SortBy:   request.GetString("sort_by", ""),
		OpenNow:  request.GetBool("open_now", false),
	}
	if categories := request.GetString("categories", ""); categories != "" {
		params.Categories = splitCSV(categories)
	}
	if price := request.GetString("price", ""); price != "" {
		levels, parseErr := parsePriceLevels(price)
		if parseErr != nil {
			return failureResult(core.NewFailure(core.FailureInvalidParams, parseErr.Error())), nil
		}
		params.Price = levels
	}

	result, err := s.venues.Search(ctx, params)
	if err != nil {
		return failureResult(core.AsFailure(err)), nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return failureResult(core.NewFailure(core.FailureInternal, err.Error())), nil
	}

	log.FromCtx(ctx).Debug().
		Str("location", params.Location).
		Int("found", len(result.Businesses)).
		Msg("venue search served")
	return mcp.NewToolResultText(string(payload)), nil
}

// failureResult serializes a typed failure into the error text so the client
// side can rehydrate it instead of guessing from prose.
func failureResult(f *core.Failure) *mcp.CallToolResult {
	raw, err := json.Marshal(f)
	if err != nil {
		return mcp.NewToolResultError(f.Error())
	}
	return mcp.NewToolResultError(string(raw))
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parsePriceLevels(s string) ([]int, error) {
	var levels []int
	for _, part := range splitCSV(s) {
		level, err := strconv.Atoi(part)
		if err != nil || level < 1 || level > 4 {
			return nil, fmt.Errorf("price levels must be integers 1-4, got %q", part)
		}
		levels = append(levels, level)
	}
	return levels, nil
}
