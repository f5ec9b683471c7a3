package http

import (
	"net/url"
	"strconv"
	"strings"
)

// navRoute is one dashboard page. The same table registers the routes and
// renders the navbar, so the two cannot drift apart.
type navRoute struct {
	Path     string
	Label    string
	Title    string
	Template string
}

var navRoutes = []navRoute{
	{Path: "/", Label: "Dashboard", Title: "Fleet Operational Risk Dashboard", Template: "overview.html"},
	{Path: "/vehicles", Label: "Vehicles at risk", Title: "Vehicles at risk", Template: "vehicles.html"},
	{Path: "/trends", Label: "Trends", Title: "Trends", Template: "trends.html"},
	{Path: "/weekly", Label: "Weekly report", Title: "Weekly report", Template: "weekly.html"},
}

type navLink struct {
	Path   string
	Label  string
	Active bool
}

func navLinks(active string) []navLink {
	links := make([]navLink, 0, len(navRoutes))
	for _, route := range navRoutes {
		links = append(links, navLink{Path: route.Path, Label: route.Label, Active: route.Path == active})
	}
	return links
}

func lookupRoute(path string) (navRoute, bool) {
	for _, route := range navRoutes {
		if route.Path == path {
			return route, true
		}
	}
	return navRoute{}, false
}

// resolvePage maps a form value or Referer URL to a known page, defaulting to
// the overview. Only paths from the route table are accepted, so a redirect
// never leaves the dashboard.
func resolvePage(candidates ...string) navRoute {
	for _, raw := range candidates {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parsed, err := url.Parse(raw)
		if err != nil {
			continue
		}
		if route, ok := lookupRoute(parsed.Path); ok {
			return route
		}
	}
	return navRoutes[0]
}

// generationQuery is the query parameter that pins a page to the result of
// one load instead of starting a new one.
const generationQuery = "gen"

func pageURL(route navRoute, generation uint64) string {
	return route.Path + "?" + generationQuery + "=" + strconv.FormatUint(generation, 10)
}
