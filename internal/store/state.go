// Package store holds the single shared state tree that modules address by
// name, together with the actions that mutate it.
package store

import "net/url"

// Location is the current history entry.
type Location struct {
	Pathname string `json:"pathname"`
	Search   string `json:"search"`
	State    any    `json:"state,omitempty"`
}

// URL returns pathname and search joined.
func (l Location) URL() string {
	return l.Pathname + l.Search
}

// ParseLocation splits rawURL into a Location without state.
func ParseLocation(rawURL string) Location {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Location{Pathname: rawURL}
	}
	loc := Location{Pathname: u.Path}
	if loc.Pathname == "" {
		loc.Pathname = "/"
	}
	if u.RawQuery != "" {
		loc.Search = "?" + u.RawQuery
	}
	return loc
}

// State is the whole tree.
type State struct {
	// App maps module name to that module's slice.
	App map[string]any `json:"app"`

	// Loading counts in-flight Loading interceptors per identifier.
	Loading map[string]int `json:"loading"`

	NavigationPrevented bool     `json:"navigationPrevented"`
	Location            Location `json:"location"`
}

// IsLoading reports whether any handler decorated with Loading(identifier)
// is still running.
func (s State) IsLoading(identifier string) bool {
	return s.Loading[identifier] > 0
}

func (s State) clone() State {
	next := s
	next.App = make(map[string]any, len(s.App))
	for k, v := range s.App {
		next.App[k] = v
	}
	next.Loading = make(map[string]int, len(s.Loading))
	for k, v := range s.Loading {
		next.Loading[k] = v
	}
	return next
}
