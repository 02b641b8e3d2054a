package explore

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// endpoint describes one explorable API collection.
type endpoint struct {
	path     string // %s is replaced by the id
	needsID  bool
	filters  []string
	describe string
}

var endpoints = map[string]endpoint{
	"programs":    {path: "programs", describe: "all programs"},
	"seasons":     {path: "seasons", filters: []string{"program"}, describe: "seasons, optionally by program"},
	"events":      {path: "events", filters: []string{"program", "season"}, describe: "events by program and season"},
	"event":       {path: "events/%s", needsID: true, describe: "one event"},
	"teams":       {path: "teams", filters: []string{"program", "grade"}, describe: "teams by program and grade"},
	"team":        {path: "teams/%s", needsID: true, describe: "one team"},
	"team-events": {path: "teams/%s/events", needsID: true, filters: []string{"season"}, describe: "a team's events"},
	"divisions":   {path: "events/%s/divisions", needsID: true, describe: "an event's divisions"},
	"event-teams": {path: "events/%s/teams", needsID: true, filters: []string{"division"}, describe: "an event's teams"},
	"matches":     {path: "events/%s/matches", needsID: true, filters: []string{"division", "team", "round"}, describe: "an event's matches"},
	"rankings":    {path: "events/%s/rankings", needsID: true, filters: []string{"division", "team"}, describe: "an event's rankings"},
	"skills":      {path: "events/%s/skills", needsID: true, filters: []string{"division", "team", "type"}, describe: "an event's skills results"},
	"awards":      {path: "events/%s/awards", needsID: true, filters: []string{"division", "team"}, describe: "an event's awards"},
}

// Endpoints returns the explorable endpoint names, sorted.
func Endpoints() []string {
	names := make([]string, 0, len(endpoints))
	for name := range endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns a one-line description of each endpoint, sorted by name.
func Describe() []string {
	out := make([]string, 0, len(endpoints))
	for _, name := range Endpoints() {
		ep := endpoints[name]
		line := fmt.Sprintf("%-12s %s", name, ep.describe)
		if len(ep.filters) > 0 {
			line += " [" + strings.Join(ep.filters, ", ") + "]"
		}
		out = append(out, line)
	}
	return out
}

func (e endpoint) resolve(id string) string {
	if e.needsID {
		return "/" + fmt.Sprintf(e.path, url.PathEscape(id))
	}
	return "/" + e.path
}
