// Package catalog holds the read-side predicates of the public project
// gallery: free-text search, category and tag filtering, and sorting.
// Everything operates on an in-memory slice already loaded by the project
// service and never mutates it.
package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/hossamdev/portfolio-api/internal/modules/model"
)

// CategoryAll matches every category. An empty category means the same.
const CategoryAll = "all"

const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortName   = "name"
)

type Query struct {
	Search   string
	Category string
	// Tags are conjunctive: a project matches only if it carries every
	// selected tag.
	Tags []string
	Sort string
}

// Filter returns the projects satisfying search AND category AND tags,
// sorted per q.Sort. The input slice is left untouched.
func Filter(projects []model.Project, q Query) []model.Project {
	out := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if !matchesSearch(p, q.Search) {
			continue
		}
		if !matchesCategory(p, q.Category) {
			continue
		}
		if !matchesTags(p, q.Tags) {
			continue
		}
		out = append(out, p)
	}
	Sort(out, q.Sort)
	return out
}

func matchesSearch(p model.Project, search string) bool {
	s := strings.ToLower(strings.TrimSpace(search))
	if s == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), s) ||
		strings.Contains(strings.ToLower(p.Description), s) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), s) {
			return true
		}
	}
	return false
}

func matchesCategory(p model.Project, category string) bool {
	if category == "" || category == CategoryAll {
		return true
	}
	return p.Category == category
}

func matchesTags(p model.Project, tags []string) bool {
	for _, want := range tags {
		found := false
		for _, have := range p.Tags {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Sort orders projects in place. Unknown sort keys leave store order.
func Sort(projects []model.Project, by string) {
	switch by {
	case SortNewest:
		sort.SliceStable(projects, func(i, j int) bool {
			return parseDate(projects[i].Date).After(parseDate(projects[j].Date))
		})
	case SortOldest:
		sort.SliceStable(projects, func(i, j int) bool {
			return parseDate(projects[i].Date).Before(parseDate(projects[j].Date))
		})
	case SortName:
		sort.SliceStable(projects, func(i, j int) bool {
			a, b := strings.ToLower(projects[i].Title), strings.ToLower(projects[j].Title)
			if a == b {
				return projects[i].Title < projects[j].Title
			}
			return a < b
		})
	}
}

// parseDate treats missing or unparsable dates as the oldest possible
// value instead of failing the whole sort.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// TagUnion returns the distinct tags across all projects, first-seen order.
func TagUnion(projects []model.Project) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range projects {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
