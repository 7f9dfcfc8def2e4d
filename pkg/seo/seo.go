// Package seo holds the client-side view logic over SEO entries: stable keys,
// sorting, minimum score filtering and per-entry advice.
package seo

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/amosWeiskopf/wpaudit/internal/models"
)

// Order is the sort order of the SEO list
type Order string

const (
	Unsorted   Order = ""
	Ascending  Order = "asc"
	Descending Order = "desc"
)

// ParseOrder accepts asc/desc and their long forms.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return Unsorted, nil
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return Unsorted, fmt.Errorf("unknown sort order %q", s)
}

// View is the externally supplied UI state for the SEO list
type View struct {
	MinScore float64
	Order    Order
}

// Apply returns the entries to display: filtered by MinScore and sorted by Order.
// The input slice is not modified.
func (v View) Apply(entries []models.SeoEntry) []models.SeoEntry {
	return Sort(Filter(entries, v.MinScore), v.Order)
}

// keySpace namespaces the name-based UUIDs derived for entries whose link
// cannot serve as a key.
var keySpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("wpaudit/seo-entry"))

// AssignKeys gives every entry a stable key. The entry link is used when it is
// unique within the list; otherwise a UUID is derived from the link, the title
// and the occurrence of that pair in list order, so the same document always
// yields the same keys. Existing keys are kept.
func AssignKeys(entries []models.SeoEntry) {
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		if e.Link != "" {
			seen[e.Link]++
		}
	}
	used := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Key != "" {
			used[e.Key] = true
		}
	}
	kept := make(map[string]bool, len(entries))
	occurrence := make(map[string]int, len(entries))
	for i := range entries {
		e := &entries[i]
		if e.Key != "" && !kept[e.Key] {
			kept[e.Key] = true
			continue
		}
		if e.Link != "" && seen[e.Link] == 1 && !used[e.Link] {
			e.Key = e.Link
		} else {
			name := e.Link + "\n" + e.Title
			for {
				occurrence[name]++
				key := uuid.NewSHA1(keySpace, []byte(fmt.Sprintf("%s\n%d", name, occurrence[name]))).String()
				if !used[key] {
					e.Key = key
					break
				}
			}
		}
		used[e.Key] = true
		kept[e.Key] = true
	}
}

// Sort returns a copy of entries ordered by score. Ties keep their relative order.
func Sort(entries []models.SeoEntry, order Order) []models.SeoEntry {
	out := slices.Clone(entries)
	switch order {
	case Ascending:
		slices.SortStableFunc(out, func(a, b models.SeoEntry) int { return cmpScore(a.Score, b.Score) })
	case Descending:
		slices.SortStableFunc(out, func(a, b models.SeoEntry) int { return cmpScore(b.Score, a.Score) })
	}
	return out
}

func cmpScore(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Filter returns the entries whose score is at least minScore, in their input order.
func Filter(entries []models.SeoEntry, minScore float64) []models.SeoEntry {
	out := make([]models.SeoEntry, 0, len(entries))
	for _, e := range entries {
		if e.Score >= minScore {
			out = append(out, e)
		}
	}
	return out
}

// Find looks an entry up by its key.
func Find(entries []models.SeoEntry, key string) (models.SeoEntry, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e, true
		}
	}
	return models.SeoEntry{}, false
}

// Advice lists the fixes suggested for an entry
func Advice(e models.SeoEntry) []string {
	var advice []string
	if e.TitleTag == "" {
		advice = append(advice, "Add a <title> tag")
	}
	if n := len([]rune(e.MetaDesc)); n < 50 || n > 160 {
		advice = append(advice, "Keep the meta description between 50 and 160 characters")
	}
	if e.Headings["h1"] < 1 {
		advice = append(advice, "Use at least one <h1>")
	}
	return advice
}

// HeadingSummary formats heading counts as "h1:1 h2:3 ..." in tag order.
func HeadingSummary(headings map[string]int) string {
	if len(headings) == 0 {
		return "-"
	}
	tags := make([]string, 0, len(headings))
	for tag := range headings {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		parts = append(parts, fmt.Sprintf("%s:%d", tag, headings[tag]))
	}
	return strings.Join(parts, " ")
}
