package store

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/amosWeiskopf/wpaudit/internal/models"
	"github.com/amosWeiskopf/wpaudit/pkg/seo"
)

// Store holds the current report. It starts empty and is patched by analysis
// stages or replaced by an imported report.
type Store struct {
	mu      sync.RWMutex
	report  models.Report
	running atomic.Bool
}

// New returns an empty store
func New() *Store {
	return &Store{}
}

// Get returns a copy of the current report
func (s *Store) Get() models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Clone(s.report)
}

// Set merges every non-nil field of patch into the current report
func (s *Store) Set(patch models.Report) {
	patch = Clone(patch)
	if patch.SEO != nil {
		seo.AssignKeys(patch.SEO)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Target != "" {
		s.report.Target = patch.Target
	}
	if patch.Groups != nil {
		s.report.Groups = patch.Groups
	}
	if patch.Summary != nil {
		s.report.Summary = patch.Summary
	}
	if patch.SEO != nil {
		s.report.SEO = patch.SEO
	}
	if patch.Performance != nil {
		s.report.Performance = patch.Performance
	}
	if patch.Lighthouse != nil {
		s.report.Lighthouse = patch.Lighthouse
	}
	if patch.Accessibility != nil {
		s.report.Accessibility = patch.Accessibility
	}
	if patch.Security != nil {
		s.report.Security = patch.Security
	}
	if patch.Broken != nil {
		s.report.Broken = patch.Broken
	}
	if patch.Themes != nil {
		s.report.Themes = patch.Themes
	}
	if patch.Plugins != nil {
		s.report.Plugins = patch.Plugins
	}
	if patch.Users != nil {
		s.report.Users = patch.Users
	}
}

// Replace swaps the whole report
func (s *Store) Replace(full models.Report) {
	full = Clone(full)
	if full.SEO != nil {
		seo.AssignKeys(full.SEO)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = full
}

// SortSEO reorders the stored SEO entries. Entry keys are unaffected.
func (s *Store) SortSEO(order seo.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report.SEO == nil {
		return
	}
	s.report.SEO = seo.Sort(s.report.SEO, order)
}

// SEOEntry looks an SEO entry up by its stable key
func (s *Store) SEOEntry(key string) (models.SeoEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return seo.Find(s.report.SEO, key)
}

// BeginRun marks an analysis run as in progress. The returned release
// function clears the mark and is safe to call more than once.
func (s *Store) BeginRun() (release func()) {
	s.running.Store(true)
	var once sync.Once
	return func() {
		once.Do(func() { s.running.Store(false) })
	}
}

// Running reports whether an analysis run is in progress
func (s *Store) Running() bool {
	return s.running.Load()
}

// Clone copies a report so callers cannot alias store internals
func Clone(r models.Report) models.Report {
	out := r
	if r.Groups != nil {
		out.Groups = make([]models.ContentGroup, len(r.Groups))
		for i, g := range r.Groups {
			out.Groups[i] = models.ContentGroup{Category: g.Category, Items: slices.Clone(g.Items)}
		}
	}
	if r.Summary != nil {
		summary := *r.Summary
		summary.CPTs = maps.Clone(r.Summary.CPTs)
		summary.Errors = slices.Clone(r.Summary.Errors)
		out.Summary = &summary
	}
	if r.SEO != nil {
		out.SEO = make([]models.SeoEntry, len(r.SEO))
		for i, e := range r.SEO {
			e.Headings = maps.Clone(e.Headings)
			e.OG = maps.Clone(e.OG)
			e.Twitter = maps.Clone(e.Twitter)
			out.SEO[i] = e
		}
	}
	if r.Performance != nil {
		perf := *r.Performance
		out.Performance = &perf
	}
	if r.Lighthouse != nil {
		lh := *r.Lighthouse
		out.Lighthouse = &lh
	}
	if r.Accessibility != nil {
		acc := *r.Accessibility
		acc.Headings = maps.Clone(r.Accessibility.Headings)
		acc.MissingAltList = slices.Clone(r.Accessibility.MissingAltList)
		acc.EmptyLinksList = slices.Clone(r.Accessibility.EmptyLinksList)
		out.Accessibility = &acc
	}
	if r.Security != nil {
		sec := *r.Security
		out.Security = &sec
	}
	out.Broken = slices.Clone(r.Broken)
	out.Themes = slices.Clone(r.Themes)
	out.Plugins = slices.Clone(r.Plugins)
	out.Users = slices.Clone(r.Users)
	return out
}
