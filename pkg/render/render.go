// Package render turns report fields into widgets. Every call replaces the
// previous content of its widget.
package render

import (
	"errors"
	"sync/atomic"

	"github.com/amosWeiskopf/wpaudit/internal/models"
	"github.com/amosWeiskopf/wpaudit/pkg/seo"
)

// Renderer has one function per report field. Nil arguments render as
// empty placeholders.
type Renderer interface {
	RenderSummary(summary *models.ContentSummary) error
	RenderGroups(groups []models.ContentGroup) error
	RenderSEO(entries []models.SeoEntry, view seo.View) error
	RenderPerformance(p *models.PerformanceResult) error
	RenderLighthouse(l *models.LighthouseResult) error
	RenderAccessibility(a *models.AccessibilityResult) error
	RenderSecurity(s *models.SecurityResult) error
	RenderBroken(broken []string) error
	RenderThemes(themes, plugins []string) error
	RenderUsers(users []models.UserEntry) error
}

// Fields renders the widgets bound to fields using the values of report.
// Groups also refresh the summary widget; themes and plugins share one widget.
func Fields(r Renderer, report models.Report, fields []models.Field, view seo.View) error {
	want := make(map[models.Field]bool, len(fields))
	for _, f := range fields {
		want[f] = true
	}

	var errs []error
	if want[models.FieldSummary] || want[models.FieldGroups] {
		errs = append(errs, r.RenderSummary(report.Summary))
	}
	if want[models.FieldGroups] {
		errs = append(errs, r.RenderGroups(report.Groups))
	}
	if want[models.FieldSEO] {
		errs = append(errs, r.RenderSEO(report.SEO, view))
	}
	if want[models.FieldPerformance] {
		errs = append(errs, r.RenderPerformance(report.Performance))
	}
	if want[models.FieldLighthouse] {
		errs = append(errs, r.RenderLighthouse(report.Lighthouse))
	}
	if want[models.FieldAccessibility] {
		errs = append(errs, r.RenderAccessibility(report.Accessibility))
	}
	if want[models.FieldSecurity] {
		errs = append(errs, r.RenderSecurity(report.Security))
	}
	if want[models.FieldBroken] {
		errs = append(errs, r.RenderBroken(report.Broken))
	}
	if want[models.FieldThemes] || want[models.FieldPlugins] {
		errs = append(errs, r.RenderThemes(report.Themes, report.Plugins))
	}
	if want[models.FieldUsers] {
		errs = append(errs, r.RenderUsers(report.Users))
	}
	return errors.Join(errs...)
}

// Patch renders the widgets of the fields present in patch, reading values
// from current (the merged report).
func Patch(r Renderer, current, patch models.Report, view seo.View) error {
	return Fields(r, current, patch.Present(), view)
}

// AllFields lists every report field in widget order
var AllFields = []models.Field{
	models.FieldSummary,
	models.FieldGroups,
	models.FieldSEO,
	models.FieldPerformance,
	models.FieldLighthouse,
	models.FieldAccessibility,
	models.FieldSecurity,
	models.FieldBroken,
	models.FieldThemes,
	models.FieldPlugins,
	models.FieldUsers,
}

// All renders every widget
func All(r Renderer, report models.Report, view seo.View) error {
	return Fields(r, report, AllFields, view)
}

// Multi fans every call out to several renderers
type Multi []Renderer

func (m Multi) each(fn func(Renderer) error) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, fn(r))
	}
	return errors.Join(errs...)
}

func (m Multi) RenderSummary(s *models.ContentSummary) error {
	return m.each(func(r Renderer) error { return r.RenderSummary(s) })
}

func (m Multi) RenderGroups(g []models.ContentGroup) error {
	return m.each(func(r Renderer) error { return r.RenderGroups(g) })
}

func (m Multi) RenderSEO(e []models.SeoEntry, v seo.View) error {
	return m.each(func(r Renderer) error { return r.RenderSEO(e, v) })
}

func (m Multi) RenderPerformance(p *models.PerformanceResult) error {
	return m.each(func(r Renderer) error { return r.RenderPerformance(p) })
}

func (m Multi) RenderLighthouse(l *models.LighthouseResult) error {
	return m.each(func(r Renderer) error { return r.RenderLighthouse(l) })
}

func (m Multi) RenderAccessibility(a *models.AccessibilityResult) error {
	return m.each(func(r Renderer) error { return r.RenderAccessibility(a) })
}

func (m Multi) RenderSecurity(s *models.SecurityResult) error {
	return m.each(func(r Renderer) error { return r.RenderSecurity(s) })
}

func (m Multi) RenderBroken(b []string) error {
	return m.each(func(r Renderer) error { return r.RenderBroken(b) })
}

func (m Multi) RenderThemes(themes, plugins []string) error {
	return m.each(func(r Renderer) error { return r.RenderThemes(themes, plugins) })
}

func (m Multi) RenderUsers(u []models.UserEntry) error {
	return m.each(func(r Renderer) error { return r.RenderUsers(u) })
}

// Gate forwards to a renderer unless muted. Muted calls are dropped.
type Gate struct {
	target Renderer
	muted  atomic.Bool
}

// NewGate wraps r
func NewGate(r Renderer) *Gate {
	return &Gate{target: r}
}

// Mute drops calls until Unmute
func (g *Gate) Mute() { g.muted.Store(true) }

// Unmute resumes forwarding
func (g *Gate) Unmute() { g.muted.Store(false) }

func (g *Gate) pass(fn func(Renderer) error) error {
	if g.muted.Load() {
		return nil
	}
	return fn(g.target)
}

func (g *Gate) RenderSummary(s *models.ContentSummary) error {
	return g.pass(func(r Renderer) error { return r.RenderSummary(s) })
}

func (g *Gate) RenderGroups(groups []models.ContentGroup) error {
	return g.pass(func(r Renderer) error { return r.RenderGroups(groups) })
}

func (g *Gate) RenderSEO(e []models.SeoEntry, v seo.View) error {
	return g.pass(func(r Renderer) error { return r.RenderSEO(e, v) })
}

func (g *Gate) RenderPerformance(p *models.PerformanceResult) error {
	return g.pass(func(r Renderer) error { return r.RenderPerformance(p) })
}

func (g *Gate) RenderLighthouse(l *models.LighthouseResult) error {
	return g.pass(func(r Renderer) error { return r.RenderLighthouse(l) })
}

func (g *Gate) RenderAccessibility(a *models.AccessibilityResult) error {
	return g.pass(func(r Renderer) error { return r.RenderAccessibility(a) })
}

func (g *Gate) RenderSecurity(s *models.SecurityResult) error {
	return g.pass(func(r Renderer) error { return r.RenderSecurity(s) })
}

func (g *Gate) RenderBroken(b []string) error {
	return g.pass(func(r Renderer) error { return r.RenderBroken(b) })
}

func (g *Gate) RenderThemes(themes, plugins []string) error {
	return g.pass(func(r Renderer) error { return r.RenderThemes(themes, plugins) })
}

func (g *Gate) RenderUsers(u []models.UserEntry) error {
	return g.pass(func(r Renderer) error { return r.RenderUsers(u) })
}
