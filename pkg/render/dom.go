package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/amosWeiskopf/wpaudit/internal/models"
	"github.com/amosWeiskopf/wpaudit/pkg/analyzer"
	"github.com/amosWeiskopf/wpaudit/pkg/seo"
)

//go:embed templates/*.html
var templateFS embed.FS

// Widget element ids in the dashboard document
const (
	WidgetTarget        = "target"
	WidgetSummary       = "summary"
	WidgetChart         = "chart"
	WidgetAccordion     = "accordion"
	WidgetSEO           = "seo"
	WidgetPerformance   = "performance"
	WidgetLighthouse    = "lighthouse"
	WidgetAccessibility = "accessibility"
	WidgetSecurity      = "security"
	WidgetBroken        = "broken"
	WidgetThemes        = "themes"
	WidgetPlugins       = "plugins"
	WidgetUsers         = "users"
)

// DOM renders widgets into an HTML dashboard document. Each widget is an
// element addressed by id whose children are replaced on every render.
type DOM struct {
	mu       sync.Mutex
	doc      *goquery.Document
	widgets  *template.Template
	analyzer *analyzer.Analyzer
}

// NewDOM parses the embedded dashboard
func NewDOM() (*DOM, error) {
	page, err := templateFS.Open("templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to open dashboard: %w", err)
	}
	defer func() { _ = page.Close() }()

	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard: %w", err)
	}

	widgets, err := template.ParseFS(templateFS, "templates/widgets.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse widget templates: %w", err)
	}

	return &DOM{doc: doc, widgets: widgets, analyzer: analyzer.New()}, nil
}

// WithAnalyzer replaces the analyzer deriving the advice lines
func (d *DOM) WithAnalyzer(a *analyzer.Analyzer) *DOM {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.analyzer = a
	return d
}

func (d *DOM) set(id, name string, data any) error {
	var buf bytes.Buffer
	if err := d.widgets.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", id, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	sel := d.doc.Find("#" + id)
	if sel.Length() == 0 {
		return fmt.Errorf("widget %q not found", id)
	}
	sel.SetHtml(buf.String())
	return nil
}

// SetTarget shows the audited site in the dashboard heading
func (d *DOM) SetTarget(target string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	title := "WordPress audit"
	if target != "" {
		title += ": " + target
	}
	d.doc.Find("#" + WidgetTarget).SetText(title)
	d.doc.Find("title").SetText(title)
}

// Widget returns the current markup of a widget
func (d *DOM) Widget(id string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel := d.doc.Find("#" + id)
	if sel.Length() == 0 {
		return "", fmt.Errorf("widget %q not found", id)
	}
	return sel.Html()
}

// Find runs a CSS selector against the dashboard document
func (d *DOM) Find(selector string) *goquery.Selection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Find(selector)
}

// WriteTo writes the whole dashboard document
func (d *DOM) WriteTo(w io.Writer) (int64, error) {
	d.mu.Lock()
	page, err := d.doc.Html()
	d.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("failed to serialize dashboard: %w", err)
	}
	n, err := io.WriteString(w, page)
	return int64(n), err
}

func (d *DOM) RenderSummary(s *models.ContentSummary) error {
	return d.set(WidgetSummary, "summary", s)
}

func (d *DOM) RenderGroups(groups []models.ContentGroup) error {
	largest := 0
	for _, g := range groups {
		largest = max(largest, len(g.Items))
	}
	chart := struct {
		Groups []models.ContentGroup
		Max    int
	}{groups, largest}
	if err := d.set(WidgetChart, "chart", chart); err != nil {
		return err
	}
	return d.set(WidgetAccordion, "accordion", groups)
}

type seoRow struct {
	Entry    models.SeoEntry
	Headings string
	Advice   []string
}

func (d *DOM) RenderSEO(entries []models.SeoEntry, view seo.View) error {
	visible := view.Apply(entries)
	rows := make([]seoRow, 0, len(visible))
	for _, e := range visible {
		rows = append(rows, seoRow{Entry: e, Headings: seo.HeadingSummary(e.Headings), Advice: seo.Advice(e)})
	}
	return d.set(WidgetSEO, "seo", rows)
}

type resultView[T any] struct {
	Result   *T
	Headings string
	Findings []models.Finding
}

func (d *DOM) RenderPerformance(p *models.PerformanceResult) error {
	return d.set(WidgetPerformance, "performance", resultView[models.PerformanceResult]{
		Result:   p,
		Findings: d.analyzer.PerformanceAdvice(p),
	})
}

func (d *DOM) RenderLighthouse(l *models.LighthouseResult) error {
	return d.set(WidgetLighthouse, "lighthouse", l)
}

func (d *DOM) RenderAccessibility(a *models.AccessibilityResult) error {
	view := resultView[models.AccessibilityResult]{Result: a, Findings: d.analyzer.AccessibilityAdvice(a)}
	if a != nil {
		view.Headings = seo.HeadingSummary(a.Headings)
	}
	return d.set(WidgetAccessibility, "accessibility", view)
}

func (d *DOM) RenderSecurity(s *models.SecurityResult) error {
	return d.set(WidgetSecurity, "security", resultView[models.SecurityResult]{
		Result:   s,
		Findings: d.analyzer.SecurityAdvice(s),
	})
}

func (d *DOM) RenderBroken(broken []string) error {
	return d.set(WidgetBroken, "links", broken)
}

func (d *DOM) RenderThemes(themes, plugins []string) error {
	if err := d.set(WidgetThemes, "list", themes); err != nil {
		return err
	}
	return d.set(WidgetPlugins, "list", plugins)
}

func (d *DOM) RenderUsers(users []models.UserEntry) error {
	return d.set(WidgetUsers, "users", users)
}
