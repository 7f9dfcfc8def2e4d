package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/wpaudit/internal/models"
	"github.com/amosWeiskopf/wpaudit/pkg/seo"
)

// recorder remembers which widgets were rendered
type recorder struct {
	calls []string
	fail  string
}

func (r *recorder) record(name string) error {
	r.calls = append(r.calls, name)
	if name == r.fail {
		return errors.New(name + " failed")
	}
	return nil
}

func (r *recorder) RenderSummary(*models.ContentSummary) error { return r.record("summary") }
func (r *recorder) RenderGroups([]models.ContentGroup) error   { return r.record("groups") }
func (r *recorder) RenderSEO([]models.SeoEntry, seo.View) error {
	return r.record("seo")
}
func (r *recorder) RenderPerformance(*models.PerformanceResult) error { return r.record("performance") }
func (r *recorder) RenderLighthouse(*models.LighthouseResult) error   { return r.record("lighthouse") }
func (r *recorder) RenderAccessibility(*models.AccessibilityResult) error {
	return r.record("accessibility")
}
func (r *recorder) RenderSecurity(*models.SecurityResult) error { return r.record("security") }
func (r *recorder) RenderBroken([]string) error                 { return r.record("broken") }
func (r *recorder) RenderThemes(_, _ []string) error            { return r.record("themes") }
func (r *recorder) RenderUsers([]models.UserEntry) error        { return r.record("users") }

func sampleReport() models.Report {
	return models.Report{
		Groups: []models.ContentGroup{
			{Category: "Pages", Items: []models.ContentItem{
				{ID: "1", Title: "Home", Link: "https://x/", Status: "publish"},
				{ID: "2", Title: "<b>About</b>", Link: "https://x/about/", Status: "draft"},
			}},
			{Category: "Posts", Items: []models.ContentItem{{ID: "3", Title: "Hello", Link: "https://x/hello/", Status: "publish"}}},
		},
		Summary: &models.ContentSummary{Pages: 2, Posts: 1, CPTs: map[string]int{"product": 4}},
		SEO: []models.SeoEntry{
			{Title: "Home", Link: "https://x/", Score: 40, Key: "k1"},
			{Title: "Hello", Link: "https://x/hello/", Score: 90, Key: "k2", TitleTag: "Hello", Headings: map[string]int{"h1": 1}},
		},
		Performance: &models.PerformanceResult{StatusCode: 200, ResponseTimeMs: 1500, ContentLength: 2048},
		Broken:      []string{"https://x/dead"},
		Themes:      []string{"astra"},
		Plugins:     []string{},
	}
}

func TestPatchRendersOnlyPresentFields(t *testing.T) {
	rec := &recorder{}
	patch := models.Report{SEO: []models.SeoEntry{}}
	require.NoError(t, Patch(rec, sampleReport(), patch, seo.View{}))
	assert.Equal(t, []string{"seo"}, rec.calls)

	rec = &recorder{}
	patch = models.Report{Groups: []models.ContentGroup{}, Summary: &models.ContentSummary{}}
	require.NoError(t, Patch(rec, sampleReport(), patch, seo.View{}))
	assert.Equal(t, []string{"summary", "groups"}, rec.calls)

	rec = &recorder{}
	require.NoError(t, Patch(rec, sampleReport(), models.Report{}, seo.View{}))
	assert.Empty(t, rec.calls)
}

func TestThemesAndPluginsShareWidget(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, Fields(rec, sampleReport(), []models.Field{models.FieldThemes, models.FieldPlugins}, seo.View{}))
	assert.Equal(t, []string{"themes"}, rec.calls)
}

func TestAllContinuesAfterError(t *testing.T) {
	rec := &recorder{fail: "security"}
	err := All(rec, models.Report{}, seo.View{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "security failed")
	assert.Len(t, rec.calls, 10)
}

func TestGate(t *testing.T) {
	rec := &recorder{}
	g := NewGate(rec)

	g.Mute()
	require.NoError(t, All(g, sampleReport(), seo.View{}))
	assert.Empty(t, rec.calls)

	g.Unmute()
	require.NoError(t, Fields(g, sampleReport(), []models.Field{models.FieldSEO}, seo.View{}))
	assert.Equal(t, []string{"seo"}, rec.calls)
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := Multi{a, b}
	require.NoError(t, m.RenderBroken(nil))
	require.NoError(t, m.RenderUsers(nil))
	assert.Equal(t, []string{"broken", "users"}, a.calls)
	assert.Equal(t, a.calls, b.calls)
}

func TestTextPlaceholders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, All(NewText(&buf), models.Report{}, seo.View{}))

	out := buf.String()
	assert.Contains(t, out, "Pages: -  Posts: -")
	assert.Contains(t, out, "No content")
	assert.Contains(t, out, "No SEO data")
	assert.Contains(t, out, "Status: -")
	assert.Contains(t, out, "No broken links")
	assert.Contains(t, out, "Themes:  -")
	assert.Contains(t, out, "No users exposed")
}

func TestTextSEOAppliesView(t *testing.T) {
	var buf bytes.Buffer
	text := NewText(&buf)
	require.NoError(t, text.RenderSEO(sampleReport().SEO, seo.View{MinScore: 50}))

	out := buf.String()
	assert.Contains(t, out, "Hello")
	assert.NotContains(t, out, "Home")
}

func TestTextCleansTitles(t *testing.T) {
	var buf bytes.Buffer
	groups := []models.ContentGroup{{Category: "Pages", Items: []models.ContentItem{{ID: "1", Title: "  Hello \n\t World ", Link: "https://x/"}}}}
	require.NoError(t, NewText(&buf).RenderGroups(groups))
	assert.Contains(t, buf.String(), "  - Hello World <https://x/>")
}

func TestTextPerformanceAdvice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewText(&buf).RenderPerformance(sampleReport().Performance))
	assert.Contains(t, buf.String(), "Status: 200  Response time: 1500 ms  Size: 2048 bytes")
	assert.Contains(t, buf.String(), "Slow response time")
}

func TestTextSEODetail(t *testing.T) {
	var buf bytes.Buffer
	entry := models.SeoEntry{Title: "Home", Link: "https://x/", OG: map[string]string{"title": "Home"}}
	require.NoError(t, NewText(&buf).RenderSEODetail(entry))
	out := buf.String()
	assert.Contains(t, out, "og:title: Home")
	assert.Contains(t, out, "Add a <title> tag")
}

func TestDOMRendersWidgets(t *testing.T) {
	dom, err := NewDOM()
	require.NoError(t, err)

	report := sampleReport()
	require.NoError(t, All(dom, report, seo.View{Order: seo.Descending}))

	assert.Equal(t, 2, dom.Find("#accordion details").Length())
	assert.Equal(t, 2, dom.Find("#chart li").Length())
	href, ok := dom.Find("#accordion li a").First().Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://x/", href)

	// titles are escaped
	about := dom.Find("#accordion li a").Eq(1)
	assert.Equal(t, "<b>About</b>", about.Text())
	assert.Equal(t, 0, dom.Find("#accordion b").Length())

	keys := []string{}
	dom.Find("#seo tr[data-key]").Each(func(_ int, s *goquery.Selection) {
		key, _ := s.Attr("data-key")
		keys = append(keys, key)
	})
	assert.Equal(t, []string{"k2", "k1"}, keys)

	assert.Equal(t, 1, dom.Find("#broken li").Length())
	assert.Equal(t, "astra", strings.TrimSpace(dom.Find("#themes li").Text()))
	assert.Equal(t, 1, dom.Find("#plugins .placeholder").Length())
	assert.Contains(t, dom.Find("#performance").Text(), "Slow response time")
	assert.Equal(t, 1, dom.Find("#security .placeholder").Length())
}

func TestDOMRenderReplacesContent(t *testing.T) {
	dom, err := NewDOM()
	require.NoError(t, err)

	require.NoError(t, dom.RenderBroken([]string{"https://x/a", "https://x/b"}))
	require.NoError(t, dom.RenderBroken([]string{"https://x/c"}))
	assert.Equal(t, 1, dom.Find("#broken li").Length())

	require.NoError(t, dom.RenderSEO(sampleReport().SEO, seo.View{MinScore: 100}))
	html, err := dom.Widget(WidgetSEO)
	require.NoError(t, err)
	assert.Contains(t, html, "No SEO data")
}

func TestDOMWriteTo(t *testing.T) {
	dom, err := NewDOM()
	require.NoError(t, err)
	dom.SetTarget("https://example.com")
	require.NoError(t, dom.RenderThemes([]string{"astra"}, nil))

	var buf bytes.Buffer
	n, err := dom.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Contains(t, buf.String(), "WordPress audit: https://example.com")
	assert.Contains(t, buf.String(), "<li>astra</li>")

	_, err = dom.Widget("nope")
	assert.Error(t, err)
}
