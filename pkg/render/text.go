package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/amosWeiskopf/wpaudit/internal/models"
	"github.com/amosWeiskopf/wpaudit/pkg/analyzer"
	"github.com/amosWeiskopf/wpaudit/pkg/seo"
	"github.com/amosWeiskopf/wpaudit/pkg/utils"
)

const chartWidth = 40

// Text renders widgets as plain-text sections on a terminal
type Text struct {
	mu       sync.Mutex
	out      io.Writer
	analyzer *analyzer.Analyzer
}

// NewText creates a terminal renderer writing to out
func NewText(out io.Writer) *Text {
	return &Text{out: out, analyzer: analyzer.New()}
}

// WithAnalyzer replaces the analyzer deriving the advice lines
func (t *Text) WithAnalyzer(a *analyzer.Analyzer) *Text {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.analyzer = a
	return t
}

func (t *Text) section(title string, body func(w io.Writer) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var b strings.Builder
	fmt.Fprintf(&b, "\n== %s ==\n", title)
	if err := body(&b); err != nil {
		return err
	}
	_, err := io.WriteString(t.out, b.String())
	return err
}

func table(w io.Writer, header string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeFindings(w io.Writer, findings []models.Finding) {
	for _, f := range findings {
		fmt.Fprintf(w, "  ! %s\n", f.Description)
	}
}

func (t *Text) RenderSummary(s *models.ContentSummary) error {
	return t.section("Summary", func(w io.Writer) error {
		if s == nil {
			fmt.Fprintln(w, "Pages: -  Posts: -  Media: -  Archives: -")
			return nil
		}
		fmt.Fprintf(w, "Pages: %d  Posts: %d  Media: %d  Archives: %d\n", s.Pages, s.Posts, s.Media, s.Archives)
		names := make([]string, 0, len(s.CPTs))
		for name := range s.CPTs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "CPT %s: %d\n", name, s.CPTs[name])
		}
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  ! %s\n", e)
		}
		return nil
	})
}

func (t *Text) RenderGroups(groups []models.ContentGroup) error {
	return t.section("Content", func(w io.Writer) error {
		if len(groups) == 0 {
			fmt.Fprintln(w, "No content")
			return nil
		}
		largest := 0
		for _, g := range groups {
			largest = max(largest, len(g.Items))
		}
		for _, g := range groups {
			bar := 0
			if largest > 0 {
				bar = len(g.Items) * chartWidth / largest
			}
			fmt.Fprintf(w, "%-20s %s %d\n", utils.TruncateText(g.Category, 20), strings.Repeat("█", bar), len(g.Items))
		}
		for _, g := range groups {
			fmt.Fprintf(w, "\n%s (%d)\n", g.Category, len(g.Items))
			for _, it := range g.Items {
				fmt.Fprintf(w, "  - %s <%s> [%s]\n", dash(utils.CleanText(it.Title)), it.Link, dash(it.Status))
			}
		}
		return nil
	})
}

func (t *Text) RenderSEO(entries []models.SeoEntry, view seo.View) error {
	return t.section("SEO", func(w io.Writer) error {
		visible := view.Apply(entries)
		if len(visible) == 0 {
			fmt.Fprintln(w, "No SEO data")
			return nil
		}
		rows := make([][]string, 0, len(visible))
		for _, e := range visible {
			rows = append(rows, []string{
				fmt.Sprintf("%.0f", e.Score),
				utils.TruncateText(dash(utils.CleanText(e.Title)), 40),
				utils.TruncateText(dash(utils.CleanText(e.TitleTag)), 40),
				fmt.Sprintf("%d", len([]rune(e.MetaDesc))),
				seo.HeadingSummary(e.Headings),
				e.Key,
			})
		}
		return table(w, "SCORE\tTITLE\tTITLE TAG\tMETA LEN\tHEADINGS\tKEY", rows)
	})
}

// RenderSEODetail prints every field of one SEO entry with its advice
func (t *Text) RenderSEODetail(e models.SeoEntry) error {
	return t.section("SEO detail", func(w io.Writer) error {
		fmt.Fprintf(w, "Title:       %s\n", dash(e.Title))
		fmt.Fprintf(w, "Link:        %s\n", dash(e.Link))
		fmt.Fprintf(w, "Score:       %.0f\n", e.Score)
		fmt.Fprintf(w, "Title tag:   %s\n", dash(e.TitleTag))
		fmt.Fprintf(w, "Meta desc:   %s\n", dash(e.MetaDesc))
		fmt.Fprintf(w, "Headings:    %s\n", seo.HeadingSummary(e.Headings))
		fmt.Fprintf(w, "Canonical:   %s\n", dash(e.Canonical))
		writeMap(w, "og", e.OG)
		writeMap(w, "twitter", e.Twitter)
		for _, advice := range seo.Advice(e) {
			fmt.Fprintf(w, "  ! %s\n", advice)
		}
		return nil
	})
}

func writeMap(w io.Writer, prefix string, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s:%s: %s\n", prefix, k, m[k])
	}
}

func (t *Text) RenderPerformance(p *models.PerformanceResult) error {
	return t.section("Performance", func(w io.Writer) error {
		if p == nil {
			fmt.Fprintln(w, "Status: -  Response time: -  Size: -")
			return nil
		}
		fmt.Fprintf(w, "Status: %d  Response time: %.0f ms  Size: %d bytes\n", p.StatusCode, p.ResponseTimeMs, p.ContentLength)
		writeFindings(w, t.analyzer.PerformanceAdvice(p))
		return nil
	})
}

func (t *Text) RenderLighthouse(l *models.LighthouseResult) error {
	return t.section("Lighthouse", func(w io.Writer) error {
		if l == nil {
			fmt.Fprintln(w, "Score: -")
			return nil
		}
		fmt.Fprintf(w, "Score: %.0f (%s)\n", l.Score, analyzer.Grade(l.Score))
		return table(w, "FCP\tLCP\tCLS\tTBT\tSI\tTTI", [][]string{{
			fmt.Sprintf("%.0f ms", l.FCP),
			fmt.Sprintf("%.0f ms", l.LCP),
			fmt.Sprintf("%.3f", l.CLS),
			fmt.Sprintf("%.0f ms", l.TBT),
			fmt.Sprintf("%.0f ms", l.SI),
			fmt.Sprintf("%.0f ms", l.TTI),
		}})
	})
}

func (t *Text) RenderAccessibility(a *models.AccessibilityResult) error {
	return t.section("Accessibility", func(w io.Writer) error {
		if a == nil {
			fmt.Fprintln(w, "No accessibility data")
			return nil
		}
		fmt.Fprintf(w, "Images: %d  Missing alt: %d  Missing labels: %d  Empty links: %d  Landmarks: %d  Skip links: %d\n",
			a.TotalImages, a.MissingAlt, a.MissingLabels, a.EmptyLinks, a.Landmarks, a.SkipLinks)
		fmt.Fprintf(w, "Headings: %s\n", seo.HeadingSummary(a.Headings))
		for _, src := range a.MissingAltList {
			fmt.Fprintf(w, "  no alt: %s\n", src)
		}
		for _, href := range a.EmptyLinksList {
			fmt.Fprintf(w, "  empty link: %s\n", href)
		}
		writeFindings(w, t.analyzer.AccessibilityAdvice(a))
		return nil
	})
}

func (t *Text) RenderSecurity(s *models.SecurityResult) error {
	return t.section("Security", func(w io.Writer) error {
		if s == nil {
			fmt.Fprintln(w, "No security data")
			return nil
		}
		maxAge := "-"
		if s.HSTSMaxAge != nil {
			maxAge = *s.HSTSMaxAge
		}
		tls := "-"
		if s.TLSDays != nil {
			tls = fmt.Sprintf("%d days", *s.TLSDays)
		}
		err := table(w, "CHECK\tVALUE", [][]string{
			{"HSTS", fmt.Sprintf("%t (max-age %s)", s.HSTS, maxAge)},
			{"CSP", fmt.Sprintf("%t", s.CSP)},
			{"HttpOnly cookies", fmt.Sprintf("%d", s.HTTPOnlyCount)},
			{"Secure cookies", fmt.Sprintf("%t", s.CookieSecure)},
			{"X-Frame-Options", dash(s.XFO)},
			{"X-XSS-Protection", dash(s.XSS)},
			{"Referrer-Policy", dash(s.ReferrerPolicy)},
			{"TLS expiry", tls},
			{"Server", dash(s.ServerHeader)},
		})
		if err != nil {
			return err
		}
		writeFindings(w, t.analyzer.SecurityAdvice(s))
		return nil
	})
}

func (t *Text) RenderBroken(broken []string) error {
	return t.section("Broken links", func(w io.Writer) error {
		if len(broken) == 0 {
			fmt.Fprintln(w, "No broken links")
			return nil
		}
		for _, link := range broken {
			fmt.Fprintf(w, "  - %s\n", link)
		}
		return nil
	})
}

func (t *Text) RenderThemes(themes, plugins []string) error {
	return t.section("Themes & plugins", func(w io.Writer) error {
		fmt.Fprintf(w, "Themes:  %s\n", dash(strings.Join(themes, ", ")))
		fmt.Fprintf(w, "Plugins: %s\n", dash(strings.Join(plugins, ", ")))
		return nil
	})
}

func (t *Text) RenderUsers(users []models.UserEntry) error {
	return t.section("Users", func(w io.Writer) error {
		if len(users) == 0 {
			fmt.Fprintln(w, "No users exposed")
			return nil
		}
		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, []string{dash(string(u.ID)), dash(u.Name), dash(u.ProfileLink)})
		}
		return table(w, "ID\tNAME\tLINK", rows)
	})
}

// RenderScorecard prints the per-area scores, grade and findings
func (t *Text) RenderScorecard(card models.Scorecard) error {
	return t.section("Scorecard", func(w io.Writer) error {
		if len(card.Scores) == 0 {
			fmt.Fprintln(w, "Grade: -")
			return nil
		}
		fmt.Fprintf(w, "Grade: %s (%.0f/100)\n", card.Grade, card.Overall)
		rows := make([][]string, 0, len(card.Scores))
		for _, s := range card.Scores {
			rows = append(rows, []string{s.Area, fmt.Sprintf("%.0f", s.Score)})
		}
		if err := table(w, "AREA\tSCORE", rows); err != nil {
			return err
		}
		for _, f := range card.Findings {
			fmt.Fprintf(w, "  [%s] %s: %s\n", f.Severity, f.Category, f.Description)
		}
		return nil
	})
}
