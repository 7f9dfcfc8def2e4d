package analyzer

import (
	"fmt"
	"math"
	"sort"

	"github.com/amosWeiskopf/wpaudit/internal/models"
)

// Area names used in scorecards and findings
const (
	AreaSEO           = "SEO"
	AreaPerformance   = "Performance"
	AreaAccessibility = "Accessibility"
	AreaSecurity      = "Security"
	AreaLinks         = "Links"
)

const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// SlowResponseMs is the response time above which performance is flagged
const SlowResponseMs = 1000

// TLSExpiryWarningDays is the certificate lifetime below which security is flagged
const TLSExpiryWarningDays = 15

var areaWeights = map[string]float64{
	AreaSEO:           0.25,
	AreaPerformance:   0.2,
	AreaAccessibility: 0.2,
	AreaSecurity:      0.25,
	AreaLinks:         0.1,
}

// Analyzer derives advice and scores from report data
type Analyzer struct {
	config *Config
}

// Config holds analyzer configuration
type Config struct {
	SlowResponseMs       float64
	TLSExpiryWarningDays int
}

// New creates a new Analyzer instance
func New() *Analyzer {
	return &Analyzer{
		config: &Config{
			SlowResponseMs:       SlowResponseMs,
			TLSExpiryWarningDays: TLSExpiryWarningDays,
		},
	}
}

// NewWithConfig creates an Analyzer with custom configuration
func NewWithConfig(config *Config) *Analyzer {
	return &Analyzer{config: config}
}

// PerformanceAdvice flags slow responses
func (a *Analyzer) PerformanceAdvice(p *models.PerformanceResult) []models.Finding {
	if p == nil {
		return nil
	}
	var findings []models.Finding
	if p.StatusCode >= 400 {
		findings = append(findings, models.Finding{
			Category:    AreaPerformance,
			Description: fmt.Sprintf("Home page answered with status %d", p.StatusCode),
			Severity:    SeverityHigh,
		})
	}
	if p.ResponseTimeMs > a.config.SlowResponseMs {
		findings = append(findings, models.Finding{
			Category:    AreaPerformance,
			Description: fmt.Sprintf("Slow response time (%.0f ms > %.0f ms)", p.ResponseTimeMs, a.config.SlowResponseMs),
			Severity:    SeverityMedium,
		})
	}
	return findings
}

// AccessibilityAdvice mirrors the checks reported on the accessibility panel
func (a *Analyzer) AccessibilityAdvice(r *models.AccessibilityResult) []models.Finding {
	if r == nil {
		return nil
	}
	var findings []models.Finding
	add := func(severity, format string, args ...any) {
		findings = append(findings, models.Finding{
			Category:    AreaAccessibility,
			Description: fmt.Sprintf(format, args...),
			Severity:    severity,
		})
	}
	if r.MissingAlt > 0 {
		add(SeverityHigh, "%d/%d images without alt text", r.MissingAlt, r.TotalImages)
	}
	if r.MissingLabels > 0 {
		add(SeverityMedium, "%d form fields without a label", r.MissingLabels)
	}
	if r.EmptyLinks > 0 {
		add(SeverityMedium, "%d links without text", r.EmptyLinks)
	}
	if r.Landmarks < 2 {
		add(SeverityLow, "Few landmarks (%d < 2)", r.Landmarks)
	}
	if r.SkipLinks == 0 {
		add(SeverityLow, "No skip link")
	}
	return findings
}

// SecurityAdvice lists missing hardening
func (a *Analyzer) SecurityAdvice(r *models.SecurityResult) []models.Finding {
	if r == nil {
		return nil
	}
	var findings []models.Finding
	add := func(severity, description string) {
		findings = append(findings, models.Finding{Category: AreaSecurity, Description: description, Severity: severity})
	}
	if !r.HSTS {
		add(SeverityHigh, "Enable HSTS")
	}
	if !r.CSP {
		add(SeverityMedium, "Define a Content-Security-Policy")
	}
	if r.HTTPOnlyCount == 0 {
		add(SeverityMedium, "No HttpOnly cookies set")
	}
	if !r.CookieSecure {
		add(SeverityMedium, "No Secure cookies set")
	}
	if r.TLSDays != nil && *r.TLSDays < a.config.TLSExpiryWarningDays {
		add(SeverityHigh, fmt.Sprintf("TLS certificate expires in %d days", *r.TLSDays))
	}
	return findings
}

// BrokenLinkAdvice reports broken links found among the inventory
func (a *Analyzer) BrokenLinkAdvice(broken []string) []models.Finding {
	if len(broken) == 0 {
		return nil
	}
	return []models.Finding{{
		Category:    AreaLinks,
		Description: fmt.Sprintf("%d broken links", len(broken)),
		Severity:    SeverityHigh,
	}}
}

// Scorecard computes per-area scores for the areas present in the report,
// a weighted overall score and a letter grade.
func (a *Analyzer) Scorecard(r models.Report) models.Scorecard {
	var card models.Scorecard

	if len(r.SEO) > 0 {
		total := 0.0
		for _, e := range r.SEO {
			total += e.Score
		}
		card.Scores = append(card.Scores, models.AreaScore{Area: AreaSEO, Score: total / float64(len(r.SEO))})
	}
	if score, ok := a.performanceScore(r); ok {
		card.Scores = append(card.Scores, models.AreaScore{Area: AreaPerformance, Score: score})
	}
	if r.Accessibility != nil {
		card.Scores = append(card.Scores, models.AreaScore{Area: AreaAccessibility, Score: accessibilityScore(r.Accessibility)})
	}
	if r.Security != nil {
		card.Scores = append(card.Scores, models.AreaScore{Area: AreaSecurity, Score: a.securityScore(r.Security)})
	}
	if r.Broken != nil && r.Groups != nil {
		links := len(models.Links(r.Groups))
		score := 100.0
		if links > 0 {
			score = math.Max(0, 100*(1-float64(len(r.Broken))/float64(links)))
		}
		card.Scores = append(card.Scores, models.AreaScore{Area: AreaLinks, Score: score})
	}

	card.Overall = calculateOverallScore(card.Scores)
	card.Grade = Grade(card.Overall)
	if len(card.Scores) == 0 {
		card.Grade = "-"
	}

	for _, s := range card.Scores {
		switch {
		case s.Score >= 80:
			card.Strengths = append(card.Strengths, fmt.Sprintf("Strong %s (%.0f)", s.Area, s.Score))
		case s.Score < 60:
			card.Weaknesses = append(card.Weaknesses, fmt.Sprintf("%s needs attention (%.0f)", s.Area, s.Score))
		}
	}

	card.Findings = append(card.Findings, a.PerformanceAdvice(r.Performance)...)
	card.Findings = append(card.Findings, a.AccessibilityAdvice(r.Accessibility)...)
	card.Findings = append(card.Findings, a.SecurityAdvice(r.Security)...)
	card.Findings = append(card.Findings, a.BrokenLinkAdvice(r.Broken)...)

	severityOrder := map[string]int{SeverityHigh: 0, SeverityMedium: 1, SeverityLow: 2}
	sort.SliceStable(card.Findings, func(i, j int) bool {
		return severityOrder[card.Findings[i].Severity] < severityOrder[card.Findings[j].Severity]
	})

	return card
}

func (a *Analyzer) performanceScore(r models.Report) (float64, bool) {
	if r.Lighthouse != nil {
		return math.Max(0, math.Min(100, r.Lighthouse.Score)), true
	}
	p := r.Performance
	if p == nil {
		return 0, false
	}
	if p.StatusCode >= 400 {
		return 0, true
	}
	switch {
	case p.ResponseTimeMs <= a.config.SlowResponseMs/2:
		return 100, true
	case p.ResponseTimeMs <= a.config.SlowResponseMs:
		return 80, true
	case p.ResponseTimeMs <= a.config.SlowResponseMs*2:
		return 60, true
	case p.ResponseTimeMs <= a.config.SlowResponseMs*4:
		return 40, true
	}
	return 20, true
}

func accessibilityScore(r *models.AccessibilityResult) float64 {
	score := 100.0
	if r.TotalImages > 0 {
		score -= 40 * float64(r.MissingAlt) / float64(r.TotalImages)
	}
	score -= math.Min(20, 5*float64(r.MissingLabels))
	score -= math.Min(20, 2*float64(r.EmptyLinks))
	if r.Landmarks < 2 {
		score -= 10
	}
	if r.SkipLinks == 0 {
		score -= 10
	}
	return math.Max(0, score)
}

func (a *Analyzer) securityScore(r *models.SecurityResult) float64 {
	checks := []bool{
		r.HSTS,
		r.CSP,
		r.HTTPOnlyCount > 0,
		r.CookieSecure,
		r.XFO != "",
	}
	if r.TLSDays != nil {
		checks = append(checks, *r.TLSDays >= a.config.TLSExpiryWarningDays)
	}
	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	return 100 * float64(passed) / float64(len(checks))
}

// calculateOverallScore computes the weighted average of the present scores
func calculateOverallScore(scores []models.AreaScore) float64 {
	total, weights := 0.0, 0.0
	for _, s := range scores {
		w := areaWeights[s.Area]
		total += s.Score * w
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return total / weights
}

// Grade maps a 0-100 score to a letter
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}
