package reporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amosWeiskopf/wpaudit/internal/models"
	"github.com/amosWeiskopf/wpaudit/pkg/analyzer"
	"github.com/amosWeiskopf/wpaudit/pkg/client"
	"github.com/amosWeiskopf/wpaudit/pkg/utils"
)

// Report formats accepted by GenerateReport
const (
	FormatJSON     = "json"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// CSVHeader is the column order of content exports
var CSVHeader = []string{"category", "id", "title", "link", "status"}

// MalformedReportError is returned when an uploaded report is not valid JSON
type MalformedReportError struct {
	Cause error
}

func (e *MalformedReportError) Error() string {
	return fmt.Sprintf("invalid report JSON: %v", e.Cause)
}

func (e *MalformedReportError) Unwrap() error { return e.Cause }

// Backend is the subset of the transport used for exports and persistence
type Backend interface {
	Call(ctx context.Context, endpoint string, payload any, out any) error
	Get(ctx context.Context, endpoint string, out any) error
	Delete(ctx context.Context, endpoint string, out any) error
	Download(ctx context.Context, endpoint string, payload any) ([]byte, error)
}

// Reporter handles exports, persistence and report generation
type Reporter struct {
	backend  Backend
	analyzer *analyzer.Analyzer
	now      func() time.Time
}

// New creates a new Reporter instance
func New(backend Backend) *Reporter {
	return NewWithAnalyzer(backend, analyzer.New())
}

// NewWithAnalyzer creates a Reporter grading reports with a
func NewWithAnalyzer(backend Backend, a *analyzer.Analyzer) *Reporter {
	return &Reporter{
		backend:  backend,
		analyzer: a,
		now:      time.Now,
	}
}

// ExportMarkdown lists every group as a heading followed by one link per item
func ExportMarkdown(groups []models.ContentGroup) string {
	var buf strings.Builder
	for _, g := range groups {
		fmt.Fprintf(&buf, "## %s\n", g.Category)
		for _, it := range g.Items {
			fmt.Fprintf(&buf, "- [%s](%s) (%s)\n", it.Title, it.Link, it.Status)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// ExportJSON serializes the groups as an indented JSON array
func ExportJSON(groups []models.ContentGroup) ([]byte, error) {
	if groups == nil {
		groups = []models.ContentGroup{}
	}
	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal groups: %w", err)
	}
	return data, nil
}

// ExportCSV writes one row per item with the CSVHeader columns
func ExportCSV(w io.Writer, groups []models.ContentGroup) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, g := range groups {
		for _, it := range g.Items {
			if err := cw.Write([]string{g.Category, string(it.ID), it.Title, it.Link, it.Status}); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// DownloadCSV asks the backend to build the CSV export
func (r *Reporter) DownloadCSV(ctx context.Context, groups []models.ContentGroup) ([]byte, error) {
	if groups == nil {
		groups = []models.ContentGroup{}
	}
	data, err := r.backend.Download(ctx, client.EndpointDownloadCSV, models.BrokenLinksRequest{Groups: groups})
	if err != nil {
		return nil, fmt.Errorf("CSV export failed: %w", err)
	}
	return data, nil
}

// HostKey returns the key reports are stored under: the hostname of target,
// with https:// assumed when no scheme is given.
func HostKey(target string) (string, error) {
	return utils.Hostname(target)
}

// Save posts the whole report to the backend and returns the stored filename
func (r *Reporter) Save(ctx context.Context, report models.Report, target string) (string, error) {
	host, err := HostKey(target)
	if err != nil {
		return "", err
	}
	var resp models.SaveResponse
	if err := r.backend.Call(ctx, client.ReportsEndpoint(host), report, &resp); err != nil {
		return "", fmt.Errorf("save failed: %w", err)
	}
	if !resp.Saved {
		return "", fmt.Errorf("save failed: backend did not store the report")
	}
	return resp.Filename, nil
}

// ListSaved lists the reports stored for target, newest first
func (r *Reporter) ListSaved(ctx context.Context, target string) ([]models.SavedReport, error) {
	host, err := HostKey(target)
	if err != nil {
		return nil, err
	}
	var saved []models.SavedReport
	if err := r.backend.Get(ctx, client.ReportsEndpoint(host), &saved); err != nil {
		return nil, fmt.Errorf("listing reports failed: %w", err)
	}
	if saved == nil {
		saved = []models.SavedReport{}
	}
	return saved, nil
}

// FetchSaved downloads a stored report
func (r *Reporter) FetchSaved(ctx context.Context, target, filename string) (models.Report, error) {
	host, err := HostKey(target)
	if err != nil {
		return models.Report{}, err
	}
	var raw json.RawMessage
	if err := r.backend.Get(ctx, client.ReportsEndpoint(host, filename), &raw); err != nil {
		return models.Report{}, fmt.Errorf("fetching report failed: %w", err)
	}
	return Load(bytes.NewReader(raw))
}

// DeleteSaved removes a stored report
func (r *Reporter) DeleteSaved(ctx context.Context, target, filename string) error {
	host, err := HostKey(target)
	if err != nil {
		return err
	}
	if err := r.backend.Delete(ctx, client.ReportsEndpoint(host, filename), nil); err != nil {
		return fmt.Errorf("deleting report failed: %w", err)
	}
	return nil
}

// Load parses a report document. Any subset of the known keys may be present;
// unknown keys are ignored and null values count as absent.
func Load(reader io.Reader) (models.Report, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to read report: %w", err)
	}
	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return models.Report{}, &MalformedReportError{Cause: err}
	}
	return report, nil
}

// IsMalformed reports whether err comes from an unparsable report
func IsMalformed(err error) bool {
	var malformed *MalformedReportError
	return errors.As(err, &malformed)
}

// WriteLocal stores a JSON snapshot of report in dir and returns its path
func (r *Reporter) WriteLocal(report models.Report, dir string) (string, error) {
	name := "report"
	if report.Target != "" {
		if host, err := HostKey(report.Target); err == nil {
			name = host
		}
	}
	stamp := r.now().UTC().Format("2006-01-02T15-04-05")
	filename := utils.SanitizeFilename(fmt.Sprintf("%s-%s.json", name, stamp))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// document is the data behind a generated full report
type document struct {
	Target      string           `json:"target"`
	GeneratedAt time.Time        `json:"generated_at"`
	Scorecard   models.Scorecard `json:"scorecard"`
	Report      models.Report    `json:"report"`
}

// GenerateReport creates a full report in the specified format
func (r *Reporter) GenerateReport(report models.Report, format string) (string, error) {
	doc := document{
		Target:      report.Target,
		GeneratedAt: r.now(),
		Scorecard:   r.analyzer.Scorecard(report),
		Report:      report,
	}
	if doc.Target == "" {
		doc.Target = "unknown site"
	}

	switch format {
	case FormatJSON:
		return r.generateJSON(doc)
	case FormatHTML:
		return r.generateHTML(doc)
	case FormatMarkdown, "md":
		return r.generateMarkdown(doc), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// generateJSON creates a JSON formatted report
func (r *Reporter) generateJSON(doc document) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

// generateHTML creates an HTML formatted report
func (r *Reporter) generateHTML(doc document) (string, error) {
	t, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// generateMarkdown creates a Markdown formatted report
func (r *Reporter) generateMarkdown(doc document) string {
	var buf bytes.Buffer
	card := doc.Scorecard

	fmt.Fprintf(&buf, "# Audit Report for %s\n\n", doc.Target)
	fmt.Fprintf(&buf, "*Generated on %s*\n\n", doc.GeneratedAt.Format("January 2, 2006"))

	fmt.Fprintf(&buf, "## Executive Summary\n\n")
	fmt.Fprintf(&buf, "**Overall Grade:** %s (%.0f/100)\n\n", card.Grade, card.Overall)

	if len(card.Scores) > 0 {
		fmt.Fprintf(&buf, "### Scores\n\n")
		fmt.Fprintf(&buf, "| Area | Score |\n")
		fmt.Fprintf(&buf, "|------|-------|\n")
		for _, s := range card.Scores {
			fmt.Fprintf(&buf, "| %s | %.0f |\n", s.Area, s.Score)
		}
		fmt.Fprintf(&buf, "| **Overall** | **%.0f** |\n\n", card.Overall)
	}

	if len(card.Strengths) > 0 {
		fmt.Fprintf(&buf, "### Strengths\n\n")
		for _, strength := range card.Strengths {
			fmt.Fprintf(&buf, "- %s\n", strength)
		}
		fmt.Fprintf(&buf, "\n")
	}

	if len(card.Weaknesses) > 0 {
		fmt.Fprintf(&buf, "### Areas for Improvement\n\n")
		for _, weakness := range card.Weaknesses {
			fmt.Fprintf(&buf, "- %s\n", weakness)
		}
		fmt.Fprintf(&buf, "\n")
	}

	if len(card.Findings) > 0 {
		fmt.Fprintf(&buf, "## Key Findings\n\n")
		for _, finding := range card.Findings {
			fmt.Fprintf(&buf, "- **%s** (%s): %s\n", finding.Category, finding.Severity, finding.Description)
		}
		fmt.Fprintf(&buf, "\n")
	}

	report := doc.Report
	if len(report.Groups) > 0 {
		fmt.Fprintf(&buf, "## Content\n\n")
		for _, g := range report.Groups {
			fmt.Fprintf(&buf, "### %s (%d)\n", g.Category, len(g.Items))
			for _, it := range g.Items {
				fmt.Fprintf(&buf, "- [%s](%s) (%s)\n", it.Title, it.Link, it.Status)
			}
			fmt.Fprintf(&buf, "\n")
		}
	}

	if len(report.Broken) > 0 {
		fmt.Fprintf(&buf, "## Broken Links\n\n")
		for _, link := range report.Broken {
			fmt.Fprintf(&buf, "- %s\n", link)
		}
		fmt.Fprintf(&buf, "\n")
	}

	if len(report.Themes) > 0 || len(report.Plugins) > 0 {
		fmt.Fprintf(&buf, "## Themes & Plugins\n\n")
		fmt.Fprintf(&buf, "- **Themes:** %s\n", orDash(strings.Join(report.Themes, ", ")))
		fmt.Fprintf(&buf, "- **Plugins:** %s\n\n", orDash(strings.Join(report.Plugins, ", ")))
	}

	if len(report.Users) > 0 {
		fmt.Fprintf(&buf, "## Exposed Users\n\n")
		for _, u := range report.Users {
			fmt.Fprintf(&buf, "- %s (%s)\n", u.Name, u.ProfileLink)
		}
		fmt.Fprintf(&buf, "\n")
	}

	return buf.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
