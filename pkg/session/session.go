// Package session owns the report store for one user session and exposes the
// operations the command dispatcher maps user actions to.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/amosWeiskopf/wpaudit/internal/config"
	"github.com/amosWeiskopf/wpaudit/internal/models"
	"github.com/amosWeiskopf/wpaudit/pkg/analyzer"
	"github.com/amosWeiskopf/wpaudit/pkg/client"
	"github.com/amosWeiskopf/wpaudit/pkg/notify"
	"github.com/amosWeiskopf/wpaudit/pkg/orchestrator"
	"github.com/amosWeiskopf/wpaudit/pkg/render"
	"github.com/amosWeiskopf/wpaudit/pkg/reporter"
	"github.com/amosWeiskopf/wpaudit/pkg/seo"
	"github.com/amosWeiskopf/wpaudit/pkg/store"
)

// Export formats for content groups
const (
	ExportCSV      = "csv"
	ExportJSON     = "json"
	ExportMarkdown = "markdown"
)

// ErrNoTarget is returned by operations that need the audited site when no
// analysis has run and no target was given.
var ErrNoTarget = errors.New("no target: run an analysis or pass a URL")

// Options configures a session
type Options struct {
	Lighthouse bool
	CSVSource  string
	OutputDir  string
	Username   string
	Password   string
}

// Dependencies supplies the session's collaborators. Client is required.
type Dependencies struct {
	Client    *client.Client
	Analyzer  *analyzer.Analyzer
	Text      *render.Text
	DOM       *render.DOM
	Notifier  notify.Notifier
	Indicator notify.Indicator
	Robots    orchestrator.RobotsChecker
	Logger    *zap.Logger
}

// Session ties the store to the orchestrator, reporter and renderers
type Session struct {
	mu       sync.Mutex
	view     seo.View
	options  Options
	store    *store.Store
	orch     *orchestrator.Orchestrator
	reporter *reporter.Reporter
	analyzer *analyzer.Analyzer
	renderer render.Renderer
	text     *render.Text
	gate     *render.Gate
	dom      *render.DOM
	notifier notify.Notifier
	logger   *zap.Logger
}

// New creates a session with an empty report
func New(deps Dependencies, options Options) *Session {
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if options.CSVSource == "" {
		options.CSVSource = config.CSVSourceBackend
	}
	if options.OutputDir == "" {
		options.OutputDir = "."
	}

	if deps.Analyzer == nil {
		deps.Analyzer = analyzer.New()
	}

	var renderers render.Multi
	var gate *render.Gate
	if deps.Text != nil {
		gate = render.NewGate(deps.Text.WithAnalyzer(deps.Analyzer))
		renderers = append(renderers, gate)
	}
	if deps.DOM != nil {
		renderers = append(renderers, deps.DOM.WithAnalyzer(deps.Analyzer))
	}

	s := &Session{
		options:  options,
		store:    store.New(),
		reporter: reporter.NewWithAnalyzer(deps.Client, deps.Analyzer),
		analyzer: deps.Analyzer,
		renderer: renderers,
		text:     deps.Text,
		gate:     gate,
		dom:      deps.DOM,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}
	s.orch = orchestrator.New(orchestrator.Dependencies{
		Backend:   deps.Client,
		Store:     s.store,
		Renderer:  renderers,
		Notifier:  deps.Notifier,
		Indicator: deps.Indicator,
		Robots:    deps.Robots,
		Logger:    deps.Logger,
		View:      s.View,
	}, orchestrator.Options{Lighthouse: options.Lighthouse})
	return s
}

// Store exposes the report store
func (s *Session) Store() *store.Store { return s.store }

// View returns the current SEO list state
func (s *Session) View() seo.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Quietly runs fn with terminal output of widgets suppressed. The dashboard
// is still updated.
func (s *Session) Quietly(fn func() error) error {
	if s.gate == nil {
		return fn()
	}
	s.gate.Mute()
	defer s.gate.Unmute()
	return fn()
}

// Print writes the given sections of the current report to the terminal, or
// every present section when none are given.
func (s *Session) Print(fields ...models.Field) error {
	if s.text == nil {
		return nil
	}
	report := s.store.Get()
	if len(fields) == 0 {
		fields = report.Present()
	}
	return render.Fields(s.text, report, fields, s.View())
}

// Analyze runs every stage against target. Empty credentials fall back to
// the configured ones.
func (s *Session) Analyze(ctx context.Context, target, username, password string) (*orchestrator.RunResult, error) {
	if username == "" {
		username = s.options.Username
	}
	if password == "" {
		password = s.options.Password
	}
	req := orchestrator.NewRequest(target, username, password)
	if s.dom != nil {
		s.dom.SetTarget(req.URL)
	}
	return s.orch.Run(ctx, req)
}

// SortSEO reorders the stored SEO entries and re-renders the SEO widget
func (s *Session) SortSEO(order seo.Order) error {
	s.mu.Lock()
	s.view.Order = order
	s.mu.Unlock()
	s.store.SortSEO(order)
	return s.renderSEO()
}

// FilterSEO sets the minimum score shown and re-renders the SEO widget
func (s *Session) FilterSEO(minScore float64) error {
	if minScore < 0 || minScore > 100 {
		return fmt.Errorf("minimum score must be between 0 and 100, got %v", minScore)
	}
	s.mu.Lock()
	s.view.MinScore = minScore
	s.mu.Unlock()
	return s.renderSEO()
}

func (s *Session) renderSEO() error {
	return s.renderer.RenderSEO(s.store.Get().SEO, s.View())
}

// SEODetail looks an entry up by its stable key and prints it
func (s *Session) SEODetail(key string) (models.SeoEntry, error) {
	entry, ok := s.store.SEOEntry(key)
	if !ok {
		return models.SeoEntry{}, fmt.Errorf("no SEO entry with key %q", key)
	}
	if s.text != nil {
		if err := s.text.RenderSEODetail(entry); err != nil {
			return entry, err
		}
	}
	return entry, nil
}

// FilterContent re-renders the content widgets showing only items whose
// title, link or status contains query (case-insensitive).
func (s *Session) FilterContent(query string) error {
	return s.renderer.RenderGroups(FilterGroups(s.store.Get().Groups, query))
}

// FilterGroups keeps every group and the items matching query
func FilterGroups(groups []models.ContentGroup, query string) []models.ContentGroup {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || groups == nil {
		return groups
	}
	out := make([]models.ContentGroup, 0, len(groups))
	for _, g := range groups {
		filtered := models.ContentGroup{Category: g.Category, Items: []models.ContentItem{}}
		for _, it := range g.Items {
			text := strings.ToLower(it.Title + " " + it.Link + " " + it.Status)
			if strings.Contains(text, q) {
				filtered.Items = append(filtered.Items, it)
			}
		}
		out = append(out, filtered)
	}
	return out
}

// Export writes the content groups in format to path, or to
// content.<ext> in the output directory when path is empty.
func (s *Session) Export(ctx context.Context, format, path string) (string, error) {
	groups := s.store.Get().Groups

	var data []byte
	var ext string
	switch strings.ToLower(format) {
	case ExportCSV:
		ext = "csv"
		if s.options.CSVSource == config.CSVSourceLocal {
			var buf bytes.Buffer
			if err := reporter.ExportCSV(&buf, groups); err != nil {
				return "", err
			}
			data = buf.Bytes()
		} else {
			var err error
			if data, err = s.reporter.DownloadCSV(ctx, groups); err != nil {
				return "", err
			}
		}
	case ExportJSON:
		ext = "json"
		var err error
		if data, err = reporter.ExportJSON(groups); err != nil {
			return "", err
		}
	case ExportMarkdown, "md":
		ext = "md"
		data = []byte(reporter.ExportMarkdown(groups))
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}

	if path == "" {
		path = filepath.Join(s.options.OutputDir, "content."+ext)
	}
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	s.logger.Info("content exported", zap.String("format", ext), zap.String("path", path))
	return path, nil
}

func (s *Session) target(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if t := s.store.Get().Target; t != "" {
		return t, nil
	}
	return "", ErrNoTarget
}

// Save stores the current report on the backend under the target's hostname
func (s *Session) Save(ctx context.Context, target string) (string, error) {
	target, err := s.target(target)
	if err != nil {
		return "", err
	}
	filename, err := s.reporter.Save(ctx, s.store.Get(), target)
	if err != nil {
		return "", err
	}
	notify.Infof(s.notifier, "Report saved: %s", filename)
	return filename, nil
}

// Load merges an uploaded report document into the store and re-renders the
// affected widgets. An invalid document leaves the store untouched.
func (s *Session) Load(r io.Reader) (models.Report, error) {
	patch, err := reporter.Load(r)
	if err != nil {
		return models.Report{}, err
	}
	s.apply(patch)
	return patch, nil
}

// LoadFile is Load for a path on disk
func (s *Session) LoadFile(path string) (models.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to open report: %w", err)
	}
	defer func() { _ = f.Close() }()
	return s.Load(f)
}

func (s *Session) apply(patch models.Report) {
	s.store.Set(patch)
	if s.dom != nil && patch.Target != "" {
		s.dom.SetTarget(patch.Target)
	}
	if err := render.Patch(s.renderer, s.store.Get(), patch, s.View()); err != nil {
		s.logger.Warn("render failed", zap.Error(err))
	}
}

// ListSaved lists the reports stored for target
func (s *Session) ListSaved(ctx context.Context, target string) ([]models.SavedReport, error) {
	target, err := s.target(target)
	if err != nil {
		return nil, err
	}
	return s.reporter.ListSaved(ctx, target)
}

// OpenSaved downloads a stored report and merges it like an upload
func (s *Session) OpenSaved(ctx context.Context, target, filename string) (models.Report, error) {
	target, err := s.target(target)
	if err != nil {
		return models.Report{}, err
	}
	patch, err := s.reporter.FetchSaved(ctx, target, filename)
	if err != nil {
		return models.Report{}, err
	}
	s.apply(patch)
	return patch, nil
}

// DeleteSaved removes a stored report
func (s *Session) DeleteSaved(ctx context.Context, target, filename string) error {
	target, err := s.target(target)
	if err != nil {
		return err
	}
	return s.reporter.DeleteSaved(ctx, target, filename)
}

// Render redraws every widget. When path is set only the dashboard is redrawn
// and its document is written there.
func (s *Session) Render(path string) error {
	if path == "" {
		return render.All(s.renderer, s.store.Get(), s.View())
	}
	if s.dom == nil {
		return fmt.Errorf("no dashboard attached")
	}
	if err := render.All(s.dom, s.store.Get(), s.View()); err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := s.dom.WriteTo(&buf); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

// Scorecard grades the current report
func (s *Session) Scorecard() models.Scorecard {
	return s.analyzer.Scorecard(s.store.Get())
}

// Show redraws every widget followed by the scorecard
func (s *Session) Show() error {
	if err := s.Render(""); err != nil {
		return err
	}
	if s.text != nil {
		return s.text.RenderScorecard(s.Scorecard())
	}
	return nil
}

// GenerateReport writes a full report in format to path, or to a file in the
// output directory when path is empty.
func (s *Session) GenerateReport(format, path string) (string, error) {
	content, err := s.reporter.GenerateReport(s.store.Get(), format)
	if err != nil {
		return "", err
	}
	if path == "" {
		ext := format
		if format == reporter.FormatMarkdown {
			ext = "md"
		}
		path = filepath.Join(s.options.OutputDir, "report."+ext)
	}
	if err := writeFile(path, []byte(content)); err != nil {
		return "", err
	}
	return path, nil
}

// Snapshot writes the current report as a JSON document that Load accepts
func (s *Session) Snapshot() (string, error) {
	return s.reporter.WriteLocal(s.store.Get(), s.options.OutputDir)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
