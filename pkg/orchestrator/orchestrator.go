// Package orchestrator runs the analysis stages against the backend in a fixed
// order and feeds their results into the report store.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/amosWeiskopf/wpaudit/internal/models"
	"github.com/amosWeiskopf/wpaudit/pkg/client"
	"github.com/amosWeiskopf/wpaudit/pkg/notify"
	"github.com/amosWeiskopf/wpaudit/pkg/preflight"
	"github.com/amosWeiskopf/wpaudit/pkg/render"
	"github.com/amosWeiskopf/wpaudit/pkg/seo"
	"github.com/amosWeiskopf/wpaudit/pkg/store"
	"github.com/amosWeiskopf/wpaudit/pkg/utils"
)

// Backend performs the analysis calls
type Backend interface {
	Call(ctx context.Context, endpoint string, payload any, out any) error
}

// RobotsChecker is consulted before a run when configured
type RobotsChecker interface {
	Check(ctx context.Context, target, path string) (preflight.Result, error)
}

// Options configures a run
type Options struct {
	Lighthouse bool
}

// Dependencies supplies the collaborators of the orchestrator. Backend and
// Store are required; the rest default to no-ops.
type Dependencies struct {
	Backend   Backend
	Store     *store.Store
	Renderer  render.Renderer
	Notifier  notify.Notifier
	Indicator notify.Indicator
	Robots    RobotsChecker
	Logger    *zap.Logger
	// View supplies the current SEO list state when SEO widgets are rendered
	View func() seo.View
}

// Orchestrator executes analysis runs
type Orchestrator struct {
	deps    Dependencies
	options Options
}

// New constructs an Orchestrator
func New(deps Dependencies, options Options) *Orchestrator {
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Indicator == nil {
		deps.Indicator = notify.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.View == nil {
		deps.View = func() seo.View { return seo.View{} }
	}
	return &Orchestrator{deps: deps, options: options}
}

// NewRequest builds the base request from raw user input
func NewRequest(target, username, password string) models.AnalysisRequest {
	return models.AnalysisRequest{
		URL:      strings.TrimSpace(target),
		Username: strings.TrimSpace(username),
		Password: strings.TrimSpace(password),
	}
}

// Run executes every stage in order. Stage failures are reported and recorded
// in the result without stopping the run; only an empty target is an error.
func (o *Orchestrator) Run(ctx context.Context, req models.AnalysisRequest) (*RunResult, error) {
	if req.URL == "" {
		return nil, ErrEmptyTarget
	}

	release := o.deps.Store.BeginRun()
	defer release()
	o.deps.Indicator.Start("Analyzing " + req.URL)
	success := false
	defer func() { o.deps.Indicator.Stop(success) }()

	logger := o.deps.Logger.With(zap.String("target", req.URL))
	started := time.Now()
	result := &RunResult{Target: req.URL}

	o.deps.Store.Set(models.Report{Target: req.URL})
	o.preflight(ctx, req, logger)

	// stage 1 output, required by the broken links and theme/plugin stages
	var content *models.ContentResponse

	o.stage(ctx, result, logger, StageContent, func(ctx context.Context) (models.Report, error) {
		var resp models.ContentResponse
		if err := o.deps.Backend.Call(ctx, client.EndpointContent, req, &resp); err != nil {
			return models.Report{}, err
		}
		if resp.Groups == nil {
			resp.Groups = []models.ContentGroup{}
		}
		content = &resp
		return models.Report{Groups: resp.Groups, Summary: &resp.Summary}, nil
	})

	o.stage(ctx, result, logger, StageSEO, func(ctx context.Context) (models.Report, error) {
		entries := []models.SeoEntry{}
		if err := o.deps.Backend.Call(ctx, client.EndpointSEO, req, &entries); err != nil {
			return models.Report{}, err
		}
		return models.Report{SEO: nonNil(entries)}, nil
	})

	o.stage(ctx, result, logger, StagePerformance, func(ctx context.Context) (models.Report, error) {
		var perf models.PerformanceResult
		if err := o.deps.Backend.Call(ctx, client.EndpointPerformance, req, &perf); err != nil {
			return models.Report{}, err
		}
		return models.Report{Performance: &perf}, nil
	})

	if o.options.Lighthouse {
		o.stage(ctx, result, logger, StageLighthouse, func(ctx context.Context) (models.Report, error) {
			var lh models.LighthouseResult
			if err := o.deps.Backend.Call(ctx, client.EndpointLighthouse, req, &lh); err != nil {
				return models.Report{}, err
			}
			return models.Report{Lighthouse: &lh}, nil
		})
	} else {
		result.Stages = append(result.Stages, StageResult{Stage: StageLighthouse, Outcome: OutcomeDisabled})
	}

	o.stage(ctx, result, logger, StageAccessibility, func(ctx context.Context) (models.Report, error) {
		var acc models.AccessibilityResult
		if err := o.callSoft(ctx, StageAccessibility, client.EndpointAccessibility, req, &acc); err != nil {
			return models.Report{}, err
		}
		return models.Report{Accessibility: &acc}, nil
	})

	o.stage(ctx, result, logger, StageSecurity, func(ctx context.Context) (models.Report, error) {
		var sec models.SecurityResult
		if err := o.callSoft(ctx, StageSecurity, client.EndpointSecurity, req, &sec); err != nil {
			return models.Report{}, err
		}
		return models.Report{Security: &sec}, nil
	})

	o.stage(ctx, result, logger, StageBroken, func(ctx context.Context) (models.Report, error) {
		if content == nil {
			return models.Report{}, &DependencyUnmetError{Stage: StageBroken, Requires: StageContent}
		}
		return o.brokenLinks(ctx, content.Groups)
	})

	o.stage(ctx, result, logger, StageThemePlugin, func(ctx context.Context) (models.Report, error) {
		if content == nil {
			return models.Report{}, &DependencyUnmetError{Stage: StageThemePlugin, Requires: StageContent}
		}
		return o.themesAndPlugins(ctx, req, content.Groups)
	})

	o.stage(ctx, result, logger, StageUsers, func(ctx context.Context) (models.Report, error) {
		users := []models.UserEntry{}
		if err := o.deps.Backend.Call(ctx, client.EndpointUsers, req, &users); err != nil {
			return models.Report{}, err
		}
		return models.Report{Users: nonNil(users)}, nil
	})

	result.Duration = time.Since(started)
	failed := len(result.Failed())
	success = failed == 0
	logger.Info("analysis finished", zap.Int("failed", failed), zap.Duration("duration", result.Duration))
	if failed == 0 {
		notify.Infof(o.deps.Notifier, "Analysis complete")
	} else {
		notify.Warnf(o.deps.Notifier, "Analysis complete with %d failed stage(s)", failed)
	}
	return result, nil
}

func (o *Orchestrator) brokenLinks(ctx context.Context, groups []models.ContentGroup) (models.Report, error) {
	broken := []string{}
	if err := o.deps.Backend.Call(ctx, client.EndpointBroken, models.BrokenLinksRequest{Groups: groups}, &broken); err != nil {
		return models.Report{}, err
	}
	return models.Report{Broken: nonNil(broken)}, nil
}

func (o *Orchestrator) themesAndPlugins(ctx context.Context, req models.AnalysisRequest, groups []models.ContentGroup) (models.Report, error) {
	body := models.ThemePluginRequest{AnalysisRequest: req, URLs: models.Links(groups)}
	var tp models.ThemePluginResult
	if err := o.deps.Backend.Call(ctx, client.EndpointThemePlugin, body, &tp); err != nil {
		return models.Report{}, err
	}
	return models.Report{Themes: nonNil(tp.Themes), Plugins: nonNil(tp.Plugins)}, nil
}

// stage runs one step: on success the patch is merged into the store and its
// widgets re-rendered, on failure the error is surfaced and recorded.
func (o *Orchestrator) stage(ctx context.Context, result *RunResult, logger *zap.Logger, stage Stage, run func(context.Context) (models.Report, error)) {
	started := time.Now()
	record := StageResult{Stage: stage, Outcome: OutcomeOK}

	var patch models.Report
	err := ctx.Err()
	if err == nil {
		patch, err = run(ctx)
	}
	record.Duration = time.Since(started)

	if err != nil {
		var soft *SoftAnalysisError
		var unmet *DependencyUnmetError
		switch {
		case errors.As(err, &unmet):
			record.Outcome = OutcomeSkipped
		case errors.As(err, &soft):
			record.Outcome = OutcomeSoftError
		default:
			record.Outcome = OutcomeFailed
		}
		stageErr := &StageError{Stage: stage, Err: err}
		record.Err = stageErr
		result.Stages = append(result.Stages, record)

		logger.Warn("stage failed",
			zap.String("stage", string(stage)),
			zap.String("outcome", string(record.Outcome)),
			zap.Int("status", stageErr.Status()),
			zap.Duration("duration", record.Duration),
			zap.Error(err))
		notify.Errorf(o.deps.Notifier, "%s", stageErr.Error())
		return
	}

	result.Stages = append(result.Stages, record)
	o.deps.Store.Set(patch)
	logger.Info("stage completed", zap.String("stage", string(stage)), zap.Duration("duration", record.Duration))

	if o.deps.Renderer != nil {
		if err := render.Patch(o.deps.Renderer, o.deps.Store.Get(), patch, o.deps.View()); err != nil {
			logger.Warn("render failed", zap.String("stage", string(stage)), zap.Error(err))
		}
	}
}

// callSoft performs a call whose 200 response may carry an "error" field
// instead of a result.
func (o *Orchestrator) callSoft(ctx context.Context, stage Stage, endpoint string, req models.AnalysisRequest, out any) error {
	var raw json.RawMessage
	if err := o.deps.Backend.Call(ctx, endpoint, req, &raw); err != nil {
		return err
	}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", endpoint, err)
	}
	if msg := softMessage(envelope.Error); msg != "" {
		return &SoftAnalysisError{Stage: stage, Message: msg}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", endpoint, err)
	}
	return nil
}

// softMessage turns the error field into text. Absent, null, false and empty
// values mean no error.
func softMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	switch string(raw) {
	case "null", "false":
		return ""
	}
	return string(raw)
}

func (o *Orchestrator) preflight(ctx context.Context, req models.AnalysisRequest, logger *zap.Logger) {
	if o.deps.Robots == nil {
		return
	}
	res, err := o.deps.Robots.Check(ctx, utils.NormalizeTarget(req.URL), preflight.RESTPath)
	if err != nil {
		logger.Debug("robots.txt check failed", zap.Error(err))
		return
	}
	if !res.Allowed {
		notify.Warnf(o.deps.Notifier, "%s disallows %s; some analyses may be incomplete", res.RobotsURL, preflight.RESTPath)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
