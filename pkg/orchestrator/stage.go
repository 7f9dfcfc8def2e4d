package orchestrator

import (
	"time"
)

// Stage identifies one analysis call in the run sequence
type Stage string

const (
	StageContent       Stage = "content"
	StageSEO           Stage = "seo"
	StagePerformance   Stage = "performance"
	StageLighthouse    Stage = "lighthouse"
	StageAccessibility Stage = "accessibility"
	StageSecurity      Stage = "security"
	StageBroken        Stage = "broken"
	StageThemePlugin   Stage = "theme-plugin"
	StageUsers         Stage = "users"
)

// Sequence is the fixed execution order of a run
var Sequence = []Stage{
	StageContent,
	StageSEO,
	StagePerformance,
	StageLighthouse,
	StageAccessibility,
	StageSecurity,
	StageBroken,
	StageThemePlugin,
	StageUsers,
}

var stageTitles = map[Stage]string{
	StageContent:       "Content",
	StageSEO:           "SEO",
	StagePerformance:   "Performance",
	StageLighthouse:    "Lighthouse",
	StageAccessibility: "Accessibility",
	StageSecurity:      "Security",
	StageBroken:        "Broken links",
	StageThemePlugin:   "Themes/Plugins",
	StageUsers:         "Users",
}

// Title is the name shown to users
func (s Stage) Title() string {
	if t, ok := stageTitles[s]; ok {
		return t
	}
	return string(s)
}

// Outcome of a stage
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeFailed    Outcome = "failed"
	OutcomeSoftError Outcome = "soft-error"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeDisabled  Outcome = "disabled"
)

// StageResult records how one stage ended
type StageResult struct {
	Stage    Stage
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// RunResult collects the stage results of one run, in execution order
type RunResult struct {
	Target   string
	Stages   []StageResult
	Duration time.Duration
}

// Failed returns the stages that did not produce a result
func (r *RunResult) Failed() []StageResult {
	var failed []StageResult
	for _, s := range r.Stages {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// Result looks up the result of a stage
func (r *RunResult) Result(stage Stage) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s, true
		}
	}
	return StageResult{}, false
}
