// Package sensor runs one ZAP report through parsing, classification, issue reporting and aggregation.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/zap-sensor/internal/findings"
	"github.com/scan-io-git/zap-sensor/internal/locator"
	"github.com/scan-io-git/zap-sensor/internal/risk"
	"github.com/scan-io-git/zap-sensor/internal/severity"
	"github.com/scan-io-git/zap-sensor/internal/zap"
)

// ReportLocator opens the report. A nil reader, or a *locator.ResourceUnavailableError, means there is no report.
type ReportLocator interface {
	Locate() (io.ReadCloser, error)
}

// IssueSink receives one issue per finding, in report order.
type IssueSink interface {
	Save(issue findings.Issue) error
}

// MetricsSink receives the measures of a run.
type MetricsSink interface {
	SaveMeasures(measures risk.Measures) error
}

// Outcome tells how a run that did not fail ended.
type Outcome int

const (
	// OutcomeReportMissing means no report file could be located or opened.
	OutcomeReportMissing Outcome = iota
	// OutcomeReportEmpty means the report file exists but has no content.
	OutcomeReportEmpty
	// OutcomeNoFindings means the report has a site without findings.
	OutcomeNoFindings
	// OutcomeProcessed means at least one finding was reported.
	OutcomeProcessed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReportMissing:
		return "report-missing"
	case OutcomeReportEmpty:
		return "report-empty"
	case OutcomeNoFindings:
		return "no-findings"
	case OutcomeProcessed:
		return "processed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Skipped reports whether the run ended without reading a report.
func (o Outcome) Skipped() bool {
	return o == OutcomeReportMissing || o == OutcomeReportEmpty
}

// Result summarizes a run.
type Result struct {
	Outcome     Outcome
	Report      *zap.Report // nil when Outcome.Skipped()
	IssuesSaved int
	Anomalies   int // findings whose risk code was outside the known range
	Measures    risk.Measures
}

// Sensor wires the collaborators of a run.
type Sensor struct {
	locator ReportLocator
	issues  IssueSink
	metrics MetricsSink
	target  string
	score   risk.ScoreFunc
	logger  hclog.Logger
}

// Option customizes a Sensor.
type Option func(*Sensor)

// WithScoreFunc replaces risk.InheritedRiskScore.
func WithScoreFunc(score risk.ScoreFunc) Option {
	return func(s *Sensor) {
		if score != nil {
			s.score = score
		}
	}
}

// WithLogger sets the logger; the default discards output.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Sensor) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Sensor raising issues on target.
func New(reportLocator ReportLocator, issues IssueSink, metrics MetricsSink, target string, opts ...Option) *Sensor {
	s := &Sensor{
		locator: reportLocator,
		issues:  issues,
		metrics: metrics,
		target:  target,
		score:   risk.InheritedRiskScore,
		logger:  hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute processes the report and saves the measures, including the zero measures of a skipped run.
// Locate and parse failures are returned as *ProcessError; nothing is saved to the metrics sink then.
func (s *Sensor) Execute(ctx context.Context) (*Result, error) {
	start := time.Now()
	s.logger.Info("processing ZAP report", "target", s.target)

	result, err := s.process(ctx)
	if err != nil {
		s.logger.Error("ZAP report processing failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	if err := s.metrics.SaveMeasures(result.Measures); err != nil {
		return nil, fmt.Errorf("failed to save measures: %w", err)
	}

	s.logger.Info("ZAP report processed",
		"outcome", result.Outcome,
		"issues", result.IssuesSaved,
		"risk_score", result.Measures.RiskScore,
		"duration", time.Since(start))
	return result, nil
}

func (s *Sensor) process(ctx context.Context) (*Result, error) {
	rc, err := s.locator.Locate()
	if err != nil {
		var unavailable *locator.ResourceUnavailableError
		if errors.As(err, &unavailable) {
			s.logger.Info("ZAP report not available, skipping", "path", unavailable.Path, "reason", unavailable.Err)
			return s.skipped(OutcomeReportMissing), nil
		}
		return nil, &ProcessError{Err: err}
	}
	if rc == nil {
		s.logger.Info("no ZAP report, skipping")
		return s.skipped(OutcomeReportMissing), nil
	}

	report, err := zap.Parse(rc)
	if err != nil {
		return nil, &ProcessError{Err: err}
	}
	if report == nil {
		s.logger.Info("ZAP report is empty, skipping")
		return s.skipped(OutcomeReportEmpty), nil
	}

	result := &Result{Outcome: OutcomeProcessed, Report: report}
	found := report.Findings()
	if len(found) == 0 {
		result.Outcome = OutcomeNoFindings
	}
	s.logger.Debug("ZAP report parsed", "site", report.Site.Name, "findings", len(found), "version", report.Version)

	severities := make([]severity.Severity, 0, len(found))
	for i := range found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f := &found[i]
		if err := severity.Validate(f.RiskCode); err != nil {
			s.logger.Warn("unexpected risk code", "pluginid", f.PluginID, "error", err)
			result.Anomalies++
		}
		sev := severity.Classify(f.RiskCode)

		if err := s.issues.Save(findings.NewIssue(f, sev, s.target)); err != nil {
			return nil, fmt.Errorf("failed to save issue for plugin %s: %w", f.PluginID, err)
		}
		severities = append(severities, sev)
	}

	counters, score := risk.Aggregate(severities, s.score)
	result.Measures = risk.Measures{Counters: counters, RiskScore: score}
	result.IssuesSaved = len(severities)
	return result, nil
}

func (s *Sensor) skipped(outcome Outcome) *Result {
	return &Result{
		Outcome:  outcome,
		Measures: risk.NewMeasures(risk.Counters{}, s.score),
	}
}
