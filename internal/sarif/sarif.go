// Package sarif writes issues as a SARIF 2.1.0 document.
package sarif

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scan-io-git/zap-sensor/internal/findings"
)

const (
	ToolName           = "OWASP ZAP"
	ToolInformationURI = "https://www.zaproxy.org/"

	// Result property names.
	PropertyLevel    = "Level"
	PropertySeverity = "severity"
	PropertyTarget   = "target"
)

var ErrSinkClosed = errors.New("SARIF sink is already closed")

// Sink is an issue sink collecting one SARIF result per issue.
// The document is written once, on Close. Abort drops it without writing.
type Sink struct {
	report *sarif.Report
	run    *sarif.Run
	out    io.Writer
	logger hclog.Logger
	closed bool
	saved  int

	// set by CreateFileSink: out is a temporary file renamed to path on Close
	path    string
	tmpPath string
}

// NewSink creates a sink writing to out. If out is an io.Closer it is closed by Close.
func NewSink(out io.Writer, logger hclog.Logger) (*Sink, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Sink{
		report: report,
		run:    sarif.NewRunWithInformationURI(ToolName, ToolInformationURI),
		out:    out,
		logger: logger,
	}, nil
}

// CreateFileSink returns a sink writing to path. The document goes to a temporary file next to
// path, and path is only replaced by a successful Close.
func CreateFileSink(path string, logger hclog.Logger) (*Sink, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create directory for SARIF output %q: %w", path, err)
	}
	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to open SARIF output %q: %w", path, err)
	}

	sink, err := NewSink(file, logger)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return nil, err
	}
	sink.path = path
	sink.tmpPath = file.Name()
	return sink, nil
}

// Save adds a rule for issue.RuleKey, once per key, and a result for the issue.
func (s *Sink) Save(issue findings.Issue) error {
	if s.closed {
		return ErrSinkClosed
	}
	if issue.RuleKey == "" {
		return fmt.Errorf("issue has no rule key")
	}

	level := issue.Severity.SarifLevel()
	message := issue.Message
	if message == "" {
		message = issue.Title
	}

	// AddRule returns the existing rule for a known key; the first issue configures it.
	rule := s.run.AddRule(issue.RuleKey)
	if rule.DefaultConfiguration == nil {
		description := issue.Title
		if description == "" {
			description = message
		}
		rule.WithDescription(description).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: level,
			})
		if issue.Solution != "" {
			solution := issue.Solution
			rule.Help = &sarif.MultiformatMessageString{Text: &solution}
		}
	}

	location := sarif.NewLocation().WithPhysicalLocation(
		sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(issue.Target)),
	)

	result := sarif.NewRuleResult(rule.ID).
		WithMessage(sarif.NewTextMessage(message)).
		WithLevel(level).
		WithLocations([]*sarif.Location{location})

	result.Properties = sarif.Properties{
		PropertyLevel:    level,
		PropertySeverity: issue.Severity.String(),
		PropertyTarget:   issue.Target,
	}
	for _, p := range issue.Properties {
		result.Properties[p.Name] = p.Value
	}

	s.run.AddResult(result)
	s.saved++
	return nil
}

// Saved returns the number of results collected so far.
func (s *Sink) Saved() int {
	return s.saved
}

// Close writes the SARIF document. Calling Close twice returns ErrSinkClosed.
func (s *Sink) Close() error {
	if s.closed {
		return ErrSinkClosed
	}
	s.closed = true

	s.report.AddRun(s.run)
	writeErr := s.report.PrettyWrite(s.out)
	closeErr := s.closeOutput()

	if writeErr != nil {
		s.removeTemp()
		return fmt.Errorf("failed to write SARIF report: %w", writeErr)
	}
	if closeErr != nil {
		s.removeTemp()
		return fmt.Errorf("failed to close SARIF output: %w", closeErr)
	}
	if s.tmpPath != "" {
		if err := os.Chmod(s.tmpPath, 0o644); err != nil {
			s.removeTemp()
			return fmt.Errorf("failed to set SARIF output permissions: %w", err)
		}
		if err := os.Rename(s.tmpPath, s.path); err != nil {
			s.removeTemp()
			return fmt.Errorf("failed to move SARIF output to %q: %w", s.path, err)
		}
	}

	levels := CollectLevelInfo(s.report)
	s.logger.Debug("SARIF report written",
		"path", s.path,
		"error", levels["error"],
		"warning", levels["warning"],
		"note", levels["note"],
		"total", levels["total"],
	)
	return nil
}

// Abort discards the collected results without writing anything. An existing file at the
// output path is left untouched. Aborting a closed sink is a no-op.
func (s *Sink) Abort() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.closeOutput()
	s.removeTemp()
	s.logger.Debug("SARIF report discarded", "path", s.path, "results", s.saved)
	return err
}

func (s *Sink) closeOutput() error {
	if c, ok := s.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Sink) removeTemp() {
	if s.tmpPath == "" {
		return
	}
	if err := os.Remove(s.tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove temporary SARIF output", "path", s.tmpPath, "error", err)
	}
}

// CollectLevelInfo counts results per SARIF level, plus a "total" entry.
func CollectLevelInfo(report *sarif.Report) map[string]int {
	levelInfo := map[string]int{
		"error":   0,
		"warning": 0,
		"note":    0,
		"total":   0,
	}

	for _, run := range report.Runs {
		for _, result := range run.Results {
			level := "note"
			if result.Level != nil {
				level = *result.Level
			}
			levelInfo[level]++
			levelInfo["total"]++
		}
	}
	return levelInfo
}
