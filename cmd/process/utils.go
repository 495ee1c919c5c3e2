package process

import (
	"fmt"
	"io"

	"github.com/scan-io-git/zap-sensor/internal/findings"
	"github.com/scan-io-git/zap-sensor/internal/git"
	"github.com/scan-io-git/zap-sensor/internal/risk"
	"github.com/scan-io-git/zap-sensor/internal/sarif"
	"github.com/scan-io-git/zap-sensor/internal/sensor"
	"github.com/scan-io-git/zap-sensor/pkg/shared/artifacts"
	"github.com/scan-io-git/zap-sensor/pkg/shared/config"

	cmdutil "github.com/scan-io-git/zap-sensor/internal/cmd"
)

const commandName = "process"

// prepareProcessTarget takes the report path from the positional argument in ModeReportArg.
func prepareProcessTarget(options *RunOptionsProcess, args []string, mode string) {
	if mode == cmdutil.ModeReportArg && len(args) == 1 {
		options.ReportPath = args[0]
	}
}

// applyConfigFallbacks fills the options left empty on the command line from the configuration.
// The project key falls back to sensor.project_key, then to the name of the origin repository,
// then to the project directory name. Repository metadata is returned when the project is a git checkout.
func applyConfigFallbacks(options *RunOptionsProcess, cfg *config.Config) *git.RepositoryMetadata {
	if cfg == nil {
		cfg = config.Default()
	}

	options.ReportPath = config.SetThen(options.ReportPath, cfg.Sensor.ReportPath)
	options.ProjectDir = config.SetThen(options.ProjectDir, cfg.Sensor.ProjectDir)
	options.SarifOutput = config.SetThen(options.SarifOutput, cfg.Output.SarifPath)
	options.ArtifactsDir = config.SetThen(options.ArtifactsDir, cfg.Output.ArtifactsDir)
	options.ProjectKey = config.SetThen(options.ProjectKey, cfg.Sensor.ProjectKey)

	md, err := git.CollectRepositoryMetadata(options.ProjectDir)
	if err != nil {
		logger.Debug("git metadata fallback failed", "error", err)
		md = nil
	}

	if options.ProjectKey == "" && md != nil {
		options.ProjectKey = md.RepositoryName
	}
	if options.ProjectKey == "" {
		keyCfg := *cfg
		keyCfg.Sensor.ProjectDir = options.ProjectDir
		options.ProjectKey = config.ProjectKey(&keyCfg)
	}
	return md
}

// issueSinks fans every issue out to each sink in order.
type issueSinks []sensor.IssueSink

func (s issueSinks) Save(issue findings.Issue) error {
	for _, sink := range s {
		if err := sink.Save(issue); err != nil {
			return err
		}
	}
	return nil
}

// metricsSinks fans the measures out to each sink in order.
type metricsSinks []sensor.MetricsSink

func (s metricsSinks) SaveMeasures(measures risk.Measures) error {
	for _, sink := range s {
		if err := sink.SaveMeasures(measures); err != nil {
			return err
		}
	}
	return nil
}

// consoleIssueSink prints one line per issue.
type consoleIssueSink struct {
	out io.Writer
}

func (c consoleIssueSink) Save(issue findings.Issue) error {
	_, err := fmt.Fprintf(c.out, "[%s] %s %s\n", issue.Severity, issue.RuleKey, issue.Message)
	return err
}

// consoleMetricsSink prints the measures in reporting order.
type consoleMetricsSink struct {
	out io.Writer
}

func (c consoleMetricsSink) SaveMeasures(measures risk.Measures) error {
	values := measures.Values()
	for _, key := range risk.MetricKeys() {
		if _, err := fmt.Fprintf(c.out, "%s: %v\n", key, values[key]); err != nil {
			return err
		}
	}
	return nil
}

// buildIssueSink returns the issue sink for options and, when SARIF output is requested, the SARIF sink to close.
func buildIssueSink(options *RunOptionsProcess, out io.Writer) (sensor.IssueSink, *sarif.Sink, error) {
	var sinks issueSinks
	if !options.Quiet {
		sinks = append(sinks, consoleIssueSink{out: out})
	}

	if options.SarifOutput == "" {
		return sinks, nil, nil
	}
	sarifSink, err := sarif.CreateFileSink(options.SarifOutput, logger.Named("sarif"))
	if err != nil {
		return nil, nil, err
	}
	return append(sinks, sarifSink), sarifSink, nil
}

// buildMetricsSink returns the metrics sink for options and, when an artifacts directory is set, the artifact sink.
func buildMetricsSink(options *RunOptionsProcess, out io.Writer, md *git.RepositoryMetadata) (sensor.MetricsSink, *artifacts.MeasuresSink) {
	sinks := metricsSinks{consoleMetricsSink{out: out}}
	if options.ArtifactsDir == "" {
		return sinks, nil
	}
	artifactSink := artifacts.NewMeasuresSink(options.ArtifactsDir, commandName, options.ProjectKey, logger.Named("artifacts"))
	if md != nil {
		if md.BranchName != nil {
			artifactSink.Branch = *md.BranchName
		}
		if md.CommitHash != nil {
			artifactSink.Commit = *md.CommitHash
		}
	}
	return append(sinks, artifactSink), artifactSink
}

func printResult(out io.Writer, result *sensor.Result, options *RunOptionsProcess, sarifSink *sarif.Sink, artifactSink *artifacts.MeasuresSink) {
	fmt.Fprintf(out, "outcome: %s\n", result.Outcome)
	if result.Anomalies > 0 {
		fmt.Fprintf(out, "unexpected risk codes: %d\n", result.Anomalies)
	}
	if sarifSink != nil {
		fmt.Fprintf(out, "sarif: %s (%d results)\n", options.SarifOutput, sarifSink.Saved())
	}
	if artifactSink != nil && artifactSink.LastPath() != "" {
		fmt.Fprintf(out, "artifact: %s\n", artifactSink.LastPath())
	}
}
