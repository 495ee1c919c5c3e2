package process

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/zap-sensor/internal/locator"
	"github.com/scan-io-git/zap-sensor/internal/sensor"
	"github.com/scan-io-git/zap-sensor/pkg/shared/config"
	"github.com/scan-io-git/zap-sensor/pkg/shared/errors"

	cmdutil "github.com/scan-io-git/zap-sensor/internal/cmd"
)

// RunOptionsProcess holds the arguments of the process command.
type RunOptionsProcess struct {
	ReportPath   string `json:"report_path,omitempty"`
	ProjectDir   string `json:"project_dir,omitempty"`
	ProjectKey   string `json:"project_key,omitempty"`
	SarifOutput  string `json:"sarif_output,omitempty"`
	ArtifactsDir string `json:"artifacts_dir,omitempty"`
	Quiet        bool   `json:"quiet,omitempty"`
}

// Global variables for configuration and command arguments
var (
	AppConfig      *config.Config
	logger         hclog.Logger
	processOptions RunOptionsProcess

	exampleProcessUsage = `  # Process zap-report.xml from the current directory using config.yml
  zapsensor process

  # Process a report given as an argument and write SARIF
  zapsensor process build/zap/report.xml --sarif-output build/zap.sarif

  # Process a report inside another workspace and keep the measures as an artifact
  zapsensor process --project-dir /work/shop --report reports/zap.xml --project-key shop --artifacts-dir /tmp/artifacts`

	ProcessCmd = &cobra.Command{
		Use:                   "process [REPORT] [--report PATH] [--project-dir DIR] [--project-key KEY] [--sarif-output PATH] [--artifacts-dir DIR] [--quiet]",
		Short:                 "Import an OWASP ZAP XML report as issues and risk measures",
		Long:                  "Parse an OWASP ZAP XML report, raise one issue per alert item and compute the risk measures of the project.",
		Example:               exampleProcessUsage,
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Args:                  cobra.MaximumNArgs(1),
		RunE:                  runProcess,
	}
)

// Init wires config and logger into the command package.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runProcess(cmd *cobra.Command, args []string) error {
	if AppConfig == nil {
		AppConfig = config.Default()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	mode := cmdutil.DetermineMode(args)
	options := processOptions
	if err := validateProcessArgs(&options, args, mode); err != nil {
		logger.Error("invalid command arguments", "error", err)
		return errors.NewCommandError(options, fmt.Errorf("invalid arguments: %w", err), errors.ExitCodeInvalidArgs)
	}
	prepareProcessTarget(&options, args, mode)
	repoMetadata := applyConfigFallbacks(&options, AppConfig)

	if err := validateResolvedOptions(&options); err != nil {
		logger.Error("invalid configuration", "error", err)
		return errors.NewCommandError(options, fmt.Errorf("invalid arguments: %w", err), errors.ExitCodeInvalidArgs)
	}

	out := cmd.OutOrStdout()
	issues, sarifSink, err := buildIssueSink(&options, out)
	if err != nil {
		logger.Error("failed to prepare issue output", "error", err)
		return errors.NewCommandError(options, err, errors.ExitCodeInvalidArgs)
	}
	metrics, artifactSink := buildMetricsSink(&options, out, repoMetadata)

	s := sensor.New(
		locator.NewFileLocator(options.ProjectDir, options.ReportPath, logger.Named("locator")),
		issues,
		metrics,
		options.ProjectKey,
		sensor.WithLogger(logger.Named("sensor")),
	)

	result, err := s.Execute(cmd.Context())
	if err != nil {
		if sarifSink != nil {
			if abortErr := sarifSink.Abort(); abortErr != nil {
				logger.Warn("failed to discard SARIF output", "error", abortErr)
			}
		}
		return errors.NewCommandError(options, err, errors.ExitCodeProcessingError)
	}
	if sarifSink != nil {
		if err := sarifSink.Close(); err != nil {
			logger.Error("failed to write SARIF output", "error", err)
			return errors.NewCommandError(options, err, errors.ExitCodeProcessingError)
		}
	}

	printResult(out, result, &options, sarifSink, artifactSink)
	return nil
}

func init() {
	ProcessCmd.Flags().StringVarP(&processOptions.ReportPath, "report", "r", "", "Path to the ZAP XML report, relative to the project directory unless absolute (default from sensor.report_path)")
	ProcessCmd.Flags().StringVar(&processOptions.ProjectDir, "project-dir", "", "Project workspace the report is looked up in (default from sensor.project_dir)")
	ProcessCmd.Flags().StringVar(&processOptions.ProjectKey, "project-key", "", "Project the issues are raised on (default from sensor.project_key or the project directory name)")
	ProcessCmd.Flags().StringVarP(&processOptions.SarifOutput, "sarif-output", "o", "", "Write the issues as a SARIF 2.1.0 document to this path")
	ProcessCmd.Flags().StringVar(&processOptions.ArtifactsDir, "artifacts-dir", "", "Save the measures as a JSON artifact in this directory")
	ProcessCmd.Flags().BoolVarP(&processOptions.Quiet, "quiet", "q", false, "Do not print issues to stdout")
	ProcessCmd.Flags().BoolP("help", "h", false, "Show help for process command.")
}
