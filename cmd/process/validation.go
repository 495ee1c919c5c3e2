package process

import (
	"fmt"
	"os"
	"strings"

	"github.com/scan-io-git/zap-sensor/pkg/shared/config"

	cmdutil "github.com/scan-io-git/zap-sensor/internal/cmd"
)

// validateProcessArgs validates the command line for the selected mode, before configuration fallbacks are applied.
func validateProcessArgs(options *RunOptionsProcess, args []string, mode string) error {
	var issues []string

	switch mode {
	case cmdutil.ModeReportArg:
		if len(args) != 1 {
			issues = append(issues, "provide exactly one report path")
		} else if strings.TrimSpace(args[0]) == "" {
			issues = append(issues, "report path argument is empty")
		}
		if strings.TrimSpace(options.ReportPath) != "" {
			issues = append(issues, "report path given both as an argument and with 'report'")
		}
	case cmdutil.ModeFlags:
		if len(args) > 0 {
			issues = append(issues, fmt.Sprintf("unexpected positional arguments: %s", strings.Join(args, ", ")))
		}
	default:
		issues = append(issues, fmt.Sprintf("invalid process mode: %q", mode))
	}

	if len(issues) > 0 {
		return fmt.Errorf("%s", strings.Join(issues, "; "))
	}
	return nil
}

// validateResolvedOptions validates the options once flags, arguments and configuration are merged.
func validateResolvedOptions(options *RunOptionsProcess) error {
	var (
		missing []string
		issues  []string
	)

	if strings.TrimSpace(options.ReportPath) == "" {
		missing = append(missing, "report")
	} else if err := config.ValidateReportPath(options.ReportPath); err != nil {
		issues = append(issues, err.Error())
	}
	if strings.TrimSpace(options.ProjectDir) == "" {
		missing = append(missing, "project-dir")
	}
	if strings.TrimSpace(options.ProjectKey) == "" {
		missing = append(missing, "project-key")
	}

	if options.SarifOutput != "" {
		if info, err := os.Stat(options.SarifOutput); err == nil && info.IsDir() {
			issues = append(issues, fmt.Sprintf("'sarif-output' %q is a directory, not a file", options.SarifOutput))
		}
	}
	if options.ArtifactsDir != "" {
		if info, err := os.Stat(options.ArtifactsDir); err == nil && !info.IsDir() {
			issues = append(issues, fmt.Sprintf("'artifacts-dir' %q is not a directory", options.ArtifactsDir))
		}
	}

	if len(missing) > 0 {
		issues = append([]string{fmt.Sprintf("missing required flags: %s", strings.Join(missing, ", "))}, issues...)
	}
	if len(issues) > 0 {
		return fmt.Errorf("%s", strings.Join(issues, "; "))
	}
	return nil
}
