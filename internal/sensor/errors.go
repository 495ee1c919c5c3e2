package sensor

import "fmt"

// RemediationHint is prepended to every report processing failure.
const RemediationHint = "Can not process ZAP report. Ensure the report is located within the project workspace " +
	"and that sensor.project_dir and sensor.report_path point to it (or set sensor.project_dir to .)"

// ProcessError wraps a failure to locate or parse the report.
type ProcessError struct {
	Err error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s: %v", RemediationHint, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}
