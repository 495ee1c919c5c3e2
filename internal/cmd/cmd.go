// Package cmd holds helpers shared by the CLI commands.
package cmd

// Mode constants
const (
	ModeReportArg = "report-arg"
	ModeFlags     = "flags"
)

// DetermineMode determines the mode based on the provided arguments.
func DetermineMode(args []string) string {
	if len(args) > 0 {
		return ModeReportArg
	}
	return ModeFlags
}
