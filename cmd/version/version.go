package version

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X".
var (
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"
)

// Versions holds the version information of the build.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:                   "version [--json]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersionInfo(cmd.OutOrStdout(), current(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the version information as JSON")
	return cmd
}

func current() Versions {
	golangVersion := GolangVersion
	if golangVersion == "unknown" {
		golangVersion = runtime.Version()
	}
	return Versions{
		Version:       CoreVersion,
		GolangVersion: golangVersion,
		BuildTime:     BuildTime,
	}
}

// printVersionInfo prints the version information as text or JSON.
func printVersionInfo(w io.Writer, versions Versions, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(versions)
	}

	_, err := fmt.Fprintf(w, "Core Version: v%s\nGo Version: %s\nBuild Time: %s\n",
		versions.Version, versions.GolangVersion, versions.BuildTime)
	return err
}
