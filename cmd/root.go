package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/zap-sensor/cmd/process"
	"github.com/scan-io-git/zap-sensor/cmd/version"
	"github.com/scan-io-git/zap-sensor/pkg/shared/config"
	"github.com/scan-io-git/zap-sensor/pkg/shared/errors"
	"github.com/scan-io-git/zap-sensor/pkg/shared/logger"
)

var (
	cfgFile   string
	AppConfig *config.Config
	Logger    hclog.Logger
	rootCmd   = &cobra.Command{
		Use:                   "zapsensor [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "zapsensor imports OWASP ZAP reports as issues and risk measures.",
		Long: `zapsensor reads the XML report written by an OWASP ZAP scan, raises one issue per alert item
	on the project and computes per-severity counters together with a weighted risk score.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(process.ProcessCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return errors.ExitCode(err)
	}
	return errors.ExitCodeOK
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = config.DefaultConfigFile
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing config file function is crashed - %v\n", err)
		os.Exit(errors.ExitCodeInvalidArgs)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errors.ExitCodeInvalidArgs)
	}

	Logger = logger.NewLogger(AppConfig, "core")
	process.Init(AppConfig, Logger.Named("process"))
}
