package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pmartell/ddcswitch/internal/config"
	"github.com/pmartell/ddcswitch/internal/display"
	"github.com/pmartell/ddcswitch/internal/process"
	"github.com/pmartell/ddcswitch/internal/switcher"
	"github.com/pmartell/ddcswitch/internal/ui"
)

var (
	verbose    bool
	configPath string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "ddcswitch <machine|swap>",
		Short: "Switch monitor inputs and contrast over DDC-CI",
		Long: `ddcswitch drives external monitors through the m1ddc utility.

Pass a configured machine name to point every display at that machine's
input and contrast, or 'swap' to toggle each display between HDMI and
USB-C based on its current input.

Common workflows:
  ddcswitch work           Switch all displays to the work machine
  ddcswitch swap           Toggle HDMI <-> USB-C on every display
  ddcswitch displays       Show detected displays
  ddcswitch get 1 input    Read a property from one display`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			process.SetGlobalVerbose(verbose)
		},
		RunE: runSwitch,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show underlying commands and debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/ddcswitch/config.yaml)")
}

func Execute(ctx context.Context, version string) error {
	rootCmd.Version = version

	rootCmd.AddCommand(displaysCmd())
	rootCmd.AddCommand(getCmd())
	rootCmd.AddCommand(maxCmd())
	rootCmd.AddCommand(setCmd())
	rootCmd.AddCommand(chgCmd())

	return rootCmd.ExecuteContext(ctx)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func runSwitch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	target := strings.ToLower(args[0])

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	runner, err := process.NewRunner()
	if err != nil {
		return err
	}

	displays := display.NewManager(runner, logger)
	sw := switcher.New(displays, switcher.PollFromConfig(cfg.Readiness), logger)
	renderer := ui.NewRenderer()

	if target == "swap" {
		renderer.StartSpinner("Swapping inputs...")
		err := sw.Swap(ctx)
		renderer.StopSpinner()
		if err != nil {
			return err
		}
		renderer.Success("Swapped inputs on all displays")
		return nil
	}

	profile, err := cfg.Profile(target)
	if err != nil {
		return err
	}
	logger.Debug("resolved profile",
		zap.String("target", target),
		zap.Stringer("input", profile.Input),
		zap.Int("contrast", profile.Contrast))

	renderer.StartSpinner("Switching displays to %s...", target)
	err = sw.Apply(ctx, profile)
	renderer.StopSpinner()
	if err != nil {
		return err
	}

	renderer.Success("Set input and contrast for %s", target)
	return nil
}
