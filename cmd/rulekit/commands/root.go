package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulekit/internal/version"
	"github.com/arthur-debert/rulekit/pkg/config"
	"github.com/arthur-debert/rulekit/pkg/logging"
	"github.com/arthur-debert/rulekit/pkg/ui"
	"github.com/arthur-debert/rulekit/pkg/workflow"
)

// app is the state shared by all subcommands of one invocation.
type app struct {
	verbosity  int
	configPath string
	format     string
	file       string

	cfg *config.Config
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "rulekit",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(cmd); err != nil {
				return err
			}
			logging.SetupLogger(a.cfg.Logging.Verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&a.format, "format", "", MsgFlagFormat)
	rootCmd.PersistentFlags().StringVarP(&a.file, "file", "f", DefaultFile, MsgFlagFile)

	rootCmd.AddCommand(newRulesCmd(a))
	rootCmd.AddCommand(newMatchCmd(a))
	rootCmd.AddCommand(newExpandCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newOrderCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadConfig layers the command line flags over the configuration.
func (a *app) loadConfig(cmd *cobra.Command) error {
	overrides := map[string]any{}
	if a.verbosity > 0 {
		overrides["logging.verbosity"] = a.verbosity
	}
	if cmd.Flags().Changed("format") {
		f, err := ui.ParseFormat(a.format)
		if err != nil {
			return err
		}
		// the config only knows the portable names
		if f == ui.FormatTerminal {
			f = ui.FormatAuto
		}
		overrides["output.format"] = f.String()
	}

	cfg, err := config.Load(a.configPath, overrides)
	if err != nil {
		return fmt.Errorf(MsgErrLoadConfig, err)
	}
	a.cfg = cfg
	return nil
}

// workflow loads the definition file named by --file.
func (a *app) workflow() (*workflow.Workflow, error) {
	w := workflow.FromConfig(a.cfg)
	if err := w.LoadFile(a.file); err != nil {
		return nil, fmt.Errorf(MsgErrLoadWorkflow, err)
	}
	return w, nil
}

// renderer returns the renderer for the effective output format. An
// explicit --format term wins over auto-detection.
func (a *app) renderer(cmd *cobra.Command) (ui.Renderer, error) {
	format, err := ui.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("format") {
		if format, err = ui.ParseFormat(a.format); err != nil {
			return nil, err
		}
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}
