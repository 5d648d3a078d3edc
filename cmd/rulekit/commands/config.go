package commands

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulekit/pkg/config"
	"github.com/arthur-debert/rulekit/pkg/ui"
)

func newConfigCmd(a *app) *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			if defaults {
				return r.RenderMessage(config.DefaultContent())
			}

			if format, _ := ui.ParseFormat(a.cfg.Output.Format); format == ui.FormatJSON || format == ui.FormatYAML {
				return r.RenderResult(a.cfg)
			}
			data, err := a.cfg.ToTOML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	return cmd
}
