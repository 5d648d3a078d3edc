package commands

import (
	"github.com/spf13/cobra"
)

func newExpandCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <target>",
		Short: MsgExpandShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.workflow()
			if err != nil {
				return err
			}
			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}

			job, err := w.Job(args[0])
			if err != nil {
				return err
			}
			return r.RenderResult(job)
		},
	}
}
