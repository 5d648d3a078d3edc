package commands

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulekit/pkg/ui"
)

func newOrderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "order <rule> <rule>",
		Short: MsgOrderShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.workflow()
			if err != nil {
				return err
			}
			ra, err := w.Rule(args[0])
			if err != nil {
				return err
			}
			rb, err := w.Rule(args[1])
			if err != nil {
				return err
			}
			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}

			c := &ui.Comparison{A: ra.Name(), B: rb.Name(), Result: w.Ruleorder().Compare(ra, rb)}
			switch {
			case c.Result < 0:
				c.Preferred = c.A
			case c.Result > 0:
				c.Preferred = c.B
			}
			return r.RenderResult(c)
		},
	}
}
