package commands

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulekit/pkg/errors"
	"github.com/arthur-debert/rulekit/pkg/ui"
)

func newMatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "match <target>",
		Short: MsgMatchShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			w, err := a.workflow()
			if err != nil {
				return err
			}
			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}

			producers, err := w.Producers(target)
			if err != nil {
				return err
			}
			m := &ui.Match{Target: target, Producers: make([]string, 0, len(producers))}
			for _, p := range producers {
				m.Producers = append(m.Producers, p.Name())
			}

			chosen, wildcards, err := w.Resolve(target)
			switch {
			case err == nil:
				m.Chosen = chosen.Name()
				m.Wildcards = wildcards
			case errors.IsErrorCode(err, errors.ErrAmbiguous), errors.IsErrorCode(err, errors.ErrNoMatch):
				m.Problem = err.Error()
			default:
				return err
			}
			return r.RenderResult(m)
		},
	}
}
