package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulekit/pkg/iofile"
	"github.com/arthur-debert/rulekit/pkg/rules"
	"github.com/arthur-debert/rulekit/pkg/ui"
)

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: MsgRulesShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.workflow()
			if err != nil {
				return err
			}
			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}

			list := &ui.RuleList{Rules: []ui.RuleRow{}}
			for _, rule := range w.Rules() {
				list.Rules = append(list.Rules, ruleRow(rule))
			}
			return r.RenderResult(list)
		},
	}
}

func ruleRow(r *rules.Rule) ui.RuleRow {
	row := ui.RuleRow{
		Name:      r.Name(),
		Input:     iofile.Strings(r.Input()),
		Output:    iofile.Strings(r.Output()),
		Wildcards: r.WildcardNames(),
		Priority:  r.Priority,
	}
	if r.File != "" {
		row.Location = fmt.Sprintf("%s:%d", r.File, r.Line)
	}
	return row
}
