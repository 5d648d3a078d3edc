package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/rulekit/pkg/iofile"
	"github.com/arthur-debert/rulekit/pkg/rules"
	"github.com/arthur-debert/rulekit/pkg/ui"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <rule>",
		Short: MsgShowShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.workflow()
			if err != nil {
				return err
			}
			rule, err := w.Rule(args[0])
			if err != nil {
				return err
			}
			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			return r.RenderResult(&ui.Document{Title: rule.Name(), Markdown: describe(rule)})
		},
	}
}

// describe renders a rule as markdown.
func describe(r *rules.Rule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# rule %s\n\n", r.Name())
	if r.Docstring != "" {
		fmt.Fprintf(&b, "%s\n\n", r.Docstring)
	}
	if r.File != "" {
		fmt.Fprintf(&b, "Defined in `%s:%d`.\n\n", r.File, r.Line)
	}

	files := func(title string, patterns []*iofile.Pattern) {
		if len(patterns) == 0 {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		for _, p := range patterns {
			if p.Flags() != 0 {
				fmt.Fprintf(&b, "- `%s` (%s)\n", p, p.Flags())
			} else {
				fmt.Fprintf(&b, "- `%s`\n", p)
			}
		}
		b.WriteString("\n")
	}
	files("Input", r.Input())
	files("Output", r.Output())
	files("Log", r.Log())
	if bm := r.Benchmark(); bm != nil {
		files("Benchmark", []*iofile.Pattern{bm})
	}

	if names := r.WildcardNames(); len(names) > 0 {
		fmt.Fprintf(&b, "## Wildcards\n\n")
		constraints := r.WildcardConstraints()
		for _, n := range names {
			if c, ok := constraints[n]; ok {
				fmt.Fprintf(&b, "- `%s` matching `%s`\n", n, c)
			} else {
				fmt.Fprintf(&b, "- `%s`\n", n)
			}
		}
		b.WriteString("\n")
	}

	if deps := r.Dependencies(); len(deps) > 0 {
		fmt.Fprintf(&b, "## Depends on\n\n")
		keys := make([]string, 0, len(deps))
		for k := range deps {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- `%s` from rule **%s**\n", k, deps[k])
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Priority %d, %d params, resources: %s.\n",
		r.Priority, r.ParamCount(), strings.Join(r.ResourceNames(), ", "))
	return b.String()
}
