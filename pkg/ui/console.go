package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/rulekit/pkg/errors"
	"github.com/arthur-debert/rulekit/pkg/workflow"
)

// consoleRenderer writes human readable output, styled unless plain.
type consoleRenderer struct {
	output io.Writer
	plain  bool
}

func (r *consoleRenderer) style(s lipgloss.Style, text string) string {
	if r.plain {
		return text
	}
	return s.Render(text)
}

func (r *consoleRenderer) field(label, value string) string {
	return r.style(LabelStyle, fmt.Sprintf("%-11s", label)) + value
}

func (r *consoleRenderer) println(lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(r.output, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *consoleRenderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *RuleList:
		return r.renderRules(v)
	case *Match:
		return r.renderMatch(v)
	case *Comparison:
		return r.renderComparison(v)
	case *Document:
		return r.renderDocument(v)
	case *workflow.Job:
		return r.renderJob(v)
	case string:
		return r.println(v)
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

func (r *consoleRenderer) RenderError(err error) error {
	msg := fmt.Sprintf("Error: %v", err)
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		keys := make([]string, 0, len(details))
		for k := range details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg += fmt.Sprintf("\n  %s: %v", k, details[k])
		}
	}
	return r.println(r.style(ErrorStyle, msg))
}

func (r *consoleRenderer) RenderMessage(msg string) error {
	return r.println(msg)
}

func (r *consoleRenderer) renderRules(list *RuleList) error {
	if len(list.Rules) == 0 {
		return r.println("No rules defined.")
	}
	data := pterm.TableData{{"Rule", "Output", "Input", "Wildcards", "Priority"}}
	for _, row := range list.Rules {
		data = append(data, []string{
			row.Name,
			strings.Join(row.Output, ", "),
			strings.Join(row.Input, ", "),
			strings.Join(row.Wildcards, ", "),
			fmt.Sprint(row.Priority),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	if r.plain {
		table = pterm.RemoveColorFromString(table)
	}
	return r.println(table)
}

func (r *consoleRenderer) renderMatch(m *Match) error {
	lines := []string{r.field("target", r.style(PathStyle, m.Target))}
	if len(m.Producers) == 0 {
		lines = append(lines, r.field("producers", "none"))
	} else {
		styled := make([]string, len(m.Producers))
		for i, p := range m.Producers {
			styled[i] = r.style(RuleStyle, p)
		}
		lines = append(lines, r.field("producers", strings.Join(styled, " > ")))
	}
	if m.Chosen != "" {
		lines = append(lines,
			r.field("rule", r.style(RuleStyle, m.Chosen)),
			r.field("wildcards", r.style(WildcardStyle, errors.FormatBinding(m.Wildcards))),
		)
	}
	if m.Problem != "" {
		lines = append(lines, r.field("problem", r.style(MissingStyle, m.Problem)))
	}
	return r.println(lines...)
}

func (r *consoleRenderer) renderComparison(c *Comparison) error {
	switch {
	case c.Preferred != "":
		return r.println(fmt.Sprintf("%s is preferred (%s vs %s: %d)",
			r.style(RuleStyle, c.Preferred), c.A, c.B, c.Result))
	default:
		return r.println(fmt.Sprintf("%s and %s are unordered", c.A, c.B))
	}
}

func (r *consoleRenderer) renderDocument(d *Document) error {
	md := NewMarkdownRenderer()
	if r.plain {
		md.Style = "notty"
	}
	_, err := io.WriteString(r.output, md.Render(d.Markdown))
	return err
}

func (r *consoleRenderer) renderJob(job *workflow.Job) error {
	lines := []string{
		r.style(TitleStyle, "rule "+job.Rule) + " " + r.style(PathStyle, job.Target),
		r.field("wildcards", r.style(WildcardStyle, errors.FormatBinding(job.Wildcards))),
	}
	if job.Message != "" {
		lines = append(lines, r.field("message", job.Message))
	}
	lines = append(lines, r.files("input", job.Input)...)
	lines = append(lines, r.files("output", job.Output)...)
	lines = append(lines, r.files("log", job.Log)...)
	if job.Benchmark != "" {
		lines = append(lines, r.field("benchmark", r.style(PathStyle, job.Benchmark)))
	}
	if len(job.Params) > 0 {
		params := make([]string, len(job.Params))
		for i, p := range job.Params {
			params[i] = fmt.Sprint(p)
		}
		lines = append(lines, r.field("params", strings.Join(params, " ")))
	}
	lines = append(lines, r.field("resources", formatResources(job.Resources)))
	for _, m := range job.Missing {
		lines = append(lines, r.field("missing", r.style(MissingStyle, m)))
	}
	return r.println(lines...)
}

func (r *consoleRenderer) files(label string, fs workflow.Files) []string {
	var lines []string
	for i, p := range fs.Paths {
		if i > 0 {
			label = ""
		}
		lines = append(lines, r.field(label, r.style(PathStyle, p)+r.names(fs, p)))
	}
	return lines
}

// names annotates a path with the names it is bound to.
func (r *consoleRenderer) names(fs workflow.Files, path string) string {
	var bound []string
	for name, paths := range fs.Names {
		for _, p := range paths {
			if p == path {
				bound = append(bound, name)
				break
			}
		}
	}
	if len(bound) == 0 {
		return ""
	}
	sort.Strings(bound)
	return " " + r.style(LabelStyle, "["+strings.Join(bound, ", ")+"]")
}

func formatResources(resources map[string]int) string {
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, resources[name])
	}
	return strings.Join(parts, ", ")
}
