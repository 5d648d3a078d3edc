package workflow

import (
	"strings"

	"github.com/arthur-debert/rulekit/pkg/iofile"
	"github.com/arthur-debert/rulekit/pkg/logging"
	"github.com/arthur-debert/rulekit/pkg/namedlist"
	"github.com/arthur-debert/rulekit/pkg/rules"
)

// Job is a rule with every field expanded for one wildcard binding.
type Job struct {
	Rule      string            `json:"rule" yaml:"rule"`
	Target    string            `json:"target" yaml:"target"`
	Wildcards map[string]string `json:"wildcards" yaml:"wildcards"`
	Message   string            `json:"message,omitempty" yaml:"message,omitempty"`

	Input     Files          `json:"input" yaml:"input"`
	Output    Files          `json:"output" yaml:"output"`
	Log       Files          `json:"log" yaml:"log"`
	Benchmark string         `json:"benchmark,omitempty" yaml:"benchmark,omitempty"`
	Params    []any          `json:"params" yaml:"params"`
	Named     map[string]any `json:"named_params,omitempty" yaml:"named_params,omitempty"`
	Resources map[string]int `json:"resources" yaml:"resources"`

	// Dependencies maps concrete inputs to the rule declared to produce them.
	Dependencies map[string]string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	// Missing lists inputs that neither exist nor can be produced by a rule.
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Files is an expanded file list with its names.
type Files struct {
	Paths []string            `json:"paths" yaml:"paths"`
	Names map[string][]string `json:"names,omitempty" yaml:"names,omitempty"`
}

// Job resolves the producer of target and expands all of its fields.
func (w *Workflow) Job(target string) (*Job, error) {
	defer logging.LogOperationStart(w.logger, "job "+target)()

	r, wildcards, err := w.Resolve(target)
	if err != nil {
		return nil, err
	}
	return w.Expand(r, target, wildcards)
}

// Expand builds the job of r for wildcards, in the order later fields need
// earlier ones: input, resources, output, params, log, benchmark.
func (w *Workflow) Expand(r *rules.Rule, target string, wildcards rules.Wildcards) (*Job, error) {
	in, err := r.ExpandInput(wildcards)
	if err != nil {
		return nil, err
	}
	resources, err := r.ExpandResources(wildcards, in.Files)
	if err != nil {
		return nil, err
	}
	out, _, err := r.ExpandOutput(wildcards)
	if err != nil {
		return nil, err
	}
	params, err := r.ExpandParams(wildcards, in.Files, resources)
	if err != nil {
		return nil, err
	}
	log, err := r.ExpandLog(wildcards)
	if err != nil {
		return nil, err
	}
	benchmark, err := r.ExpandBenchmark(wildcards)
	if err != nil {
		return nil, err
	}

	job := &Job{
		Rule:         r.Name(),
		Target:       target,
		Wildcards:    wildcards.Clone(),
		Message:      w.message(r, wildcards),
		Input:        files(in.Files),
		Output:       files(out),
		Log:          files(log),
		Params:       params.Items(),
		Resources:    resources,
		Dependencies: in.Dependencies,
	}
	if job.Params == nil {
		job.Params = []any{}
	}
	if benchmark != nil {
		job.Benchmark = benchmark.Path()
	}
	if names := params.Names(); len(names) > 0 {
		job.Named = make(map[string]any, len(names))
		for _, name := range names {
			values, _ := params.Get(name)
			if len(values) == 1 {
				job.Named[name] = values[0]
			} else {
				job.Named[name] = values
			}
		}
	}

	job.Missing, err = w.missing(in.Files)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (w *Workflow) message(r *rules.Rule, wildcards rules.Wildcards) string {
	if r.Message == "" {
		return ""
	}
	msg, err := iofile.Format(r.Message, wildcards)
	if err != nil {
		w.logger.Debug().Err(err).Str("rule", r.Name()).Msg("Message left unformatted")
		return r.Message
	}
	return msg
}

// missing returns the inputs absent from the filesystem that no rule
// produces either.
func (w *Workflow) missing(input *rules.InputFiles) ([]string, error) {
	var missing []string
	for _, f := range input.Items() {
		if f.Is(iofile.FlagSubworkflow) || strings.Contains(f.Path(), iofile.DynamicFill) {
			continue
		}
		exists, err := f.Exists(w.fs)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		producers, err := w.Producers(f.Path())
		if err != nil {
			return nil, err
		}
		if len(producers) == 0 {
			missing = append(missing, f.Path())
		}
	}
	return missing, nil
}

func files(l *namedlist.List[*iofile.Pattern]) Files {
	fs := Files{Paths: make([]string, 0, l.Len())}
	for _, f := range l.Items() {
		fs.Paths = append(fs.Paths, f.Path())
	}
	names := l.Names()
	if len(names) == 0 {
		return fs
	}
	fs.Names = make(map[string][]string, len(names))
	for _, name := range names {
		items, _ := l.Get(name)
		paths := make([]string, len(items))
		for i, f := range items {
			paths[i] = f.Path()
		}
		fs.Names[name] = paths
	}
	return fs
}
