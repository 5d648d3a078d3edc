package workflow

import (
	"bufio"
	"bytes"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/rulekit/pkg/config"
	"github.com/arthur-debert/rulekit/pkg/errors"
	"github.com/arthur-debert/rulekit/pkg/iofile"
	"github.com/arthur-debert/rulekit/pkg/logging"
	"github.com/arthur-debert/rulekit/pkg/rules"
)

// definition is the document layout of a workflow file.
type definition struct {
	WildcardConstraints map[string]string `koanf:"wildcard_constraints"`
	Resources           map[string]int    `koanf:"resources"`
	Ruleorder           [][]string        `koanf:"ruleorder"`
	Rules               []ruleDefinition  `koanf:"rules"`
}

type ruleDefinition struct {
	Name                string            `koanf:"name"`
	Docstring           string            `koanf:"docstring"`
	Message             string            `koanf:"message"`
	Priority            int               `koanf:"priority"`
	Version             string            `koanf:"version"`
	WildcardConstraints map[string]string `koanf:"wildcard_constraints"`
	Input               any               `koanf:"input"`
	Output              any               `koanf:"output"`
	Params              any               `koanf:"params"`
	Log                 any               `koanf:"log"`
	Benchmark           any               `koanf:"benchmark"`
	Resources           map[string]any    `koanf:"resources"`
}

type itemKind int

const (
	fileItems itemKind = iota
	paramItems
)

// Keys that turn a table into a single item instead of a name -> item map.
var itemKeys = []string{"path", "paths", "fn", "rule", "value"}

var itemOptions = map[string]bool{
	"path": true, "paths": true, "fn": true, "rule": true, "value": true,
	"name": true, "flags": true, "subworkflow": true, "spread": true, "output": true,
}

// LoadFile reads a TOML or YAML workflow definition from the workflow's
// filesystem and declares its rules.
func (w *Workflow) LoadFile(path string) error {
	defer logging.LogOperationStart(w.logger, "load "+path)()

	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrNotFound, "cannot read workflow definition %s", path).
			WithDetail(errors.DetailPath, path)
	}
	return w.Load(data, path)
}

// Load declares the rules of a definition document. path selects the
// format by extension and is recorded as the rules' source file.
//
// Top-level wildcard constraints and resource caps are applied before any
// rule is declared; ruleorder clauses after all rules.
func (w *Workflow) Load(data []byte, path string) error {
	parser, err := config.Parser(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrDefinition, "unsupported workflow definition").
			WithLocation(path, 0)
	}

	k := koanf.New(".")
	if err := k.Load(config.BytesProvider(data), parser); err != nil {
		return errors.Wrap(err, errors.ErrDefinition, "cannot parse workflow definition").
			WithLocation(path, 0)
	}

	var def definition
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &def,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		},
	}
	if err := k.UnmarshalWithConf("", &def, unmarshalConf); err != nil {
		return errors.Wrap(err, errors.ErrDefinition, "invalid workflow definition").
			WithLocation(path, 0)
	}

	w.SetWildcardConstraints(def.WildcardConstraints)
	w.SetResources(def.Resources)

	lines := ruleLines(data, path)
	for i, rd := range def.Rules {
		line := 0
		if i < len(lines) {
			line = lines[i]
		}
		if err := w.loadRule(rd, path, line); err != nil {
			return err
		}
	}

	for _, clause := range def.Ruleorder {
		if err := w.order.Add(clause...); err != nil {
			return errors.Wrap(err, errors.ErrDefinition, "invalid ruleorder").
				WithLocation(path, 0)
		}
	}

	w.logger.Info().
		Str("file", path).
		Int("rules", len(def.Rules)).
		Int("ruleorder", len(def.Ruleorder)).
		Int("total", w.rules.Count()).
		Msg("Loaded workflow definition")
	return nil
}

func (w *Workflow) loadRule(d ruleDefinition, file string, line int) error {
	r, err := w.AddRule(d.Name, file, line)
	if err != nil {
		return err
	}
	r.Docstring = d.Docstring
	r.Message = d.Message
	r.Priority = d.Priority
	r.Version = d.Version

	// constraints must be known before outputs are declared
	if len(d.WildcardConstraints) > 0 {
		if err := r.SetWildcardConstraints(d.WildcardConstraints); err != nil {
			return err
		}
	}

	fields := []struct {
		value any
		kind  itemKind
		set   func(...any) error
	}{
		{d.Input, fileItems, r.SetInput},
		{d.Output, fileItems, r.SetOutput},
		{d.Params, paramItems, r.SetParams},
		{d.Log, fileItems, r.SetLog},
	}
	for _, f := range fields {
		items, err := w.items(f.value, f.kind)
		if err != nil {
			return locate(err, r)
		}
		if len(items) == 0 {
			continue
		}
		if err := f.set(items...); err != nil {
			return err
		}
	}

	if d.Benchmark != nil {
		benchmark, err := w.item(d.Benchmark, fileItems)
		if err != nil {
			return locate(err, r)
		}
		if err := r.SetBenchmark(benchmark); err != nil {
			return err
		}
	}

	if len(d.Resources) > 0 {
		resources := make(map[string]any, len(d.Resources))
		for name, v := range d.Resources {
			if spec, ok := v.(map[string]any); ok {
				fn, err := w.function(spec)
				if err != nil {
					return locate(err, r)
				}
				v = fn
			}
			resources[name] = v
		}
		if err := r.SetResources(resources); err != nil {
			return err
		}
	}
	return nil
}

// items converts a field value to rule items. A table without item keys
// maps names to items, in key order.
func (w *Workflow) items(v any, kind itemKind) ([]any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			it, err := w.item(e, kind)
			if err != nil {
				return nil, err
			}
			out = append(out, it)
		}
		return out, nil
	case map[string]any:
		if isItemTable(t) {
			it, err := w.item(t, kind)
			if err != nil {
				return nil, err
			}
			return []any{it}, nil
		}
		names := make([]string, 0, len(t))
		for name := range t {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make([]any, 0, len(names))
		for _, name := range names {
			it, err := w.item(t[name], kind)
			if err != nil {
				return nil, err
			}
			out = append(out, rules.Named(name, it))
		}
		return out, nil
	}
	it, err := w.item(v, kind)
	if err != nil {
		return nil, err
	}
	return []any{it}, nil
}

func (w *Workflow) item(v any, kind itemKind) (any, error) {
	switch t := v.(type) {
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			it, err := w.item(e, kind)
			if err != nil {
				return nil, err
			}
			out = append(out, it)
		}
		return out, nil
	case map[string]any:
		if !isItemTable(t) {
			if kind == paramItems {
				return t, nil
			}
			return nil, errors.Newf(errors.ErrDefinition,
				"file table needs one of %s", strings.Join(itemKeys, ", "))
		}
		return w.itemTable(t, kind)
	}
	return v, nil
}

func (w *Workflow) itemTable(t map[string]any, kind itemKind) (any, error) {
	for key := range t {
		if !itemOptions[key] {
			return nil, errors.Newf(errors.ErrDefinition, "unknown item key %q", key)
		}
	}

	var (
		it  any
		err error
	)
	switch {
	case t["fn"] != nil:
		it, err = w.deferred(t)
	case t["rule"] != nil:
		if kind != fileItems {
			return nil, errors.New(errors.ErrDefinition, "only file fields may refer to rule outputs")
		}
		it, err = w.ruleOutput(t)
	case t["path"] != nil || t["paths"] != nil:
		it, err = filePatterns(t)
	default:
		if kind != paramItems {
			return nil, errors.New(errors.ErrDefinition, "only params may hold plain values")
		}
		it = t["value"]
	}
	if err != nil {
		return nil, err
	}

	if name, ok := t["name"]; ok {
		s, ok := name.(string)
		if !ok || s == "" {
			return nil, errors.Newf(errors.ErrDefinition, "item name must be a non-empty string, got %v", name)
		}
		return rules.Named(s, it), nil
	}
	return it, nil
}

func (w *Workflow) function(t map[string]any) (rules.Func, error) {
	name, ok := t["fn"].(string)
	if !ok {
		return nil, errors.Newf(errors.ErrDefinition, "fn must be a function name, got %v", t["fn"])
	}
	if !w.functions.Has(name) {
		return nil, errors.Newf(errors.ErrDefinition, "unknown function %s, registered: %v", name, w.Funcs())
	}
	return w.Func(name)
}

func (w *Workflow) deferred(t map[string]any) (rules.Deferred, error) {
	fn, err := w.function(t)
	if err != nil {
		return rules.Deferred{}, err
	}
	spread, _ := t["spread"].(bool)
	return rules.Deferred{Fn: fn, Spread: spread}, nil
}

// ruleOutput resolves a reference to the outputs of an earlier rule.
func (w *Workflow) ruleOutput(t map[string]any) ([]any, error) {
	name, _ := t["rule"].(string)
	src, err := w.Rule(name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDefinition, "rule %v must be declared before it is referenced", t["rule"])
	}
	outputs := src.Output()
	if output, ok := t["output"]; ok {
		outputs = src.OutputNamed(stringValue(output))
	}
	if len(outputs) == 0 {
		return nil, errors.Newf(errors.ErrDefinition, "rule %s has no output %v", name, t["output"])
	}
	out := make([]any, len(outputs))
	for i, p := range outputs {
		out[i] = p.StripConstraints()
	}
	return out, nil
}

func filePatterns(t map[string]any) (any, error) {
	var flags iofile.Flags
	switch fv := t["flags"].(type) {
	case nil:
	case string:
		f, err := iofile.ParseFlag(fv)
		if err != nil {
			return nil, err
		}
		flags = f
	case []any:
		for _, e := range fv {
			f, err := iofile.ParseFlag(stringValue(e))
			if err != nil {
				return nil, err
			}
			flags |= f
		}
	default:
		return nil, errors.Newf(errors.ErrDefinition, "flags must be a string or a list, got %T", fv)
	}

	subworkflow := stringValue(t["subworkflow"])
	build := func(path any) (*iofile.Pattern, error) {
		s, ok := path.(string)
		if !ok {
			return nil, errors.Newf(errors.ErrDefinition, "file path must be a string, got %T", path)
		}
		if subworkflow != "" {
			return iofile.FromSubworkflow(s, subworkflow).WithFlags(flags), nil
		}
		return iofile.Flagged(s, flags), nil
	}

	if path, ok := t["path"]; ok {
		return build(path)
	}
	paths, ok := t["paths"].([]any)
	if !ok {
		return nil, errors.Newf(errors.ErrDefinition, "paths must be a list, got %T", t["paths"])
	}
	out := make([]any, 0, len(paths))
	for _, path := range paths {
		p, err := build(path)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func isItemTable(t map[string]any) bool {
	for _, key := range itemKeys {
		if _, ok := t[key]; ok {
			return true
		}
	}
	return false
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// locate adds the rule and its source location to a loader error.
func locate(err error, r *rules.Rule) error {
	if re, ok := err.(*errors.RuleError); ok {
		return re.WithDetail(errors.DetailRule, r.Name()).WithLocation(r.File, r.Line)
	}
	return err
}

// ruleLines returns the line of each rule entry, in document order.
func ruleLines(data []byte, path string) []int {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlRuleLines(data)
	}
	return tomlRuleLines(data)
}

func tomlRuleLines(data []byte) []int {
	var lines []int
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; scanner.Scan(); n++ {
		header := strings.ReplaceAll(strings.TrimSpace(scanner.Text()), " ", "")
		if strings.HasPrefix(header, "[[rules]]") {
			lines = append(lines, n)
		}
	}
	return lines
}

func yamlRuleLines(data []byte) []int {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "rules" || root.Content[i+1].Kind != yaml.SequenceNode {
			continue
		}
		var lines []int
		for _, entry := range root.Content[i+1].Content {
			lines = append(lines, entry.Line)
		}
		return lines
	}
	return nil
}
