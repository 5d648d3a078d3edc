package ui

// RuleRow summarises one rule for listings.
type RuleRow struct {
	Name      string   `json:"name" yaml:"name"`
	Input     []string `json:"input" yaml:"input"`
	Output    []string `json:"output" yaml:"output"`
	Wildcards []string `json:"wildcards" yaml:"wildcards"`
	Priority  int      `json:"priority" yaml:"priority"`
	Location  string   `json:"location,omitempty" yaml:"location,omitempty"`
}

// RuleList is the result of listing a workflow's rules.
type RuleList struct {
	Rules []RuleRow `json:"rules" yaml:"rules"`
}

// Match reports which rules produce a target and which one was chosen.
type Match struct {
	Target    string            `json:"target" yaml:"target"`
	Producers []string          `json:"producers" yaml:"producers"`
	Chosen    string            `json:"chosen,omitempty" yaml:"chosen,omitempty"`
	Wildcards map[string]string `json:"wildcards,omitempty" yaml:"wildcards,omitempty"`
	Problem   string            `json:"problem,omitempty" yaml:"problem,omitempty"`
}

// Comparison reports the ruleorder between two rules.
type Comparison struct {
	A         string `json:"a" yaml:"a"`
	B         string `json:"b" yaml:"b"`
	Result    int    `json:"result" yaml:"result"`
	Preferred string `json:"preferred,omitempty" yaml:"preferred,omitempty"`
}

// Document is markdown shown to humans, rendered with glamour on terminals.
type Document struct {
	Title    string `json:"title" yaml:"title"`
	Markdown string `json:"markdown" yaml:"markdown"`
}
