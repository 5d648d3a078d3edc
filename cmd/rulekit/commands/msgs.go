package commands

// Command descriptions
const (
	MsgRootShort = "Inspect how workflow rules resolve files"
	MsgRootLong  = `rulekit loads a workflow definition (TOML or YAML) and answers which rule
produces a file, which wildcards the file binds and what the resulting job
looks like once inputs, params, logs, benchmark and resources are expanded.`

	MsgRulesShort   = "List the rules of the workflow"
	MsgMatchShort   = "Show which rules produce a file"
	MsgExpandShort  = "Expand the job that produces a file"
	MsgShowShort    = "Describe a rule"
	MsgOrderShort   = "Compare two rules by ruleorder"
	MsgConfigShort  = "Print the effective configuration"
	MsgVersionShort = "Print version information"
)

// Flag descriptions
const (
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig   = "Config file (TOML or YAML)"
	MsgFlagFormat   = "Output format: auto, term, text, json or yaml"
	MsgFlagFile     = "Workflow definition file"
	MsgFlagDefaults = "Print the built-in defaults instead"
)

// Errors
const (
	MsgErrNoCommand    = "no command specified"
	MsgErrLoadConfig   = "failed to load configuration: %w"
	MsgErrLoadWorkflow = "failed to load workflow: %w"
)

// DefaultFile is the workflow definition read when --file is not given.
const DefaultFile = "Rulefile.toml"
