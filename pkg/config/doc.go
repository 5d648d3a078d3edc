// Package config loads the engine settings shared by every workflow: global
// resource caps, workflow-wide wildcard constraints and CLI output options.
//
// Values are layered with koanf. The embedded defaults come first, then an
// optional TOML or YAML file, then RULEKIT_ environment variables, then
// explicit overrides (usually command line flags):
//
//	RULEKIT_LOGGING__VERBOSITY=2        -> logging.verbosity
//	RULEKIT_RESOURCES___CORES=8         -> resources._cores
//
// A double underscore separates key levels so that single underscores can
// remain part of a key.
package config
