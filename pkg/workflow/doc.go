// Package workflow owns a set of rules and the workflow-wide state they
// consult: global resource caps and wildcard constraints, the ruleorder
// registry, named functions referenced by definition files and the
// filesystem used for existence checks.
//
// A workflow is populated once, either programmatically with AddRule or
// from a TOML or YAML definition with LoadFile. Afterwards it answers which
// rules can produce a file (Producers, Resolve) and what a job for that file
// looks like once every rule field is expanded (Job).
package workflow
