// Package rules implements workflow rules: named production steps that
// derive output files from input files for any binding of their wildcards.
//
// # Registration
//
// A rule is declared once, field by field:
//
//	r := rules.New("sort", wf)
//	r.SetWildcardConstraints(map[string]string{"sample": `\w+`})
//	r.SetInput(rules.Named("reads", "raw/{sample}.txt"))
//	r.SetOutput(iofile.Temp("sorted/{sample}.txt"))
//	r.SetParams(rules.Named("opts", "--key {sample}"))
//	r.SetResources(map[string]any{"mem_mb": 1024})
//
// Items are strings, flagged patterns, Deferred functions evaluated at
// expansion time, or nested slices of those, which are flattened in order.
// Named binds a name to the items so the expanded values can be looked up
// by it. All outputs must use the same wildcards and a rule with a dynamic
// output may only have dynamic outputs.
//
// # Matching
//
// IsProducer reports whether a rule creates a target. Wildcards returns the
// binding of the product whose wildcard values are shortest in total, the
// first declared product winning ties.
//
// # Expansion
//
// The Expand methods turn the declared fields into concrete values for a
// binding. Deferred functions receive the wildcards and, for params and
// resources, the expanded input. Their failures are reported as input
// function errors.
//
// # Dynamic files
//
// DynamicBranch copies a rule and replaces each dynamic file by the
// instances discovered for it. A completed rule is never modified, so
// matching and expansion are safe for concurrent use.
package rules
