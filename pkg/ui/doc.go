// Package ui renders command results for the rulekit CLI.
//
// Results are plain view structs (RuleList, Match, Comparison, Document)
// or workflow jobs. A Renderer turns them into styled terminal output, plain
// text, JSON or YAML. FormatAuto picks terminal or text depending on
// whether the output is a color-capable TTY.
package ui
