// Package testutil provides utilities for testing rulekit components.
//
// Usage guidelines:
//   - Tests that touch files use NewMemoryFS, not the real filesystem
//   - All test data should be defined inline, not in external files
//   - Only CLI tests, which read a definition through the OS, use a temp dir
package testutil
