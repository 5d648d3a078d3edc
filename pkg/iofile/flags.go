package iofile

import (
	"strings"

	"github.com/arthur-debert/rulekit/pkg/errors"
)

// Flags is a bitset of the annotations a file pattern can carry.
type Flags uint8

const (
	// FlagTemp marks an output that may be deleted once consumed.
	FlagTemp Flags = 1 << iota
	// FlagProtected marks an output that is write-protected after creation.
	FlagProtected
	// FlagTouch marks an output that is only touched, not written.
	FlagTouch
	// FlagDynamic marks a pattern whose instance count is unknown until
	// the producing rule has partially run.
	FlagDynamic
	// FlagAncient marks an input that is ignored for staleness checks.
	FlagAncient
	// FlagSubworkflow marks an input produced by another workflow.
	FlagSubworkflow
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagTemp, "temp"},
	{FlagProtected, "protected"},
	{FlagTouch, "touch"},
	{FlagDynamic, "dynamic"},
	{FlagAncient, "ancient"},
	{FlagSubworkflow, "subworkflow"},
}

// Has reports whether every bit of x is set.
func (f Flags) Has(x Flags) bool {
	return f&x == x
}

func (f Flags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseFlag converts a flag name as written in a definition file.
func ParseFlag(name string) (Flags, error) {
	for _, fn := range flagNames {
		if strings.EqualFold(fn.name, strings.TrimSpace(name)) {
			return fn.flag, nil
		}
	}
	return 0, errors.Newf(errors.ErrDefinition, "unknown file flag %q", name)
}
