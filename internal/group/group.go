package group

import (
	"fmt"
	"sort"

	"github.com/nerrad567/lookingglass/internal/command"
)

// Ungrouped is the group a device belongs to when it names none.
// It carries no inherited permissions unless the group table defines it.
const Ungrouped = "ungrouped"

// Field names with a fixed merge policy.
const (
	FieldAllowedCommands    = "allowed_commands"
	FieldDisallowedCommands = "disallowed_commands"
)

// MergePolicy controls how a field is combined along a parent chain.
type MergePolicy int

const (
	// PolicyOverride keeps the value from the group nearest the walk start.
	PolicyOverride MergePolicy = iota

	// PolicyUnion accumulates list values from every group in the chain.
	PolicyUnion
)

// String returns the policy name.
func (p MergePolicy) String() string {
	switch p {
	case PolicyOverride:
		return "override"
	case PolicyUnion:
		return "union"
	default:
		return fmt.Sprintf("MergePolicy(%d)", int(p))
	}
}

// Group is a node of the inheritance tree.
type Group struct {
	ID                 string
	Parent             string
	AllowedCommands    command.Set
	DisallowedCommands command.Set

	// Settings holds opaque pass-through key/values (e.g. a default driver
	// or username shared by every device of the group).
	Settings map[string]any
}

// EffectiveSettings is the merged result of a parent chain walk.
type EffectiveSettings struct {
	// Found is false when the starting group is not in the table.
	Found bool

	// Chain lists the visited group IDs, nearest first.
	Chain []string

	// CycleAt names the group that was met twice, or "" if none.
	CycleAt string

	Allowed    command.Set
	Disallowed command.Set
	Settings   map[string]any
}

// Empty reports whether the walk produced nothing to inherit.
func (s EffectiveSettings) Empty() bool {
	return !s.Found
}

// String returns a short description for logging.
func (s EffectiveSettings) String() string {
	keys := make([]string, 0, len(s.Settings))
	for k := range s.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("chain=%v allowed=%v disallowed=%v settings=%v",
		s.Chain, s.Allowed.Sorted(), s.Disallowed.Sorted(), keys)
}
