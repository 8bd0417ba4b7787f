package group

import (
	"fmt"

	"github.com/nerrad567/lookingglass/internal/command"
)

// Logger defines the logging interface used by the Resolver.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Resolver expands group inheritance over a fixed group table.
//
// A Resolver is built once at startup and never mutated afterwards; Resolve
// is safe for concurrent use.
type Resolver struct {
	groups   map[string]Group
	policies map[string]MergePolicy
	logger   Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMergePolicy sets the policy for an opaque setting key. The command
// set fields are always unioned and cannot be changed.
func WithMergePolicy(key string, policy MergePolicy) Option {
	return func(r *Resolver) {
		if key == FieldAllowedCommands || key == FieldDisallowedCommands {
			return
		}
		r.policies[key] = policy
	}
}

// WithLogger sets the logger used to report cycles and dangling parents.
func WithLogger(logger Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver over groups, keyed by group ID.
// The table is copied; later changes to the argument have no effect.
func NewResolver(groups map[string]Group, opts ...Option) *Resolver {
	r := &Resolver{
		groups: make(map[string]Group, len(groups)),
		policies: map[string]MergePolicy{
			FieldAllowedCommands:    PolicyUnion,
			FieldDisallowedCommands: PolicyUnion,
		},
		logger: noopLogger{},
	}
	for id, g := range groups {
		g.ID = id
		r.groups[id] = g
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Has reports whether id is in the group table.
func (r *Resolver) Has(id string) bool {
	_, ok := r.groups[id]
	return ok
}

// Policy returns the merge policy for a field name.
func (r *Resolver) Policy(key string) MergePolicy {
	if p, ok := r.policies[key]; ok {
		return p
	}
	return PolicyOverride
}

// Resolve walks the parent chain starting at id and merges settings.
//
// Command sets are unioned across the chain. Other settings follow their
// merge policy, with nearer groups taking precedence for overrides.
//
// If a group ID reappears the walk stops there and the settings gathered
// so far are final; the repeated ID is reported in CycleAt and logged at
// warn level. An ID absent from the table resolves to empty settings.
//
// Parameters:
//   - id: Group to start from, normally the device's own group
//
// Returns:
//   - EffectiveSettings: Merged settings, with Chain listing the groups visited nearest first
//
// Thread Safety:
//   - Safe for concurrent use. The group table is never modified after NewResolver.
func (r *Resolver) Resolve(id string) EffectiveSettings {
	chain, cycleAt := r.walk(id)

	eff := EffectiveSettings{
		Found:      len(chain) > 0,
		Chain:      make([]string, 0, len(chain)),
		CycleAt:    cycleAt,
		Allowed:    command.Set{},
		Disallowed: command.Set{},
		Settings:   make(map[string]any),
	}

	for _, g := range chain {
		eff.Chain = append(eff.Chain, g.ID)
	}

	// Apply farthest ancestor first so nearer groups override.
	for i := len(chain) - 1; i >= 0; i-- {
		g := chain[i]
		eff.Allowed = eff.Allowed.Union(g.AllowedCommands)
		eff.Disallowed = eff.Disallowed.Union(g.DisallowedCommands)
		for k, v := range g.Settings {
			eff.Settings[k] = r.merge(k, eff.Settings[k], v)
		}
	}

	return eff
}

// walk collects the groups on the chain from id upwards, nearest first.
func (r *Resolver) walk(id string) (chain []Group, cycleAt string) {
	visited := make(map[string]bool)
	current := id

	for current != "" {
		if visited[current] {
			r.logger.Warn("cycle detected in group hierarchy",
				"group", id,
				"repeated", current,
			)
			return chain, current
		}
		visited[current] = true

		g, ok := r.groups[current]
		if !ok {
			if current != id {
				r.logger.Warn("parent group not found", "group", id, "parent", current)
			}
			return chain, ""
		}
		chain = append(chain, g)
		current = g.Parent
	}

	return chain, ""
}

// merge combines an inherited value with a nearer group's value.
func (r *Resolver) merge(key string, inherited, nearer any) any {
	if r.Policy(key) != PolicyUnion || inherited == nil {
		return nearer
	}

	a, okA := toList(inherited)
	b, okB := toList(nearer)
	if !okA || !okB {
		r.logger.Debug("union policy on non-list setting, overriding", "key", key)
		return nearer
	}

	seen := make(map[string]bool, len(a)+len(b))
	out := make([]any, 0, len(a)+len(b))
	for _, list := range [][]any{a, b} {
		for _, v := range list {
			k := fmt.Sprint(v)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, v)
		}
	}
	return out
}

// toList converts the list shapes produced by YAML decoding.
func toList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
