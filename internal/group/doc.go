// Package group resolves device group inheritance for the looking glass.
//
// Groups form a parent chain ("edge" → "core" → "all-routers"). Resolving a
// group walks that chain and merges every group's settings into one
// EffectiveSettings value:
//
//   - The allowed and disallowed command sets are unioned across the chain.
//   - Every other setting is overridden: the group nearest the start of the
//     walk wins.
//
// Merge behaviour is declared per field name in a policy table rather than
// inferred from the runtime type of a value. Extra list-valued settings that
// should accumulate can be registered with WithMergePolicy.
//
// Malformed hierarchies never fail: a cycle stops the walk where the repeated
// group is met, and a missing group contributes nothing.
package group
