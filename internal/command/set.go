package command

import "sort"

// Set is an unordered set of command IDs.
//
// The zero value (nil) is an empty set that is safe to read; use NewSet or
// Add on a non-nil set to insert.
type Set map[string]struct{}

// NewSet returns a set holding ids. Empty strings are ignored.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id into the set.
func (s Set) Add(id string) {
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

// Has reports whether id is a member.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s)
}

// Union returns a new set containing the members of s and all others.
func (s Set) Union(others ...Set) Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	for _, o := range others {
		for id := range o {
			out[id] = struct{}{}
		}
	}
	return out
}

// Minus returns a new set with the members of s that are not in other.
func (s Set) Minus(other Set) Set {
	out := make(Set, len(s))
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Intersects reports whether s and other share a member.
func (s Set) Intersects(other Set) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for id := range small {
		if large.Has(id) {
			return true
		}
	}
	return false
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	return s.Union()
}
