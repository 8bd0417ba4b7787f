package command

import (
	"fmt"
	"sort"
)

// VariableSpec declares a single template variable.
type VariableSpec struct {
	Name        string `json:"name"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// Spec is a whitelisted command: its identifier, CLI template and declared
// variables in display order.
type Spec struct {
	ID          string         `json:"id"`
	Template    string         `json:"command"`
	Description string         `json:"description,omitempty"`
	Variables   []VariableSpec `json:"variables"`
}

// clone returns a copy that shares no slices with s.
func (s Spec) clone() Spec {
	vars := make([]VariableSpec, len(s.Variables))
	copy(vars, s.Variables)
	s.Variables = vars
	return s
}

// Catalog is an immutable lookup table of command specs keyed by ID.
type Catalog struct {
	specs map[string]Spec
	ids   []string
}

// NewCatalog builds a catalog from specs.
//
// Every spec needs an ID and a non-empty template, and IDs must be unique.
// Templates are not parsed here; see Render.
func NewCatalog(specs []Spec) (*Catalog, error) {
	c := &Catalog{
		specs: make(map[string]Spec, len(specs)),
		ids:   make([]string, 0, len(specs)),
	}

	for _, s := range specs {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: empty id", ErrInvalidCommand)
		}
		if s.Template == "" {
			return nil, fmt.Errorf("%w: %s: empty command template", ErrInvalidCommand, s.ID)
		}
		for i, v := range s.Variables {
			if v.Name == "" {
				return nil, fmt.Errorf("%w: %s: variable %d has no name", ErrInvalidCommand, s.ID, i)
			}
		}
		if _, exists := c.specs[s.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCommand, s.ID)
		}
		c.specs[s.ID] = s.clone()
		c.ids = append(c.ids, s.ID)
	}

	sort.Strings(c.ids)
	return c, nil
}

// Get returns the spec for id.
func (c *Catalog) Get(id string) (Spec, bool) {
	s, ok := c.specs[id]
	if !ok {
		return Spec{}, false
	}
	return s.clone(), true
}

// Variables returns the declared variables of a command in order.
// Returns ErrCommandNotFound if id is not in the catalog.
func (c *Catalog) Variables(id string) ([]VariableSpec, error) {
	s, ok := c.specs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCommandNotFound, id)
	}
	return s.clone().Variables, nil
}

// IDs returns every command ID in lexical order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.ids))
	copy(ids, c.ids)
	return ids
}

// Len returns the number of commands.
func (c *Catalog) Len() int {
	return len(c.ids)
}
