package command

import (
	"errors"
	"reflect"
	"testing"
)

func testSpecs() []Spec {
	return []Spec{
		{ID: "bgp_summary", Template: "show bgp summary"},
		{
			ID:       "bgp_neighbor",
			Template: "show bgp neighbor {neighbor}",
			Variables: []VariableSpec{
				{Name: "neighbor", Required: true},
			},
		},
		{
			ID:       "ping",
			Template: "ping {host} count {count}",
			Variables: []VariableSpec{
				{Name: "host", Required: true},
				{Name: "count"},
			},
		},
	}
}

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog(testSpecs())
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	want := []string{"bgp_neighbor", "bgp_summary", "ping"}
	if got := c.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}

	spec, ok := c.Get("bgp_neighbor")
	if !ok {
		t.Fatal("Get(bgp_neighbor) not found")
	}
	if spec.Template != "show bgp neighbor {neighbor}" {
		t.Errorf("Template = %q", spec.Template)
	}

	if _, ok := c.Get("reload"); ok {
		t.Error("Get(reload) should not be found")
	}
}

func TestNewCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		specs   []Spec
		wantErr error
	}{
		{
			name:    "empty id",
			specs:   []Spec{{Template: "show version"}},
			wantErr: ErrInvalidCommand,
		},
		{
			name:    "empty template",
			specs:   []Spec{{ID: "version"}},
			wantErr: ErrInvalidCommand,
		},
		{
			name: "unnamed variable",
			specs: []Spec{{
				ID:        "route",
				Template:  "show route {prefix}",
				Variables: []VariableSpec{{Required: true}},
			}},
			wantErr: ErrInvalidCommand,
		},
		{
			name: "duplicate id",
			specs: []Spec{
				{ID: "version", Template: "show version"},
				{ID: "version", Template: "show version detail"},
			},
			wantErr: ErrDuplicateCommand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.specs)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewCatalog() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewCatalog_UndeclaredPlaceholderAccepted(t *testing.T) {
	// Placeholders are only checked when a command is rendered.
	_, err := NewCatalog([]Spec{{ID: "route", Template: "show route {prefix} vrf {vrf}"}})
	if err != nil {
		t.Errorf("NewCatalog() error = %v, want nil", err)
	}
}

func TestCatalog_Variables(t *testing.T) {
	c, err := NewCatalog(testSpecs())
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	vars, err := c.Variables("ping")
	if err != nil {
		t.Fatalf("Variables() error = %v", err)
	}
	want := []VariableSpec{{Name: "host", Required: true}, {Name: "count"}}
	if !reflect.DeepEqual(vars, want) {
		t.Errorf("Variables() = %v, want %v", vars, want)
	}

	// Mutating the returned slice must not affect the catalog.
	vars[0].Name = "mutated"
	again, _ := c.Variables("ping")
	if again[0].Name != "host" {
		t.Error("catalog was mutated through returned slice")
	}

	if _, err := c.Variables("reload"); !errors.Is(err, ErrCommandNotFound) {
		t.Errorf("Variables(reload) error = %v, want ErrCommandNotFound", err)
	}
}

func TestSet(t *testing.T) {
	a := NewSet("bgp_summary", "ping", "")
	b := NewSet("ping", "traceroute")

	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (empty id ignored)", a.Len())
	}

	union := a.Union(b)
	if got, want := union.Sorted(), []string{"bgp_summary", "ping", "traceroute"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Union() = %v, want %v", got, want)
	}

	minus := union.Minus(b)
	if got, want := minus.Sorted(), []string{"bgp_summary"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Minus() = %v, want %v", got, want)
	}

	if !a.Intersects(b) {
		t.Error("Intersects() = false, want true")
	}
	if minus.Intersects(b) {
		t.Error("Intersects() = true, want false")
	}

	var empty Set
	if empty.Has("ping") || empty.Len() != 0 {
		t.Error("nil set should be empty")
	}
	if got := empty.Union(a).Len(); got != 2 {
		t.Errorf("nil.Union(a).Len() = %d, want 2", got)
	}
}
