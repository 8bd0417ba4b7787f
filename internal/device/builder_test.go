package device

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nerrad567/lookingglass/internal/command"
	"github.com/nerrad567/lookingglass/internal/group"
)

func testResolver() *group.Resolver {
	return group.NewResolver(map[string]group.Group{
		"core": {
			AllowedCommands:    command.NewSet("bgp_summary", "bgp_neighbor", "ping"),
			DisallowedCommands: command.NewSet("show_running_config"),
			Settings: map[string]any{
				"driver":   "ios",
				"username": "lg",
				"password": "group-secret",
				"site":     "lon1",
			},
		},
		"edge": {
			Parent:             "core",
			AllowedCommands:    command.NewSet("traceroute"),
			DisallowedCommands: command.NewSet("bgp_neighbor"),
			Settings:           map[string]any{"site": "ams1"},
		},
		"loop-a": {Parent: "loop-b", AllowedCommands: command.NewSet("ping")},
		"loop-b": {Parent: "loop-a", AllowedCommands: command.NewSet("traceroute")},
	})
}

func build(t *testing.T, devices ...Device) *Registry {
	t.Helper()
	reg, err := NewBuilder(testResolver()).Build(devices)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return reg
}

func TestBuild_InheritsGroupChain(t *testing.T) {
	reg := build(t, Device{
		Name:            "edge1",
		Group:           "edge",
		Hostname:        "192.0.2.10",
		AllowedCommands: command.NewSet("show_version"),
	})

	p, err := reg.Get("edge1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	wantAllowed := []string{"bgp_summary", "ping", "show_version", "traceroute"}
	if got := p.Permissions.Allowed.Sorted(); !reflect.DeepEqual(got, wantAllowed) {
		t.Errorf("Allowed = %v, want %v", got, wantAllowed)
	}
	wantDisallowed := []string{"bgp_neighbor", "show_running_config"}
	if got := p.Permissions.Disallowed.Sorted(); !reflect.DeepEqual(got, wantDisallowed) {
		t.Errorf("Disallowed = %v, want %v", got, wantDisallowed)
	}

	if p.Driver != "ios" || p.Username != "lg" || p.Password != "group-secret" {
		t.Errorf("inherited connection = %q/%q/%q", p.Driver, p.Username, p.Password)
	}
	if p.Settings["site"] != "ams1" {
		t.Errorf("site = %v, want ams1 (nearest group wins)", p.Settings["site"])
	}
	if p.Group != "edge" {
		t.Errorf("Group = %q, want edge", p.Group)
	}
	if want := []string{"edge", "core"}; !reflect.DeepEqual(p.GroupChain, want) {
		t.Errorf("GroupChain = %v, want %v", p.GroupChain, want)
	}
}

func TestBuild_DeviceFieldsOverrideGroup(t *testing.T) {
	reg := build(t, Device{
		Name:     "core1",
		Group:    "core",
		Driver:   "junos",
		Password: "device-secret",
		Settings: map[string]any{"site": "fra1", "port": 2222},
	})

	p, _ := reg.Get("core1")
	if p.Driver != "junos" {
		t.Errorf("Driver = %q, want junos", p.Driver)
	}
	if p.Password != "device-secret" {
		t.Error("device password should override group password")
	}
	if p.Username != "lg" {
		t.Errorf("Username = %q, want lg", p.Username)
	}
	if p.Settings["site"] != "fra1" || p.Settings["port"] != 2222 {
		t.Errorf("Settings = %v", p.Settings)
	}
}

func TestBuild_CredentialsLeaveSettings(t *testing.T) {
	reg := build(t,
		Device{Name: "core1", Group: "core"},
		Device{Name: "lab", Driver: "mock", Settings: map[string]any{"username": "x", "password": "y", "site": "lab"}},
	)

	tests := []struct {
		device       string
		wantUser     string
		wantPassword string
	}{
		{"core1", "lg", "group-secret"},
		{"lab", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.device, func(t *testing.T) {
			p, err := reg.Get(tt.device)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if p.Username != tt.wantUser || p.Password != tt.wantPassword {
				t.Errorf("credentials = %q/%q, want %q/%q", p.Username, p.Password, tt.wantUser, tt.wantPassword)
			}
			for _, key := range []string{SettingUsername, SettingPassword} {
				if _, ok := p.Settings[key]; ok {
					t.Errorf("Settings still holds %q: %v", key, p.Settings)
				}
			}
			if p.Settings["site"] == nil {
				t.Errorf("Settings lost non-credential keys: %v", p.Settings)
			}
		})
	}
}

func TestBuild_DeviceDisallowBeatsGroupAllow(t *testing.T) {
	reg := build(t, Device{
		Name:               "core1",
		Group:              "core",
		DisallowedCommands: command.NewSet("ping"),
	})

	p, _ := reg.Get("core1")
	if p.Permissions.Allowed.Has("ping") {
		t.Error("ping should be removed from allowed")
	}
	if p.Permissions.Permits("ping") {
		t.Error("Permits(ping) = true, want false")
	}
	if !p.Permissions.Permits("bgp_summary") {
		t.Error("Permits(bgp_summary) = false, want true")
	}
}

func TestBuild_UngroupedUsesDeviceListsOnly(t *testing.T) {
	reg := build(t, Device{
		Name:               "lab1",
		Driver:             "mock",
		AllowedCommands:    command.NewSet("ping", "traceroute"),
		DisallowedCommands: command.NewSet("traceroute"),
	})

	p, _ := reg.Get("lab1")
	if p.Group != group.Ungrouped {
		t.Errorf("Group = %q, want %q", p.Group, group.Ungrouped)
	}
	if got, want := p.Permissions.Allowed.Sorted(), []string{"ping"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Allowed = %v, want %v", got, want)
	}
	if got, want := p.Permissions.Disallowed.Sorted(), []string{"traceroute"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Disallowed = %v, want %v", got, want)
	}
	if len(p.GroupChain) != 0 {
		t.Errorf("GroupChain = %v, want empty", p.GroupChain)
	}
}

func TestBuild_DefinedUngroupedGroupIsResolved(t *testing.T) {
	resolver := group.NewResolver(map[string]group.Group{
		group.Ungrouped: {AllowedCommands: command.NewSet("show_version")},
	})

	reg, err := NewBuilder(resolver).Build([]Device{{Name: "lab1", Driver: "mock"}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	p, _ := reg.Get("lab1")
	if !p.Permissions.Permits("show_version") {
		t.Error("device should inherit from a defined ungrouped group")
	}
}

func TestBuild_UnknownGroupFallsBackToDevice(t *testing.T) {
	reg := build(t, Device{
		Name:            "x1",
		Group:           "nonexistent",
		Driver:          "ios",
		AllowedCommands: command.NewSet("ping"),
	})

	p, _ := reg.Get("x1")
	if p.Group != "nonexistent" {
		t.Errorf("Group = %q, want nonexistent", p.Group)
	}
	if got, want := p.Permissions.Allowed.Sorted(), []string{"ping"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Allowed = %v, want %v", got, want)
	}
}

func TestBuild_CyclicGroupDoesNotFail(t *testing.T) {
	reg := build(t, Device{Name: "r1", Group: "loop-a", Driver: "ios"})

	p, _ := reg.Get("r1")
	if got, want := p.Permissions.Allowed.Sorted(), []string{"ping", "traceroute"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Allowed = %v, want %v", got, want)
	}
}

func TestBuild_AllowedAndDisallowedNeverIntersect(t *testing.T) {
	reg := build(t,
		Device{Name: "a", Group: "edge", AllowedCommands: command.NewSet("bgp_neighbor", "show_running_config")},
		Device{Name: "b", Group: "core", DisallowedCommands: command.NewSet("bgp_summary")},
		Device{Name: "c", Driver: "ios", AllowedCommands: command.NewSet("x"), DisallowedCommands: command.NewSet("x")},
		Device{Name: "d", Group: "loop-b", DisallowedCommands: command.NewSet("ping"), Driver: "ios"},
	)

	for _, p := range reg.List() {
		if p.Permissions.Allowed.Intersects(p.Permissions.Disallowed) {
			t.Errorf("device %s: allowed %v intersects disallowed %v",
				p.Name, p.Permissions.Allowed.Sorted(), p.Permissions.Disallowed.Sorted())
		}
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		devices []Device
		wantErr error
	}{
		{
			name:    "missing name",
			devices: []Device{{Driver: "ios"}},
			wantErr: ErrInvalidDevice,
		},
		{
			name:    "control character in name",
			devices: []Device{{Name: "r1\n", Driver: "ios"}},
			wantErr: ErrInvalidDevice,
		},
		{
			name:    "missing driver",
			devices: []Device{{Name: "r1"}},
			wantErr: ErrInvalidDevice,
		},
		{
			name: "duplicate name",
			devices: []Device{
				{Name: "r1", Driver: "ios"},
				{Name: "r1", Driver: "junos"},
			},
			wantErr: ErrDuplicateDevice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder(testResolver()).Build(tt.devices)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewBuilder_NilResolver(t *testing.T) {
	reg, err := NewBuilder(nil).Build([]Device{{Name: "r1", Group: "core", Driver: "ios", AllowedCommands: command.NewSet("ping")}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	p, _ := reg.Get("r1")
	if !p.Permissions.Permits("ping") {
		t.Error("Permits(ping) = false, want true")
	}
}
