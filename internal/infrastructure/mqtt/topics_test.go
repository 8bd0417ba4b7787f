package mqtt

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"system status", topics.SystemStatus(), "lookingglass/system/status"},
		{"execution", topics.Execution("core-1"), "lookingglass/execution/core-1"},
		{"execution with slash", topics.Execution("pop/ams/r1"), "lookingglass/execution/pop_ams_r1"},
		{"execution with wildcards", topics.Execution("a+b#"), "lookingglass/execution/a_b_"},
		{"execution empty", topics.Execution(""), "lookingglass/execution/_"},
		{"all executions", topics.AllExecutions(), "lookingglass/execution/+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
