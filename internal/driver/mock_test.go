package driver

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMock_Run(t *testing.T) {
	m := NewMock(map[string]any{"show clock": "12:00"})
	sess, err := m.Open(context.Background(), Params{Hostname: "r1"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	out, err := sess.Run(context.Background(), "show clock")
	if err != nil || out != "12:00" {
		t.Errorf("Run(show clock) = %v, %v; want 12:00", out, err)
	}

	out, err = sess.Run(context.Background(), "show version")
	if err != nil {
		t.Fatalf("Run(show version) error = %v", err)
	}
	if s, _ := out.(string); !strings.Contains(s, "show version") {
		t.Errorf("Run(show version) = %v, want generated output", out)
	}

	if err := sess.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := sess.Run(context.Background(), "show clock"); !errors.Is(err, ErrCommandFailed) {
		t.Errorf("Run after Close error = %v, want ErrCommandFailed", err)
	}
}

func TestMock_CancelledContext(t *testing.T) {
	sess, _ := NewMock(nil).Open(context.Background(), Params{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sess.Run(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
