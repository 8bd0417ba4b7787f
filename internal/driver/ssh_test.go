package driver

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"
)

const (
	testUser     = "lg"
	testPassword = "s3cret"
)

// startSSHServer runs an SSH server that answers every exec request with
// "out: <command>". It returns the listening port.
func startSSHServer(t *testing.T) int {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating host key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("creating signer: %v", err)
	}

	cfg := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == testUser && string(pass) == testPassword {
				return nil, nil
			}
			return nil, errors.New("denied")
		},
	}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveSSH(conn, cfg)
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port
}

func serveSSH(conn net.Conn, cfg *ssh.ServerConfig) {
	sc, chans, reqs, err := ssh.NewServerConn(conn, cfg)
	if err != nil {
		conn.Close()
		return
	}
	defer sc.Close()
	go ssh.DiscardRequests(reqs)

	for nc := range chans {
		if nc.ChannelType() != "session" {
			_ = nc.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		ch, requests, err := nc.Accept()
		if err != nil {
			continue
		}
		go func() {
			defer ch.Close()
			for req := range requests {
				if req.Type != "exec" {
					_ = req.Reply(false, nil)
					continue
				}
				var payload struct{ Command string }
				if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
					_ = req.Reply(false, nil)
					return
				}
				_ = req.Reply(true, nil)
				_, _ = ch.Write([]byte("out: " + payload.Command))
				_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{0}))
				return
			}
		}()
	}
}

func TestSSH_RunCommand(t *testing.T) {
	port := startSSHServer(t)
	d, err := NewSSH(SSHConfig{Port: port, ConnectTimeout: 5 * time.Second, InsecureIgnoreHostKey: true})
	if err != nil {
		t.Fatalf("NewSSH() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sess, err := d.Open(ctx, Params{Hostname: "127.0.0.1", Username: testUser, Password: testPassword})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer sess.Close()

	out, err := sess.Run(ctx, "show version")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "out: show version" {
		t.Errorf("Run() = %q, want %q", out, "out: show version")
	}
}

func TestSSH_PortSettingOverrides(t *testing.T) {
	port := startSSHServer(t)
	d, err := NewSSH(SSHConfig{Port: 1, InsecureIgnoreHostKey: true})
	if err != nil {
		t.Fatalf("NewSSH() error = %v", err)
	}

	sess, err := d.Open(context.Background(), Params{
		Hostname: "127.0.0.1",
		Username: testUser,
		Password: testPassword,
		Settings: map[string]any{"port": port},
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sess.Close()
}

func TestSSH_BadPassword(t *testing.T) {
	port := startSSHServer(t)
	d, err := NewSSH(SSHConfig{Port: port, InsecureIgnoreHostKey: true})
	if err != nil {
		t.Fatalf("NewSSH() error = %v", err)
	}

	_, err = d.Open(context.Background(), Params{Hostname: "127.0.0.1", Username: testUser, Password: "wrong"})
	if !errors.Is(err, ErrConnectFailed) {
		t.Errorf("Open() error = %v, want ErrConnectFailed", err)
	}
}

func TestSSH_Validation(t *testing.T) {
	if _, err := NewSSH(SSHConfig{}); !errors.Is(err, ErrNoHostKeyPolicy) {
		t.Errorf("NewSSH() error = %v, want ErrNoHostKeyPolicy", err)
	}
	if _, err := NewSSH(SSHConfig{KnownHostsFile: "/nonexistent/known_hosts"}); err == nil {
		t.Error("NewSSH() with missing known_hosts should fail")
	}

	d, _ := NewSSH(SSHConfig{InsecureIgnoreHostKey: true})
	if _, err := d.Open(context.Background(), Params{}); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("Open() error = %v, want ErrInvalidParams", err)
	}
}

func TestPortSetting(t *testing.T) {
	tests := []struct {
		settings map[string]any
		want     int
		ok       bool
	}{
		{nil, 0, false},
		{map[string]any{"port": 2222}, 2222, true},
		{map[string]any{"port": "830"}, 830, true},
		{map[string]any{"port": float64(22)}, 22, true},
		{map[string]any{"port": "x"}, 0, false},
		{map[string]any{"port": -1}, -1, false},
	}
	for _, tt := range tests {
		got, ok := portSetting(tt.settings)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("portSetting(%v) = %d, %v; want %d, %v", tt.settings, got, ok, tt.want, tt.ok)
		}
	}
}
