package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Default SSH settings.
const (
	DefaultSSHPort        = 22
	DefaultConnectTimeout = 10 * time.Second
)

// settingPort overrides the SSH port for one device.
const settingPort = "port"

// SSHConfig configures the SSH driver.
type SSHConfig struct {
	Port           int
	ConnectTimeout time.Duration

	// KnownHostsFile is an OpenSSH known_hosts file used to verify devices.
	KnownHostsFile string

	// InsecureIgnoreHostKey disables host key verification. Only honoured
	// when KnownHostsFile is empty.
	InsecureIgnoreHostKey bool
}

// SSH is a driver that runs each command in its own SSH exec channel.
// Password and keyboard-interactive authentication are offered, which
// covers the common network operating systems.
type SSH struct {
	port           int
	connectTimeout time.Duration
	hostKey        ssh.HostKeyCallback
}

// NewSSH creates an SSH driver.
func NewSSH(cfg SSHConfig) (*SSH, error) {
	d := &SSH{
		port:           cfg.Port,
		connectTimeout: cfg.ConnectTimeout,
	}
	if d.port == 0 {
		d.port = DefaultSSHPort
	}
	if d.connectTimeout <= 0 {
		d.connectTimeout = DefaultConnectTimeout
	}

	switch {
	case cfg.KnownHostsFile != "":
		cb, err := knownhosts.New(cfg.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("loading known_hosts: %w", err)
		}
		d.hostKey = cb
	case cfg.InsecureIgnoreHostKey:
		d.hostKey = ssh.InsecureIgnoreHostKey() //nolint:gosec // opt-in via config
	default:
		return nil, ErrNoHostKeyPolicy
	}

	return d, nil
}

// Open dials the device and authenticates.
func (d *SSH) Open(ctx context.Context, params Params) (Session, error) {
	if params.Hostname == "" {
		return nil, fmt.Errorf("%w: hostname is empty", ErrInvalidParams)
	}

	port := d.port
	if p, ok := portSetting(params.Settings); ok {
		port = p
	}
	addr := net.JoinHostPort(params.Hostname, strconv.Itoa(port))

	password := params.Password
	clientCfg := &ssh.ClientConfig{
		User: params.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: d.hostKey,
		Timeout:         d.connectTimeout,
	}

	dialer := net.Dialer{Timeout: d.connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing %s: %w", ErrConnectFailed, addr, err)
	}

	// Bound the handshake by the connect timeout and the caller's deadline.
	deadline := time.Now().Add(d.connectTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectFailed, addr, err)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, clientCfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: handshake with %s: %w", ErrConnectFailed, addr, err)
	}
	if err := conn.SetDeadline(time.Time{}); err != nil {
		c.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectFailed, addr, err)
	}

	return &sshSession{client: ssh.NewClient(c, chans, reqs)}, nil
}

func portSetting(settings map[string]any) (int, bool) {
	switch v := settings[settingPort].(type) {
	case int:
		return v, v > 0
	case int64:
		return int(v), v > 0
	case float64:
		return int(v), v > 0
	case string:
		p, err := strconv.Atoi(v)
		return p, err == nil && p > 0
	default:
		return 0, false
	}
}

type sshSession struct {
	client    *ssh.Client
	closeOnce sync.Once
	closeErr  error
}

// Run executes command in a fresh exec channel and returns combined
// stdout and stderr. A non-zero exit status is not an error: network
// devices report bad input on the terminal, and that text is the answer.
func (s *sshSession) Run(ctx context.Context, command string) (any, error) {
	sess, err := s.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("%w: opening channel: %w", ErrCommandFailed, err)
	}
	defer sess.Close()

	var out bytes.Buffer
	sess.Stdout = &out
	sess.Stderr = &out

	done := make(chan error, 1)
	go func() { done <- sess.Run(command) }()

	select {
	case err := <-done:
		var exitErr *ssh.ExitError
		var missing *ssh.ExitMissingError
		if err != nil && !errors.As(err, &exitErr) && !errors.As(err, &missing) {
			return nil, fmt.Errorf("%w: %w", ErrCommandFailed, err)
		}
		return out.String(), nil
	case <-ctx.Done():
		// Closing the client unblocks the pending Run.
		_ = s.Close()
		<-done
		return nil, ctx.Err()
	}
}

func (s *sshSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.client.Close()
	})
	return s.closeErr
}
