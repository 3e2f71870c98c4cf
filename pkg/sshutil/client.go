// Package sshutil dials the configured machines and runs the snapshot
// collaborators on them. Connection settings come from ~/.ssh/config;
// authentication tries the agent first, then key files.
package sshutil

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kevinburke/ssh_config"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/yvan674/dgx-tools/internal/errors"
)

// DefaultDialTimeout bounds the TCP connect to one machine. Machines in
// the config may be down; queue -a shouldn't hang on them.
const DefaultDialTimeout = 5 * time.Second

// StrictHostKeyChecking controls host key verification. When false, host
// keys are not checked (for CI only).
var StrictHostKeyChecking = true

// Client is an open SSH connection to one machine.
type Client struct {
	*ssh.Client
	Alias   string // the alias or host string used to connect
	Address string // resolved host:port
}

// Dial connects to a machine. The alias can be an ~/.ssh/config alias, a
// hostname, user@hostname, or hostname:port.
func Dial(alias string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	settings := resolveSettings(alias)

	config, err := clientConfig(settings)
	if err != nil {
		return nil, err
	}

	address := net.JoinHostPort(settings.hostname, settings.port)
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach '%s' at %s", alias, address),
			dialSuggestion(err))
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with '%s' didn't go through", alias),
			handshakeSuggestion(err))
	}

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Alias:   alias,
		Address: address,
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// settings holds resolved connection parameters for one machine.
type settings struct {
	hostname     string
	port         string
	user         string
	identityFile string
}

// resolveSettings parses the alias and merges in ~/.ssh/config values.
func resolveSettings(alias string) *settings {
	s := &settings{
		port: "22",
		user: currentUser(),
	}

	host := alias
	if user, rest, found := strings.Cut(host, "@"); found {
		s.user = user
		host = rest
	}
	if idx := strings.LastIndex(host, ":"); idx != -1 && isDigits(host[idx+1:]) {
		s.port = host[idx+1:]
		host = host[:idx]
	}
	s.hostname = host

	cfg := loadSSHConfig()
	if cfg == nil {
		return s
	}

	if v, _ := cfg.Get(host, "HostName"); v != "" {
		s.hostname = v
	}
	if v, _ := cfg.Get(host, "Port"); v != "" {
		s.port = v
	}
	if v, _ := cfg.Get(host, "User"); v != "" {
		s.user = v
	}
	if v, _ := cfg.Get(host, "IdentityFile"); v != "" {
		s.identityFile = expandHome(v)
	}

	return s
}

// loadSSHConfig parses ~/.ssh/config up to the first Match directive,
// which the parser doesn't understand. nil when there is no usable config.
func loadSSHConfig() *ssh_config.Config {
	content, err := os.ReadFile(filepath.Join(homeDir(), ".ssh", "config"))
	if err != nil {
		return nil
	}

	if idx := matchDirectiveOffset(content); idx >= 0 {
		content = content[:idx]
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil
	}
	return cfg
}

// matchDirectiveOffset returns the byte offset of the first line starting
// with a Match directive, or -1.
func matchDirectiveOffset(content []byte) int {
	offset := 0
	for _, line := range strings.SplitAfter(string(content), "\n") {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			return offset
		}
		offset += len(line)
	}
	return -1
}

// clientConfig assembles auth methods and host key checking.
func clientConfig(s *settings) (*ssh.ClientConfig, error) {
	var methods []ssh.AuthMethod

	if auth := agentAuth(); auth != nil {
		methods = append(methods, auth)
	}

	keyPaths := []string{
		s.identityFile,
		filepath.Join(homeDir(), ".ssh", "id_ed25519"),
		filepath.Join(homeDir(), ".ssh", "id_rsa"),
		filepath.Join(homeDir(), ".ssh", "id_ecdsa"),
	}
	tried := make(map[string]bool)
	for _, path := range keyPaths {
		if path == "" || tried[path] {
			continue
		}
		tried[path] = true
		if auth := keyFileAuth(path); auth != nil {
			methods = append(methods, auth)
		}
	}

	if len(methods) == 0 {
		return nil, errors.New(errors.ErrSSH,
			"No SSH auth methods available",
			"Check your keys are loaded: ssh-add -l")
	}

	callback := ssh.InsecureIgnoreHostKey() //nolint:gosec // checking explicitly disabled
	if StrictHostKeyChecking {
		var err error
		callback, err = hostKeyCallback()
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrSSH,
				"Couldn't load known_hosts",
				"Check ~/.ssh/known_hosts exists and is readable.")
		}
	}

	return &ssh.ClientConfig{
		User:            s.user,
		Auth:            methods,
		HostKeyCallback: callback,
		Timeout:         10 * time.Second,
	}, nil
}

var (
	agentClient agent.ExtendedAgent
	agentOnce   sync.Once
)

// agentAuth returns agent-backed auth, or nil when no agent with keys is
// reachable. The agent connection is shared across dials.
func agentAuth() ssh.AuthMethod {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}

	agentOnce.Do(func() {
		conn, err := net.Dial("unix", socket)
		if err != nil {
			return
		}
		agentClient = agent.NewClient(conn)
	})

	if agentClient == nil {
		return nil
	}
	signers, err := agentClient.Signers()
	if err != nil || len(signers) == 0 {
		return nil
	}
	return ssh.PublicKeysCallback(agentClient.Signers)
}

// keyFileAuth loads a private key file, nil when missing or unusable.
// Encrypted keys are skipped; the agent is the way to use those.
func keyFileAuth(path string) ssh.AuthMethod {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil
	}
	return ssh.PublicKeys(signer)
}

func hostKeyCallback() (ssh.HostKeyCallback, error) {
	path := filepath.Join(homeDir(), ".ssh", "known_hosts")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			return nil, err
		}
	}

	callback, err := knownhosts.New(path)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := callback(hostname, remote, key)
		var keyErr *knownhosts.KeyError
		if stderrors.As(err, &keyErr) && len(keyErr.Want) > 0 {
			return fmt.Errorf(
				"host key mismatch for %s; update known_hosts with: ssh-keygen -R %s",
				hostname, hostname)
		}
		return err
	}, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func dialSuggestion(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "Is SSH running on that machine? Try: ssh <alias>"
	case strings.Contains(msg, "no route to host"), strings.Contains(msg, "network is unreachable"):
		return "Can't route to the machine. Check your network connection."
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "i/o timeout"):
		return "Connection timed out. The machine might be offline or firewalled."
	default:
		return "Make sure the machine is reachable: ping <alias>"
	}
}

func handshakeSuggestion(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "unable to authenticate"), strings.Contains(msg, "no supported methods"):
		return "Auth failed. Check your keys are loaded: ssh-add -l"
	case strings.Contains(msg, "host key"):
		return "Host key issue. Try connecting manually first: ssh <alias>"
	default:
		return "Something went wrong during SSH setup. Try: ssh <alias>"
	}
}
