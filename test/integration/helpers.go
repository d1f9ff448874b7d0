//go:build integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	URL        string
	Token      string
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		URL:        os.Getenv("NETBOX_URL"),
		Token:      os.Getenv("NETBOX_TOKEN"),
		BinaryPath: getBinaryPath(),
		Verbose:    os.Getenv("NETBOX_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the netbox binary
func getBinaryPath() string {
	if path := os.Getenv("NETBOX_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../netbox",
		"./netbox",
		"../netbox",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "netbox"
}

// SkipIfMissingConfig skips test if the server is not configured
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.URL == "" || config.Token == "" {
		t.Skip("NETBOX_URL or NETBOX_TOKEN not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips test if the CLI binary cannot be found
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("netbox binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner runs the netbox CLI against the configured server
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a netbox command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a netbox command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...) // #nosec G204
	cmd.Env = append(os.Environ(),
		"NETBOX_URL="+runner.config.URL,
		"NETBOX_TOKEN="+runner.config.Token,
	)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// GenerateTestName creates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
