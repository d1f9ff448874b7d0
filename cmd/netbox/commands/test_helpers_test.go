package commands_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/fivetwenty-io/netbox-client/internal/netboxtest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// newServer starts a fake NetBox and points the global configuration at it.
// Tests using it must not run in parallel.
func newServer(t *testing.T, output string) *netboxtest.Server {
	t.Helper()

	server := netboxtest.NewServer(netboxtest.WithCollections("/dcim/devices/", "/dcim/sites/"))
	t.Cleanup(server.Close)

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("url", server.URL)
	viper.Set("token", server.Token())
	viper.Set("output", output)

	return server
}

// execute runs cmd with args and stdin and returns what it printed.
func execute(cmd *cobra.Command, stdin io.Reader, args ...string) (string, error) {
	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	if stdin != nil {
		cmd.SetIn(stdin)
	}

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}
