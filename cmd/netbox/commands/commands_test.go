package commands_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fivetwenty-io/netbox-client/cmd/netbox/commands"
	"github.com/fivetwenty-io/netbox-client/internal/constants"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewVersionCommand(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("output", constants.FormatJSON)

	cmd := commands.NewVersionCommand("1.2.3", "abc123", "2026-01-01")
	assert.Equal(t, "version", cmd.Use)

	out, err := execute(cmd, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.2.3","commit":"abc123","built":"2026-01-01"}`, out)
}

func TestNewConfigCommand(t *testing.T) {
	cmd := commands.NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)
	assert.Equal(t, "Manage CLI configuration", cmd.Short)

	for _, name := range []string{"show", "set", "unset", "set-token"} {
		assert.NotNil(t, findSubcommand(cmd, name), "subcommand %s should exist", name)
	}
}

func TestConfigCommands(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	configFile := filepath.Join(t.TempDir(), "netbox", "config.yml")
	viper.SetConfigFile(configFile)
	viper.Set("output", constants.FormatJSON)

	readConfig := func(t *testing.T) commands.Config {
		t.Helper()

		data, err := os.ReadFile(configFile)
		require.NoError(t, err)

		var config commands.Config
		require.NoError(t, yaml.Unmarshal(data, &config))

		return config
	}

	t.Run("set", func(t *testing.T) {
		out, err := execute(commands.NewConfigCommand(), nil, "set", "url", "https://netbox.example.com/")
		require.NoError(t, err)
		assert.JSONEq(t, `{"action":"set","key":"url","value":"https://netbox.example.com"}`, out)
		assert.Equal(t, "https://netbox.example.com", readConfig(t).URL)

		info, err := os.Stat(configFile)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())
	})

	t.Run("set-token masks the token", func(t *testing.T) {
		out, err := execute(commands.NewConfigCommand(), nil, "set-token", "0123456789abcdef")
		require.NoError(t, err)
		assert.JSONEq(t, `{"action":"set","key":"token","value":"***cdef"}`, out)
		assert.Equal(t, "0123456789abcdef", readConfig(t).Token)
	})

	t.Run("set-token records an expiry", func(t *testing.T) {
		_, err := execute(commands.NewConfigCommand(), nil, "set-token", "0123456789abcdef", "--expires", "2030-01-02")
		require.NoError(t, err)
		assert.Equal(t, "2030-01-02", readConfig(t).TokenExpires)

		_, err = execute(commands.NewConfigCommand(), nil, "set-token", "0123456789abcdef")
		require.NoError(t, err)
		assert.Empty(t, readConfig(t).TokenExpires)
	})

	t.Run("set token_expires", func(t *testing.T) {
		_, err := execute(commands.NewConfigCommand(), nil, "set", "token_expires", "2030-01-02T15:04:05Z")
		require.NoError(t, err)
		assert.Equal(t, "2030-01-02T15:04:05Z", readConfig(t).TokenExpires)

		_, err = execute(commands.NewConfigCommand(), nil, "unset", "token_expires")
		require.NoError(t, err)
		assert.Empty(t, readConfig(t).TokenExpires)
	})

	t.Run("show", func(t *testing.T) {
		out, err := execute(commands.NewConfigCommand(), nil, "show")
		require.NoError(t, err)

		var shown map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &shown))
		assert.Equal(t, "https://netbox.example.com", shown["url"])
		assert.Equal(t, "***cdef", shown["token"])
	})

	t.Run("unset", func(t *testing.T) {
		_, err := execute(commands.NewConfigCommand(), nil, "unset", "url")
		require.NoError(t, err)
		assert.Empty(t, readConfig(t).URL)
		assert.Equal(t, "0123456789abcdef", readConfig(t).Token)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := execute(commands.NewConfigCommand(), nil, "set", "colour", "blue")
		require.ErrorIs(t, err, constants.ErrUnknownConfigKey)

		_, err = execute(commands.NewConfigCommand(), nil, "set", "output", "xml")
		require.ErrorIs(t, err, constants.ErrUnsupportedFormat)

		_, err = execute(commands.NewConfigCommand(), nil, "set", "timeout", "soon")
		require.Error(t, err)

		_, err = execute(commands.NewConfigCommand(), nil, "set", "concurrency", "many")
		require.Error(t, err)

		_, err = execute(commands.NewConfigCommand(), nil, "set-token", "  ")
		require.ErrorIs(t, err, constants.ErrEmptyToken)

		_, err = execute(commands.NewConfigCommand(), nil, "set", "token_expires", "next week")
		require.ErrorIs(t, err, constants.ErrInvalidExpiryTime)

		_, err = execute(commands.NewConfigCommand(), nil, "set-token", "0123456789abcdef", "--expires", "02/01/2030")
		require.ErrorIs(t, err, constants.ErrInvalidExpiryTime)
	})
}

func TestEndpointsCommand(t *testing.T) {
	newServer(t, constants.FormatJSON)

	cmd := commands.NewEndpointsCommand()
	assert.Equal(t, "endpoints [FILTER]", cmd.Use)
	assert.Equal(t, []string{"ep"}, cmd.Aliases)

	t.Run("json", func(t *testing.T) {
		out, err := execute(commands.NewEndpointsCommand(), nil, "sites")
		require.NoError(t, err)

		var infos []commands.EndpointInfo
		require.NoError(t, json.Unmarshal([]byte(out), &infos))
		require.Len(t, infos, 2)
		assert.Equal(t, commands.EndpointInfo{
			Name:       "dcim_sites",
			Path:       "/dcim/sites/",
			Operations: []string{"get", "post"},
		}, infos[0])
		assert.Equal(t, "dcim_sites_id", infos[1].Name)
	})

	t.Run("table", func(t *testing.T) {
		viper.Set("output", constants.FormatTable)
		defer viper.Set("output", constants.FormatJSON)

		out, err := execute(commands.NewEndpointsCommand(), nil)
		require.NoError(t, err)
		assert.Contains(t, out, "dcim_devices_id")
		assert.Contains(t, out, "/dcim/devices/{id}/")
	})

	t.Run("no match", func(t *testing.T) {
		viper.Set("output", constants.FormatTable)
		defer viper.Set("output", constants.FormatJSON)

		out, err := execute(commands.NewEndpointsCommand(), nil, "racks")
		require.NoError(t, err)
		assert.Equal(t, "No endpoints found\n", out)
	})
}
