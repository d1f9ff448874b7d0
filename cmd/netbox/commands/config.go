package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/netbox-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// ConfigDirName is the directory under $HOME holding config.yml.
const ConfigDirName = ".netbox"

const configFileName = "config.yml"

// Config represents the CLI configuration.
type Config struct {
	URL          string `json:"url,omitempty"           yaml:"url,omitempty"`
	Token        string `json:"token,omitempty"         yaml:"token,omitempty"`
	TokenExpires string `json:"token_expires,omitempty" yaml:"token_expires,omitempty"`
	Output       string `json:"output,omitempty"        yaml:"output,omitempty"`
	Timeout      string `json:"timeout,omitempty"       yaml:"timeout,omitempty"`
	RetryMax     int    `json:"retry_max,omitempty"     yaml:"retry_max,omitempty"`
	Concurrency  int    `json:"concurrency,omitempty"   yaml:"concurrency,omitempty"`
}

// configKeys lists the keys accepted by config set and unset.
var configKeys = []string{"url", "token", "token_expires", "output", "timeout", "retry_max", "concurrency"}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage NetBox CLI configuration stored in $HOME/.netbox/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigSetTokenCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration. The token is masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Token = maskToken(config.Token)

			out := cmd.OutOrStdout()

			switch viper.GetString("output") {
			case constants.FormatJSON:
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				return encoder.Encode(config)
			case constants.FormatYAML:
				return yaml.NewEncoder(out).Encode(config)
			default:
				return displayConfigTable(out, config)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(configKeys, ", "),
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			config := loadConfig()

			err := setConfigValue(config, key, value)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			value = viper.GetString(key)
			if key == "token" {
				value = maskToken(value)
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "set", key, value)
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			config := loadConfig()

			err := unsetConfigValue(config, key)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "unset", key, "")
		},
	}
}

func newConfigSetTokenCommand() *cobra.Command {
	var expires string

	cmd := &cobra.Command{
		Use:   "set-token [TOKEN]",
		Short: "Store the API token",
		Long: "Store the API token. Without an argument the token is read from the terminal without echo. " +
			"--expires records when the token stops working (RFC 3339 or YYYY-MM-DD); without it any stored expiry is cleared.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string

			if len(args) == 1 {
				token = args[0]
			} else {
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Token: ")

				tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd())) // #nosec G115
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}

				_, _ = fmt.Fprintln(cmd.ErrOrStderr())
				token = string(tokenBytes)
			}

			token = strings.TrimSpace(token)
			if token == "" {
				return constants.ErrEmptyToken
			}

			if expires != "" {
				_, err := parseTokenExpiry(expires)
				if err != nil {
					return err
				}
			}

			config := loadConfig()
			config.Token = token
			config.TokenExpires = expires

			err := saveConfigStruct(config)
			if err != nil {
				return err
			}

			viper.Set("token", token)
			viper.Set("token_expires", expires)

			return outputConfigUpdateResult(cmd.OutOrStdout(), "set", "token", maskToken(token))
		},
	}

	cmd.Flags().StringVar(&expires, "expires", "", "token expiry (RFC 3339 or YYYY-MM-DD)")

	return cmd
}

// parseTokenExpiry accepts an RFC 3339 timestamp or a bare date, which is
// read as midnight UTC. An empty value means the token never expires.
func parseTokenExpiry(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		expiresAt, err := time.Parse(layout, value)
		if err == nil {
			return expiresAt, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", constants.ErrInvalidExpiryTime, value)
}

// loadConfig reads the effective configuration: flags, then environment,
// then the config file.
func loadConfig() *Config {
	return &Config{
		URL:          viper.GetString("url"),
		Token:        viper.GetString("token"),
		TokenExpires: viper.GetString("token_expires"),
		Output:       viper.GetString("output"),
		Timeout:      viper.GetString("timeout"),
		RetryMax:     viper.GetInt("retry_max"),
		Concurrency:  viper.GetInt("concurrency"),
	}
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ConfigDirName, configFileName), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "url":
		value = strings.TrimSuffix(value, "/")
		config.URL = value
	case "token":
		if strings.TrimSpace(value) == "" {
			return constants.ErrEmptyToken
		}

		config.Token = value
	case "token_expires":
		_, err := parseTokenExpiry(value)
		if err != nil {
			return err
		}

		config.TokenExpires = value
	case "output":
		if !slices.Contains([]string{constants.FormatJSON, constants.FormatYAML, constants.FormatTable}, value) {
			return fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, value)
		}

		config.Output = value
	case "timeout":
		_, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", value, err)
		}

		config.Timeout = value
	case "retry_max", "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer, got %q", key, value)
		}

		if key == "retry_max" {
			config.RetryMax = n
		} else {
			config.Concurrency = n
		}
	default:
		return fmt.Errorf("%w: %s (valid keys: %s)", constants.ErrUnknownConfigKey, key, strings.Join(configKeys, ", "))
	}

	viper.Set(key, value)

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	switch key {
	case "url":
		config.URL = ""
	case "token":
		config.Token = ""
	case "token_expires":
		config.TokenExpires = ""
	case "output":
		config.Output = ""
	case "timeout":
		config.Timeout = ""
	case "retry_max":
		config.RetryMax = 0
	case "concurrency":
		config.Concurrency = 0
	default:
		return fmt.Errorf("%w: %s (valid keys: %s)", constants.ErrUnknownConfigKey, key, strings.Join(configKeys, ", "))
	}

	viper.Set(key, "")

	return nil
}

// maskToken keeps the last few characters of a token visible.
func maskToken(token string) string {
	if token == "" {
		return ""
	}

	if len(token) <= constants.MaskVisibleChars {
		return constants.MaskedSecret
	}

	return constants.MaskedSecret + token[len(token)-constants.MaskVisibleChars:]
}

func displayConfigTable(out io.Writer, config *Config) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	_ = table.Append([]string{"URL", formatConfigValue(config.URL)})
	_ = table.Append([]string{"Token", formatConfigValue(config.Token)})
	_ = table.Append([]string{"Token Expires", formatConfigValue(config.TokenExpires)})
	_ = table.Append([]string{"Output", formatConfigValue(config.Output)})
	_ = table.Append([]string{"Timeout", formatConfigValue(config.Timeout)})
	_ = table.Append([]string{"Retry Max", strconv.Itoa(config.RetryMax)})
	_ = table.Append([]string{"Concurrency", strconv.Itoa(config.Concurrency)})

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func outputConfigUpdateResult(out io.Writer, action, key, value string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(result)
		if err != nil {
			return fmt.Errorf("failed to encode config result as JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		err := yaml.NewEncoder(out).Encode(result)
		if err != nil {
			return fmt.Errorf("failed to encode config result as YAML: %w", err)
		}

		return nil
	default:
		table := tablewriter.NewWriter(out)
		table.Header("Property", "Value")
		_ = table.Append([]string{"Action", action})
		_ = table.Append([]string{"Key", key})

		if value != "" {
			_ = table.Append([]string{"Value", value})
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}
