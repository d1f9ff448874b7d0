package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/netbox-client/internal/constants"
	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EndpointInfo describes one discovered endpoint.
type EndpointInfo struct {
	Name       string   `json:"name"       yaml:"name"`
	Path       string   `json:"path"       yaml:"path"`
	Operations []string `json:"operations" yaml:"operations"`
}

// NewEndpointsCommand creates the endpoints command.
func NewEndpointsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "endpoints [FILTER]",
		Aliases: []string{"ep"},
		Short:   "List discovered endpoints",
		Long:    "List the endpoints discovered from the server's OpenAPI document, optionally filtered by a name substring",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openClient(cmd.Context())
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			filter := ""
			if len(args) == 1 {
				filter = strings.ToLower(args[0])
			}

			infos := make([]EndpointInfo, 0)

			for _, endpoint := range client.Endpoints() {
				if filter != "" && !strings.Contains(endpoint.Name(), filter) {
					continue
				}

				infos = append(infos, endpointInfo(endpoint))
			}

			return renderEndpoints(cmd.OutOrStdout(), viper.GetString("output"), infos)
		},
	}

	return cmd
}

func endpointInfo(endpoint *netbox.Endpoint) EndpointInfo {
	operations := make([]string, 0, len(endpoint.Operations()))
	for _, verb := range endpoint.Operations() {
		operations = append(operations, string(verb))
	}

	return EndpointInfo{
		Name:       endpoint.Name(),
		Path:       endpoint.Path(),
		Operations: operations,
	}
}

func renderEndpoints(out io.Writer, format string, infos []EndpointInfo) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(infos)
	case constants.FormatYAML:
		return yaml.NewEncoder(out).Encode(infos)
	case constants.FormatTable, "":
		if len(infos) == 0 {
			_, _ = fmt.Fprintln(out, "No endpoints found")

			return nil
		}

		table := tablewriter.NewWriter(out)
		table.Header("Name", "Path", "Operations")

		for _, info := range infos {
			operations := strings.Join(info.Operations, ", ")
			if operations == "" {
				operations = constants.NotAvailable
			}

			_ = table.Append([]string{info.Name, info.Path, operations})
		}

		return table.Render()
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, format)
	}
}
