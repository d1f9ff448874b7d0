package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/netbox-client/internal/constants"
	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// renderResources writes resources in the requested format. JSON and YAML
// keep the server's field order.
func renderResources(out io.Writer, format string, resources []*netbox.Resource) error {
	switch format {
	case constants.FormatJSON:
		return renderJSON(out, resources)
	case constants.FormatYAML:
		return renderYAML(out, resources)
	case constants.FormatTable, "":
		return renderTable(out, resources)
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, format)
	}
}

func renderJSON(out io.Writer, resources []*netbox.Resource) error {
	var (
		data []byte
		err  error
	)

	if len(resources) == 1 {
		data, err = resources[0].MarshalJSON()
	} else {
		if resources == nil {
			resources = []*netbox.Resource{}
		}

		data, err = json.Marshal(resources)
	}

	if err != nil {
		return fmt.Errorf("failed to encode result as JSON: %w", err)
	}

	var indented bytes.Buffer

	err = json.Indent(&indented, data, "", strings.Repeat(" ", constants.JSONIndentSize))
	if err != nil {
		return fmt.Errorf("failed to indent JSON: %w", err)
	}

	indented.WriteByte('\n')

	_, err = out.Write(indented.Bytes())

	return err
}

func renderYAML(out io.Writer, resources []*netbox.Resource) error {
	var node *yaml.Node

	if len(resources) == 1 {
		node = yamlNode(netbox.ObjectValue(resources[0].Fields()))
	} else {
		node = &yaml.Node{Kind: yaml.SequenceNode}
		for _, resource := range resources {
			node.Content = append(node.Content, yamlNode(netbox.ObjectValue(resource.Fields())))
		}
	}

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(constants.JSONIndentSize)

	err := encoder.Encode(node)
	if err != nil {
		return fmt.Errorf("failed to encode result as YAML: %w", err)
	}

	return encoder.Close()
}

// yamlNode converts a decoded value into a YAML node tree in field order.
func yamlNode(value netbox.Value) *yaml.Node {
	switch value.Kind() {
	case netbox.KindObject:
		node := &yaml.Node{Kind: yaml.MappingNode}
		object := value.Object()

		for _, key := range object.RawKeys() {
			child, _ := object.GetRaw(key)
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				yamlNode(child),
			)
		}

		return node
	case netbox.KindList:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range value.List() {
			node.Content = append(node.Content, yamlNode(item))
		}

		return node
	case netbox.KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value.String()}
	case netbox.KindNumber:
		tag := "!!int"
		if _, err := value.Int(); err != nil {
			tag = "!!float"
		}

		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value.String()}
	case netbox.KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: value.String()}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// renderTable prints one row per resource. Columns are the union of field
// names in order of first appearance. A delete acknowledgement has no fields
// and prints the response status instead.
func renderTable(out io.Writer, resources []*netbox.Resource) error {
	columns := tableColumns(resources)

	if len(columns) == 0 {
		for _, resource := range resources {
			if resp := resource.Response(); resp != nil {
				_, _ = fmt.Fprintf(out, "%s %s: %d\n", resp.Method, resp.URL, resp.StatusCode)
			}
		}

		if len(resources) == 0 {
			_, _ = fmt.Fprintln(out, "No results")
		}

		return nil
	}

	title := cases.Title(language.English)

	headers := make([]any, len(columns))
	for i, column := range columns {
		headers[i] = title.String(strings.ReplaceAll(column, "_", " "))
	}

	table := tablewriter.NewWriter(out)
	table.Header(headers...)

	for _, resource := range resources {
		row := make([]string, len(columns))

		for i, column := range columns {
			value, ok := resource.Fields().Get(column)
			if !ok {
				continue
			}

			row[i] = cellText(value)
		}

		err := table.Append(row)
		if err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func tableColumns(resources []*netbox.Resource) []string {
	var columns []string

	seen := make(map[string]bool)

	for _, resource := range resources {
		for _, key := range resource.Fields().Keys() {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}

	return columns
}

// cellText renders nested objects by their display, name or id field, the
// way NetBox shows related objects.
func cellText(value netbox.Value) string {
	var text string

	switch value.Kind() {
	case netbox.KindNull:
		text = ""
	case netbox.KindObject:
		text = value.String()

		for _, key := range []string{"display", "name", "label", "value", "id"} {
			if field, ok := value.Object().Get(key); ok && field.Kind() != netbox.KindObject {
				text = field.String()

				break
			}
		}
	case netbox.KindList:
		parts := make([]string, 0, len(value.List()))
		for _, item := range value.List() {
			parts = append(parts, cellText(item))
		}

		text = strings.Join(parts, ", ")
	default:
		text = value.String()
	}

	runes := []rune(text)
	if len(runes) > constants.CellTruncationLength {
		return string(runes[:constants.CellTruncationLength-3]) + "..."
	}

	return text
}
