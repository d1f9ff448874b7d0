package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/netbox-client/internal/constants"
	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
	"gopkg.in/yaml.v3"
)

// parseAssignments turns key=value arguments into a payload. Values are read
// as YAML scalars so numbers and booleans keep their type. A repeated key
// collects its values into a list.
func parseAssignments(args []string) (netbox.Payload, error) {
	payload := netbox.Payload{}

	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidKeyValue, arg)
		}

		value := parseScalar(raw)

		existing, seen := payload[key]
		if !seen {
			payload[key] = value

			continue
		}

		if list, isList := existing.([]interface{}); isList {
			payload[key] = append(list, value)
		} else {
			payload[key] = []interface{}{existing, value}
		}
	}

	return payload, nil
}

func parseScalar(raw string) interface{} {
	if raw == "" {
		return ""
	}

	var value interface{}

	err := yaml.Unmarshal([]byte(raw), &value)
	if err != nil {
		return raw
	}

	switch value.(type) {
	case map[string]interface{}, []interface{}:
		return raw
	default:
		return value
	}
}

// readRequestFile reads a YAML or JSON request. With a verb the document is
// that verb's payload, a mapping or a list of mappings. Without one it is a
// mapping of verb to payload, applied in document order.
func readRequestFile(path string, stdin io.Reader, verb netbox.Verb) (netbox.Request, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) // #nosec G304 -- path is supplied by the user on purpose
	}

	if err != nil {
		return netbox.Request{}, fmt.Errorf("failed to read request file: %w", err)
	}

	var document yaml.Node

	err = yaml.Unmarshal(data, &document)
	if err != nil {
		return netbox.Request{}, fmt.Errorf("failed to parse request file: %w", err)
	}

	if len(document.Content) == 0 {
		return netbox.NewRequest(), nil
	}

	root := document.Content[0]

	if verb != "" {
		return addPayloadNode(netbox.NewRequest(), verb, root)
	}

	if root.Kind != yaml.MappingNode {
		return netbox.Request{}, constants.ErrInvalidRequestFile
	}

	req := netbox.NewRequest()

	for i := 0; i+1 < len(root.Content); i += 2 {
		req, err = addPayloadNode(req, netbox.Verb(strings.ToLower(root.Content[i].Value)), root.Content[i+1])
		if err != nil {
			return netbox.Request{}, err
		}
	}

	return req, nil
}

func addPayloadNode(req netbox.Request, verb netbox.Verb, node *yaml.Node) (netbox.Request, error) {
	switch node.Kind {
	case yaml.MappingNode:
		payload, err := decodePayload(node)
		if err != nil {
			return netbox.Request{}, err
		}

		return req.Add(verb, payload), nil
	case yaml.SequenceNode:
		payloads := make([]netbox.Payload, 0, len(node.Content))

		for _, item := range node.Content {
			if item.Kind != yaml.MappingNode {
				return netbox.Request{}, fmt.Errorf("%w: %s", constants.ErrInvalidPayloadShape, verb)
			}

			payload, err := decodePayload(item)
			if err != nil {
				return netbox.Request{}, err
			}

			payloads = append(payloads, payload)
		}

		return req.List(verb, payloads...), nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return req.Add(verb, netbox.Payload{}), nil
		}
	}

	return netbox.Request{}, fmt.Errorf("%w: %s", constants.ErrInvalidPayloadShape, verb)
}

func decodePayload(node *yaml.Node) (netbox.Payload, error) {
	var payload map[string]interface{}

	err := node.Decode(&payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	return netbox.Payload(payload), nil
}

// withAssignments adds every assignment to every payload of req, leaving
// keys the payload already sets untouched.
func withAssignments(req netbox.Request, assignments netbox.Payload) netbox.Request {
	for key, value := range assignments {
		req = req.WithDefault(key, value)
	}

	return req
}
