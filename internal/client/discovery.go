package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/fivetwenty-io/netbox-client/internal/constants"
	"github.com/fivetwenty-io/netbox-client/internal/http"
	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi3"
)

// document is a parsed discovery document: the raw tree, the path keys in
// document order, and the verbs each path declares.
type document struct {
	raw        netbox.Value
	paths      []string
	operations map[string][]netbox.Verb
}

func (c *Client) fetchDocument(ctx context.Context) (*document, error) {
	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:  "GET",
		Path:    constants.DocsPath,
		Query:   url.Values{"format": []string{constants.DocsFormat}},
		Headers: map[string]string{"Content-Type": constants.DocsContentType},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching OpenAPI document: %w", err)
	}

	return parseDocument(resp.API(), c.logger)
}

// parseDocument reads the path keys with an order-preserving decoder and the
// per-path operations with kin-openapi. A document kin-openapi cannot load
// still yields endpoints, only without operation data.
func parseDocument(resp *netbox.Response, logger netbox.Logger) (*document, error) {
	raw, err := resp.JSON()
	if err != nil {
		return nil, err
	}

	root := raw.Object()
	if root == nil {
		return nil, fmt.Errorf("%w: document is not an object", netbox.ErrNoPaths)
	}

	pathsValue, ok := root.GetRaw("paths")
	if !ok || pathsValue.Object() == nil {
		return nil, netbox.ErrNoPaths
	}

	doc := &document{
		raw:   raw,
		paths: pathsValue.Object().RawKeys(),
	}

	operations, err := loadOperations(root, resp.Body)
	if err != nil {
		logger.Warn("OpenAPI operations unavailable", map[string]interface{}{
			"error": err.Error(),
		})
	}

	doc.operations = operations

	return doc, nil
}

func loadOperations(root *netbox.Object, data []byte) (map[string][]netbox.Verb, error) {
	if _, ok := root.GetRaw("swagger"); ok {
		var spec openapi2.T

		err := json.Unmarshal(data, &spec)
		if err != nil {
			return nil, fmt.Errorf("parsing swagger document: %w", err)
		}

		operations := make(map[string][]netbox.Verb, len(spec.Paths))
		for path, item := range spec.Paths {
			if item == nil {
				continue
			}

			operations[path] = verbsOf(item.Operations())
		}

		return operations, nil
	}

	if _, ok := root.GetRaw("openapi"); ok {
		loader := openapi3.NewLoader()

		spec, err := loader.LoadFromData(data)
		if err != nil {
			return nil, fmt.Errorf("parsing openapi document: %w", err)
		}

		operations := make(map[string][]netbox.Verb, len(spec.Paths))
		for path, item := range spec.Paths {
			if item == nil {
				continue
			}

			operations[path] = verbsOf(item.Operations())
		}

		return operations, nil
	}

	return nil, nil
}

// verbsOf keeps the supported verbs of an operation map, in the order of
// netbox.EndpointVerbs.
func verbsOf[T any](operations map[string]T) []netbox.Verb {
	verbs := make([]netbox.Verb, 0, len(operations))

	for _, verb := range netbox.EndpointVerbs {
		if _, ok := operations[strings.ToUpper(string(verb))]; ok {
			verbs = append(verbs, verb)
		}
	}

	return slices.Clip(verbs)
}
