package client

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/netbox-client/internal/constants"
	"github.com/fivetwenty-io/netbox-client/internal/http"
	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
)

// Dispatch implements netbox.Dispatcher. req must hold a single verb with a
// single payload. The id placeholder in path is filled from the payload
// before anything is sent.
func (c *Client) Dispatch(ctx context.Context, path string, req netbox.Request) (netbox.Result, error) {
	if c.closed.Load() {
		return netbox.Result{}, netbox.ErrClientClosed
	}

	verb, payload, err := req.Single()
	if err != nil {
		return netbox.Result{}, err
	}

	httpReq, err := buildRequest(path, verb, payload)
	if err != nil {
		return netbox.Result{}, err
	}

	resp, err := c.httpClient.Do(ctx, httpReq)
	if err != nil {
		return netbox.Result{}, err
	}

	if verb == netbox.VerbPost && resp.StatusCode == 204 {
		return netbox.Result{}, &netbox.TransportError{Method: resp.Method, URL: resp.URL, Err: netbox.ErrAllocation}
	}

	return normalize(c, path, verb, resp.API())
}

// buildRequest maps a verb and payload onto an HTTP request: query string
// for get, JSON body for post, put and patch, nothing for delete.
func buildRequest(path string, verb netbox.Verb, payload netbox.Payload) (*http.Request, error) {
	resolved, err := substituteID(path, verb, payload)
	if err != nil {
		return nil, err
	}

	httpReq := &http.Request{Method: verb.Method(), Path: resolved}

	switch verb {
	case netbox.VerbGet:
		httpReq.Query, err = queryValues(payload)
		if err != nil {
			return nil, err
		}
	case netbox.VerbPost, netbox.VerbPut, netbox.VerbPatch:
		httpReq.Body = payload
	case netbox.VerbDelete:
	default:
		return nil, &netbox.ValidationError{Verb: verb, Allowed: netbox.EndpointVerbs}
	}

	return httpReq, nil
}

// substituteID fills the id placeholder from payload["id"]. The id stays in
// the payload.
func substituteID(path string, verb netbox.Verb, payload netbox.Payload) (string, error) {
	if !strings.Contains(path, netbox.IDPlaceholder) {
		return path, nil
	}

	id, ok := payload[constants.IDKey]
	if !ok || id == nil {
		message := fmt.Sprintf(`%s method must contain object id in the {"id": 1} format`, strings.ToUpper(string(verb)))
		if verb == netbox.VerbGet {
			return "", &netbox.ParameterError{Message: message}
		}

		return "", &netbox.DataError{Message: message, Verb: verb}
	}

	return strings.ReplaceAll(path, netbox.IDPlaceholder, url.PathEscape(paramString(id))), nil
}

// queryValues renders a get payload as a query string. Lists repeat the key.
// A mapping has no query string form and is rejected.
func queryValues(payload netbox.Payload) (url.Values, error) {
	values := make(url.Values, len(payload))

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		var items []interface{}

		switch typed := payload[key].(type) {
		case []string:
			values[key] = append(values[key], typed...)

			continue
		case []interface{}:
			items = typed
		case netbox.Value:
			if typed.Kind() != netbox.KindList {
				items = []interface{}{typed}

				break
			}

			for _, item := range typed.List() {
				items = append(items, item)
			}
		default:
			items = []interface{}{typed}
		}

		for _, item := range items {
			if isMapping(item) {
				return nil, &netbox.ParameterError{
					Message: fmt.Sprintf("GET parameter %q must be a scalar or a list of scalars, not a mapping", key),
				}
			}

			values.Add(key, paramString(item))
		}
	}

	return values, nil
}

func isMapping(value interface{}) bool {
	if typed, ok := value.(netbox.Value); ok {
		return typed.Kind() == netbox.KindObject
	}

	return value != nil && reflect.TypeOf(value).Kind() == reflect.Map
}

func paramString(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}
