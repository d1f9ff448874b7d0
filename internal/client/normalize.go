package client

import (
	"github.com/fivetwenty-io/netbox-client/internal/constants"
	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
)

// normalize shapes a successful response into a Result:
//
//   - an object with a results list is a page; one element collapses to a
//     single resource, anything else becomes a collection in server order
//   - a top-level array is treated like a results list
//   - any other object is a single resource
//   - a body that is not JSON is a delete acknowledgement for delete and a
//     decoding error for every other verb
//
// It reads resp and never modifies it.
func normalize(dispatcher netbox.Dispatcher, path string, verb netbox.Verb, resp *netbox.Response) (netbox.Result, error) {
	decoded, err := resp.JSON()
	if err != nil {
		if verb == netbox.VerbDelete {
			return netbox.SingleResult(netbox.NewResource(dispatcher, path, nil, resp)), nil
		}

		return netbox.Result{}, err
	}

	switch decoded.Kind() {
	case netbox.KindObject:
		object := decoded.Object()

		results, ok := object.Get(constants.ResultsKey)
		if ok && results.Kind() == netbox.KindList {
			return fromList(dispatcher, path, results.List(), resp)
		}

		return netbox.SingleResult(netbox.NewResource(dispatcher, path, object, resp)), nil
	case netbox.KindList:
		return fromList(dispatcher, path, decoded.List(), resp)
	default:
		if verb == netbox.VerbDelete {
			return netbox.SingleResult(netbox.NewResource(dispatcher, path, nil, resp)), nil
		}

		return netbox.Result{}, &netbox.DecodingError{
			Method:     resp.Method,
			URL:        resp.URL,
			StatusCode: resp.StatusCode,
			Err:        netbox.ErrNotJSONObject,
		}
	}
}

func fromList(dispatcher netbox.Dispatcher, path string, items []netbox.Value, resp *netbox.Response) (netbox.Result, error) {
	resources := make([]*netbox.Resource, 0, len(items))

	for _, item := range items {
		object := item.Object()
		if object == nil {
			return netbox.Result{}, &netbox.DecodingError{
				Method:     resp.Method,
				URL:        resp.URL,
				StatusCode: resp.StatusCode,
				Err:        netbox.ErrNotJSONObject,
			}
		}

		resources = append(resources, netbox.NewResource(dispatcher, path, object, resp))
	}

	if len(resources) == 1 {
		return netbox.SingleResult(resources[0]), nil
	}

	return netbox.CollectionResult(netbox.NewCollection(resources, resp)), nil
}
