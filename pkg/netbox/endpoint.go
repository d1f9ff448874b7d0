package netbox

import (
	"context"
	"slices"
	"strings"
)

var endpointNameReplacer = strings.NewReplacer("{", "", "}", "", "-", "_", "/", "_")

// EndpointName maps an OpenAPI path to an identifier: one leading and one
// trailing slash are dropped, braces removed, and "-" and "/" become "_".
//
//	/dcim/devices/                   -> dcim_devices
//	/circuits/circuit-terminations/  -> circuits_circuit_terminations
//	/dcim/devices/{id}/              -> dcim_devices_id
func EndpointName(path string) string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")

	return endpointNameReplacer.Replace(path)
}

// Endpoint is a callable bound to one OpenAPI path.
type Endpoint struct {
	name       string
	path       string
	operations []Verb
	dispatcher Dispatcher
}

// NewEndpoint binds path to dispatcher. operations lists the verbs the
// OpenAPI document declares for the path; it is informational only.
func NewEndpoint(path string, operations []Verb, dispatcher Dispatcher) *Endpoint {
	return &Endpoint{
		name:       EndpointName(path),
		path:       path,
		operations: operations,
		dispatcher: dispatcher,
	}
}

// Name returns the normalized endpoint name.
func (e *Endpoint) Name() string { return e.name }

// Path returns the path template.
func (e *Endpoint) Path() string { return e.path }

// HasID reports whether the path addresses a single object.
func (e *Endpoint) HasID() bool { return strings.Contains(e.path, IDPlaceholder) }

// Operations returns the verbs declared for the path in the OpenAPI document.
func (e *Endpoint) Operations() []Verb { return slices.Clone(e.operations) }

// Supports reports whether the OpenAPI document declares verb for the path.
// Endpoints without operation data support every verb.
func (e *Endpoint) Supports(verb Verb) bool {
	if len(e.operations) == 0 {
		return slices.Contains(EndpointVerbs, verb)
	}

	return slices.Contains(e.operations, verb)
}

// Call validates req and dispatches it. A single verb with a single payload
// runs immediately. Anything else returns a ResultBatch of pending units,
// one per expanded request, for the caller to run.
func (e *Endpoint) Call(ctx context.Context, req Request) (Result, error) {
	req, err := req.Validate(EndpointVerbs)
	if err != nil {
		return Result{}, err
	}

	if req.IsSingle() {
		return e.dispatcher.Dispatch(ctx, e.path, req)
	}

	return BatchResult(NewBatch(e.dispatcher, e.path, req.Expand())), nil
}

// Get is shorthand for Call with a single get.
func (e *Endpoint) Get(ctx context.Context, params Payload) (Result, error) {
	return e.Call(ctx, Get(params))
}

// Post is shorthand for Call with a single post.
func (e *Endpoint) Post(ctx context.Context, data Payload) (Result, error) {
	return e.Call(ctx, Post(data))
}
