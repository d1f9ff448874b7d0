package netbox

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// IDPlaceholder is the path parameter substituted with a payload's id.
const IDPlaceholder = "{id}"

// Resource is one API object materialized from a decoded JSON object. Field
// names are normalized: lowercase, spaces as underscores. Calling a Resource
// issues follow-up requests scoped to its id.
type Resource struct {
	dispatcher Dispatcher
	path       string
	fields     *Object
	response   *Response

	idPathOnce sync.Once
	idPath     string
}

// NewResource binds fields to the collection path template they came from.
func NewResource(dispatcher Dispatcher, path string, fields *Object, response *Response) *Resource {
	if fields == nil {
		fields = NewObject(EndpointName(path))
	}

	return &Resource{
		dispatcher: dispatcher,
		path:       path,
		fields:     fields,
		response:   response,
	}
}

// Path returns the path template the resource was fetched through.
func (r *Resource) Path() string { return r.path }

// Fields returns the top-level fields.
func (r *Resource) Fields() *Object { return r.fields }

// Response returns the raw response the resource was built from.
func (r *Resource) Response() *Response { return r.response }

// Field reads a top-level field.
func (r *Resource) Field(name string) (Value, error) {
	value, ok := r.fields.Get(name)
	if !ok {
		return Value{}, &MissingAttributeError{Resource: r.name(), Attribute: name}
	}

	return value, nil
}

// Lookup follows a dotted field path such as "device_role.name".
func (r *Resource) Lookup(dotted string) (Value, error) {
	parts := strings.Split(dotted, ".")

	value, err := r.Field(parts[0])
	if err != nil {
		return Value{}, err
	}

	for _, part := range parts[1:] {
		value, err = value.Field(part)
		if err != nil {
			return Value{}, err
		}
	}

	return value, nil
}

// ID returns the id field.
func (r *Resource) ID() (Value, error) {
	return r.Field("id")
}

// IDPath returns the path template addressing this resource by id. The
// placeholder is appended when the collection path has none.
func (r *Resource) IDPath() string {
	r.idPathOnce.Do(func() {
		switch {
		case strings.Contains(r.path, IDPlaceholder):
			r.idPath = r.path
		case strings.HasSuffix(r.path, "/"):
			r.idPath = r.path + IDPlaceholder + "/"
		default:
			r.idPath = r.path + "/" + IDPlaceholder + "/"
		}
	})

	return r.idPath
}

// Call issues id-scoped requests. Allowed verbs are get, put, patch and
// delete. Every payload gets the resource id unless it sets its own. A single
// request is dispatched directly; anything else runs sequentially and the
// results come back as a ResultSequence in execution order. On failure the
// sequence holds the results completed before the failing unit.
func (r *Resource) Call(ctx context.Context, req Request) (Result, error) {
	req, err := req.Validate(ResourceVerbs)
	if err != nil {
		return Result{}, err
	}

	id, ok := r.fields.Get("id")
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrMissingIDField, r.name())
	}

	req = req.WithDefault("id", id)
	path := r.IDPath()

	if req.IsSingle() {
		return r.dispatcher.Dispatch(ctx, path, req)
	}

	plan := req.Expand()
	results := make([]Result, 0, len(plan))

	for _, unit := range plan {
		result, err := r.dispatcher.Dispatch(ctx, path, unit)
		if err != nil {
			return SequenceResult(results), err
		}

		results = append(results, result)
	}

	return SequenceResult(results), nil
}

// String returns the resource as JSON.
func (r *Resource) String() string {
	data, err := r.MarshalJSON()
	if err != nil {
		return "<" + r.name() + ">"
	}

	return string(data)
}

// MarshalJSON renders the fields with their original keys.
func (r *Resource) MarshalJSON() ([]byte, error) {
	return r.fields.MarshalJSON()
}

func (r *Resource) name() string {
	if r.fields != nil && r.fields.name != "" {
		return r.fields.name
	}

	return EndpointName(r.path)
}
