package netbox

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Verb is a lower-case HTTP method name accepted in a request descriptor.
type Verb string

// Supported verbs.
const (
	VerbGet    Verb = "get"
	VerbPost   Verb = "post"
	VerbPut    Verb = "put"
	VerbPatch  Verb = "patch"
	VerbDelete Verb = "delete"
)

// Method returns the HTTP method for the verb.
func (v Verb) Method() string {
	return strings.ToUpper(string(v))
}

// Verb sets allowed at each call site.
var (
	EndpointVerbs = []Verb{VerbGet, VerbPut, VerbPost, VerbPatch, VerbDelete}
	ResourceVerbs = []Verb{VerbGet, VerbPut, VerbPatch, VerbDelete}
)

var validate = validator.New()

// Payload is one parameter mapping: query parameters for get, a JSON body for
// the mutating verbs.
type Payload map[string]interface{}

// Clone returns a shallow copy of p.
func (p Payload) Clone() Payload {
	clone := make(Payload, len(p)+1)
	for key, value := range p {
		clone[key] = value
	}

	return clone
}

// Entry maps a verb to its payloads. List is set when the payloads were given
// as a list, which forces batch expansion even for a single element.
type Entry struct {
	Verb     Verb
	Payloads []Payload
	List     bool
}

// Request is an ordered verb-to-payload descriptor. Adding a verb that is
// already present replaces its payloads in place.
type Request struct {
	entries []Entry
}

// NewRequest returns an empty descriptor. An empty descriptor is treated as
// a get with no parameters.
func NewRequest() Request {
	return Request{}
}

// Get returns a descriptor holding a single get.
func Get(params Payload) Request { return NewRequest().Get(params) }

// Post returns a descriptor holding a single post.
func Post(data Payload) Request { return NewRequest().Post(data) }

// Put returns a descriptor holding a single put.
func Put(data Payload) Request { return NewRequest().Put(data) }

// Patch returns a descriptor holding a single patch.
func Patch(data Payload) Request { return NewRequest().Patch(data) }

// Delete returns a descriptor holding a single delete.
func Delete(data Payload) Request { return NewRequest().Delete(data) }

// List returns a descriptor with a list-valued payload for verb.
func List(verb Verb, payloads ...Payload) Request { return NewRequest().List(verb, payloads...) }

// Get adds a get entry.
func (r Request) Get(params Payload) Request { return r.Add(VerbGet, params) }

// Post adds a post entry.
func (r Request) Post(data Payload) Request { return r.Add(VerbPost, data) }

// Put adds a put entry.
func (r Request) Put(data Payload) Request { return r.Add(VerbPut, data) }

// Patch adds a patch entry.
func (r Request) Patch(data Payload) Request { return r.Add(VerbPatch, data) }

// Delete adds a delete entry.
func (r Request) Delete(data Payload) Request { return r.Add(VerbDelete, data) }

// Add sets a single payload for verb.
func (r Request) Add(verb Verb, payload Payload) Request {
	if payload == nil {
		payload = Payload{}
	}

	return r.with(Entry{Verb: verb, Payloads: []Payload{payload}})
}

// List sets a list of payloads for verb.
func (r Request) List(verb Verb, payloads ...Payload) Request {
	items := make([]Payload, len(payloads))
	for i, payload := range payloads {
		if payload == nil {
			payload = Payload{}
		}

		items[i] = payload
	}

	return r.with(Entry{Verb: verb, Payloads: items, List: true})
}

func (r Request) with(entry Entry) Request {
	entries := make([]Entry, 0, len(r.entries)+1)
	replaced := false

	for _, existing := range r.entries {
		if existing.Verb == entry.Verb {
			entries = append(entries, entry)
			replaced = true

			continue
		}

		entries = append(entries, existing)
	}

	if !replaced {
		entries = append(entries, entry)
	}

	return Request{entries: entries}
}

// Entries returns a copy of the descriptor entries in order.
func (r Request) Entries() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)

	return entries
}

// Verbs returns the verbs in descriptor order.
func (r Request) Verbs() []Verb {
	verbs := make([]Verb, len(r.entries))
	for i, entry := range r.entries {
		verbs[i] = entry.Verb
	}

	return verbs
}

// IsEmpty reports whether no verb was added.
func (r Request) IsEmpty() bool {
	return len(r.entries) == 0
}

// Validate checks every verb against allowed. An empty descriptor becomes a
// get with no parameters.
func (r Request) Validate(allowed []Verb) (Request, error) {
	if r.IsEmpty() {
		return Get(Payload{}), nil
	}

	names := make([]string, len(allowed))
	for i, verb := range allowed {
		names[i] = string(verb)
	}

	tag := "required,oneof=" + strings.Join(names, " ")

	for _, entry := range r.entries {
		err := validate.Var(string(entry.Verb), tag)
		if err != nil {
			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				return Request{}, &ValidationError{Verb: entry.Verb, Allowed: allowed}
			}

			return Request{}, fmt.Errorf("validating verb %q: %w", entry.Verb, err)
		}
	}

	return r, nil
}

// IsSingle reports whether the descriptor is exactly one verb mapped to one
// payload mapping.
func (r Request) IsSingle() bool {
	return len(r.entries) == 1 && !r.entries[0].List && len(r.entries[0].Payloads) == 1
}

// Single returns the verb and payload of a single descriptor.
func (r Request) Single() (Verb, Payload, error) {
	if !r.IsSingle() {
		return "", nil, ErrNotSingleRequest
	}

	return r.entries[0].Verb, r.entries[0].Payloads[0], nil
}

// Expand builds the execution plan: one single-verb descriptor per payload,
// verbs in descriptor order, list elements in list order. An empty list
// yields one descriptor with an empty payload.
func (r Request) Expand() []Request {
	if r.IsEmpty() {
		return []Request{Get(Payload{})}
	}

	plan := make([]Request, 0, len(r.entries))

	for _, entry := range r.entries {
		if len(entry.Payloads) == 0 {
			plan = append(plan, NewRequest().Add(entry.Verb, Payload{}))

			continue
		}

		for _, payload := range entry.Payloads {
			plan = append(plan, NewRequest().Add(entry.Verb, payload))
		}
	}

	return plan
}

// WithDefault returns a copy where every payload carries key set to value
// unless the payload already sets it.
func (r Request) WithDefault(key string, value interface{}) Request {
	entries := make([]Entry, len(r.entries))

	for i, entry := range r.entries {
		payloads := make([]Payload, len(entry.Payloads))

		for j, payload := range entry.Payloads {
			clone := payload.Clone()
			if _, ok := clone[key]; !ok {
				clone[key] = value
			}

			payloads[j] = clone
		}

		if len(payloads) == 0 && entry.List {
			payloads = []Payload{{key: value}}
		}

		entries[i] = Entry{Verb: entry.Verb, Payloads: payloads, List: entry.List}
	}

	return Request{entries: entries}
}

// String renders the descriptor for logs and errors.
func (r Request) String() string {
	parts := make([]string, 0, len(r.entries))

	for _, entry := range r.entries {
		body, err := ValueOf(payloadsInterface(entry)).MarshalJSON()
		if err != nil {
			body = []byte("?")
		}

		parts = append(parts, fmt.Sprintf("%s: %s", entry.Verb, body))
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

func payloadsInterface(entry Entry) interface{} {
	if !entry.List && len(entry.Payloads) == 1 {
		return map[string]interface{}(entry.Payloads[0])
	}

	items := make([]interface{}, len(entry.Payloads))
	for i, payload := range entry.Payloads {
		items[i] = map[string]interface{}(payload)
	}

	return items
}
