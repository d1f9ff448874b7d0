package netbox

import (
	"encoding/json"
	"iter"
)

// ResultKind discriminates the shapes a call can produce.
type ResultKind int

// Result kinds.
const (
	// ResultSingle holds one Resource.
	ResultSingle ResultKind = iota + 1
	// ResultCollection holds an ordered list of Resources from one response.
	ResultCollection
	// ResultBatch holds pending request units for the caller to run.
	ResultBatch
	// ResultSequence holds the results of a sequential resource-scoped batch.
	ResultSequence
)

// String returns the kind name.
func (k ResultKind) String() string {
	switch k {
	case ResultSingle:
		return "single"
	case ResultCollection:
		return "collection"
	case ResultBatch:
		return "batch"
	case ResultSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Result is what a call returns. Exactly one accessor matching Kind is
// populated.
type Result struct {
	kind       ResultKind
	resource   *Resource
	collection *Collection
	batch      *Batch
	sequence   []Result
}

// SingleResult wraps a Resource.
func SingleResult(resource *Resource) Result {
	return Result{kind: ResultSingle, resource: resource}
}

// CollectionResult wraps a Collection.
func CollectionResult(collection *Collection) Result {
	return Result{kind: ResultCollection, collection: collection}
}

// BatchResult wraps pending units.
func BatchResult(batch *Batch) Result {
	return Result{kind: ResultBatch, batch: batch}
}

// SequenceResult wraps completed results in execution order.
func SequenceResult(results []Result) Result {
	return Result{kind: ResultSequence, sequence: results}
}

// Kind returns the discriminant.
func (r Result) Kind() ResultKind { return r.kind }

// Resource returns the single resource, nil for other kinds.
func (r Result) Resource() *Resource { return r.resource }

// Collection returns the collection, nil for other kinds.
func (r Result) Collection() *Collection { return r.collection }

// Batch returns the pending batch, nil for other kinds.
func (r Result) Batch() *Batch { return r.batch }

// Sequence returns the sequential results, nil for other kinds.
func (r Result) Sequence() []Result { return r.sequence }

// Resources flattens single, collection and sequence results into one
// ordered slice. A batch has no resources until its units run.
func (r Result) Resources() []*Resource {
	switch r.kind {
	case ResultSingle:
		return []*Resource{r.resource}
	case ResultCollection:
		return r.collection.Resources()
	case ResultSequence:
		var resources []*Resource
		for _, result := range r.sequence {
			resources = append(resources, result.Resources()...)
		}

		return resources
	default:
		return nil
	}
}

// MarshalJSON renders resources: an object for a single result, an array
// otherwise.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.kind == ResultSingle {
		return json.Marshal(r.resource)
	}

	resources := r.Resources()
	if resources == nil {
		resources = []*Resource{}
	}

	return json.Marshal(resources)
}

// Collection is an ordered list of Resources built from one response.
type Collection struct {
	items    []*Resource
	response *Response
}

// NewCollection returns a collection over items in server order.
func NewCollection(items []*Resource, response *Response) *Collection {
	return &Collection{items: items, response: response}
}

// Len returns the number of resources.
func (c *Collection) Len() int { return len(c.items) }

// At returns the resource at index i.
func (c *Collection) At(i int) *Resource { return c.items[i] }

// All iterates resources in order.
func (c *Collection) All() iter.Seq2[int, *Resource] {
	return func(yield func(int, *Resource) bool) {
		for i, item := range c.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

// Resources returns a copy of the resources.
func (c *Collection) Resources() []*Resource {
	items := make([]*Resource, len(c.items))
	copy(items, c.items)

	return items
}

// Response returns the raw response the collection came from.
func (c *Collection) Response() *Response { return c.response }
