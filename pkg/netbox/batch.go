package netbox

import (
	"context"
	"sync"
	"time"
)

// DefaultBatchConcurrency bounds BatchExecutor when no limit is given.
const DefaultBatchConcurrency = 5

// Unit is one pending single-verb request of a batch. Do runs it at most
// once; later calls return the first outcome.
type Unit struct {
	index      int
	path       string
	request    Request
	dispatcher Dispatcher

	once   sync.Once
	result Result
	err    error
}

// Index returns the position of the unit in the execution plan.
func (u *Unit) Index() int { return u.index }

// Request returns the single-verb descriptor the unit sends.
func (u *Unit) Request() Request { return u.request }

// Do sends the request.
func (u *Unit) Do(ctx context.Context) (Result, error) {
	u.once.Do(func() {
		u.result, u.err = u.dispatcher.Dispatch(ctx, u.path, u.request)
	})

	return u.result, u.err
}

// Batch is an ordered set of pending units built from one multi-entry call.
// The caller decides how to run them.
type Batch struct {
	units []*Unit
}

// NewBatch builds one unit per request of plan, in order.
func NewBatch(dispatcher Dispatcher, path string, plan []Request) *Batch {
	units := make([]*Unit, len(plan))
	for i, req := range plan {
		units[i] = &Unit{index: i, path: path, request: req, dispatcher: dispatcher}
	}

	return &Batch{units: units}
}

// Units returns the pending units in plan order.
func (b *Batch) Units() []*Unit {
	units := make([]*Unit, len(b.units))
	copy(units, b.units)

	return units
}

// Len returns the number of units.
func (b *Batch) Len() int { return len(b.units) }

// RunSequential runs every unit in order and stops at the first error. The
// returned results are those completed before the failure.
func (b *Batch) RunSequential(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0, len(b.units))

	for _, unit := range b.units {
		result, err := unit.Do(ctx)
		if err != nil {
			return results, err
		}

		results = append(results, result)
	}

	return results, nil
}

// UnitResult is the outcome of one unit run by a BatchExecutor.
type UnitResult struct {
	Index    int
	Result   Result
	Error    error
	Duration time.Duration
}

// BatchExecutor runs batch units concurrently with a bounded number in
// flight. Results are stored by unit index; a failing unit does not stop
// the others.
type BatchExecutor struct {
	concurrency int
	timeout     time.Duration
	callback    func(result *UnitResult)
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	return &BatchExecutor{concurrency: concurrency}
}

// SetTimeout sets a per-unit timeout. Zero disables it.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// SetCallback registers fn to be called as each unit completes.
func (b *BatchExecutor) SetCallback(fn func(result *UnitResult)) {
	b.callback = fn
}

// Execute runs every unit of batch and waits for all of them.
func (b *BatchExecutor) Execute(ctx context.Context, batch *Batch) []UnitResult {
	results := make([]UnitResult, batch.Len())

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for _, unit := range batch.units {
		waitGroup.Add(1)

		go func(unit *Unit) {
			defer waitGroup.Done()

			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			unitCtx := ctx

			if b.timeout > 0 {
				var cancel context.CancelFunc

				unitCtx, cancel = context.WithTimeout(ctx, b.timeout)
				defer cancel()
			}

			start := time.Now()
			result, err := unit.Do(unitCtx)
			results[unit.index] = UnitResult{
				Index:    unit.index,
				Result:   result,
				Error:    err,
				Duration: time.Since(start),
			}

			if b.callback != nil {
				b.callback(&results[unit.index])
			}
		}(unit)
	}

	waitGroup.Wait()

	return results
}
