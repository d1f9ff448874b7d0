package netbox_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint_CallSingleDispatchesNow(t *testing.T) {
	t.Parallel()

	dispatcher := &recordingDispatcher{}
	endpoint := netbox.NewEndpoint("/dcim/devices/", nil, dispatcher)

	result, err := endpoint.Get(context.Background(), netbox.Payload{"name": "edge"})
	require.NoError(t, err)
	assert.Equal(t, netbox.ResultSingle, result.Kind())
	assert.Equal(t, "dcim_devices", endpoint.Name())
	assert.Len(t, dispatcher.recorded(), 1)
}

func TestEndpoint_CallBatchIsPending(t *testing.T) {
	t.Parallel()

	dispatcher := &recordingDispatcher{}
	endpoint := netbox.NewEndpoint("/dcim/devices/", nil, dispatcher)

	req := netbox.List(netbox.VerbPost, netbox.Payload{"name": "a"}, netbox.Payload{"name": "b"})

	result, err := endpoint.Call(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, netbox.ResultBatch, result.Kind())
	assert.Equal(t, 2, result.Batch().Len())
	assert.Empty(t, dispatcher.recorded())
	assert.Nil(t, result.Resources())

	results, err := result.Batch().RunSequential(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	for i, want := range []string{"a", "b"} {
		name, err := results[i].Resource().Field("name")
		require.NoError(t, err)
		assert.Equal(t, want, name.String())
	}
}

func TestEndpoint_CallValidatesFirst(t *testing.T) {
	t.Parallel()

	dispatcher := &recordingDispatcher{}
	endpoint := netbox.NewEndpoint("/dcim/devices/", nil, dispatcher)

	_, err := endpoint.Call(context.Background(), netbox.NewRequest().Add("options", nil))
	require.Error(t, err)
	assert.True(t, netbox.IsValidation(err))
	assert.Empty(t, dispatcher.recorded())
}

func TestEndpoint_Operations(t *testing.T) {
	t.Parallel()

	endpoint := netbox.NewEndpoint("/dcim/devices/{id}/", []netbox.Verb{netbox.VerbGet, netbox.VerbPatch}, &recordingDispatcher{})
	assert.True(t, endpoint.HasID())
	assert.True(t, endpoint.Supports(netbox.VerbPatch))
	assert.False(t, endpoint.Supports(netbox.VerbPost))
	assert.Equal(t, []netbox.Verb{netbox.VerbGet, netbox.VerbPatch}, endpoint.Operations())

	undeclared := netbox.NewEndpoint("/status/", nil, &recordingDispatcher{})
	assert.False(t, undeclared.HasID())
	assert.True(t, undeclared.Supports(netbox.VerbDelete))
	assert.False(t, undeclared.Supports("trace"))
}

func TestUnit_DoRunsOnce(t *testing.T) {
	t.Parallel()

	dispatcher := &recordingDispatcher{}
	batch := netbox.NewBatch(dispatcher, "/dcim/sites/", netbox.List(netbox.VerbPost, netbox.Payload{"name": "a"}).Expand())

	unit := batch.Units()[0]
	assert.Equal(t, 0, unit.Index())

	first, err := unit.Do(context.Background())
	require.NoError(t, err)

	second, err := unit.Do(context.Background())
	require.NoError(t, err)

	assert.Same(t, first.Resource(), second.Resource())
	assert.Len(t, dispatcher.recorded(), 1)
}

func TestBatch_CallerDrivenConcurrency(t *testing.T) {
	t.Parallel()

	dispatcher := &recordingDispatcher{}
	plan := netbox.List(netbox.VerbPost,
		netbox.Payload{"name": "a"}, netbox.Payload{"name": "b"}, netbox.Payload{"name": "c"}).Expand()
	batch := netbox.NewBatch(dispatcher, "/dcim/sites/", plan)

	type outcome struct {
		index  int
		result netbox.Result
		err    error
	}

	done := make(chan outcome, batch.Len())

	for _, unit := range batch.Units() {
		go func(unit *netbox.Unit) {
			result, err := unit.Do(context.Background())
			done <- outcome{index: unit.Index(), result: result, err: err}
		}(unit)
	}

	names := make([]string, batch.Len())

	for range batch.Len() {
		got := <-done
		require.NoError(t, got.err)

		name, err := got.result.Resource().Field("name")
		require.NoError(t, err)

		names[got.index] = name.String()
	}

	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestBatchExecutor_Execute(t *testing.T) {
	t.Parallel()

	t.Run("results by index", func(t *testing.T) {
		t.Parallel()

		dispatcher := &recordingDispatcher{}
		payloads := make([]netbox.Payload, 10)

		for i := range payloads {
			payloads[i] = netbox.Payload{"n": i}
		}

		batch := netbox.NewBatch(dispatcher, "/ipam/prefixes/", netbox.List(netbox.VerbPost, payloads...).Expand())

		var callbacks atomic.Int32

		executor := netbox.NewBatchExecutor(3)
		executor.SetTimeout(time.Second)
		executor.SetCallback(func(result *netbox.UnitResult) { callbacks.Add(1) })

		results := executor.Execute(context.Background(), batch)
		require.Len(t, results, 10)
		assert.Equal(t, int32(10), callbacks.Load())

		for i, result := range results {
			require.NoError(t, result.Error)
			assert.Equal(t, i, result.Index)

			n, err := result.Result.Resource().Field("n")
			require.NoError(t, err)

			got, err := n.Int()
			require.NoError(t, err)
			assert.Equal(t, int64(i), got)
		}
	})

	t.Run("failures stay per unit", func(t *testing.T) {
		t.Parallel()

		dispatcher := &recordingDispatcher{failAt: 1}
		batch := netbox.NewBatch(dispatcher, "/ipam/prefixes/",
			netbox.List(netbox.VerbPost, netbox.Payload{"n": 0}, netbox.Payload{"n": 1}).Expand())

		results := netbox.NewBatchExecutor(1).Execute(context.Background(), batch)
		require.Len(t, results, 2)

		failed := 0

		for _, result := range results {
			if result.Error != nil {
				failed++

				continue
			}

			assert.Equal(t, netbox.ResultSingle, result.Result.Kind())
		}

		assert.Equal(t, 1, failed)
	})
}
