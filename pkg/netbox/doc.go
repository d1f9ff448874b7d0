// Package netbox provides types, interfaces, and helpers for working with the
// NetBox REST API through endpoints discovered at runtime.
//
// # Overview
//
// A Client downloads the server's OpenAPI document and binds one Endpoint
// per path. Endpoint names are derived from the path: "/dcim/devices/"
// becomes "dcim_devices". A concrete Client is provided by the nbclient
// package.
//
//	cli, err := nbclient.Open(ctx, &netbox.Config{URL: "https://netbox.example.com", Token: token})
//	if err != nil { log.Fatal(err) }
//	defer cli.Close()
//
//	devices, _ := cli.Endpoint("dcim_devices")
//	result, err := devices.Call(ctx, netbox.Get(netbox.Payload{"name": "edge-1"}))
//
// # Results
//
// Every call returns a Result whose Kind tells the shape:
//
//   - ResultSingle: one Resource. A list response holding exactly one item
//     collapses to this kind.
//   - ResultCollection: several Resources in server order.
//   - ResultBatch: pending Units produced by a multi-entry call on an
//     Endpoint. Run them with Batch.RunSequential, Unit.Do from your own
//     goroutines, or a BatchExecutor.
//   - ResultSequence: results of a multi-entry call on a Resource, which
//     always runs sequentially.
//
// # Resources
//
// A Resource exposes decoded JSON through Field and Lookup. Keys are
// matched case-insensitively with spaces read as underscores:
//
//	name, err := device.Lookup("device_role.name")
//
// Calling a Resource scopes follow-up requests to its id:
//
//	_, err = device.Call(ctx, netbox.Patch(netbox.Payload{"status": "active"}))
//
// # Errors
//
// Validation problems (ValidationError, ParameterError, DataError) are
// returned before any network call. Non-2xx responses return a StatusError,
// bodies that must be JSON but are not return a DecodingError.
package netbox
