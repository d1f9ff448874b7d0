// Package nbclient provides the entry point for constructing a NetBox API
// client that implements the netbox.Client interface.
//
// Endpoints are not generated ahead of time. Open fetches the server's
// OpenAPI document and binds one netbox.Endpoint per path, named by the
// path with slashes, dashes and braces folded into underscores:
// "/dcim/devices/" becomes "dcim_devices" and "/dcim/devices/{id}/"
// becomes "dcim_devices_id".
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/netbox-client/pkg/nbclient"
//	  "github.com/fivetwenty-io/netbox-client/pkg/netbox"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  err := nbclient.With(ctx, &netbox.Config{
//	    URL:   "https://netbox.example.com",
//	    Token: "0123456789abcdef0123456789abcdef01234567",
//	  }, func(nb netbox.Client) error {
//	    devices, err := nb.Endpoint("dcim_devices")
//	    if err != nil { return err }
//
//	    result, err := devices.Get(ctx, netbox.Payload{"name": "edge-1"})
//	    if err != nil { return err }
//
//	    // A single match comes back as a Resource. Follow-up calls reuse its id.
//	    _, err = result.Resource().Call(ctx, netbox.Patch(netbox.Payload{"status": "offline"}))
//	    return err
//	  })
//	  if err != nil { log.Fatal(err) }
//	}
//
// The client is safe for concurrent use. Batches returned by Endpoint.Call
// can be run with netbox.BatchExecutor.
package nbclient
