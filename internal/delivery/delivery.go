// Package delivery defines the contract every transport entrypoint satisfies.
package delivery

import "context"

// Delivery is a serving surface (HTTP server, worker, ...) managed by the
// application lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
