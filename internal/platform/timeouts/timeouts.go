// Package timeouts defines shared durations used by the traitor runtime and
// its command entrypoint.
package timeouts

import "time"

// Tick is the default simulation tick interval.
const Tick = 100 * time.Millisecond

// HealthCheck caps a single gRPC health probe.
const HealthCheck = 2 * time.Second

// Shutdown limits how long the gRPC server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
