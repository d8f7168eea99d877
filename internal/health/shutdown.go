package health

import "sync/atomic"

// ready gates the readiness probe during graceful shutdown. The process
// starts ready; main flips it off before draining so load balancers stop
// routing new traffic while in-flight requests finish.
var ready atomic.Bool

func init() { ready.Store(true) }

// SetReady toggles the readiness gate.
func SetReady(v bool) { ready.Store(v) }

// Ready reports whether the process accepts new traffic.
func Ready() bool { return ready.Load() }
