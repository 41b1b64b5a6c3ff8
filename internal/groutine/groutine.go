// Package groutine starts named goroutines. The name rides along as a pprof
// label, so a goroutine dump of a wedged host stack shows which BLE exchange
// each worker belongs to.
package groutine

import (
	"context"
	"runtime/pprof"
)

// Go starts a goroutine named name, attaching the name as a pprof label.
// A nil parentCtx means context.Background().
func Go(parentCtx context.Context, name string, fn func(ctx context.Context)) {
	if parentCtx == nil {
		parentCtx = context.Background()
	}

	go pprof.Do(parentCtx, pprof.Labels("goroutine_name", name), fn)
}
