package threading

import (
	"context"

	"github.com/omerfarukorc/ulog-analysis/core/rescue"
)

// RunSafe runs the provided function and recovers if it panics.
func RunSafe(fn func()) {
	defer rescue.Recover()

	fn()
}

// RunSafeCtx runs the provided function, recovers if it panics with context.
func RunSafeCtx(ctx context.Context, fn func()) {
	defer rescue.RecoverCtx(ctx)

	fn()
}

// GoSafe runs the provided function in a goroutine, recovers if it panics.
func GoSafe(fn func()) {
	go RunSafe(fn)
}

// GoSafeCtx runs the provided function in a goroutine, recovers if it panics with context.
func GoSafeCtx(ctx context.Context, fn func()) {
	go RunSafeCtx(ctx, fn)
}
