package rescue

import (
	"context"

	"github.com/omerfarukorc/ulog-analysis/core/logger"
)

// Recover runs the cleanups and swallows a panic if one is in flight.
func Recover(cleanups ...func()) {
	if r := recover(); r != nil {
		for _, cleanup := range cleanups {
			cleanup()
		}
		logger.Error("recovered from panic: %v", r)
	}
}

// RecoverCtx is Recover for functions running under a context.
func RecoverCtx(ctx context.Context, cleanups ...func()) {
	if r := recover(); r != nil {
		for _, cleanup := range cleanups {
			cleanup()
		}
		logger.Error("recovered from panic: %v", r)
	}
}
