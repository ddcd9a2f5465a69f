package platform

import (
	"context"

	"github.com/WinPooh32/fixed"
)

type Fixed = fixed.Fixed

// Public is a read-only market data source. The returned channel is closed
// when the source is exhausted (history replay) or the context is done.
type Public interface {
	Subscribe(ctx context.Context, symbol string) (events <-chan EventContainer)
}
