// Package signal defines the seam between market data and trade decisions.
// A Source looks at a window of history ending at the current bar and
// answers "enter, which side, how sure". Rule-based sources live here next
// to replay adapters for labels and trained classifiers.
package signal

import (
	"github.com/rleiva87/candlesim/candle"
)

type Direction int8

const (
	Short Direction = -1
	Hold  Direction = 0
	Long  Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Short:
		return "short"
	case Long:
		return "long"
	default:
		return "hold"
	}
}

type Signal struct {
	Direction  Direction
	Confidence float64
	Reasons    []string
}

var none = Signal{Direction: Hold}

// Source is queried once per bar while the simulator is flat. The window
// holds every bar up to and including the current one; implementations
// must not mutate it. A returned error is recovered by the caller as
// "no signal for this bar", it never aborts a run.
type Source interface {
	Name() string
	Signal(window candle.History) (Signal, error)
}
