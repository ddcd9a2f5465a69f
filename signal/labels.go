package signal

import (
	"fmt"

	"github.com/rleiva87/candlesim/candle"
	"github.com/rleiva87/candlesim/label"
)

// Replay turns a precomputed per-bar class column into signals, one class
// per bar of the simulated series. This is how offline model predictions
// (or the labels themselves, for an oracle run) are fed to the simulator.
type Replay struct {
	Classes []label.Class
	// Confidence reported for every non-flat class. Zero means 1.
	Confidence float64
}

func (r *Replay) Name() string {
	return "replay"
}

func (r *Replay) Signal(window candle.History) (Signal, error) {
	i := window.Len() - 1
	if i < 0 || i >= len(r.Classes) {
		return none, fmt.Errorf("replay: no class for bar %d, have %d", i, len(r.Classes))
	}

	conf := r.Confidence
	if conf == 0 {
		conf = 1
	}

	switch r.Classes[i] {
	case label.Up:
		return Signal{Direction: Long, Confidence: conf, Reasons: []string{"CLASS_UP"}}, nil
	case label.Down:
		return Signal{Direction: Short, Confidence: conf, Reasons: []string{"CLASS_DOWN"}}, nil
	default:
		// Flat and Undefined both mean stay out.
		return none, nil
	}
}
