// Package label assigns a future-outcome class to each bar of a candle
// series. Two variants exist: a plain forward-return threshold, and a
// first-touch scan that walks the forward window and resolves whichever
// of the take-profit or stop-loss levels is hit earliest.
package label

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/rleiva87/candlesim/candle"
)

// Class is the per-bar outcome.
type Class int8

const (
	Down Class = -1
	Flat Class = 0
	Up   Class = 1

	// Undefined marks bars whose forward window extends past the end of
	// the series, or whose close price is unusable. It is deliberately far
	// from the real classes so it can never be read as "no opportunity".
	Undefined Class = -128
)

func (c Class) String() string {
	switch c {
	case Down:
		return "down"
	case Flat:
		return "flat"
	case Up:
		return "up"
	case Undefined:
		return "undefined"
	default:
		return fmt.Sprintf("class(%d)", int8(c))
	}
}

// Method selects the labeling rule.
type Method int

const (
	// MethodReturnThreshold compares the close-to-close return over the
	// horizon against a symmetric threshold.
	MethodReturnThreshold Method = iota
	// MethodFirstTouch scans the forward window for the earliest touch of
	// the take-profit or stop-loss level. On the same bar, take-profit wins.
	MethodFirstTouch
)

var (
	// ErrConfig is wrapped by every parameter validation failure.
	ErrConfig = errors.New("label: invalid config")
	// ErrInsufficientData is returned when the series is shorter than the
	// horizon and not a single bar can be labeled.
	ErrInsufficientData = errors.New("label: series shorter than horizon, zero usable labels")
)

type Config struct {
	Method  Method
	Horizon int

	// Threshold is the symmetric fractional move for MethodReturnThreshold,
	// e.g. 0.002 for 0.2%.
	Threshold float64

	// TakeProfit and StopLoss are fractional distances from the entry close
	// for MethodFirstTouch, e.g. 0.005 for 0.5%.
	TakeProfit float64
	StopLoss   float64

	// Workers splits the first-touch scan into chunks labeled in parallel.
	// Zero or one keeps the scan sequential; negative picks NumCPU.
	Workers int
}

func (cfg Config) validate() error {
	if cfg.Horizon < 1 {
		return fmt.Errorf("%w: horizon %d, must be >= 1", ErrConfig, cfg.Horizon)
	}
	switch cfg.Method {
	case MethodReturnThreshold:
		if cfg.Threshold <= 0 {
			return fmt.Errorf("%w: threshold %v, must be > 0", ErrConfig, cfg.Threshold)
		}
	case MethodFirstTouch:
		if cfg.TakeProfit <= 0 {
			return fmt.Errorf("%w: take profit ratio %v, must be > 0", ErrConfig, cfg.TakeProfit)
		}
		if cfg.StopLoss <= 0 {
			return fmt.Errorf("%w: stop loss ratio %v, must be > 0", ErrConfig, cfg.StopLoss)
		}
	default:
		return fmt.Errorf("%w: unknown method %d", ErrConfig, cfg.Method)
	}
	return nil
}

// Generator labels candle histories. It is a pure function of its inputs:
// the same history and config always produce identical labels.
type Generator struct {
	cfg Config
}

func New(cfg Config) (*Generator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

// Labels returns one class per input bar. The trailing Horizon bars are
// always Undefined: their forward window is not fully known. An empty
// history yields an empty result. When no bar at all can be labeled the
// all-Undefined result is accompanied by ErrInsufficientData.
func (g *Generator) Labels(h candle.History) ([]Class, error) {
	n := h.Len()
	if n == 0 {
		return []Class{}, nil
	}

	out := make([]Class, n)
	for i := range out {
		out[i] = Undefined
	}

	// Bar i needs bars i+1 .. i+Horizon, so the last usable index is
	// n-Horizon-1.
	usable := n - g.cfg.Horizon
	if usable <= 0 {
		return out, fmt.Errorf("%w: %d bars, horizon %d", ErrInsufficientData, n, g.cfg.Horizon)
	}

	switch g.cfg.Method {
	case MethodReturnThreshold:
		g.labelReturns(h, out, 0, usable)
	case MethodFirstTouch:
		g.labelFirstTouch(h, out, usable)
	}

	return out, nil
}

func (g *Generator) labelReturns(h candle.History, out []Class, lo, hi int) {
	for i := lo; i < hi; i++ {
		entry := h.Close[i]
		if !usablePrice(entry) {
			continue
		}
		future := (h.Close[i+g.cfg.Horizon] - entry) / entry
		switch {
		case future > g.cfg.Threshold:
			out[i] = Up
		case future < -g.cfg.Threshold:
			out[i] = Down
		default:
			out[i] = Flat
		}
	}
}

func (g *Generator) labelFirstTouch(h candle.History, out []Class, usable int) {
	workers := g.cfg.Workers
	if workers < 0 {
		workers = runtime.NumCPU()
	}
	if workers <= 1 || usable < workers*2 {
		g.scanChunk(h, out, 0, usable)
		return
	}

	// Each bar only reads its own forward window, so chunks of the index
	// space are independent; workers share the read-only history.
	var wg sync.WaitGroup
	chunk := (usable + workers - 1) / workers
	for lo := 0; lo < usable; lo += chunk {
		hi := lo + chunk
		if hi > usable {
			hi = usable
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			g.scanChunk(h, out, lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// scanChunk labels bars [lo, hi) with the first-touch rule. Touch
// comparisons are inclusive; when both levels are first hit on the same
// bar, take-profit wins.
func (g *Generator) scanChunk(h candle.History, out []Class, lo, hi int) {
	for i := lo; i < hi; i++ {
		entry := h.Close[i]
		if !usablePrice(entry) {
			continue
		}

		tpPrice := entry * (1 + g.cfg.TakeProfit)
		slPrice := entry * (1 - g.cfg.StopLoss)

		tpAt, slAt := -1, -1
		for j := i + 1; j <= i+g.cfg.Horizon; j++ {
			if tpAt < 0 && h.High[j] >= tpPrice {
				tpAt = j
			}
			if slAt < 0 && h.Low[j] <= slPrice {
				slAt = j
			}
			if tpAt >= 0 && slAt >= 0 {
				break
			}
		}

		switch {
		case tpAt >= 0 && slAt >= 0:
			if tpAt <= slAt {
				out[i] = Up
			} else {
				out[i] = Down
			}
		case tpAt >= 0:
			out[i] = Up
		case slAt >= 0:
			out[i] = Down
		default:
			out[i] = Flat
		}
	}
}

func usablePrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}
