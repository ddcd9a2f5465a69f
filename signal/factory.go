package signal

import "fmt"

// NewSource builds a named source with its stock parameters. The replay
// source is excluded: it needs a precomputed class slice, not a name.
func NewSource(name, modelPath string) (Source, error) {
	switch name {
	case "sma_cross", "sma-cross":
		return &SMACross{Fast: 10, Slow: 30}, nil
	case "macd", "macd-cross":
		return &MACDCross{PeriodFast: 12, PeriodSlow: 26, PeriodSig: 9}, nil
	case "composite":
		return &Composite{}, nil
	case "model":
		if modelPath == "" {
			return nil, fmt.Errorf("signal: source %q needs a model path", name)
		}
		return LoadModel(modelPath)
	}
	return nil, fmt.Errorf("signal: unknown source %q", name)
}
