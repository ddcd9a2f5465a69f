package signal

import (
	"fmt"

	xgb "github.com/Elvenson/xgboost-go"
	"github.com/Elvenson/xgboost-go/activation"
	"github.com/Elvenson/xgboost-go/inference"
	"github.com/Elvenson/xgboost-go/mat"

	"github.com/rleiva87/candlesim/candle"
	"github.com/rleiva87/candlesim/dataset"
)

// Model classes, in training order. The exported dataset uses classes
// {-1,0,+1}; training remaps them to {0,1,2} because xgboost wants
// contiguous class ids.
const (
	classDown = 0
	classFlat = 1
	classUp   = 2
	numClass  = 3
)

// Model wraps a trained xgboost classifier dumped to JSON. It recomputes
// the dataset feature layout on the window and predicts the outcome class
// of the newest bar; the class probability becomes the confidence.
type Model struct {
	path     string
	ensemble *inference.Ensemble
}

// LoadModel reads an xgboost JSON dump trained on the dataset package's
// feature columns.
func LoadModel(path string) (*Model, error) {
	ensemble, err := xgb.LoadXGBoostFromJSON(path, "", numClass, 0, &activation.Softmax{})
	if err != nil {
		return nil, fmt.Errorf("model: load %q: %w", path, err)
	}
	return &Model{path: path, ensemble: ensemble}, nil
}

func (m *Model) Name() string {
	return "xgboost"
}

func (m *Model) Signal(window candle.History) (Signal, error) {
	i := window.Len() - 1
	if i < 0 {
		return none, nil
	}

	row, ok := dataset.Compute(window).Row(i)
	if !ok {
		// Indicator windows still warming up.
		return none, nil
	}

	vec := make(mat.SparseVector, len(row))
	for k, v := range row {
		vec[k] = float32(v)
	}

	preds, err := m.ensemble.PredictProba(mat.SparseMatrix{Vectors: []mat.SparseVector{vec}})
	if err != nil {
		return none, fmt.Errorf("model: predict: %w", err)
	}
	if len(preds.Vectors) == 0 {
		return none, fmt.Errorf("model: empty prediction")
	}

	probs := preds.Vectors[0]
	class, err := mat.GetVectorMaxIdx(probs)
	if err != nil {
		return none, fmt.Errorf("model: argmax: %w", err)
	}

	conf := float64((*probs)[class])
	switch class {
	case classUp:
		return Signal{Direction: Long, Confidence: conf, Reasons: []string{"MODEL_UP"}}, nil
	case classDown:
		return Signal{Direction: Short, Confidence: conf, Reasons: []string{"MODEL_DOWN"}}, nil
	default:
		return none, nil
	}
}
