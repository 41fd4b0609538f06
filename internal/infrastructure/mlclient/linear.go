package mlclient

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"

	"valuation_service/internal/domain/model"
)

// linearModelFile is the on-disk form of a fitted linear regression.
type linearModelFile struct {
	Version      string    `json:"version"`
	Columns      []string  `json:"columns"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// LinearModel evaluates a linear regression exported by the training job.
// The model file is read on the first prediction.
type LinearModel struct {
	path string

	once    sync.Once
	loadErr error
	weights *mat.VecDense
	bias    float64
	version string
	loaded  atomic.Bool
}

func NewLinearModel(path string) *LinearModel {
	return &LinearModel{path: path}
}

func (m *LinearModel) load() {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		m.loadErr = eris.Wrapf(err, "mlclient: read model %s", m.path)
		return
	}

	var file linearModelFile
	if err := json.Unmarshal(raw, &file); err != nil {
		m.loadErr = eris.Wrap(err, "mlclient: parse model")
		return
	}
	if len(file.Coefficients) != len(model.FeatureColumns) {
		m.loadErr = eris.Errorf("mlclient: model has %d coefficients, want %d", len(file.Coefficients), len(model.FeatureColumns))
		return
	}
	if len(file.Columns) > 0 && len(file.Columns) != len(model.FeatureColumns) {
		m.loadErr = eris.Errorf("mlclient: model has %d columns, want %d", len(file.Columns), len(model.FeatureColumns))
		return
	}
	for i, col := range file.Columns {
		if col != model.FeatureColumns[i] {
			m.loadErr = eris.Errorf("mlclient: model column %d is %q, want %q", i, col, model.FeatureColumns[i])
			return
		}
	}

	m.weights = mat.NewVecDense(len(file.Coefficients), file.Coefficients)
	m.bias = file.Intercept
	m.version = file.Version
	m.loaded.Store(true)
}

// Load reads the model file if it has not been read yet.
func (m *LinearModel) Load() error {
	m.once.Do(m.load)
	return m.loadErr
}

// Loaded reports whether a model is ready to serve.
func (m *LinearModel) Loaded() bool {
	return m.loaded.Load()
}

// Version is the model version string from the file, empty before loading.
func (m *LinearModel) Version() string {
	return m.version
}

func (m *LinearModel) Predict(_ context.Context, features model.FeatureVector) (float64, error) {
	if err := m.Load(); err != nil {
		return 0, err
	}
	x := mat.NewVecDense(len(model.FeatureColumns), features.Slice())
	return mat.Dot(m.weights, x) + m.bias, nil
}
