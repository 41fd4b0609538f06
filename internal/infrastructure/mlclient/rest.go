package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"valuation_service/internal/domain/model"
)

// HTTPPredictor calls a remote model server.
type HTTPPredictor struct {
	endpoint string
	client   *http.Client
}

func NewHTTPPredictor(baseURL string) *HTTPPredictor {
	return &HTTPPredictor{
		endpoint: strings.TrimRight(baseURL, "/") + "/predict",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type predictRequest struct {
	Columns  []string  `json:"columns"`
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Price float64 `json:"price"`
}

func (c *HTTPPredictor) Predict(ctx context.Context, features model.FeatureVector) (float64, error) {
	body, err := json.Marshal(predictRequest{
		Columns:  model.FeatureColumns,
		Features: features.Slice(),
	})
	if err != nil {
		return 0, eris.Wrap(err, "mlclient: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return 0, eris.Wrap(err, "mlclient: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, eris.Wrap(err, "mlclient: model service request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, eris.Errorf("mlclient: model service returned status %d", resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, eris.Wrap(err, "mlclient: decode response")
	}
	return out.Price, nil
}
