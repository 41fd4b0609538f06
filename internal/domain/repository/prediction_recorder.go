package repository

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/rotisserie/eris"

	"valuation_service/internal/domain/model"
)

// PredictionRecorder keeps a log of served predictions so the base model can
// later be retrained on real requests.
type PredictionRecorder interface {
	RecordPrediction(ctx context.Context, property model.Property, features model.FeatureVector, result *model.PredictionResult) error
}

type SQLPredictionRecorder struct {
	db *sqlx.DB
}

func NewSQLPredictionRecorder(db *sqlx.DB) *SQLPredictionRecorder {
	return &SQLPredictionRecorder{db: db}
}

func (r *SQLPredictionRecorder) RecordPrediction(
	ctx context.Context,
	property model.Property,
	features model.FeatureVector,
	result *model.PredictionResult,
) error {
	query := r.db.Rebind(`
		INSERT INTO prediction_log (
			latitude, longitude, target_year,
			features, base_model, current_price, predicted_price,
			currency_code
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?
		)`)

	featuresJSON, err := json.Marshal(features)
	if err != nil {
		return eris.Wrap(err, "recorder: marshal features")
	}

	_, err = r.db.ExecContext(ctx, query,
		property.Latitude, property.Longitude, property.Year,
		string(featuresJSON), result.BaseModel, result.CurrentPrice, result.PredictedPrice,
		result.Currency.Code,
	)
	if err != nil {
		return eris.Wrap(err, "recorder: insert prediction")
	}
	return nil
}

// CountPredictions returns the number of logged predictions.
func (r *SQLPredictionRecorder) CountPredictions(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM prediction_log`); err != nil {
		return 0, eris.Wrap(err, "recorder: count predictions")
	}
	return n, nil
}
