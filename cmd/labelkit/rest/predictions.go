package rest

import (
	"context"
	"errors"
	"net/http"

	kerr "github.com/opst/labelkit/cmd/labelkit/errors"
	"github.com/opst/labelkit/pkg/api/types/classification"
)

type PredictionClient interface {
	// ListPredictions returns predictions for the datapoint, or all predictions if datapointId is 0.
	ListPredictions(ctx context.Context, datapointId int) ([]*classification.Prediction, error)
	GetPrediction(ctx context.Context, id int) (*classification.Prediction, error)
	CreatePrediction(ctx context.Context, payload classification.PredictionCreate) (*classification.Prediction, error)
	UpdatePrediction(ctx context.Context, id int, fields classification.PredictionFields) (*classification.Prediction, error)
	DeletePrediction(ctx context.Context, id int) error
}

func (c *client) ListPredictions(ctx context.Context, datapointId int) ([]*classification.Prediction, error) {
	query := filter("datapoint", datapointId)

	predictions := []*classification.Prediction{}
	cl := call{method: http.MethodGet, resource: resPrediction, path: []string{pathPredictions}, query: query}
	err := c.do(ctx, cl, &predictions)
	if errors.Is(err, kerr.ErrNotFound) {
		c.logger.WithField("path", pathLegacyPredictions).Debug("prediction list is not found. retry on legacy path")
		predictions = []*classification.Prediction{}
		cl.path = []string{pathLegacyPredictions}
		err = c.do(ctx, cl, &predictions)
	}
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

func (c *client) GetPrediction(ctx context.Context, id int) (*classification.Prediction, error) {
	p := new(classification.Prediction)
	cl := call{method: http.MethodGet, resource: resPrediction, id: id, path: []string{pathPredictions, itoa(id)}}
	if err := c.do(ctx, cl, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *client) CreatePrediction(ctx context.Context, payload classification.PredictionCreate) (*classification.Prediction, error) {
	return c.writePrediction(ctx, http.MethodPost, 0, payload)
}

func (c *client) UpdatePrediction(ctx context.Context, id int, fields classification.PredictionFields) (*classification.Prediction, error) {
	return c.writePrediction(ctx, http.MethodPut, id, fields)
}

func (c *client) writePrediction(ctx context.Context, method string, id int, payload any) (*classification.Prediction, error) {
	if err := Validate(payload); err != nil {
		return nil, err
	}
	path := []string{pathPredictions}
	if id != 0 {
		path = append(path, itoa(id))
	}
	cl, err := jsonCall(method, resPrediction, payload, path...)
	if err != nil {
		return nil, err
	}
	cl.id = id

	p := new(classification.Prediction)
	if err := c.do(ctx, cl, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *client) DeletePrediction(ctx context.Context, id int) error {
	cl := call{method: http.MethodDelete, resource: resPrediction, id: id, path: []string{pathPredictions, itoa(id)}}
	return c.do(ctx, cl, nil)
}
