package rest

import (
	"context"
	"net/http"

	"github.com/opst/labelkit/pkg/api/types/classification"
)

type IntegrationClient interface {
	// StartActiveLearning asks the server to start an active learning cycle for the dataset.
	StartActiveLearning(ctx context.Context, datasetId int) (classification.ActiveLearningStatus, error)
}

func (c *client) StartActiveLearning(ctx context.Context, datasetId int) (classification.ActiveLearningStatus, error) {
	status := classification.ActiveLearningStatus{}
	cl, err := jsonCall(
		http.MethodPost, resActiveLearning,
		map[string]int{"dataset_id": datasetId},
		pathActiveLearning,
	)
	if err != nil {
		return status, err
	}
	cl.id = datasetId
	if err := c.do(ctx, cl, &status); err != nil {
		return classification.ActiveLearningStatus{}, err
	}
	return status, nil
}
