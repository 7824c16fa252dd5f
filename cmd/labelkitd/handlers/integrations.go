package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opst/labelkit/pkg/api/types/classification"
	apierr "github.com/opst/labelkit/pkg/api/types/errors"
)

type TrainingStarter interface {
	// StartTraining starts an active learning cycle, and returns the message about it.
	StartTraining(datasetId int) (string, error)
}

// ActiveLearningHandler starts active learning of the dataset with "dataset_id" in the body.
func ActiveLearningHandler(repo TrainingStarter) echo.HandlerFunc {
	return func(c echo.Context) error {
		body := struct {
			DatasetId *int `json:"dataset_id"`
		}{}
		if err := bindJSON(c, &body); err != nil {
			return err
		}
		if body.DatasetId == nil {
			return apierr.Invalid(map[string][]string{"dataset_id": {"This field is required."}})
		}

		msg, err := repo.StartTraining(*body.DatasetId)
		if err != nil {
			return translate(err)
		}
		return c.JSON(http.StatusOK, classification.ActiveLearningStatus{Status: "started", Message: msg})
	}
}
