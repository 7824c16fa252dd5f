package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/utils"
)

type PredictionRepository interface {
	ListPredictions(datapointId int) []*classification.Prediction
	GetPrediction(id int) (*classification.Prediction, error)
	CreatePrediction(payload classification.PredictionCreate) (*classification.Prediction, error)
	UpdatePrediction(id int, fields classification.PredictionFields) (*classification.Prediction, error)
	DeletePrediction(id int) error
}

// PredictionListHandler lists predictions, filtered by query parameter "datapoint".
func PredictionListHandler(repo PredictionRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		datapointId, err := queryId(c, "datapoint")
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, utils.Map(repo.ListPredictions(datapointId), viewOfPrediction))
	}
}

func PredictionGetHandler(repo PredictionRepository, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathId(c, param)
		if err != nil {
			return err
		}
		p, err := repo.GetPrediction(id)
		if err != nil {
			return translate(err)
		}
		return c.JSON(http.StatusOK, viewOfPrediction(p))
	}
}

func PredictionCreateHandler(repo PredictionRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		payload := classification.PredictionCreate{}
		if err := bindJSON(c, &payload); err != nil {
			return err
		}
		p, err := repo.CreatePrediction(payload)
		if err != nil {
			return translate(err)
		}
		return c.JSON(http.StatusCreated, viewOfPrediction(p))
	}
}

func PredictionUpdateHandler(repo PredictionRepository, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathId(c, param)
		if err != nil {
			return err
		}
		fields := classification.PredictionFields{}
		if err := bindJSON(c, &fields); err != nil {
			return err
		}
		p, err := repo.UpdatePrediction(id, fields)
		if err != nil {
			return translate(err)
		}
		return c.JSON(http.StatusOK, viewOfPrediction(p))
	}
}

func PredictionDeleteHandler(repo PredictionRepository, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathId(c, param)
		if err != nil {
			return err
		}
		if err := repo.DeletePrediction(id); err != nil {
			return translate(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
