package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opst/labelkit/pkg/api/types/classification"
)

type LabelRepository interface {
	ListLabels(datasetId int) []*classification.Label
	GetLabel(id int) (*classification.Label, error)
	CreateLabel(fields classification.LabelFields) (*classification.Label, error)
	UpdateLabel(id int, fields classification.LabelFields) (*classification.Label, error)
	PatchLabel(id int, patch classification.LabelPatch) (*classification.Label, error)
	DeleteLabel(id int) error
}

// LabelListHandler lists labels, filtered by query parameter "dataset".
func LabelListHandler(repo LabelRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		datasetId, err := queryId(c, "dataset")
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, repo.ListLabels(datasetId))
	}
}

func LabelGetHandler(repo LabelRepository, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathId(c, param)
		if err != nil {
			return err
		}
		l, err := repo.GetLabel(id)
		if err != nil {
			return translate(err)
		}
		return c.JSON(http.StatusOK, l)
	}
}

func LabelCreateHandler(repo LabelRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		fields := classification.LabelFields{}
		if err := bindJSON(c, &fields); err != nil {
			return err
		}
		l, err := repo.CreateLabel(fields)
		if err != nil {
			return translate(err)
		}
		return c.JSON(http.StatusCreated, l)
	}
}

// LabelUpdateHandler handles both of PUT and PATCH.
func LabelUpdateHandler(repo LabelRepository, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathId(c, param)
		if err != nil {
			return err
		}

		var l *classification.Label
		if c.Request().Method == http.MethodPatch {
			patch := classification.LabelPatch{}
			if err := bindJSON(c, &patch); err != nil {
				return err
			}
			l, err = repo.PatchLabel(id, patch)
		} else {
			fields := classification.LabelFields{}
			if err := bindJSON(c, &fields); err != nil {
				return err
			}
			l, err = repo.UpdateLabel(id, fields)
		}
		if err != nil {
			return translate(err)
		}
		return c.JSON(http.StatusOK, l)
	}
}

func LabelDeleteHandler(repo LabelRepository, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathId(c, param)
		if err != nil {
			return err
		}
		if err := repo.DeleteLabel(id); err != nil {
			return translate(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
