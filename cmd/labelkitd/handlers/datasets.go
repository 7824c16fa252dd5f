package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/utils"
)

type DatasetRepository interface {
	ListDatasets() []*classification.Dataset
	GetDataset(id int) (*classification.Dataset, error)
	CreateDataset(fields classification.DatasetFields) (*classification.Dataset, error)
	UpdateDataset(id int, fields classification.DatasetFields) (*classification.Dataset, error)
	PatchDataset(id int, patch classification.DatasetPatch) (*classification.Dataset, error)
	DeleteDataset(id int) error
}

func DatasetListHandler(repo DatasetRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, utils.Map(repo.ListDatasets(), summarize))
	}
}

func DatasetGetHandler(repo DatasetRepository, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathId(c, param)
		if err != nil {
			return err
		}
		ds, err := repo.GetDataset(id)
		if err != nil {
			return translate(err)
		}
		return c.JSON(http.StatusOK, detailOfDataset(c, ds))
	}
}

func DatasetCreateHandler(repo DatasetRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		fields := classification.DatasetFields{}
		if err := bindJSON(c, &fields); err != nil {
			return err
		}
		ds, err := repo.CreateDataset(fields)
		if err != nil {
			return translate(err)
		}
		return c.JSON(http.StatusCreated, detailOfDataset(c, ds))
	}
}

// DatasetUpdateHandler handles both of PUT and PATCH.
//
// With PATCH, fields not in the request body are left as is.
func DatasetUpdateHandler(repo DatasetRepository, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathId(c, param)
		if err != nil {
			return err
		}

		var ds *classification.Dataset
		if c.Request().Method == http.MethodPatch {
			patch := classification.DatasetPatch{}
			if err := bindJSON(c, &patch); err != nil {
				return err
			}
			ds, err = repo.PatchDataset(id, patch)
		} else {
			fields := classification.DatasetFields{}
			if err := bindJSON(c, &fields); err != nil {
				return err
			}
			ds, err = repo.UpdateDataset(id, fields)
		}
		if err != nil {
			return translate(err)
		}
		return c.JSON(http.StatusOK, detailOfDataset(c, ds))
	}
}

func DatasetDeleteHandler(repo DatasetRepository, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathId(c, param)
		if err != nil {
			return err
		}
		if err := repo.DeleteDataset(id); err != nil {
			return translate(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
