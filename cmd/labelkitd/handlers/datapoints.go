package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/opst/labelkit/cmd/labelkitd/memory"
	"github.com/opst/labelkit/pkg/api/types/classification"
	apierr "github.com/opst/labelkit/pkg/api/types/errors"
	"github.com/opst/labelkit/pkg/utils"
)

type DatapointRepository interface {
	ListDatapoints(datasetId int) []*classification.Datapoint
	GetDatapoint(id int) (*classification.Datapoint, error)
	CreateDatapoint(nd memory.NewDatapoint) (*classification.Datapoint, error)
	UpdateDatapoint(id int, fields classification.DatapointFields) (*classification.Datapoint, error)
	SetDatapointLabel(id int, change memory.LabelChange) (*classification.Datapoint, error)
	DeleteDatapoint(id int) error
}

// DatapointListHandler lists datapoints, filtered by query parameter "dataset".
func DatapointListHandler(repo DatapointRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		datasetId, err := queryId(c, "dataset")
		if err != nil {
			return err
		}
		return c.JSON(
			http.StatusOK,
			utils.Map(repo.ListDatapoints(datasetId), func(dp *classification.Datapoint) datapointWithPredictions {
				return datapointWithPredictionsOf(c, dp)
			}),
		)
	}
}

func DatapointGetHandler(repo DatapointRepository, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathId(c, param)
		if err != nil {
			return err
		}
		dp, err := repo.GetDatapoint(id)
		if err != nil {
			return translate(err)
		}
		return c.JSON(http.StatusOK, datapointWithPredictionsOf(c, dp))
	}
}

// DatapointCreateHandler creates a datapoint.
//
// The request body is either
//
// - multipart/form-data with fields "dataset", "label" (optional) and file "file", or
//
// - json referring a file already uploaded (see classification.DatapointReference).
//
// Uploads larger than maxUpload bytes are rejected.
func DatapointCreateHandler(repo DatapointRepository, maxUpload int64) echo.HandlerFunc {
	return func(c echo.Context) error {
		var nd memory.NewDatapoint
		if isJSON(c) {
			ref := classification.DatapointReference{}
			if err := bindJSON(c, &ref); err != nil {
				return err
			}
			if err := classification.Validate(ref); err != nil {
				return translate(err)
			}
			nd = memory.NewDatapoint{Dataset: ref.Dataset, Label: ref.Label, File: ref.File}
		} else {
			c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxUpload)
			form, err := readDatapointForm(c)
			if err != nil {
				return err
			}
			nd = form
		}

		dp, err := repo.CreateDatapoint(nd)
		if err != nil {
			return translate(err)
		}
		return c.JSON(http.StatusCreated, datapointWithPredictionsOf(c, dp))
	}
}

func readDatapointForm(c echo.Context) (memory.NewDatapoint, error) {
	nd := memory.NewDatapoint{}

	req := c.Request()
	if err := req.ParseMultipartForm(formMemory); err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			return nd, apierr.NewError(http.StatusRequestEntityTooLarge, "Uploaded file is too large.", err)
		case errors.Is(err, http.ErrNotMultipart):
			return nd, apierr.NewError(
				http.StatusUnsupportedMediaType,
				"unexpected content type. it should be multipart/form-data or application/json", err,
			)
		default:
			return nd, apierr.BadRequest("can not understand the requested form", err)
		}
	}
	form := req.MultipartForm

	fields := map[string][]string{}
	dataset, err := strconv.Atoi(firstOf(form.Value["dataset"]))
	if err != nil {
		fields["dataset"] = append(fields["dataset"], "A valid integer is required.")
	}
	nd.Dataset = dataset

	if v := firstOf(form.Value["label"]); v != "" {
		label, err := strconv.Atoi(v)
		if err != nil {
			fields["label"] = append(fields["label"], "A valid integer is required.")
		}
		nd.Label = &label
	}

	files := form.File["file"]
	if len(files) == 0 {
		fields["file"] = append(fields["file"], "No file was submitted.")
	}
	if len(fields) != 0 {
		return nd, apierr.Invalid(fields)
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nd, apierr.InternalServerError(err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nd, apierr.InternalServerError(err)
	}

	nd.File = fh.Filename
	nd.Content = content
	nd.ContentType = fh.Header.Get(echo.HeaderContentType)
	return nd, nil
}

// bytes of form kept in memory. The rest goes to temporary files.
const formMemory = 8 << 20

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func DatapointUpdateHandler(repo DatapointRepository, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathId(c, param)
		if err != nil {
			return err
		}
		fields := classification.DatapointFields{}
		if err := bindJSON(c, &fields); err != nil {
			return err
		}
		dp, err := repo.UpdateDatapoint(id, fields)
		if err != nil {
			return translate(err)
		}
		return c.JSON(http.StatusOK, datapointWithPredictionsOf(c, dp))
	}
}

// DatapointPatchHandler changes the label of the datapoint.
//
// The body designates the label with "label" (id) or "class_index".
// An explicit `"label": null`, or no designation, makes the datapoint unlabeled.
func DatapointPatchHandler(repo DatapointRepository, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathId(c, param)
		if err != nil {
			return err
		}
		body := map[string]json.RawMessage{}
		if err := bindJSON(c, &body); err != nil {
			return err
		}

		change := memory.LabelChange{}
		fields := map[string][]string{}
		for key, dest := range map[string]**int{"label": &change.Id, "class_index": &change.ClassIndex} {
			raw, ok := body[key]
			if !ok || string(raw) == "null" {
				continue
			}
			v := new(int)
			if err := json.Unmarshal(raw, v); err != nil || *v < 0 {
				fields[key] = append(fields[key], "A valid integer is required.")
				continue
			}
			*dest = v
		}
		if len(fields) != 0 {
			return apierr.Invalid(fields)
		}

		dp, err := repo.SetDatapointLabel(id, change)
		if err != nil {
			return translate(err)
		}
		return c.JSON(http.StatusOK, datapointWithPredictionsOf(c, dp))
	}
}

func DatapointDeleteHandler(repo DatapointRepository, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathId(c, param)
		if err != nil {
			return err
		}
		if err := repo.DeleteDatapoint(id); err != nil {
			return translate(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
