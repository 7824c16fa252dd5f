package rest

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"

	kerr "github.com/opst/labelkit/cmd/labelkit/errors"
	"github.com/opst/labelkit/pkg/api/types/classification"
)

type DatapointClient interface {
	// ListDatapoints returns datapoints of the dataset, or all datapoints if datasetId is 0.
	//
	// Labels of datapoints may be references (see Label.IsReference).
	ListDatapoints(ctx context.Context, datasetId int) ([]*classification.Datapoint, error)

	GetDatapoint(ctx context.Context, id int) (*classification.Datapoint, error)

	// CreateDatapoint registers a datapoint.
	//
	// When payload has File, the content is sent as multipart/form-data.
	// Otherwise payload is sent as json, referring FileRef.
	CreateDatapoint(ctx context.Context, payload DatapointCreate) (*classification.Datapoint, error)

	UpdateDatapoint(ctx context.Context, id int, fields classification.DatapointFields) (*classification.Datapoint, error)

	// PatchDatapoint changes the label of the datapoint.
	PatchDatapoint(ctx context.Context, id int, patch classification.DatapointPatch) (*classification.Datapoint, error)

	DeleteDatapoint(ctx context.Context, id int) error
}

// DatapointCreate is a datapoint to be created.
//
// Exactly one of File and FileRef should be set.
type DatapointCreate struct {
	Dataset int
	Label   *int

	// binary content of the datapoint
	File *Upload

	// file already known by the server
	FileRef string
}

func (dc DatapointCreate) validate() error {
	if dc.Dataset <= 0 {
		return kerr.Invalid("dataset", "Ensure this value is greater than 0.")
	}
	switch {
	case dc.File != nil && dc.FileRef != "":
		return kerr.Invalid("file", "Either binary content or file reference should be given, not both.")
	case dc.File == nil && dc.FileRef == "":
		return kerr.Invalid("file", "This field is required.")
	case dc.File != nil && dc.File.Open == nil:
		return kerr.Invalid("file", "No content.")
	}
	return nil
}

func (c *client) ListDatapoints(ctx context.Context, datasetId int) ([]*classification.Datapoint, error) {
	datapoints := []*classification.Datapoint{}
	cl := call{
		method: http.MethodGet, resource: resDatapoint,
		path: []string{pathDatapoints}, query: filter("dataset", datasetId),
	}
	if err := c.do(ctx, cl, &datapoints); err != nil {
		return nil, err
	}
	return datapoints, nil
}

func (c *client) GetDatapoint(ctx context.Context, id int) (*classification.Datapoint, error) {
	dp := new(classification.Datapoint)
	cl := call{method: http.MethodGet, resource: resDatapoint, id: id, path: []string{pathDatapoints, itoa(id)}}
	if err := c.do(ctx, cl, dp); err != nil {
		return nil, err
	}
	return dp, nil
}

func (c *client) CreateDatapoint(ctx context.Context, payload DatapointCreate) (*classification.Datapoint, error) {
	if err := payload.validate(); err != nil {
		return nil, err
	}
	if payload.File == nil {
		return c.writeDatapoint(ctx, http.MethodPost, 0, classification.DatapointReference{
			File: payload.FileRef, Dataset: payload.Dataset, Label: payload.Label,
		})
	}

	content, err := payload.File.Open()
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	length, err := formLength(mw.Boundary(), payload)
	if err != nil {
		content.Close()
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(writeDatapointForm(mw, payload, content))
	}()
	defer func() {
		// unblock the writer when the request ends before consuming whole body.
		pr.Close()
		<-done
		content.Close()
	}()

	cl := call{
		method:      http.MethodPost,
		resource:    resDatapoint,
		path:        []string{pathDatapoints},
		body:          pr,
		contentType:   mw.FormDataContentType(),
		contentLength: length,
	}
	dp := new(classification.Datapoint)
	if err := c.do(ctx, cl, dp); err != nil {
		return nil, err
	}
	return dp, nil
}

// formLength returns the length of the multipart body of payload,
// or -1 when the size of the file is unknown (zero or negative).
//
// Servers behind WSGI do not read chunked bodies, so the length is sent whenever it is known.
func formLength(boundary string, payload DatapointCreate) (int64, error) {
	if payload.File.Size <= 0 {
		return -1, nil
	}
	frame := new(countingWriter)
	mw := multipart.NewWriter(frame)
	if err := mw.SetBoundary(boundary); err != nil {
		return 0, err
	}
	if err := writeDatapointForm(mw, payload, strings.NewReader("")); err != nil {
		return 0, err
	}
	return frame.n + payload.File.Size, nil
}

type countingWriter struct{ n int64 }

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func writeDatapointForm(mw *multipart.Writer, payload DatapointCreate, content io.Reader) error {
	if err := mw.WriteField("dataset", strconv.Itoa(payload.Dataset)); err != nil {
		return err
	}
	if payload.Label != nil {
		if err := mw.WriteField("label", strconv.Itoa(*payload.Label)); err != nil {
			return err
		}
	}

	h := textproto.MIMEHeader{}
	h.Set(
		"Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filepath.Base(payload.File.Name))),
	)
	h.Set("Content-Type", payload.File.mediaType())
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	return mw.Close()
}

func (c *client) UpdateDatapoint(ctx context.Context, id int, fields classification.DatapointFields) (*classification.Datapoint, error) {
	return c.writeDatapoint(ctx, http.MethodPut, id, fields)
}

func (c *client) PatchDatapoint(ctx context.Context, id int, patch classification.DatapointPatch) (*classification.Datapoint, error) {
	return c.writeDatapoint(ctx, http.MethodPatch, id, patch)
}

func (c *client) writeDatapoint(ctx context.Context, method string, id int, payload any) (*classification.Datapoint, error) {
	if err := Validate(payload); err != nil {
		return nil, err
	}
	path := []string{pathDatapoints}
	if id != 0 {
		path = append(path, itoa(id))
	}
	cl, err := jsonCall(method, resDatapoint, payload, path...)
	if err != nil {
		return nil, err
	}
	cl.id = id

	dp := new(classification.Datapoint)
	if err := c.do(ctx, cl, dp); err != nil {
		return nil, err
	}
	return dp, nil
}

func (c *client) DeleteDatapoint(ctx context.Context, id int) error {
	cl := call{method: http.MethodDelete, resource: resDatapoint, id: id, path: []string{pathDatapoints, itoa(id)}}
	return c.do(ctx, cl, nil)
}
