package rest

import (
	"context"
	"errors"
	"net/http"

	kerr "github.com/opst/labelkit/cmd/labelkit/errors"
	"github.com/opst/labelkit/pkg/api/types/classification"
)

type LabelClient interface {
	// ListLabels returns labels of the dataset, or all labels if datasetId is 0.
	ListLabels(ctx context.Context, datasetId int) ([]*classification.Label, error)
	GetLabel(ctx context.Context, id int) (*classification.Label, error)
	CreateLabel(ctx context.Context, fields classification.LabelFields) (*classification.Label, error)
	UpdateLabel(ctx context.Context, id int, fields classification.LabelFields) (*classification.Label, error)
	PatchLabel(ctx context.Context, id int, patch classification.LabelPatch) (*classification.Label, error)
	DeleteLabel(ctx context.Context, id int) error
}

func (c *client) ListLabels(ctx context.Context, datasetId int) ([]*classification.Label, error) {
	query := filter("dataset", datasetId)

	labels := []*classification.Label{}
	cl := call{method: http.MethodGet, resource: resLabel, path: []string{pathLabels}, query: query}
	err := c.do(ctx, cl, &labels)
	if errors.Is(err, kerr.ErrNotFound) {
		c.logger.WithField("path", pathLegacyLabels).Debug("label list is not found. retry on legacy path")
		labels = []*classification.Label{}
		cl.path = []string{pathLegacyLabels}
		err = c.do(ctx, cl, &labels)
	}
	if err != nil {
		return nil, err
	}
	return labels, nil
}

func (c *client) GetLabel(ctx context.Context, id int) (*classification.Label, error) {
	l := new(classification.Label)
	cl := call{method: http.MethodGet, resource: resLabel, id: id, path: []string{pathLabels, itoa(id)}}
	if err := c.do(ctx, cl, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (c *client) CreateLabel(ctx context.Context, fields classification.LabelFields) (*classification.Label, error) {
	return c.writeLabel(ctx, http.MethodPost, 0, fields)
}

func (c *client) UpdateLabel(ctx context.Context, id int, fields classification.LabelFields) (*classification.Label, error) {
	return c.writeLabel(ctx, http.MethodPut, id, fields)
}

func (c *client) PatchLabel(ctx context.Context, id int, patch classification.LabelPatch) (*classification.Label, error) {
	return c.writeLabel(ctx, http.MethodPatch, id, patch)
}

func (c *client) writeLabel(ctx context.Context, method string, id int, payload any) (*classification.Label, error) {
	if err := Validate(payload); err != nil {
		return nil, err
	}
	path := []string{pathLabels}
	if id != 0 {
		path = append(path, itoa(id))
	}
	cl, err := jsonCall(method, resLabel, payload, path...)
	if err != nil {
		return nil, err
	}
	cl.id = id

	l := new(classification.Label)
	if err := c.do(ctx, cl, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (c *client) DeleteLabel(ctx context.Context, id int) error {
	cl := call{method: http.MethodDelete, resource: resLabel, id: id, path: []string{pathLabels, itoa(id)}}
	return c.do(ctx, cl, nil)
}
