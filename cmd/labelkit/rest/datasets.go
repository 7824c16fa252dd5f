package rest

import (
	"context"
	"net/http"

	"github.com/opst/labelkit/pkg/api/types/classification"
)

type DatasetClient interface {
	// ListDatasets returns all datasets.
	ListDatasets(ctx context.Context) ([]*classification.Dataset, error)

	// GetDataset returns a dataset with its datapoints and labels.
	//
	// Label references in the dataset are resolved to label objects in the dataset.
	GetDataset(ctx context.Context, id int) (*classification.Dataset, error)

	CreateDataset(ctx context.Context, fields classification.DatasetFields) (*classification.Dataset, error)

	// UpdateDataset replaces all writable fields of the dataset.
	UpdateDataset(ctx context.Context, id int, fields classification.DatasetFields) (*classification.Dataset, error)

	// PatchDataset updates fields set in the patch.
	PatchDataset(ctx context.Context, id int, patch classification.DatasetPatch) (*classification.Dataset, error)

	DeleteDataset(ctx context.Context, id int) error
}

func (c *client) ListDatasets(ctx context.Context) ([]*classification.Dataset, error) {
	datasets := []*classification.Dataset{}
	cl := call{method: http.MethodGet, resource: resDataset, path: []string{pathDatasets}}
	if err := c.do(ctx, cl, &datasets); err != nil {
		return nil, err
	}
	for _, ds := range datasets {
		ds.ResolveLabels()
	}
	return datasets, nil
}

func (c *client) GetDataset(ctx context.Context, id int) (*classification.Dataset, error) {
	ds := new(classification.Dataset)
	cl := call{method: http.MethodGet, resource: resDataset, id: id, path: []string{pathDatasets, itoa(id)}}
	if err := c.do(ctx, cl, ds); err != nil {
		return nil, err
	}
	ds.ResolveLabels()
	return ds, nil
}

func (c *client) CreateDataset(ctx context.Context, fields classification.DatasetFields) (*classification.Dataset, error) {
	return c.writeDataset(ctx, http.MethodPost, 0, fields)
}

func (c *client) UpdateDataset(ctx context.Context, id int, fields classification.DatasetFields) (*classification.Dataset, error) {
	return c.writeDataset(ctx, http.MethodPut, id, fields)
}

func (c *client) PatchDataset(ctx context.Context, id int, patch classification.DatasetPatch) (*classification.Dataset, error) {
	return c.writeDataset(ctx, http.MethodPatch, id, patch)
}

func (c *client) writeDataset(ctx context.Context, method string, id int, payload any) (*classification.Dataset, error) {
	if err := Validate(payload); err != nil {
		return nil, err
	}
	path := []string{pathDatasets}
	if id != 0 {
		path = append(path, itoa(id))
	}
	cl, err := jsonCall(method, resDataset, payload, path...)
	if err != nil {
		return nil, err
	}
	cl.id = id

	ds := new(classification.Dataset)
	if err := c.do(ctx, cl, ds); err != nil {
		return nil, err
	}
	ds.ResolveLabels()
	return ds, nil
}

func (c *client) DeleteDataset(ctx context.Context, id int) error {
	cl := call{method: http.MethodDelete, resource: resDataset, id: id, path: []string{pathDatasets, itoa(id)}}
	return c.do(ctx, cl, nil)
}
