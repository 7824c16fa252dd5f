package classification

import (
	"fmt"

	"github.com/opst/labelkit/pkg/cmp"
)

// Dataset is a classification dataset together with its datapoints and labels.
type Dataset struct {
	Id                  int    `json:"id"`
	Name                string `json:"name"`
	LabelStudioURL      string `json:"label_studio_url"`
	LabelStudioAPIKey   string `json:"label_studio_api_key"`
	MLBackendURL        string `json:"ml_backend_url"`
	BatchSize           int    `json:"batch_size"`
	UncertaintyStrategy string `json:"uncertainty_strategy"`
	MaxEpochs           int    `json:"max_epochs"`
	Epoch               int    `json:"epoch"`
	State               string `json:"state"`

	Datapoints []*Datapoint `json:"datapoints"`
	Labels     []*Label     `json:"labels"`
}

// ResolveLabels makes every label held by datapoints and predictions point to
// the label object in ds.Labels having the same id.
//
// Empty back-references (dataset of datapoints and labels) are filled with ds.Id.
func (ds *Dataset) ResolveLabels() {
	for _, l := range ds.Labels {
		if l != nil && l.Dataset == 0 {
			l.Dataset = ds.Id
		}
	}
	idx := IndexLabels(ds.Labels)
	for _, dp := range ds.Datapoints {
		if dp == nil {
			continue
		}
		if dp.Dataset == 0 {
			dp.Dataset = ds.Id
		}
		dp.ResolveLabels(idx)
	}
}

// Check verifies back-references and uniqueness of ids in the dataset.
func (ds *Dataset) Check() error {
	labels := map[int]struct{}{}
	for _, l := range ds.Labels {
		if l == nil {
			return fmt.Errorf("dataset %d: nil label", ds.Id)
		}
		if l.Dataset != ds.Id {
			return fmt.Errorf("label %d belongs to dataset %d, not %d", l.Id, l.Dataset, ds.Id)
		}
		if _, ok := labels[l.Id]; ok {
			return fmt.Errorf("dataset %d: duplicated label id %d", ds.Id, l.Id)
		}
		labels[l.Id] = struct{}{}
	}

	datapoints := map[int]struct{}{}
	for _, dp := range ds.Datapoints {
		if dp == nil {
			return fmt.Errorf("dataset %d: nil datapoint", ds.Id)
		}
		if dp.Dataset != ds.Id {
			return fmt.Errorf("datapoint %d belongs to dataset %d, not %d", dp.Id, dp.Dataset, ds.Id)
		}
		if _, ok := datapoints[dp.Id]; ok {
			return fmt.Errorf("dataset %d: duplicated datapoint id %d", ds.Id, dp.Id)
		}
		datapoints[dp.Id] = struct{}{}
		for _, p := range dp.Predictions {
			if p == nil {
				return fmt.Errorf("datapoint %d: nil prediction", dp.Id)
			}
			if p.Datapoint != dp.Id {
				return fmt.Errorf("prediction %d belongs to datapoint %d, not %d", p.Id, p.Datapoint, dp.Id)
			}
		}
	}
	return nil
}

// FindDatapoint returns the datapoint with the id, or nil.
func (ds *Dataset) FindDatapoint(id int) *Datapoint {
	for _, dp := range ds.Datapoints {
		if dp != nil && dp.Id == id {
			return dp
		}
	}
	return nil
}

// FindLabel returns the label with the id, or nil.
func (ds *Dataset) FindLabel(id int) *Label {
	for _, l := range ds.Labels {
		if l != nil && l.Id == id {
			return l
		}
	}
	return nil
}

// Fields returns the mutable configuration of the dataset.
func (ds *Dataset) Fields() DatasetFields {
	return DatasetFields{
		Name:                ds.Name,
		LabelStudioURL:      ds.LabelStudioURL,
		LabelStudioAPIKey:   ds.LabelStudioAPIKey,
		MLBackendURL:        ds.MLBackendURL,
		BatchSize:           ds.BatchSize,
		UncertaintyStrategy: ds.UncertaintyStrategy,
		MaxEpochs:           ds.MaxEpochs,
	}
}

// SetFields overwrites the mutable configuration of the dataset.
func (ds *Dataset) SetFields(f DatasetFields) {
	ds.Name = f.Name
	ds.LabelStudioURL = f.LabelStudioURL
	ds.LabelStudioAPIKey = f.LabelStudioAPIKey
	ds.MLBackendURL = f.MLBackendURL
	ds.BatchSize = f.BatchSize
	ds.UncertaintyStrategy = f.UncertaintyStrategy
	ds.MaxEpochs = f.MaxEpochs
}

func (ds *Dataset) Equal(o *Dataset) bool {
	if ds == nil || o == nil {
		return ds == nil && o == nil
	}
	return ds.Id == o.Id &&
		ds.Fields() == o.Fields() &&
		ds.Epoch == o.Epoch &&
		ds.State == o.State &&
		cmp.SliceEqWith(ds.Datapoints, o.Datapoints, (*Datapoint).Equal) &&
		cmp.SliceEqWith(ds.Labels, o.Labels, (*Label).Equal)
}
