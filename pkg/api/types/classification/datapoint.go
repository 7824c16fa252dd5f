package classification

import (
	"encoding/json"

	"github.com/opst/labelkit/pkg/cmp"
)

type Datapoint struct {
	Id          int           `json:"id"`
	File        string        `json:"file"`
	FileURL     string        `json:"file_url"`
	Dataset     int           `json:"dataset"`
	Label       *Label        `json:"label"`
	Predictions []*Prediction `json:"predictions"`
}

func (dp *Datapoint) UnmarshalJSON(b []byte) error {
	type plain Datapoint
	aux := struct {
		*plain
		Label json.RawMessage `json:"label"`
	}{plain: (*plain)(dp)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	l, err := decodeLabelRef(aux.Label)
	if err != nil {
		return err
	}
	dp.Label = l
	return nil
}

// ResolveLabels replaces label references held by the datapoint and its
// predictions with the indexed label objects.
//
// Empty back-references of predictions are filled with the datapoint id.
func (dp *Datapoint) ResolveLabels(idx LabelIndex) {
	dp.Label = idx.Resolve(dp.Label)
	for _, p := range dp.Predictions {
		if p == nil {
			continue
		}
		p.PredictedLabel = idx.Resolve(p.PredictedLabel)
		if p.Datapoint == 0 {
			p.Datapoint = dp.Id
		}
	}
}

func (dp *Datapoint) Equal(o *Datapoint) bool {
	if dp == nil || o == nil {
		return dp == nil && o == nil
	}
	return dp.Id == o.Id &&
		dp.File == o.File &&
		dp.FileURL == o.FileURL &&
		dp.Dataset == o.Dataset &&
		dp.Label.Equal(o.Label) &&
		cmp.SliceEqWith(dp.Predictions, o.Predictions, (*Prediction).Equal)
}

// FindPrediction returns the prediction with the id, or nil.
func (dp *Datapoint) FindPrediction(id int) *Prediction {
	for _, p := range dp.Predictions {
		if p != nil && p.Id == id {
			return p
		}
	}
	return nil
}
