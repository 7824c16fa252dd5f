package classification

import (
	"encoding/json"

	"github.com/opst/labelkit/pkg/utils/pointer"
)

type Prediction struct {
	Id             int      `json:"id"`
	PredictedLabel *Label   `json:"predicted_label"`
	Confidence     *float64 `json:"confidence"`
	ModelVersion   int      `json:"model_version"`
	Datapoint      int      `json:"datapoint"`
}

func (p *Prediction) UnmarshalJSON(b []byte) error {
	type plain Prediction
	aux := struct {
		*plain
		PredictedLabel json.RawMessage `json:"predicted_label"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	l, err := decodeLabelRef(aux.PredictedLabel)
	if err != nil {
		return err
	}
	p.PredictedLabel = l
	return nil
}

func (p *Prediction) Equal(o *Prediction) bool {
	if p == nil || o == nil {
		return p == nil && o == nil
	}
	return p.Id == o.Id &&
		p.PredictedLabel.Equal(o.PredictedLabel) &&
		pointer.Equal(p.Confidence, o.Confidence) &&
		p.ModelVersion == o.ModelVersion &&
		p.Datapoint == o.Datapoint
}
