package memory

import (
	"fmt"

	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/utils/pointer"
)

// ListPredictions returns predictions for the datapoint, or all predictions if datapointId is 0.
func (s *Store) ListPredictions(datapointId int) []*classification.Prediction {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.allLabels()
	ret := []*classification.Prediction{}
	for _, id := range sortedIds(s.predictions) {
		if p := s.predictions[id]; datapointId == 0 || p.datapoint == datapointId {
			ret = append(ret, prediction(p, idx))
		}
	}
	return ret
}

func (s *Store) GetPrediction(id int) (*classification.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.predictions[id]
	if !ok {
		return nil, missing("prediction", id)
	}
	return prediction(p, s.allLabels()), nil
}

// CreatePrediction records a prediction.
//
// When the model version is not given, the current epoch of the dataset is used.
func (s *Store) CreatePrediction(payload classification.PredictionCreate) (*classification.Prediction, error) {
	if err := classification.Validate(payload); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dp, ok := s.datapoints[payload.Datapoint]
	if !ok {
		return nil, invalidPk("datapoint", payload.Datapoint)
	}

	var labelId int
	if payload.PredictedLabel != nil {
		if err := s.labelBelongs(payload.PredictedLabel, dp.dataset); err != nil {
			return nil, invalidPk("predicted_label", *payload.PredictedLabel)
		}
		labelId = *payload.PredictedLabel
	} else {
		l, ok := s.labelByClassIndex(dp.dataset, *payload.PredictedClassIndex)
		if !ok {
			return nil, invalid(
				"predicted_class_index",
				fmt.Sprintf("No label has class index %d in the dataset.", *payload.PredictedClassIndex),
			)
		}
		labelId = l.Id
	}

	modelVersion := s.datasets[dp.dataset].Epoch
	if payload.ModelVersion != nil {
		modelVersion = *payload.ModelVersion
	}

	p := predictionRecord{
		id:           s.next("prediction"),
		datapoint:    dp.id,
		label:        labelId,
		confidence:   pointer.Clone(payload.Confidence),
		modelVersion: modelVersion,
	}
	s.predictions[p.id] = p
	return prediction(p, s.allLabels()), nil
}

// UpdatePrediction replaces the prediction.
func (s *Store) UpdatePrediction(id int, fields classification.PredictionFields) (*classification.Prediction, error) {
	if err := classification.Validate(fields); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.predictions[id]
	if !ok {
		return nil, missing("prediction", id)
	}
	dp, ok := s.datapoints[fields.Datapoint]
	if !ok {
		return nil, invalidPk("datapoint", fields.Datapoint)
	}
	if err := s.labelBelongs(&fields.PredictedLabel, dp.dataset); err != nil {
		return nil, invalidPk("predicted_label", fields.PredictedLabel)
	}

	p.datapoint = fields.Datapoint
	p.label = fields.PredictedLabel
	p.confidence = pointer.Clone(fields.Confidence)
	p.modelVersion = fields.ModelVersion
	s.predictions[id] = p
	return prediction(p, s.allLabels()), nil
}

func (s *Store) DeletePrediction(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.predictions[id]; !ok {
		return missing("prediction", id)
	}
	delete(s.predictions, id)
	return nil
}

func prediction(rec predictionRecord, idx classification.LabelIndex) *classification.Prediction {
	return &classification.Prediction{
		Id:             rec.id,
		PredictedLabel: idx.Resolve(classification.RefLabel(rec.label)),
		Confidence:     pointer.Clone(rec.confidence),
		ModelVersion:   rec.modelVersion,
		Datapoint:      rec.datapoint,
	}
}
