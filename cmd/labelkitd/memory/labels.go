package memory

import (
	"github.com/opst/labelkit/pkg/api/types/classification"
	apierr "github.com/opst/labelkit/pkg/api/types/errors"
)

// ListLabels returns labels of the dataset ordered by class index,
// or all labels if datasetId is 0.
func (s *Store) ListLabels(datasetId int) []*classification.Label {
	s.mu.Lock()
	defer s.mu.Unlock()

	if datasetId != 0 {
		return s.labelsOf(datasetId)
	}
	ret := []*classification.Label{}
	for _, id := range sortedIds(s.labels) {
		l := s.labels[id]
		ret = append(ret, &l)
	}
	return ret
}

func (s *Store) GetLabel(id int) (*classification.Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.labels[id]
	if !ok {
		return nil, missing("label", id)
	}
	return &l, nil
}

func (s *Store) CreateLabel(fields classification.LabelFields) (*classification.Label, error) {
	if err := classification.Validate(fields); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[fields.Dataset]; !ok {
		return nil, invalidPk("dataset", fields.Dataset)
	}
	if err := s.classIndexIsFree(fields.Dataset, *fields.ClassIndex, 0); err != nil {
		return nil, err
	}

	l := classification.Label{
		Id:         s.next("label"),
		ClassIndex: *fields.ClassIndex,
		ClassLabel: fields.ClassLabel,
		Dataset:    fields.Dataset,
	}
	s.labels[l.Id] = l
	return &l, nil
}

// UpdateLabel replaces the label.
//
// Moving a label to another dataset detaches it from datapoints and
// predictions of the former dataset.
func (s *Store) UpdateLabel(id int, fields classification.LabelFields) (*classification.Label, error) {
	if err := classification.Validate(fields); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.labels[id]
	if !ok {
		return nil, missing("label", id)
	}
	if _, ok := s.datasets[fields.Dataset]; !ok {
		return nil, invalidPk("dataset", fields.Dataset)
	}
	if err := s.classIndexIsFree(fields.Dataset, *fields.ClassIndex, id); err != nil {
		return nil, err
	}

	if l.Dataset != fields.Dataset {
		s.detachLabel(id)
	}
	l.ClassIndex = *fields.ClassIndex
	l.ClassLabel = fields.ClassLabel
	l.Dataset = fields.Dataset
	s.labels[id] = l
	return &l, nil
}

func (s *Store) PatchLabel(id int, patch classification.LabelPatch) (*classification.Label, error) {
	if err := classification.Validate(patch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.labels[id]
	if !ok {
		return nil, missing("label", id)
	}
	if patch.ClassIndex != nil {
		if err := s.classIndexIsFree(l.Dataset, *patch.ClassIndex, id); err != nil {
			return nil, err
		}
		l.ClassIndex = *patch.ClassIndex
	}
	if patch.ClassLabel != nil {
		l.ClassLabel = *patch.ClassLabel
	}
	s.labels[id] = l
	return &l, nil
}

// DeleteLabel deletes the label.
//
// Datapoints labeled with it become unlabeled, and predictions of it are deleted.
func (s *Store) DeleteLabel(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.labels[id]; !ok {
		return missing("label", id)
	}
	s.detachLabel(id)
	delete(s.labels, id)
	return nil
}

func (s *Store) detachLabel(id int) {
	for dpid, dp := range s.datapoints {
		if dp.label != nil && *dp.label == id {
			dp.label = nil
			s.datapoints[dpid] = dp
		}
	}
	for pid, p := range s.predictions {
		if p.label == id {
			delete(s.predictions, pid)
		}
	}
}

// classIndexIsFree returns an error if another label than the label
// with id except holds classIndex in the dataset.
func (s *Store) classIndexIsFree(datasetId int, classIndex int, except int) error {
	for _, l := range s.labels {
		if l.Id != except && l.Dataset == datasetId && l.ClassIndex == classIndex {
			return invalid(
				apierr.NonFieldErrorsKey,
				"The fields dataset, class_index must make a unique set.",
			)
		}
	}
	return nil
}

func (s *Store) labelByClassIndex(datasetId int, classIndex int) (classification.Label, bool) {
	for _, l := range s.labels {
		if l.Dataset == datasetId && l.ClassIndex == classIndex {
			return l, true
		}
	}
	return classification.Label{}, false
}
