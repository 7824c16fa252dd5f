package memory

import (
	"fmt"
	"slices"

	"github.com/opst/labelkit/pkg/api/types/classification"
)

// ListDatasets returns all datasets, without their labels and datapoints.
func (s *Store) ListDatasets() []*classification.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret := []*classification.Dataset{}
	for _, id := range sortedIds(s.datasets) {
		ds := s.datasets[id]
		ret = append(ret, &ds)
	}
	return ret
}

// GetDataset returns the dataset with its labels and datapoints.
//
// Labels held by datapoints and predictions are the objects in Labels.
func (s *Store) GetDataset(id int) (*classification.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nested(id)
}

func (s *Store) nested(id int) (*classification.Dataset, error) {
	rec, ok := s.datasets[id]
	if !ok {
		return nil, missing("dataset", id)
	}
	ds := rec
	ds.Labels = s.labelsOf(id)
	ds.Datapoints = []*classification.Datapoint{}

	idx := classification.IndexLabels(ds.Labels)
	for _, dpid := range sortedIds(s.datapoints) {
		if dp := s.datapoints[dpid]; dp.dataset == id {
			ds.Datapoints = append(ds.Datapoints, s.datapoint(dp, idx))
		}
	}
	return &ds, nil
}

func (s *Store) CreateDataset(fields classification.DatasetFields) (*classification.Dataset, error) {
	if err := classification.Validate(fields); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ds := classification.Dataset{Id: s.next("dataset"), State: StateIdle}
	ds.SetFields(fields)
	s.datasets[ds.Id] = ds
	return s.nested(ds.Id)
}

// UpdateDataset replaces configurations of the dataset.
func (s *Store) UpdateDataset(id int, fields classification.DatasetFields) (*classification.Dataset, error) {
	if err := classification.Validate(fields); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, missing("dataset", id)
	}
	ds.SetFields(fields)
	s.datasets[id] = ds
	return s.nested(id)
}

func (s *Store) PatchDataset(id int, patch classification.DatasetPatch) (*classification.Dataset, error) {
	if err := classification.Validate(patch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, missing("dataset", id)
	}
	patch.Apply(&ds)
	s.datasets[id] = ds
	return s.nested(id)
}

// DeleteDataset deletes the dataset together with its labels, datapoints
// and their predictions.
func (s *Store) DeleteDataset(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return missing("dataset", id)
	}
	for dpid, dp := range s.datapoints {
		if dp.dataset == id {
			s.deleteDatapoint(dpid)
		}
	}
	for lid, l := range s.labels {
		if l.Dataset == id {
			delete(s.labels, lid)
		}
	}
	delete(s.datasets, id)
	return nil
}

// StartTraining moves the dataset into training state, and counts up its epoch.
//
// It returns the message describing what is started.
// Starting again while training restarts the cycle.
func (s *Store) StartTraining(id int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[id]
	if !ok {
		return "", missing("dataset", id)
	}
	labeled := 0
	for _, dp := range s.datapoints {
		if dp.dataset == id && dp.label != nil {
			labeled += 1
		}
	}

	ds.State = StateTraining
	ds.Epoch += 1
	s.datasets[id] = ds
	return fmt.Sprintf(
		"active learning of %s started: epoch %d with %d labeled datapoints",
		ds.Name, ds.Epoch, labeled,
	), nil
}

func (s *Store) labelsOf(datasetId int) []*classification.Label {
	ret := []*classification.Label{}
	for _, lid := range sortedIds(s.labels) {
		if l := s.labels[lid]; l.Dataset == datasetId {
			ret = append(ret, &l)
		}
	}
	slices.SortStableFunc(ret, func(a, b *classification.Label) int {
		return a.ClassIndex - b.ClassIndex
	})
	return ret
}
