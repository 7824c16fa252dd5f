package memory

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/utils/pointer"
)

// Media is a file held by the store.
type Media struct {
	Name        string
	ContentType string
	Content     []byte
}

// NewDatapoint is a datapoint to be created.
//
// When Content is not nil, it is stored as a new file named after File.
// Otherwise File refers a file already stored.
type NewDatapoint struct {
	Dataset     int
	Label       *int
	File        string
	Content     []byte
	ContentType string
}

// LabelChange designates the new label of a datapoint,
// by label id or by class index in the dataset of the datapoint.
//
// When both are nil, the datapoint becomes unlabeled.
type LabelChange struct {
	Id         *int
	ClassIndex *int
}

// ListDatapoints returns datapoints of the dataset, or all datapoints if datasetId is 0.
func (s *Store) ListDatapoints(datasetId int) []*classification.Datapoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret := []*classification.Datapoint{}
	idx := classification.IndexLabels(s.labelsOf(datasetId))
	if datasetId == 0 {
		idx = s.allLabels()
	}
	for _, id := range sortedIds(s.datapoints) {
		if dp := s.datapoints[id]; datasetId == 0 || dp.dataset == datasetId {
			ret = append(ret, s.datapoint(dp, idx))
		}
	}
	return ret
}

func (s *Store) GetDatapoint(id int) (*classification.Datapoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dp, ok := s.datapoints[id]
	if !ok {
		return nil, missing("datapoint", id)
	}
	return s.datapoint(dp, s.allLabels()), nil
}

func (s *Store) CreateDatapoint(nd NewDatapoint) (*classification.Datapoint, error) {
	if nd.File == "" {
		return nil, invalid("file", "This field is required.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[nd.Dataset]; !ok {
		return nil, invalidPk("dataset", nd.Dataset)
	}
	if err := s.labelBelongs(nd.Label, nd.Dataset); err != nil {
		return nil, err
	}

	name := filepath.Base(nd.File)
	if nd.Content != nil {
		name = s.store(name, nd.ContentType, nd.Content)
	} else if _, ok := s.media[name]; !ok {
		return nil, invalid("file", fmt.Sprintf("File %s does not exist.", name))
	}

	dp := datapointRecord{id: s.next("datapoint"), file: name, dataset: nd.Dataset, label: pointer.Clone(nd.Label)}
	s.datapoints[dp.id] = dp
	return s.datapoint(dp, s.allLabels()), nil
}

// UpdateDatapoint replaces the datapoint. The file should be stored already.
func (s *Store) UpdateDatapoint(id int, fields classification.DatapointFields) (*classification.Datapoint, error) {
	if err := classification.Validate(fields); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dp, ok := s.datapoints[id]
	if !ok {
		return nil, missing("datapoint", id)
	}
	if _, ok := s.datasets[fields.Dataset]; !ok {
		return nil, invalidPk("dataset", fields.Dataset)
	}
	if err := s.labelBelongs(fields.Label, fields.Dataset); err != nil {
		return nil, err
	}
	if _, ok := s.media[fields.File]; !ok {
		return nil, invalid("file", fmt.Sprintf("File %s does not exist.", fields.File))
	}

	if dp.dataset != fields.Dataset {
		for pid, p := range s.predictions {
			if p.datapoint == id {
				delete(s.predictions, pid)
			}
		}
	}
	dp.file = fields.File
	dp.dataset = fields.Dataset
	dp.label = pointer.Clone(fields.Label)
	s.datapoints[id] = dp
	return s.datapoint(dp, s.allLabels()), nil
}

// SetDatapointLabel changes the label of the datapoint.
func (s *Store) SetDatapointLabel(id int, change LabelChange) (*classification.Datapoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dp, ok := s.datapoints[id]
	if !ok {
		return nil, missing("datapoint", id)
	}

	switch {
	case change.Id != nil && change.ClassIndex != nil:
		return nil, invalid("label", "This field cannot be given with class_index.")
	case change.ClassIndex != nil:
		l, ok := s.labelByClassIndex(dp.dataset, *change.ClassIndex)
		if !ok {
			return nil, invalid(
				"class_index",
				fmt.Sprintf("No label has class index %d in the dataset.", *change.ClassIndex),
			)
		}
		dp.label = &l.Id
	case change.Id != nil:
		if err := s.labelBelongs(change.Id, dp.dataset); err != nil {
			return nil, err
		}
		dp.label = pointer.Clone(change.Id)
	default:
		dp.label = nil
	}

	s.datapoints[id] = dp
	return s.datapoint(dp, s.allLabels()), nil
}

// DeleteDatapoint deletes the datapoint and its predictions.
//
// The file of the datapoint is kept.
func (s *Store) DeleteDatapoint(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datapoints[id]; !ok {
		return missing("datapoint", id)
	}
	s.deleteDatapoint(id)
	return nil
}

func (s *Store) deleteDatapoint(id int) {
	for pid, p := range s.predictions {
		if p.datapoint == id {
			delete(s.predictions, pid)
		}
	}
	delete(s.datapoints, id)
}

// Media returns the stored file.
func (s *Store) Media(name string) (Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.media[name]
	if !ok {
		return Media{}, fmt.Errorf("%w: media %s", ErrNotFound, name)
	}
	m.Content = append([]byte{}, m.Content...)
	return m, nil
}

// store saves content under name, or a name suffixed with a number
// when name is taken. It returns the name saved under.
func (s *Store) store(name string, contentType string, content []byte) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n += 1 {
		if _, taken := s.media[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}

	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	s.media[name] = Media{
		Name:        name,
		ContentType: contentType,
		Content:     append([]byte{}, content...),
	}
	return name
}

func (s *Store) labelBelongs(labelId *int, datasetId int) error {
	if labelId == nil {
		return nil
	}
	l, ok := s.labels[*labelId]
	if !ok || l.Dataset != datasetId {
		return invalidPk("label", *labelId)
	}
	return nil
}

func (s *Store) allLabels() classification.LabelIndex {
	idx := classification.LabelIndex{}
	for id, l := range s.labels {
		idx[id] = &l
	}
	return idx
}

// datapoint builds a Datapoint from the record. Labels are taken from idx.
func (s *Store) datapoint(rec datapointRecord, idx classification.LabelIndex) *classification.Datapoint {
	dp := &classification.Datapoint{
		Id:          rec.id,
		File:        rec.file,
		Dataset:     rec.dataset,
		Predictions: []*classification.Prediction{},
	}
	if rec.label != nil {
		dp.Label = idx.Resolve(classification.RefLabel(*rec.label))
	}
	for _, pid := range sortedIds(s.predictions) {
		if p := s.predictions[pid]; p.datapoint == rec.id {
			dp.Predictions = append(dp.Predictions, prediction(p, idx))
		}
	}
	return dp
}
