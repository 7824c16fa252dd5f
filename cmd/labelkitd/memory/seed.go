package memory

import (
	"errors"
	"fmt"
	"io"

	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/utils/pointer"
	"gopkg.in/yaml.v3"
)

// Seed is initial contents of a Store.
//
// In yaml, it looks like:
//
//	users:
//	  - username: admin
//	    password: secret
//	datasets:
//	  - name: animals
//	    batch_size: 8
//	    labels: [cat, dog]   # class index is the position
//	    datapoints:
//	      - file: tama.png
//	        label: cat
//	      - file: unknown.png
type Seed struct {
	Users    []SeedUser    `yaml:"users"`
	Datasets []SeedDataset `yaml:"datasets"`
}

type SeedUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type SeedDataset struct {
	Name                string          `yaml:"name"`
	LabelStudioURL      string          `yaml:"label_studio_url"`
	MLBackendURL        string          `yaml:"ml_backend_url"`
	BatchSize           int             `yaml:"batch_size"`
	UncertaintyStrategy string          `yaml:"uncertainty_strategy"`
	MaxEpochs           int             `yaml:"max_epochs"`
	Labels              []string        `yaml:"labels"`
	Datapoints          []SeedDatapoint `yaml:"datapoints"`
}

type SeedDatapoint struct {
	File string `yaml:"file"`

	// class label. Empty means unlabeled.
	Label string `yaml:"label"`
}

// LoadSeed reads a Seed written in yaml. Unknown keys are errors.
func LoadSeed(r io.Reader) (Seed, error) {
	seed := Seed{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return Seed{}, fmt.Errorf("seed: %w", err)
	}
	return seed, nil
}

// Apply adds contents of the seed into the store.
//
// Files of datapoints are registered without content.
func (s *Store) Apply(seed Seed) error {
	for _, u := range seed.Users {
		if u.Username == "" {
			return errors.New("seed: user without username")
		}
		s.AddUser(u.Username, u.Password)
	}

	for _, sd := range seed.Datasets {
		ds, err := s.CreateDataset(classification.DatasetFields{
			Name:                sd.Name,
			LabelStudioURL:      sd.LabelStudioURL,
			MLBackendURL:        sd.MLBackendURL,
			BatchSize:           sd.BatchSize,
			UncertaintyStrategy: sd.UncertaintyStrategy,
			MaxEpochs:           sd.MaxEpochs,
		})
		if err != nil {
			return fmt.Errorf("seed: dataset %q: %w", sd.Name, err)
		}

		labels := map[string]int{}
		for nth, name := range sd.Labels {
			l, err := s.CreateLabel(classification.LabelFields{
				ClassIndex: pointer.Ref(nth), ClassLabel: name, Dataset: ds.Id,
			})
			if err != nil {
				return fmt.Errorf("seed: dataset %q: label %q: %w", sd.Name, name, err)
			}
			labels[name] = l.Id
		}

		for _, sdp := range sd.Datapoints {
			nd := NewDatapoint{Dataset: ds.Id, File: sdp.File, Content: []byte{}}
			if sdp.Label != "" {
				id, ok := labels[sdp.Label]
				if !ok {
					return fmt.Errorf("seed: dataset %q: datapoint %s: unknown label %q", sd.Name, sdp.File, sdp.Label)
				}
				nd.Label = &id
			}
			if _, err := s.CreateDatapoint(nd); err != nil {
				return fmt.Errorf("seed: dataset %q: datapoint %s: %w", sd.Name, sdp.File, err)
			}
		}
	}
	return nil
}
