// Package memory is an in-memory repository of classification datasets.
//
// It owns the records of datasets, labels, datapoints, predictions,
// uploaded files and users, and keeps references among them consistent:
// deleting an entity deletes or detaches entities depending on it.
//
// Each method returns copies, so callers may modify results freely.
package memory

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/opst/labelkit/pkg/api/types/classification"
)

// ErrNotFound is returned when the entity to be read or written is missing.
var ErrNotFound = errors.New("not found")

// Dataset states.
const (
	StateIdle     = "idle"
	StateTraining = "training"
)

type datapointRecord struct {
	id      int
	file    string
	dataset int
	label   *int
}

type predictionRecord struct {
	id           int
	datapoint    int
	label        int
	confidence   *float64
	modelVersion int
}

type Store struct {
	mu sync.Mutex

	seq         map[string]int
	users       map[string]string
	datasets    map[int]classification.Dataset
	labels      map[int]classification.Label
	datapoints  map[int]datapointRecord
	predictions map[int]predictionRecord
	media       map[string]Media
}

func New() *Store {
	return &Store{
		seq:         map[string]int{},
		users:       map[string]string{},
		datasets:    map[int]classification.Dataset{},
		labels:      map[int]classification.Label{},
		datapoints:  map[int]datapointRecord{},
		predictions: map[int]predictionRecord{},
		media:       map[string]Media{},
	}
}

// next issues a new id of the kind. Ids are never reused.
func (s *Store) next(kind string) int {
	s.seq[kind] += 1
	return s.seq[kind]
}

func sortedIds[V any](m map[int]V) []int {
	return slices.Sorted(maps.Keys(m))
}

func missing(kind string, id int) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
}

func invalid(field string, msg string) classification.FieldErrors {
	return classification.FieldErrors{field: {msg}}
}

func invalidPk(field string, id int) classification.FieldErrors {
	return invalid(field, fmt.Sprintf(`Invalid pk "%d" - object does not exist.`, id))
}

// AddUser registers a user. An existing user is overwritten.
func (s *Store) AddUser(username string, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

// Authenticate reports whether the pair of username and password is registered.
func (s *Store) Authenticate(username string, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expected, ok := s.users[username]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(password)) == 1
}
