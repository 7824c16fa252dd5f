package store

import (
	"context"
	"sync"

	kerr "github.com/opst/labelkit/cmd/labelkit/errors"
	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/utils"
	"github.com/sirupsen/logrus"
)

// ListSnapshot is a view of a List at a moment.
//
// Datasets is shared with the store and other snapshots. Do not modify it.
type ListSnapshot struct {
	State    State
	Datasets []*classification.Dataset
	Err      error
}

// List holds all datasets, without nesting.
type List struct {
	client rest.Client
	logger logrus.FieldLogger

	mu          sync.Mutex
	state       State
	datasets    []*classification.Dataset
	err         error
	generation  uint64
	closed      bool
	subscribers subscribers[ListSnapshot]
}

func NewList(client rest.Client, opts ...Option) *List {
	o := buildOptions(opts)
	return &List{client: client, logger: o.logger.WithField("store", "datasets")}
}

func (l *List) Snapshot() ListSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

func (l *List) snapshot() ListSnapshot {
	return ListSnapshot{State: l.state, Datasets: l.datasets, Err: l.err}
}

// Subscribe registers fn to be called with a new ListSnapshot on each change.
func (l *List) Subscribe(fn func(ListSnapshot)) (cancel func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.subscribers.add(&l.mu, fn)
}

// Close destroys the store. See (*Aggregate).Close.
func (l *List) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.subscribers.clear()
}

func (l *List) update(fn func() bool) {
	l.mu.Lock()
	if !fn() {
		l.mu.Unlock()
		return
	}
	snapshot := l.snapshot()
	listeners := l.subscribers.listening()
	l.mu.Unlock()

	notify(listeners, snapshot)
}

// Load gets all datasets. On failure, previously loaded datasets are dropped.
func (l *List) Load(ctx context.Context) error {
	var generation uint64
	closed := false
	l.update(func() bool {
		if l.closed {
			closed = true
			return false
		}
		l.generation += 1
		generation = l.generation
		l.state = StateLoading
		return true
	})
	if closed {
		return ErrClosed
	}

	datasets, err := l.client.ListDatasets(ctx)

	l.update(func() bool {
		if l.closed || generation != l.generation {
			l.logger.Debug("loaded datasets are dropped")
			return false
		}
		if err != nil {
			l.state = StateError
			l.datasets = nil
			l.err = err
			return true
		}
		l.state = StateReady
		l.datasets = datasets
		l.err = nil
		return true
	})
	return err
}

func (l *List) Refetch(ctx context.Context) error {
	return l.Load(ctx)
}

func (l *List) ready() ([]*classification.Dataset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	if l.state != StateReady && !(l.state == StateLoading && l.datasets != nil) {
		return nil, ErrNotReady
	}
	return l.datasets, nil
}

func (l *List) commit(op string, patch func([]*classification.Dataset) []*classification.Dataset) {
	l.update(func() bool {
		if l.closed || (l.state != StateReady && l.state != StateLoading) {
			l.logger.WithField("operation", op).Debug("patch is dropped")
			return false
		}
		l.datasets = patch(l.datasets)
		return true
	})
}

// CreateDataset creates a dataset, and appends it to the list.
//
// fields are verified before any requests.
func (l *List) CreateDataset(ctx context.Context, fields classification.DatasetFields) (*classification.Dataset, error) {
	if err := rest.Validate(fields); err != nil {
		return nil, err
	}
	if _, err := l.ready(); err != nil {
		return nil, err
	}

	ds, err := l.client.CreateDataset(ctx, fields)
	if err != nil {
		return nil, err
	}

	l.commit("create dataset", func(datasets []*classification.Dataset) []*classification.Dataset {
		return upserted(datasets, ds, idOfDataset)
	})
	return ds, nil
}

// DeleteDataset deletes the dataset, and removes it from the list.
func (l *List) DeleteDataset(ctx context.Context, id int) error {
	datasets, err := l.ready()
	if err != nil {
		return err
	}
	if utils.IndexOf(datasets, func(ds *classification.Dataset) bool { return ds.Id == id }) < 0 {
		return kerr.Missing("dataset", id)
	}

	if err := l.client.DeleteDataset(ctx, id); err != nil {
		return err
	}

	l.commit("delete dataset", func(datasets []*classification.Dataset) []*classification.Dataset {
		ret, _ := removed(datasets, func(ds *classification.Dataset) bool { return ds.Id == id })
		return ret
	})
	return nil
}
