package store

import (
	"context"
	"sync"

	kerr "github.com/opst/labelkit/cmd/labelkit/errors"
	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/sirupsen/logrus"
)

// Snapshot is a view of an Aggregate at a moment.
//
// Dataset is shared with the store and other snapshots. Do not modify it.
type Snapshot struct {
	State State

	// loaded dataset. nil unless loaded.
	Dataset *classification.Dataset

	// cause of the last loading failure. non-nil only in StateError.
	Err error
}

// Aggregate holds one dataset with its datapoints, labels and predictions,
// and keeps it in sync with the server by patching it after each successful
// mutation.
//
// Patches are applied on the latest value, so concurrent mutations compose.
// A patch never touches entities other than the ones its operation names.
type Aggregate struct {
	client rest.Client
	id     int
	logger logrus.FieldLogger

	mu          sync.Mutex
	state       State
	dataset     *classification.Dataset
	err         error
	generation  uint64
	closed      bool
	subscribers subscribers[Snapshot]
}

// NewAggregate creates a store for the dataset. It is Idle until Load.
func NewAggregate(client rest.Client, datasetId int, opts ...Option) *Aggregate {
	o := buildOptions(opts)
	return &Aggregate{
		client: client,
		id:     datasetId,
		logger: o.logger.WithField("dataset", datasetId),
	}
}

// DatasetId returns the id of the dataset this store is for.
func (a *Aggregate) DatasetId() int {
	return a.id
}

func (a *Aggregate) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

func (a *Aggregate) snapshot() Snapshot {
	return Snapshot{State: a.state, Dataset: a.dataset, Err: a.err}
}

// Subscribe registers fn to be called with a new Snapshot on each change.
//
// fn is called without locks held, so fn may call methods of the store.
// The returned function stops the subscription.
func (a *Aggregate) Subscribe(fn func(Snapshot)) (cancel func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.subscribers.add(&a.mu, fn)
}

// Close destroys the store.
//
// Operations in flight run to completion, but their results are not
// applied. Operations started after Close fail with ErrClosed.
func (a *Aggregate) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.subscribers.clear()
}

// update changes the state under the lock, then notifies subscribers.
//
// When fn returns false, nothing is notified.
func (a *Aggregate) update(fn func() bool) {
	a.mu.Lock()
	if !fn() {
		a.mu.Unlock()
		return
	}
	snapshot := a.snapshot()
	listeners := a.subscribers.listening()
	a.mu.Unlock()

	notify(listeners, snapshot)
}

// Load gets the dataset from the server.
//
// On success the store becomes Ready with the dataset. On failure the store
// becomes Error and the previous dataset is dropped; the error is returned.
//
// When another Load starts before this completes, the result of this one is
// discarded.
func (a *Aggregate) Load(ctx context.Context) error {
	var generation uint64
	closed := false
	a.update(func() bool {
		if a.closed {
			closed = true
			return false
		}
		a.generation += 1
		generation = a.generation
		a.state = StateLoading
		return true
	})
	if closed {
		return ErrClosed
	}

	ds, err := a.client.GetDataset(ctx, a.id)
	if err == nil {
		ds.ResolveLabels()
	}

	a.update(func() bool {
		if a.closed {
			a.logger.Debug("store is closed. loaded dataset is dropped")
			return false
		}
		if generation != a.generation {
			a.logger.Debug("newer loading has started. loaded dataset is dropped")
			return false
		}
		if err != nil {
			a.state = StateError
			a.dataset = nil
			a.err = err
			return true
		}
		a.state = StateReady
		a.dataset = ds
		a.err = nil
		return true
	})
	return err
}

// Refetch loads the dataset again. It is same as Load.
func (a *Aggregate) Refetch(ctx context.Context) error {
	return a.Load(ctx)
}

// ready returns the loaded dataset.
func (a *Aggregate) ready() (*classification.Dataset, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, ErrClosed
	}
	if a.dataset == nil || (a.state != StateReady && a.state != StateLoading) {
		return nil, ErrNotReady
	}
	return a.dataset, nil
}

// commit applies patch on the current dataset.
//
// The patch is dropped when the store has been closed or has lost its dataset.
func (a *Aggregate) commit(op string, patch func(*classification.Dataset) *classification.Dataset) {
	a.update(func() bool {
		if a.closed {
			a.logger.WithField("operation", op).Debug("store is closed. patch is dropped")
			return false
		}
		if a.dataset == nil {
			a.logger.WithField("operation", op).Debug("dataset is not loaded. patch is dropped")
			return false
		}
		next := patch(a.dataset)
		if next == a.dataset {
			return false
		}
		a.dataset = next
		return true
	})
}

// UpdateDatapointLabel sets the label of the datapoint.
//
// The label should be one of the labels of the dataset. The server is told
// the class index of the label.
func (a *Aggregate) UpdateDatapointLabel(ctx context.Context, datapointId int, label *classification.Label) error {
	if label == nil {
		return kerr.Invalid("label", "This field is required.")
	}
	ds, err := a.ready()
	if err != nil {
		return err
	}
	if ds.FindDatapoint(datapointId) == nil {
		return kerr.Missing("datapoint", datapointId)
	}
	local := ds.FindLabel(label.Id)
	if local == nil {
		return kerr.Missing("label", label.Id)
	}

	classIndex := local.ClassIndex
	if _, err := a.client.PatchDatapoint(
		ctx, datapointId, classification.DatapointPatch{ClassIndex: &classIndex},
	); err != nil {
		return err
	}

	a.commit("update datapoint label", func(ds *classification.Dataset) *classification.Dataset {
		l := ds.FindLabel(local.Id)
		if l == nil {
			// deleted meanwhile. The server has cleared the label of the datapoint with it.
			a.logger.WithField("label", local.Id).Debug("label is gone. datapoint is left unlabeled")
		}
		return withDatapoint(ds, datapointId, func(dp classification.Datapoint) *classification.Datapoint {
			dp.Label = l
			return &dp
		})
	})
	return nil
}

// AddDatapoints uploads files one by one in order, with the label if labelId is given.
//
// Each uploaded datapoint is added to the dataset as soon as it is created.
// A failure does not stop the batch; uploads after it are still attempted.
//
// return:
//
//   - created datapoints, in the order of files.
//   - error: *BatchError when some uploads have failed. Other errors mean no uploads are attempted.
func (a *Aggregate) AddDatapoints(
	ctx context.Context, files []rest.Upload, labelId *int,
) ([]*classification.Datapoint, error) {
	ds, err := a.ready()
	if err != nil {
		return nil, err
	}
	if labelId != nil && ds.FindLabel(*labelId) == nil {
		return nil, kerr.Missing("label", *labelId)
	}

	created := []*classification.Datapoint{}
	failures := []FileFailure{}
	for nth := range files {
		f := files[nth]
		dp, err := a.client.CreateDatapoint(ctx, rest.DatapointCreate{
			Dataset: a.id, Label: labelId, File: &f,
		})
		if err != nil {
			a.logger.WithError(err).WithField("file", f.Name).Debug("upload failed")
			failures = append(failures, FileFailure{Index: nth, Name: f.Name, Err: err})
			continue
		}
		if dp.Dataset == 0 {
			dp.Dataset = a.id
		}

		a.commit("add datapoint", func(ds *classification.Dataset) *classification.Dataset {
			dp.ResolveLabels(classification.IndexLabels(ds.Labels))
			ret := *ds
			ret.Datapoints = upserted(ds.Datapoints, dp, idOfDatapoint)
			return &ret
		})
		created = append(created, dp)
	}

	if len(failures) != 0 {
		return created, &BatchError{Total: len(files), Failures: failures}
	}
	return created, nil
}

// DeleteDatapoint deletes the datapoint.
func (a *Aggregate) DeleteDatapoint(ctx context.Context, datapointId int) error {
	ds, err := a.ready()
	if err != nil {
		return err
	}
	if ds.FindDatapoint(datapointId) == nil {
		return kerr.Missing("datapoint", datapointId)
	}

	if err := a.client.DeleteDatapoint(ctx, datapointId); err != nil {
		return err
	}

	a.commit("delete datapoint", func(ds *classification.Dataset) *classification.Dataset {
		dps, ok := removed(ds.Datapoints, func(dp *classification.Datapoint) bool { return dp.Id == datapointId })
		if !ok {
			return ds
		}
		ret := *ds
		ret.Datapoints = dps
		return &ret
	})
	return nil
}

// AddLabel creates a label in the dataset.
//
// classIndex and classLabel are verified before any requests.
func (a *Aggregate) AddLabel(ctx context.Context, classIndex *int, classLabel string) (*classification.Label, error) {
	fields := classification.LabelFields{ClassIndex: classIndex, ClassLabel: classLabel, Dataset: a.id}
	if err := rest.Validate(fields); err != nil {
		return nil, err
	}
	if _, err := a.ready(); err != nil {
		return nil, err
	}

	l, err := a.client.CreateLabel(ctx, fields)
	if err != nil {
		return nil, err
	}
	if l.Dataset == 0 {
		l.Dataset = a.id
	}

	a.commit("add label", func(ds *classification.Dataset) *classification.Dataset {
		ret := *ds
		ret.Labels = upserted(ds.Labels, l, idOfLabel)
		return &ret
	})
	return l, nil
}

// DeleteLabel deletes the label.
//
// Datapoints labeled with it become unlabeled, and predictions of it are
// removed, as the server does.
func (a *Aggregate) DeleteLabel(ctx context.Context, id int) error {
	ds, err := a.ready()
	if err != nil {
		return err
	}
	if ds.FindLabel(id) == nil {
		return kerr.Missing("label", id)
	}

	if err := a.client.DeleteLabel(ctx, id); err != nil {
		return err
	}

	a.commit("delete label", func(ds *classification.Dataset) *classification.Dataset {
		next := relabeled(ds, id, nil)
		labels, ok := removed(next.Labels, func(l *classification.Label) bool { return l.Id == id })
		if !ok {
			return next
		}
		if next == ds {
			ret := *ds
			next = &ret
		}
		next.Labels = labels
		return next
	})
	return nil
}

// UpdateLabel renames the label. Its class index is not changed.
//
// Datapoints and predictions holding the label see the new name.
func (a *Aggregate) UpdateLabel(ctx context.Context, id int, classLabel string) (*classification.Label, error) {
	patch := classification.LabelPatch{ClassLabel: &classLabel}
	if err := rest.Validate(patch); err != nil {
		return nil, err
	}
	ds, err := a.ready()
	if err != nil {
		return nil, err
	}
	if ds.FindLabel(id) == nil {
		return nil, kerr.Missing("label", id)
	}

	resp, err := a.client.PatchLabel(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	var updated *classification.Label
	a.commit("update label", func(ds *classification.Dataset) *classification.Dataset {
		nth := -1
		for i, l := range ds.Labels {
			if l.Id == id {
				nth = i
				break
			}
		}
		if nth < 0 {
			return ds
		}
		l := *ds.Labels[nth]
		l.ClassLabel = resp.ClassLabel
		updated = &l

		next := relabeled(ds, id, updated)
		if next == ds {
			ret := *ds
			next = &ret
		}
		next.Labels = replaced(ds.Labels, nth, updated)
		return next
	})
	if updated == nil {
		// the label has gone from the store meanwhile.
		return resp, nil
	}
	return updated, nil
}

// AddPrediction records a prediction of the datapoint.
//
// The label is looked up in the loaded dataset, and its class index is sent.
func (a *Aggregate) AddPrediction(
	ctx context.Context, datapointId int, labelId int, confidence *float64,
) (*classification.Prediction, error) {
	ds, err := a.ready()
	if err != nil {
		return nil, err
	}
	label := ds.FindLabel(labelId)
	if label == nil {
		return nil, kerr.Missing("label", labelId)
	}
	if ds.FindDatapoint(datapointId) == nil {
		return nil, kerr.Missing("datapoint", datapointId)
	}

	classIndex := label.ClassIndex
	payload := classification.PredictionCreate{
		Datapoint:           datapointId,
		PredictedClassIndex: &classIndex,
		Confidence:          confidence,
	}
	if err := rest.Validate(payload); err != nil {
		return nil, err
	}

	p, err := a.client.CreatePrediction(ctx, payload)
	if err != nil {
		return nil, err
	}
	if p.Datapoint == 0 {
		p.Datapoint = datapointId
	}
	if p.PredictedLabel == nil {
		p.PredictedLabel = label
	}

	a.commit("add prediction", func(ds *classification.Dataset) *classification.Dataset {
		p.PredictedLabel = classification.IndexLabels(ds.Labels).Resolve(p.PredictedLabel)
		return withDatapoint(ds, datapointId, func(dp classification.Datapoint) *classification.Datapoint {
			dp.Predictions = upserted(dp.Predictions, p, idOfPrediction)
			return &dp
		})
	})
	return p, nil
}

// DeletePrediction deletes the prediction of the datapoint.
func (a *Aggregate) DeletePrediction(ctx context.Context, datapointId int, predictionId int) error {
	ds, err := a.ready()
	if err != nil {
		return err
	}
	dp := ds.FindDatapoint(datapointId)
	if dp == nil {
		return kerr.Missing("datapoint", datapointId)
	}
	if dp.FindPrediction(predictionId) == nil {
		return kerr.Missing("prediction", predictionId)
	}

	if err := a.client.DeletePrediction(ctx, predictionId); err != nil {
		return err
	}

	a.commit("delete prediction", func(ds *classification.Dataset) *classification.Dataset {
		return withDatapoint(ds, datapointId, func(dp classification.Datapoint) *classification.Datapoint {
			preds, _ := removed(dp.Predictions, func(p *classification.Prediction) bool { return p.Id == predictionId })
			dp.Predictions = preds
			return &dp
		})
	})
	return nil
}

// PatchDataset updates configuration of the dataset.
//
// Datapoints and labels are left as they are.
func (a *Aggregate) PatchDataset(ctx context.Context, patch classification.DatasetPatch) (*classification.Dataset, error) {
	if err := rest.Validate(patch); err != nil {
		return nil, err
	}
	if _, err := a.ready(); err != nil {
		return nil, err
	}

	resp, err := a.client.PatchDataset(ctx, a.id, patch)
	if err != nil {
		return nil, err
	}

	var updated *classification.Dataset
	a.commit("patch dataset", func(ds *classification.Dataset) *classification.Dataset {
		ret := *ds
		ret.SetFields(resp.Fields())
		ret.Epoch = resp.Epoch
		ret.State = resp.State
		updated = &ret
		return &ret
	})
	if updated == nil {
		return resp, nil
	}
	return updated, nil
}

// StartActiveLearning starts active learning of the dataset on the server.
//
// The dataset in the store is not changed.
func (a *Aggregate) StartActiveLearning(ctx context.Context) (classification.ActiveLearningStatus, error) {
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return classification.ActiveLearningStatus{}, ErrClosed
	}
	return a.client.StartActiveLearning(ctx, a.id)
}
