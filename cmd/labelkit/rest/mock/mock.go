package mock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/opst/labelkit/cmd/labelkit/rest"
	"github.com/opst/labelkit/pkg/api/types/classification"
)

// ErrNotImplemented is returned from a method called without its Impl.
var ErrNotImplemented = errors.New("mock: not implemented")

type UpdateDatasetArgs struct {
	Id     int
	Fields classification.DatasetFields
}

type PatchDatasetArgs struct {
	Id    int
	Patch classification.DatasetPatch
}

type UpdateDatapointArgs struct {
	Id     int
	Fields classification.DatapointFields
}

type PatchDatapointArgs struct {
	Id    int
	Patch classification.DatapointPatch
}

type UpdateLabelArgs struct {
	Id     int
	Fields classification.LabelFields
}

type PatchLabelArgs struct {
	Id    int
	Patch classification.LabelPatch
}

type UpdatePredictionArgs struct {
	Id     int
	Fields classification.PredictionFields
}

type LoginArgs struct {
	Username string
	Password string
}

// MockClient is a rest.Client whose behaviour is given by Impl.
//
// Calling a method without Impl fails the test. Arguments of each call are recorded in Calls.
type MockClient struct {
	t  *testing.T
	mu sync.Mutex

	Impl struct {
		ListDatasets        func(ctx context.Context) ([]*classification.Dataset, error)
		GetDataset          func(ctx context.Context, id int) (*classification.Dataset, error)
		CreateDataset       func(ctx context.Context, fields classification.DatasetFields) (*classification.Dataset, error)
		UpdateDataset       func(ctx context.Context, id int, fields classification.DatasetFields) (*classification.Dataset, error)
		PatchDataset        func(ctx context.Context, id int, patch classification.DatasetPatch) (*classification.Dataset, error)
		DeleteDataset       func(ctx context.Context, id int) error
		ListDatapoints      func(ctx context.Context, datasetId int) ([]*classification.Datapoint, error)
		GetDatapoint        func(ctx context.Context, id int) (*classification.Datapoint, error)
		CreateDatapoint     func(ctx context.Context, payload rest.DatapointCreate) (*classification.Datapoint, error)
		UpdateDatapoint     func(ctx context.Context, id int, fields classification.DatapointFields) (*classification.Datapoint, error)
		PatchDatapoint      func(ctx context.Context, id int, patch classification.DatapointPatch) (*classification.Datapoint, error)
		DeleteDatapoint     func(ctx context.Context, id int) error
		ListLabels          func(ctx context.Context, datasetId int) ([]*classification.Label, error)
		GetLabel            func(ctx context.Context, id int) (*classification.Label, error)
		CreateLabel         func(ctx context.Context, fields classification.LabelFields) (*classification.Label, error)
		UpdateLabel         func(ctx context.Context, id int, fields classification.LabelFields) (*classification.Label, error)
		PatchLabel          func(ctx context.Context, id int, patch classification.LabelPatch) (*classification.Label, error)
		DeleteLabel         func(ctx context.Context, id int) error
		ListPredictions     func(ctx context.Context, datapointId int) ([]*classification.Prediction, error)
		GetPrediction       func(ctx context.Context, id int) (*classification.Prediction, error)
		CreatePrediction    func(ctx context.Context, payload classification.PredictionCreate) (*classification.Prediction, error)
		UpdatePrediction    func(ctx context.Context, id int, fields classification.PredictionFields) (*classification.Prediction, error)
		DeletePrediction    func(ctx context.Context, id int) error
		StartActiveLearning func(ctx context.Context, datasetId int) (classification.ActiveLearningStatus, error)
		Login               func(ctx context.Context, username string, password string) (rest.Token, error)
	}

	Calls struct {
		ListDatasets        []struct{}
		GetDataset          []int
		CreateDataset       []classification.DatasetFields
		UpdateDataset       []UpdateDatasetArgs
		PatchDataset        []PatchDatasetArgs
		DeleteDataset       []int
		ListDatapoints      []int
		GetDatapoint        []int
		CreateDatapoint     []rest.DatapointCreate
		UpdateDatapoint     []UpdateDatapointArgs
		PatchDatapoint      []PatchDatapointArgs
		DeleteDatapoint     []int
		ListLabels          []int
		GetLabel            []int
		CreateLabel         []classification.LabelFields
		UpdateLabel         []UpdateLabelArgs
		PatchLabel          []PatchLabelArgs
		DeleteLabel         []int
		ListPredictions     []int
		GetPrediction       []int
		CreatePrediction    []classification.PredictionCreate
		UpdatePrediction    []UpdatePredictionArgs
		DeletePrediction    []int
		StartActiveLearning []int
		Login               []LoginArgs
	}
}

var _ rest.Client = &MockClient{}

func New(t *testing.T) *MockClient {
	return &MockClient{t: t}
}

func (m *MockClient) notReady(name string) {
	m.t.Helper()
	m.t.Errorf("%s is not ready to be called", name)
}

func (m *MockClient) ListDatasets(ctx context.Context) ([]*classification.Dataset, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.ListDatasets = append(m.Calls.ListDatasets, struct{}{})
	impl := m.Impl.ListDatasets
	m.mu.Unlock()

	if impl == nil {
		m.notReady("ListDatasets")
		return nil, ErrNotImplemented
	}
	return impl(ctx)
}

func (m *MockClient) GetDataset(ctx context.Context, id int) (*classification.Dataset, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.GetDataset = append(m.Calls.GetDataset, id)
	impl := m.Impl.GetDataset
	m.mu.Unlock()

	if impl == nil {
		m.notReady("GetDataset")
		return nil, ErrNotImplemented
	}
	return impl(ctx, id)
}

func (m *MockClient) CreateDataset(ctx context.Context, fields classification.DatasetFields) (*classification.Dataset, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.CreateDataset = append(m.Calls.CreateDataset, fields)
	impl := m.Impl.CreateDataset
	m.mu.Unlock()

	if impl == nil {
		m.notReady("CreateDataset")
		return nil, ErrNotImplemented
	}
	return impl(ctx, fields)
}

func (m *MockClient) UpdateDataset(ctx context.Context, id int, fields classification.DatasetFields) (*classification.Dataset, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.UpdateDataset = append(m.Calls.UpdateDataset, UpdateDatasetArgs{Id: id, Fields: fields})
	impl := m.Impl.UpdateDataset
	m.mu.Unlock()

	if impl == nil {
		m.notReady("UpdateDataset")
		return nil, ErrNotImplemented
	}
	return impl(ctx, id, fields)
}

func (m *MockClient) PatchDataset(ctx context.Context, id int, patch classification.DatasetPatch) (*classification.Dataset, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.PatchDataset = append(m.Calls.PatchDataset, PatchDatasetArgs{Id: id, Patch: patch})
	impl := m.Impl.PatchDataset
	m.mu.Unlock()

	if impl == nil {
		m.notReady("PatchDataset")
		return nil, ErrNotImplemented
	}
	return impl(ctx, id, patch)
}

func (m *MockClient) DeleteDataset(ctx context.Context, id int) error {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.DeleteDataset = append(m.Calls.DeleteDataset, id)
	impl := m.Impl.DeleteDataset
	m.mu.Unlock()

	if impl == nil {
		m.notReady("DeleteDataset")
		return ErrNotImplemented
	}
	return impl(ctx, id)
}

func (m *MockClient) ListDatapoints(ctx context.Context, datasetId int) ([]*classification.Datapoint, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.ListDatapoints = append(m.Calls.ListDatapoints, datasetId)
	impl := m.Impl.ListDatapoints
	m.mu.Unlock()

	if impl == nil {
		m.notReady("ListDatapoints")
		return nil, ErrNotImplemented
	}
	return impl(ctx, datasetId)
}

func (m *MockClient) GetDatapoint(ctx context.Context, id int) (*classification.Datapoint, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.GetDatapoint = append(m.Calls.GetDatapoint, id)
	impl := m.Impl.GetDatapoint
	m.mu.Unlock()

	if impl == nil {
		m.notReady("GetDatapoint")
		return nil, ErrNotImplemented
	}
	return impl(ctx, id)
}

func (m *MockClient) CreateDatapoint(ctx context.Context, payload rest.DatapointCreate) (*classification.Datapoint, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.CreateDatapoint = append(m.Calls.CreateDatapoint, payload)
	impl := m.Impl.CreateDatapoint
	m.mu.Unlock()

	if impl == nil {
		m.notReady("CreateDatapoint")
		return nil, ErrNotImplemented
	}
	return impl(ctx, payload)
}

func (m *MockClient) UpdateDatapoint(ctx context.Context, id int, fields classification.DatapointFields) (*classification.Datapoint, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.UpdateDatapoint = append(m.Calls.UpdateDatapoint, UpdateDatapointArgs{Id: id, Fields: fields})
	impl := m.Impl.UpdateDatapoint
	m.mu.Unlock()

	if impl == nil {
		m.notReady("UpdateDatapoint")
		return nil, ErrNotImplemented
	}
	return impl(ctx, id, fields)
}

func (m *MockClient) PatchDatapoint(ctx context.Context, id int, patch classification.DatapointPatch) (*classification.Datapoint, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.PatchDatapoint = append(m.Calls.PatchDatapoint, PatchDatapointArgs{Id: id, Patch: patch})
	impl := m.Impl.PatchDatapoint
	m.mu.Unlock()

	if impl == nil {
		m.notReady("PatchDatapoint")
		return nil, ErrNotImplemented
	}
	return impl(ctx, id, patch)
}

func (m *MockClient) DeleteDatapoint(ctx context.Context, id int) error {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.DeleteDatapoint = append(m.Calls.DeleteDatapoint, id)
	impl := m.Impl.DeleteDatapoint
	m.mu.Unlock()

	if impl == nil {
		m.notReady("DeleteDatapoint")
		return ErrNotImplemented
	}
	return impl(ctx, id)
}

func (m *MockClient) ListLabels(ctx context.Context, datasetId int) ([]*classification.Label, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.ListLabels = append(m.Calls.ListLabels, datasetId)
	impl := m.Impl.ListLabels
	m.mu.Unlock()

	if impl == nil {
		m.notReady("ListLabels")
		return nil, ErrNotImplemented
	}
	return impl(ctx, datasetId)
}

func (m *MockClient) GetLabel(ctx context.Context, id int) (*classification.Label, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.GetLabel = append(m.Calls.GetLabel, id)
	impl := m.Impl.GetLabel
	m.mu.Unlock()

	if impl == nil {
		m.notReady("GetLabel")
		return nil, ErrNotImplemented
	}
	return impl(ctx, id)
}

func (m *MockClient) CreateLabel(ctx context.Context, fields classification.LabelFields) (*classification.Label, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.CreateLabel = append(m.Calls.CreateLabel, fields)
	impl := m.Impl.CreateLabel
	m.mu.Unlock()

	if impl == nil {
		m.notReady("CreateLabel")
		return nil, ErrNotImplemented
	}
	return impl(ctx, fields)
}

func (m *MockClient) UpdateLabel(ctx context.Context, id int, fields classification.LabelFields) (*classification.Label, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.UpdateLabel = append(m.Calls.UpdateLabel, UpdateLabelArgs{Id: id, Fields: fields})
	impl := m.Impl.UpdateLabel
	m.mu.Unlock()

	if impl == nil {
		m.notReady("UpdateLabel")
		return nil, ErrNotImplemented
	}
	return impl(ctx, id, fields)
}

func (m *MockClient) PatchLabel(ctx context.Context, id int, patch classification.LabelPatch) (*classification.Label, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.PatchLabel = append(m.Calls.PatchLabel, PatchLabelArgs{Id: id, Patch: patch})
	impl := m.Impl.PatchLabel
	m.mu.Unlock()

	if impl == nil {
		m.notReady("PatchLabel")
		return nil, ErrNotImplemented
	}
	return impl(ctx, id, patch)
}

func (m *MockClient) DeleteLabel(ctx context.Context, id int) error {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.DeleteLabel = append(m.Calls.DeleteLabel, id)
	impl := m.Impl.DeleteLabel
	m.mu.Unlock()

	if impl == nil {
		m.notReady("DeleteLabel")
		return ErrNotImplemented
	}
	return impl(ctx, id)
}

func (m *MockClient) ListPredictions(ctx context.Context, datapointId int) ([]*classification.Prediction, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.ListPredictions = append(m.Calls.ListPredictions, datapointId)
	impl := m.Impl.ListPredictions
	m.mu.Unlock()

	if impl == nil {
		m.notReady("ListPredictions")
		return nil, ErrNotImplemented
	}
	return impl(ctx, datapointId)
}

func (m *MockClient) GetPrediction(ctx context.Context, id int) (*classification.Prediction, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.GetPrediction = append(m.Calls.GetPrediction, id)
	impl := m.Impl.GetPrediction
	m.mu.Unlock()

	if impl == nil {
		m.notReady("GetPrediction")
		return nil, ErrNotImplemented
	}
	return impl(ctx, id)
}

func (m *MockClient) CreatePrediction(ctx context.Context, payload classification.PredictionCreate) (*classification.Prediction, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.CreatePrediction = append(m.Calls.CreatePrediction, payload)
	impl := m.Impl.CreatePrediction
	m.mu.Unlock()

	if impl == nil {
		m.notReady("CreatePrediction")
		return nil, ErrNotImplemented
	}
	return impl(ctx, payload)
}

func (m *MockClient) UpdatePrediction(ctx context.Context, id int, fields classification.PredictionFields) (*classification.Prediction, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.UpdatePrediction = append(m.Calls.UpdatePrediction, UpdatePredictionArgs{Id: id, Fields: fields})
	impl := m.Impl.UpdatePrediction
	m.mu.Unlock()

	if impl == nil {
		m.notReady("UpdatePrediction")
		return nil, ErrNotImplemented
	}
	return impl(ctx, id, fields)
}

func (m *MockClient) DeletePrediction(ctx context.Context, id int) error {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.DeletePrediction = append(m.Calls.DeletePrediction, id)
	impl := m.Impl.DeletePrediction
	m.mu.Unlock()

	if impl == nil {
		m.notReady("DeletePrediction")
		return ErrNotImplemented
	}
	return impl(ctx, id)
}

func (m *MockClient) StartActiveLearning(ctx context.Context, datasetId int) (classification.ActiveLearningStatus, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.StartActiveLearning = append(m.Calls.StartActiveLearning, datasetId)
	impl := m.Impl.StartActiveLearning
	m.mu.Unlock()

	if impl == nil {
		m.notReady("StartActiveLearning")
		return classification.ActiveLearningStatus{}, ErrNotImplemented
	}
	return impl(ctx, datasetId)
}

func (m *MockClient) Login(ctx context.Context, username string, password string) (rest.Token, error) {
	m.t.Helper()

	m.mu.Lock()
	m.Calls.Login = append(m.Calls.Login, LoginArgs{Username: username, Password: password})
	impl := m.Impl.Login
	m.mu.Unlock()

	if impl == nil {
		m.notReady("Login")
		return "", ErrNotImplemented
	}
	return impl(ctx, username, password)
}
