package store_test

import (
	"context"
	"errors"
	"testing"

	kerr "github.com/opst/labelkit/cmd/labelkit/errors"
	"github.com/opst/labelkit/cmd/labelkit/rest/mock"
	"github.com/opst/labelkit/cmd/labelkit/store"
	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/cmp"
)

func datasets() []*classification.Dataset {
	return []*classification.Dataset{
		{Id: 1, Name: "animals"},
		{Id: 2, Name: "vehicles"},
	}
}

func loadedList(t *testing.T, client *mock.MockClient, dss []*classification.Dataset) *store.List {
	t.Helper()
	client.Impl.ListDatasets = func(ctx context.Context) ([]*classification.Dataset, error) {
		return dss, nil
	}
	testee := store.NewList(client)
	if err := testee.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return testee
}

func datasetIds(dss []*classification.Dataset) []int {
	return ids(dss, func(ds *classification.Dataset) int { return ds.Id })
}

func TestList_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("it loads datasets", func(t *testing.T) {
		client := mock.New(t)
		testee := loadedList(t, client, datasets())

		s := testee.Snapshot()
		if s.State != store.StateReady || !cmp.SliceEq(datasetIds(s.Datasets), []int{1, 2}) {
			t.Errorf("snapshot: %+v", s)
		}
	})

	t.Run("failure drops previous datasets", func(t *testing.T) {
		client := mock.New(t)
		testee := loadedList(t, client, datasets())
		cause := &kerr.NetworkError{Method: "GET", URL: "http://example.invalid", Cause: errors.New("fake")}
		client.Impl.ListDatasets = func(ctx context.Context) ([]*classification.Dataset, error) {
			return nil, cause
		}

		if err := testee.Refetch(ctx); err != cause {
			t.Errorf("unexpected error: %v", err)
		}
		s := testee.Snapshot()
		if s.State != store.StateError || s.Datasets != nil || s.Err != cause {
			t.Errorf("snapshot: %+v", s)
		}
	})
}

func TestList_CreateDataset(t *testing.T) {
	ctx := context.Background()

	t.Run("created dataset is appended", func(t *testing.T) {
		client := mock.New(t)
		before := datasets()
		testee := loadedList(t, client, before)
		client.Impl.CreateDataset = func(ctx context.Context, fields classification.DatasetFields) (*classification.Dataset, error) {
			ds := &classification.Dataset{Id: 3}
			ds.SetFields(fields)
			return ds, nil
		}

		ds, err := testee.CreateDataset(ctx, classification.DatasetFields{Name: "cats"})
		if err != nil {
			t.Fatal(err)
		}
		if ds.Id != 3 || ds.Name != "cats" {
			t.Errorf("created: %+v", ds)
		}

		after := testee.Snapshot().Datasets
		if !cmp.SliceEq(datasetIds(after), []int{1, 2, 3}) {
			t.Errorf("datasets: %v", datasetIds(after))
		}
		if after[0] != before[0] || after[1] != before[1] {
			t.Errorf("other datasets are recreated")
		}
		if len(before) != 2 {
			t.Errorf("previous value is modified")
		}
	})

	t.Run("invalid fields are rejected without request", func(t *testing.T) {
		client := mock.New(t)
		testee := loadedList(t, client, datasets())

		_, err := testee.CreateDataset(ctx, classification.DatasetFields{MLBackendURL: "not a url"})
		verr := &kerr.ValidationError{}
		if !errors.As(err, &verr) {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cmp.SliceEq(verr.Fields(), []string{"ml_backend_url", "name"}) {
			t.Errorf("fields: %v", verr.Fields())
		}
		if len(client.Calls.CreateDataset) != 0 {
			t.Errorf("request is sent")
		}
	})

	t.Run("on failure, list is not changed", func(t *testing.T) {
		client := mock.New(t)
		testee := loadedList(t, client, datasets())
		client.Impl.CreateDataset = func(ctx context.Context, fields classification.DatasetFields) (*classification.Dataset, error) {
			return nil, &kerr.ValidationError{Status: 400, FieldErrors: map[string][]string{"name": {"duplicated"}}}
		}

		if _, err := testee.CreateDataset(ctx, classification.DatasetFields{Name: "animals"}); !errors.Is(err, kerr.ErrValidation) {
			t.Errorf("unexpected error: %v", err)
		}
		if got := datasetIds(testee.Snapshot().Datasets); !cmp.SliceEq(got, []int{1, 2}) {
			t.Errorf("datasets: %v", got)
		}
	})
}

func TestList_DeleteDataset(t *testing.T) {
	ctx := context.Background()

	t.Run("it removes the dataset", func(t *testing.T) {
		client := mock.New(t)
		before := datasets()
		testee := loadedList(t, client, before)
		client.Impl.DeleteDataset = func(ctx context.Context, id int) error { return nil }

		if err := testee.DeleteDataset(ctx, 1); err != nil {
			t.Fatal(err)
		}
		after := testee.Snapshot().Datasets
		if len(after) != 1 || after[0] != before[1] {
			t.Errorf("datasets: %v", datasetIds(after))
		}
	})

	t.Run("unknown dataset is not requested", func(t *testing.T) {
		client := mock.New(t)
		testee := loadedList(t, client, datasets())

		if err := testee.DeleteDataset(ctx, 9); !errors.Is(err, kerr.ErrNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
		if len(client.Calls.DeleteDataset) != 0 {
			t.Errorf("request is sent")
		}
	})

	t.Run("before loading", func(t *testing.T) {
		client := mock.New(t)
		testee := store.NewList(client)
		if err := testee.DeleteDataset(ctx, 1); !errors.Is(err, store.ErrNotReady) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
