package store_test

import (
	"context"
	"testing"

	"github.com/opst/labelkit/cmd/labelkit/rest/mock"
	"github.com/opst/labelkit/cmd/labelkit/store"
	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/utils/pointer"
)

// fixture returns a dataset:
//
//	labels: cat (#3, index 0), dog (#4, index 1)
//	datapoints:
//	  #10 a.png, labeled cat, predicted dog (#100)
//	  #11 b.png, unlabeled
//	  #12 c.png, labeled dog, predicted cat (#101)
func fixture() *classification.Dataset {
	cat := &classification.Label{Id: 3, ClassIndex: 0, ClassLabel: "cat", Dataset: 1}
	dog := &classification.Label{Id: 4, ClassIndex: 1, ClassLabel: "dog", Dataset: 1}
	return &classification.Dataset{
		Id: 1, Name: "animals",
		Labels: []*classification.Label{cat, dog},
		Datapoints: []*classification.Datapoint{
			{
				Id: 10, File: "a.png", FileURL: "/media/a.png", Dataset: 1, Label: cat,
				Predictions: []*classification.Prediction{
					{Id: 100, PredictedLabel: dog, Confidence: pointer.Ref(0.75), ModelVersion: 1, Datapoint: 10},
				},
			},
			{
				Id: 11, File: "b.png", FileURL: "/media/b.png", Dataset: 1,
				Predictions: []*classification.Prediction{},
			},
			{
				Id: 12, File: "c.png", FileURL: "/media/c.png", Dataset: 1, Label: dog,
				Predictions: []*classification.Prediction{
					{Id: 101, PredictedLabel: cat, ModelVersion: 1, Datapoint: 12},
				},
			},
		},
	}
}

// loaded returns an Aggregate which has loaded ds.
func loaded(t *testing.T, client *mock.MockClient, ds *classification.Dataset) *store.Aggregate {
	t.Helper()
	client.Impl.GetDataset = func(ctx context.Context, id int) (*classification.Dataset, error) {
		if id != ds.Id {
			t.Errorf("unexpected dataset id: %d", id)
		}
		return ds, nil
	}
	testee := store.NewAggregate(client, ds.Id)
	if err := testee.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return testee
}

func ids[T any](sli []T, id func(T) int) []int {
	ret := make([]int, len(sli))
	for nth, v := range sli {
		ret[nth] = id(v)
	}
	return ret
}

func datapointIds(ds *classification.Dataset) []int {
	return ids(ds.Datapoints, func(dp *classification.Datapoint) int { return dp.Id })
}

func labelIds(ds *classification.Dataset) []int {
	return ids(ds.Labels, func(l *classification.Label) int { return l.Id })
}

func predictionIds(dp *classification.Datapoint) []int {
	return ids(dp.Predictions, func(p *classification.Prediction) int { return p.Id })
}

// assertSameEntities checks entities in after are the very same objects in
// before, except for the ids named in changed.
func assertSameEntities(t *testing.T, before, after *classification.Dataset, changed changes) {
	t.Helper()

	for _, l := range after.Labels {
		if changed.labels[l.Id] {
			continue
		}
		if old := before.FindLabel(l.Id); old != nil && old != l {
			t.Errorf("label %d is recreated", l.Id)
		}
	}
	for _, dp := range after.Datapoints {
		if changed.datapoints[dp.Id] {
			continue
		}
		if old := before.FindDatapoint(dp.Id); old != nil && old != dp {
			t.Errorf("datapoint %d is recreated", dp.Id)
		}
	}
}

type changes struct {
	datapoints map[int]bool
	labels     map[int]bool
}

func changedDatapoints(ids ...int) changes {
	c := changes{datapoints: map[int]bool{}, labels: map[int]bool{}}
	for _, id := range ids {
		c.datapoints[id] = true
	}
	return c
}

func (c changes) andLabels(ids ...int) changes {
	for _, id := range ids {
		c.labels[id] = true
	}
	return c
}
