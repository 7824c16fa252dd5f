package classification_test

import (
	"testing"

	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/cmp"
	"github.com/opst/labelkit/pkg/utils/pointer"
)

func TestParseLabeling(t *testing.T) {
	for given, expected := range map[string]classification.Labeling{
		"":          classification.AnyLabeling,
		"all":       classification.AnyLabeling,
		"labeled":   classification.Labeled,
		"Unlabeled": classification.Unlabeled,
	} {
		actual, err := classification.ParseLabeling(given)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", given, err)
		}
		if actual != expected {
			t.Errorf("%q: actual = %q, expected = %q", given, actual, expected)
		}
	}

	if _, err := classification.ParseLabeling("some"); err == nil {
		t.Error("expected error")
	}
}

func TestDatapointFilter_Match(t *testing.T) {
	cat := &classification.Label{Id: 3, ClassIndex: 0, ClassLabel: "cat", Dataset: 1}
	predicted := func(confidence *float64, version int) *classification.Prediction {
		return &classification.Prediction{
			Id: 100, PredictedLabel: cat, Confidence: confidence, ModelVersion: version, Datapoint: 10,
		}
	}

	type When struct {
		filter    classification.DatapointFilter
		datapoint classification.Datapoint
	}
	theory := func(when When, then bool) func(*testing.T) {
		return func(t *testing.T) {
			if actual := when.filter.Match(&when.datapoint); actual != then {
				t.Errorf("actual = %v, expected = %v", actual, then)
			}
		}
	}

	t.Run("empty filter matches anything", theory(
		When{datapoint: classification.Datapoint{Id: 10, Label: cat}}, true,
	))
	t.Run("labeled rejects unlabeled", theory(
		When{filter: classification.DatapointFilter{Labeling: classification.Labeled}, datapoint: classification.Datapoint{Id: 10}},
		false,
	))
	t.Run("unlabeled rejects labeled", theory(
		When{filter: classification.DatapointFilter{Labeling: classification.Unlabeled}, datapoint: classification.Datapoint{Id: 10, Label: cat}},
		false,
	))
	t.Run("bounds do not reject datapoint without predictions", theory(
		When{
			filter:    classification.DatapointFilter{MinConfidence: pointer.Ref(0.5), ModelVersion: pointer.Ref(9)},
			datapoint: classification.Datapoint{Id: 10},
		},
		true,
	))
	t.Run("confidence on the lower bound", theory(
		When{
			filter: classification.DatapointFilter{MinConfidence: pointer.Ref(0.5)},
			datapoint: classification.Datapoint{Id: 10, Predictions: []*classification.Prediction{
				predicted(pointer.Ref(0.5), 1),
			}},
		},
		true,
	))
	t.Run("confidence over the upper bound", theory(
		When{
			filter: classification.DatapointFilter{MaxConfidence: pointer.Ref(0.5)},
			datapoint: classification.Datapoint{Id: 10, Predictions: []*classification.Prediction{
				predicted(pointer.Ref(0.51), 1),
			}},
		},
		false,
	))
	t.Run("prediction without confidence meets confidence bounds", theory(
		When{
			filter: classification.DatapointFilter{MinConfidence: pointer.Ref(0.5), MaxConfidence: pointer.Ref(0.6)},
			datapoint: classification.Datapoint{Id: 10, Predictions: []*classification.Prediction{
				predicted(nil, 1),
			}},
		},
		true,
	))
	t.Run("bounds are met by one prediction, not across predictions", theory(
		When{
			filter: classification.DatapointFilter{MinConfidence: pointer.Ref(0.5), ModelVersion: pointer.Ref(2)},
			datapoint: classification.Datapoint{Id: 10, Predictions: []*classification.Prediction{
				predicted(pointer.Ref(0.9), 1),
				predicted(pointer.Ref(0.1), 2),
			}},
		},
		false,
	))
	t.Run("any of predictions meeting bounds is enough", theory(
		When{
			filter: classification.DatapointFilter{ModelVersion: pointer.Ref(2)},
			datapoint: classification.Datapoint{Id: 10, Predictions: []*classification.Prediction{
				predicted(pointer.Ref(0.9), 1),
				predicted(pointer.Ref(0.1), 2),
			}},
		},
		true,
	))
}

func TestDataset_FilterDatapoints(t *testing.T) {
	cat := &classification.Label{Id: 3, ClassIndex: 0, ClassLabel: "cat", Dataset: 1}
	ds := classification.Dataset{
		Id:     1,
		Labels: []*classification.Label{cat},
		Datapoints: []*classification.Datapoint{
			{Id: 12, Dataset: 1, Label: cat},
			{Id: 10, Dataset: 1},
			{Id: 11, Dataset: 1, Label: cat},
		},
	}

	labeled := ds.FilterDatapoints(classification.DatapointFilter{Labeling: classification.Labeled})
	ids := []int{}
	for _, dp := range labeled {
		ids = append(ids, dp.Id)
	}
	if !cmp.SliceEq(ids, []int{12, 11}) {
		t.Errorf("datapoints: %v", ids)
	}
	if labeled[0] != ds.Datapoints[0] {
		t.Errorf("datapoint is copied")
	}
	if n := ds.LabeledCount(); n != 2 {
		t.Errorf("labeled count: %d", n)
	}

	unlabeled := ds.FilterDatapoints(classification.DatapointFilter{
		Labeling: classification.Unlabeled, ModelVersion: pointer.Ref(1),
	})
	if len(unlabeled) != 1 || unlabeled[0].Id != 10 {
		t.Errorf("unexpected datapoints: %v", unlabeled)
	}
}
