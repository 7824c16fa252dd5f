package store

import (
	"github.com/opst/labelkit/pkg/api/types/classification"
	"github.com/opst/labelkit/pkg/utils"
)

// Patches never modify given values. They build new values sharing every
// element not on the path to the changed entity, keeping the order.

func replaced[T any](sli []T, nth int, v T) []T {
	ret := make([]T, len(sli))
	copy(ret, sli)
	ret[nth] = v
	return ret
}

func appended[T any](sli []T, v T) []T {
	return append(sli[:len(sli):len(sli)], v)
}

// upserted replaces the element having the same id as v, or appends v.
func upserted[T any](sli []T, v T, id func(T) int) []T {
	nth := utils.IndexOf(sli, func(e T) bool { return id(e) == id(v) })
	if nth < 0 {
		return appended(sli, v)
	}
	return replaced(sli, nth, v)
}

// removed returns sli without elements satisfying pred.
//
// When nothing is removed, sli itself is returned with false.
func removed[T any](sli []T, pred func(T) bool) ([]T, bool) {
	if utils.IndexOf(sli, pred) < 0 {
		return sli, false
	}
	return utils.Filter(sli, func(e T) bool { return !pred(e) }), true
}

func idOfDatapoint(dp *classification.Datapoint) int { return dp.Id }
func idOfLabel(l *classification.Label) int { return l.Id }
func idOfPrediction(p *classification.Prediction) int { return p.Id }
func idOfDataset(ds *classification.Dataset) int { return ds.Id }

// withDatapoint returns a copy of ds where the datapoint with the id is
// replaced by the result of fn.
//
// When no such datapoint is there, ds itself is returned.
func withDatapoint(
	ds *classification.Dataset, id int, fn func(classification.Datapoint) *classification.Datapoint,
) *classification.Dataset {
	nth := utils.IndexOf(ds.Datapoints, func(dp *classification.Datapoint) bool { return dp.Id == id })
	if nth < 0 {
		return ds
	}
	ret := *ds
	ret.Datapoints = replaced(ds.Datapoints, nth, fn(*ds.Datapoints[nth]))
	return &ret
}

// relabeled returns a copy of ds where labels with the id held by datapoints
// and predictions are replaced with to.
//
// When to is nil, datapoint labels are cleared and predictions of the label
// are removed.
func relabeled(ds *classification.Dataset, id int, to *classification.Label) *classification.Dataset {
	holds := func(l *classification.Label) bool { return l != nil && l.Id == id }

	var datapoints []*classification.Datapoint
	for nth, dp := range ds.Datapoints {
		newDp := dp
		if holds(dp.Label) {
			d := *dp
			d.Label = to
			newDp = &d
		}

		if to == nil {
			if preds, ok := removed(dp.Predictions, func(p *classification.Prediction) bool {
				return holds(p.PredictedLabel)
			}); ok {
				if newDp == dp {
					d := *dp
					newDp = &d
				}
				newDp.Predictions = preds
			}
		} else {
			for pnth, p := range dp.Predictions {
				if !holds(p.PredictedLabel) {
					continue
				}
				if newDp == dp {
					d := *dp
					newDp = &d
				}
				np := *p
				np.PredictedLabel = to
				newDp.Predictions = replaced(newDp.Predictions, pnth, &np)
			}
		}

		if newDp == dp {
			continue
		}
		if datapoints == nil {
			datapoints = make([]*classification.Datapoint, len(ds.Datapoints))
			copy(datapoints, ds.Datapoints)
		}
		datapoints[nth] = newDp
	}

	if datapoints == nil {
		return ds
	}
	ret := *ds
	ret.Datapoints = datapoints
	return &ret
}
