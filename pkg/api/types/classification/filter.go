package classification

import (
	"fmt"
	"strings"
)

// Labeling selects datapoints by whether they have a label.
type Labeling string

const (
	AnyLabeling Labeling = ""
	Labeled     Labeling = "labeled"
	Unlabeled   Labeling = "unlabeled"
)

// ParseLabeling parses "all", "labeled" or "unlabeled".
// Empty string is "all".
func ParseLabeling(s string) (Labeling, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return AnyLabeling, nil
	case string(Labeled):
		return Labeled, nil
	case string(Unlabeled):
		return Unlabeled, nil
	}
	return AnyLabeling, fmt.Errorf("unknown labeling: %q (all, labeled or unlabeled)", s)
}

// DatapointFilter selects datapoints of a dataset.
//
// Nil bounds are not restrictions. When any of MinConfidence, MaxConfidence
// and ModelVersion is set, a datapoint having predictions passes only when one
// of them meets all of those. A prediction without confidence meets any
// confidence bounds. Datapoints without predictions are not filtered by the bounds.
type DatapointFilter struct {
	Labeling      Labeling
	MinConfidence *float64
	MaxConfidence *float64
	ModelVersion  *int
}

func (f DatapointFilter) bounded() bool {
	return f.MinConfidence != nil || f.MaxConfidence != nil || f.ModelVersion != nil
}

func (f DatapointFilter) meets(p *Prediction) bool {
	if p.Confidence != nil {
		if f.MinConfidence != nil && *p.Confidence < *f.MinConfidence {
			return false
		}
		if f.MaxConfidence != nil && *f.MaxConfidence < *p.Confidence {
			return false
		}
	}
	if f.ModelVersion != nil && p.ModelVersion != *f.ModelVersion {
		return false
	}
	return true
}

// Match tells whether dp passes the filter.
func (f DatapointFilter) Match(dp *Datapoint) bool {
	switch f.Labeling {
	case Labeled:
		if dp.Label == nil {
			return false
		}
	case Unlabeled:
		if dp.Label != nil {
			return false
		}
	}

	if len(dp.Predictions) == 0 || !f.bounded() {
		return true
	}
	for _, p := range dp.Predictions {
		if p != nil && f.meets(p) {
			return true
		}
	}
	return false
}

// FilterDatapoints returns datapoints passing f, in the order of ds.Datapoints.
//
// Returned datapoints are shared with ds.
func (ds *Dataset) FilterDatapoints(f DatapointFilter) []*Datapoint {
	ret := []*Datapoint{}
	for _, dp := range ds.Datapoints {
		if dp != nil && f.Match(dp) {
			ret = append(ret, dp)
		}
	}
	return ret
}

// LabeledCount returns how many datapoints have a label.
func (ds *Dataset) LabeledCount() int {
	n := 0
	for _, dp := range ds.Datapoints {
		if dp != nil && dp.Label != nil {
			n += 1
		}
	}
	return n
}
