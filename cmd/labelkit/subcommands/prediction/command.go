package prediction

import (
	"github.com/youta-t/flarc"
)

const (
	ARG_DATASET_ID    = "DATASET_ID"
	ARG_DATAPOINT_ID  = "DATAPOINT_ID"
	ARG_LABEL_ID      = "LABEL_ID"
	ARG_PREDICTION_ID = "PREDICTION_ID"
)

func New() (flarc.Command, error) {
	add, err := NewAdd()
	if err != nil {
		return nil, err
	}
	rm, err := NewRm()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manipulate predictions of datapoints.",
		struct{}{},
		flarc.WithSubcommand("add", add),
		flarc.WithSubcommand("rm", rm),
	)
}
