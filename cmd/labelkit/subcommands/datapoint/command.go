package datapoint

import (
	"github.com/youta-t/flarc"
)

const (
	ARG_DATASET_ID   = "DATASET_ID"
	ARG_DATAPOINT_ID = "DATAPOINT_ID"
	ARG_LABEL_ID     = "LABEL_ID"
	ARG_FILE         = "FILE"
	ARG_DIR          = "DIR"
)

func New() (flarc.Command, error) {
	upload, err := NewUpload()
	if err != nil {
		return nil, err
	}
	watch, err := NewWatch()
	if err != nil {
		return nil, err
	}
	label, err := NewLabel()
	if err != nil {
		return nil, err
	}
	rm, err := NewRm()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manipulate datapoints of a dataset.",
		struct{}{},
		flarc.WithSubcommand("upload", upload),
		flarc.WithSubcommand("watch", watch),
		flarc.WithSubcommand("label", label),
		flarc.WithSubcommand("rm", rm),
	)
}
