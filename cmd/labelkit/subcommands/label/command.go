package label

import (
	"github.com/youta-t/flarc"
)

const (
	ARG_DATASET_ID  = "DATASET_ID"
	ARG_LABEL_ID    = "LABEL_ID"
	ARG_CLASS_INDEX = "CLASS_INDEX"
	ARG_CLASS_LABEL = "CLASS_LABEL"
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
	rename, err := NewRename()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manipulate labels of a dataset.",
		struct{}{},
		flarc.WithSubcommand("add", add),
		flarc.WithSubcommand("rm", rm),
		flarc.WithSubcommand("rename", rename),
	)
}
