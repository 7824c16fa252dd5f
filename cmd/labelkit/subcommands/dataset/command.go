package dataset

import (
	"github.com/youta-t/flarc"
)

const ARG_DATASET_ID = "DATASET_ID"

func New() (flarc.Command, error) {
	list, err := NewList()
	if err != nil {
		return nil, err
	}
	show, err := NewShow()
	if err != nil {
		return nil, err
	}
	create, err := NewCreate()
	if err != nil {
		return nil, err
	}
	patch, err := NewPatch()
	if err != nil {
		return nil, err
	}
	rm, err := NewRm()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manipulate datasets.",
		struct{}{},
		flarc.WithSubcommand("list", list),
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("create", create),
		flarc.WithSubcommand("patch", patch),
		flarc.WithSubcommand("rm", rm),
	)
}
